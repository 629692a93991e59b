package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/programme-lv/autograde/course"
)

type CourseHttpHandler struct {
	courseSrvc *course.CourseSrvc
}

func NewCourseHttpHandler(courseSrvc *course.CourseSrvc) *CourseHttpHandler {
	return &CourseHttpHandler{courseSrvc: courseSrvc}
}

func (h *CourseHttpHandler) RegisterRoutes(r chi.Router) {
	r.Post("/courses", h.CreateCourse)
	r.Get("/courses", h.ListCourses)
	r.Post("/courses/join", h.JoinCourse)
	r.Get("/courses/{courseId}/students", h.ListStudents)
}
