package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/course"
)

type AssignmentHttpHandler struct {
	assignmentSrvc *assignment.AssignmentSrvc
	courseSrvc     *course.CourseSrvc
}

func NewAssignmentHttpHandler(assignmentSrvc *assignment.AssignmentSrvc, courseSrvc *course.CourseSrvc) *AssignmentHttpHandler {
	return &AssignmentHttpHandler{assignmentSrvc: assignmentSrvc, courseSrvc: courseSrvc}
}

func (h *AssignmentHttpHandler) RegisterRoutes(r chi.Router) {
	r.Post("/courses/{courseId}/assignments", h.CreateAssignment)
	r.Get("/courses/{courseId}/assignments", h.ListAssignments)
	r.Get("/assignments/{assignmentId}", h.GetAssignment)
	r.Put("/assignments/{assignmentId}", h.UpdateAssignment)
	r.Post("/assignments/{assignmentId}/files", h.AttachFile)
	r.Get("/assignments/{assignmentId}/bundle", h.DownloadBundle)
}
