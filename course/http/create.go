package http

import (
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user/auth"
)

func (h *CourseHttpHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	claims, err := auth.RequireClaims(r.Context())
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	var params course.CreateCourseParams
	if err := httpjson.DecodeJson(r, &params); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	params.UserID = claims.UserID

	c, err := h.courseSrvc.CreateCourse(r.Context(), params)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapCourse(c, true))
}

func (h *CourseHttpHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	claims, err := auth.RequireClaims(r.Context())
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	courses, err := h.courseSrvc.ListInstructorCourses(r.Context(), claims.UserID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	res := make([]Course, 0, len(courses))
	for _, c := range courses {
		res = append(res, mapCourse(c, true))
	}
	httpjson.WriteSuccessJson(w, res)
}
