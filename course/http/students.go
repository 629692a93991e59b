package http

import (
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user/auth"
)

func (h *CourseHttpHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	claims, err := auth.RequireClaims(r.Context())
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	courseID, err := courseIDParam(r)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if err := h.courseSrvc.RequireInstructorOf(r.Context(), claims.UserID, courseID); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	students, err := h.courseSrvc.ListStudents(r.Context(), courseID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	res := make([]Student, 0, len(students))
	for _, s := range students {
		res = append(res, mapStudent(s))
	}
	httpjson.WriteSuccessJson(w, res)
}
