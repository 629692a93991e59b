package http

import (
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user/auth"
)

func (h *CourseHttpHandler) JoinCourse(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	claims, err := auth.RequireClaims(r.Context())
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	var request struct {
		EnrollKey string `json:"enroll_key"`
	}
	if err := httpjson.DecodeJson(r, &request); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	c, st, err := h.courseSrvc.Join(r.Context(), claims.UserID, request.EnrollKey)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	// the pass is shown only to its owner, the runner script sends it with results
	httpjson.WriteSuccessJson(w, struct {
		Course         Course  `json:"course"`
		Student        Student `json:"student"`
		SubmissionPass string  `json:"submission_pass"`
	}{
		Course:         mapCourse(c, false),
		Student:        mapStudent(st),
		SubmissionPass: st.SubmissionPass,
	})
}
