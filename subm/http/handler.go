package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/subm"
)

type SubmHttpHandler struct {
	recorder       *subm.Recorder
	assignmentSrvc *assignment.AssignmentSrvc
}

func NewSubmHttpHandler(recorder *subm.Recorder, assignmentSrvc *assignment.AssignmentSrvc) *SubmHttpHandler {
	return &SubmHttpHandler{recorder: recorder, assignmentSrvc: assignmentSrvc}
}

func (h *SubmHttpHandler) RegisterRoutes(r chi.Router) {
	r.Post("/assignments/{assignmentId}/submissions", h.PostSubmission)
	r.Get("/assignments/{assignmentId}/submissions", h.ListMySubmissions)
	r.Post("/api/results", h.PostResult)
}
