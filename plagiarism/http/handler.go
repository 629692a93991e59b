package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/plagiarism"
	"github.com/programme-lv/autograde/user/auth"
)

type PlagiarismHttpHandler struct {
	bridge         *plagiarism.Bridge
	assignmentSrvc *assignment.AssignmentSrvc
}

func NewPlagiarismHttpHandler(bridge *plagiarism.Bridge, assignmentSrvc *assignment.AssignmentSrvc) *PlagiarismHttpHandler {
	return &PlagiarismHttpHandler{bridge: bridge, assignmentSrvc: assignmentSrvc}
}

func (h *PlagiarismHttpHandler) RegisterRoutes(r chi.Router) {
	r.Post("/assignments/{assignmentId}/moss", h.SubmitMoss)
	r.Get("/assignments/{assignmentId}/moss", h.ViewMoss)
}

type MossResult struct {
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
	ReportURL string `json:"report_url,omitempty"`
	Staged    int    `json:"staged"`
}

func (h *PlagiarismHttpHandler) SubmitMoss(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	assignmentID, err := h.requireInstructor(r)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	res, err := h.bridge.Submit(r.Context(), assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, MossResult{
		OK:        res.OK,
		Reason:    res.Reason,
		ReportURL: res.ReportURL,
		Staged:    res.Staged,
	})
}

// ViewMoss serves the stored report page.
func (h *PlagiarismHttpHandler) ViewMoss(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	assignmentID, err := h.requireInstructor(r)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	page, ok, err := h.bridge.ReportPage(r.Context(), assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if !ok {
		httpjson.HandleError(logger, w, plagiarism.NewErrReportNotGenerated())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (h *PlagiarismHttpHandler) requireInstructor(r *http.Request) (int64, error) {
	claims, err := auth.RequireClaims(r.Context())
	if err != nil {
		return 0, err
	}
	assignmentID, err := httpjson.Int64URLParam(r, "assignmentId")
	if err != nil {
		return 0, err
	}
	if _, err := h.assignmentSrvc.RequireInstructor(r.Context(), claims.UserID, assignmentID); err != nil {
		return 0, err
	}
	return assignmentID, nil
}
