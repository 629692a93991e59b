package http

import (
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/subm"
	"github.com/programme-lv/autograde/user/auth"
)

func (h *SubmHttpHandler) PostSubmission(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	claims, err := auth.RequireClaims(r.Context())
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	assignmentID, err := httpjson.Int64URLParam(r, "assignmentId")
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	a, student, err := h.assignmentSrvc.RequireStudent(r.Context(), claims.UserID, assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if err := httpjson.ParseMultipart(r); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	filename, content, _, err := httpjson.FormFile(r, "file", true)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	s, err := h.recorder.Submit(r.Context(), subm.SubmitParams{
		StudentID:    student.ID,
		AssignmentID: a.ID,
		Filename:     filename,
		Content:      content,
	})
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapSubmission(s, a.TotalPoints))
}

func (h *SubmHttpHandler) ListMySubmissions(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	claims, err := auth.RequireClaims(r.Context())
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	assignmentID, err := httpjson.Int64URLParam(r, "assignmentId")
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	a, student, err := h.assignmentSrvc.RequireStudent(r.Context(), claims.UserID, assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	subms, err := h.recorder.ListByStudentAssignment(r.Context(), student.ID, a.ID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	res := make([]Submission, 0, len(subms))
	for _, s := range subms {
		res = append(res, mapSubmission(s, a.TotalPoints))
	}
	httpjson.WriteSuccessJson(w, res)
}

// PostResult is called by the runner script once the tests of a submission finish.
func (h *SubmHttpHandler) PostResult(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	var req resultRequest
	if err := httpjson.DecodeJson(r, &req); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	err := h.recorder.RecordResultWithPass(r.Context(), req.Pass, subm.ResultParams{
		SubmissionID: req.SubmissionID,
		Passed:       req.Passed,
		Failed:       req.Failed,
	})
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	s, err := h.recorder.Get(r.Context(), req.SubmissionID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	a, err := h.assignmentSrvc.Get(r.Context(), s.AssignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	httpjson.WriteSuccessJson(w, mapSubmission(s, a.TotalPoints))
}
