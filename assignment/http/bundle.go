package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user/auth"
)

// DownloadBundle serves the zip the runner needs to grade a submission locally.
func (h *AssignmentHttpHandler) DownloadBundle(w http.ResponseWriter, r *http.Request) {
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
	if _, err := h.assignmentSrvc.RequireMember(r.Context(), claims.UserID, assignmentID); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	name, content, err := h.assignmentSrvc.Bundle(r.Context(), assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		logger.Warn("failed to write bundle", "error", err)
	}
}
