package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user/auth"
)

func (h *ReportHttpHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	assignmentID, err := h.requireInstructor(r)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	// other waiters share the result, so it must outlive this request
	res, err := h.cached(fmt.Sprintf("report:%d", assignmentID), func() (any, error) {
		rows, err := h.engine.LatestSubmissions(context.WithoutCancel(r.Context()), assignmentID)
		if err != nil {
			return nil, err
		}
		return mapRows(rows), nil
	})
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, res)
}

func (h *ReportHttpHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	assignmentID, err := h.requireInstructor(r)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	res, err := h.cached(fmt.Sprintf("aggregate:%d", assignmentID), func() (any, error) {
		sum, err := h.engine.Aggregate(context.WithoutCancel(r.Context()), assignmentID)
		if err != nil {
			return nil, err
		}
		return mapSummary(sum), nil
	})
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, res)
}

func (h *ReportHttpHandler) GetStudentStats(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	claims, err := auth.RequireClaims(r.Context())
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	courseID, err := httpjson.Int64URLParam(r, "courseId")
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if err := h.courseSrvc.RequireInstructorOf(r.Context(), claims.UserID, courseID); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	res, err := h.cached(fmt.Sprintf("stats:%d", courseID), func() (any, error) {
		stats, err := h.engine.CourseStudentStats(context.WithoutCancel(r.Context()), courseID)
		if err != nil {
			return nil, err
		}
		return mapStats(stats), nil
	})
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, res)
}

func (h *ReportHttpHandler) requireInstructor(r *http.Request) (int64, error) {
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
