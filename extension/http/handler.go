package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/extension"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user/auth"
)

type ExtensionHttpHandler struct {
	extensionSrvc  *extension.ExtensionSrvc
	assignmentSrvc *assignment.AssignmentSrvc
	courseSrvc     *course.CourseSrvc
}

func NewExtensionHttpHandler(
	extensionSrvc *extension.ExtensionSrvc,
	assignmentSrvc *assignment.AssignmentSrvc,
	courseSrvc *course.CourseSrvc,
) *ExtensionHttpHandler {
	return &ExtensionHttpHandler{
		extensionSrvc:  extensionSrvc,
		assignmentSrvc: assignmentSrvc,
		courseSrvc:     courseSrvc,
	}
}

func (h *ExtensionHttpHandler) RegisterRoutes(r chi.Router) {
	r.Post("/assignments/{assignmentId}/extensions", h.GrantExtension)
	r.Post("/assignments/{assignmentId}/extension-requests", h.RequestExtension)
	r.Get("/assignments/{assignmentId}/due-date", h.GetDueDate)
}

type Grant struct {
	ID           int64     `json:"id"`
	StudentID    int64     `json:"student_id"`
	AssignmentID int64     `json:"assignment_id"`
	Days         int       `json:"days"`
	CreatedAt    time.Time `json:"created_at"`
}

func mapGrant(g extension.Grant) Grant {
	return Grant{
		ID:           g.ID,
		StudentID:    g.StudentID,
		AssignmentID: g.AssignmentID,
		Days:         g.Days,
		CreatedAt:    g.CreatedAt,
	}
}

type grantRequest struct {
	StudentID int64 `json:"student_id"`
	Days      int   `json:"days"`
}

func (h *ExtensionHttpHandler) GrantExtension(w http.ResponseWriter, r *http.Request) {
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
	a, err := h.assignmentSrvc.RequireInstructor(r.Context(), claims.UserID, assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	var req grantRequest
	if err := httpjson.DecodeJson(r, &req); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	enrolled, err := h.courseSrvc.IsEnrolled(r.Context(), a.CourseID, req.StudentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if !enrolled {
		httpjson.HandleError(logger, w, course.NewErrNotEnrolled())
		return
	}

	g, err := h.extensionSrvc.Grant(r.Context(), extension.GrantParams{
		StudentID:    req.StudentID,
		AssignmentID: a.ID,
		CourseID:     a.CourseID,
		Days:         req.Days,
	})
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapGrant(g))
}

type extensionRequest struct {
	Days int `json:"days"`
}

func (h *ExtensionHttpHandler) RequestExtension(w http.ResponseWriter, r *http.Request) {
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
	a, st, err := h.assignmentSrvc.RequireStudent(r.Context(), claims.UserID, assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	var req extensionRequest
	if err := httpjson.DecodeJson(r, &req); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	g, err := h.extensionSrvc.Request(r.Context(), extension.RequestParams{
		StudentID:    st.ID,
		AssignmentID: a.ID,
		CourseID:     a.CourseID,
		Days:         req.Days,
	})
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapGrant(g))
}

type DueDate struct {
	DueDate          time.Time `json:"due_date"`
	CorrectedDueDate time.Time `json:"corrected_due_date"`
	LateDaysLeft     int       `json:"late_days_left"`
}

// GetDueDate shows a student their own extended deadline.
func (h *ExtensionHttpHandler) GetDueDate(w http.ResponseWriter, r *http.Request) {
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
	a, st, err := h.assignmentSrvc.RequireStudent(r.Context(), claims.UserID, assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	corrected, err := h.extensionSrvc.CorrectedDueDate(r.Context(), st.ID, a.ID, a.DueDate)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	left, err := h.extensionSrvc.LateDaysLeft(r.Context(), st.ID, a.CourseID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, DueDate{
		DueDate:          a.DueDate,
		CorrectedDueDate: corrected,
		LateDaysLeft:     left,
	})
}
