package http

import (
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/user/auth"
)

func (h *AssignmentHttpHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
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
	if _, err := h.assignmentSrvc.RequireInstructor(r.Context(), claims.UserID, assignmentID); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if err := httpjson.ParseMultipart(r); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	params := assignment.UpdateParams{
		AssignmentID: assignmentID,
		Title:        formString(r, "title"),
		Description:  formString(r, "description"),
	}
	if params.InstructorTest, err = readUpload(r, "instructor_test", false); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if params.StudentTest, err = readUpload(r, "student_test", false); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if params.AssignmentFile, err = readUpload(r, "assignment_file", false); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if params.TotalPoints, err = formInt(r, "total_points"); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if params.Timeout, err = formInt(r, "timeout"); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if params.OpenDate, err = formTime(r, "open_date"); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if params.DueDate, err = formTime(r, "due_date"); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	a, err := h.assignmentSrvc.Update(r.Context(), params)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapAssignment(a, true))
}

func (h *AssignmentHttpHandler) AttachFile(w http.ResponseWriter, r *http.Request) {
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
	if _, err := h.assignmentSrvc.RequireInstructor(r.Context(), claims.UserID, assignmentID); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if err := httpjson.ParseMultipart(r); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	upload, err := readUpload(r, "file", true)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	of, err := h.assignmentSrvc.AttachFile(r.Context(), assignmentID, *upload)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, OtherFile{ID: of.ID, Name: layout.Base(of.File)})
}
