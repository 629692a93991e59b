package http

import (
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/httpjson"
	"github.com/programme-lv/autograde/user/auth"
)

func readUpload(r *http.Request, field string, required bool) (*assignment.FileUpload, error) {
	name, content, ok, err := httpjson.FormFile(r, field, required)
	if err != nil || !ok {
		return nil, err
	}
	return &assignment.FileUpload{Name: name, Content: content}, nil
}

func (h *AssignmentHttpHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
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
	if err := httpjson.ParseMultipart(r); err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	params := assignment.CreateParams{
		CourseID:    courseID,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	files := []struct {
		field string
		dst   *assignment.FileUpload
	}{
		{"instructor_test", &params.InstructorTest},
		{"student_test", &params.StudentTest},
		{"assignment_file", &params.AssignmentFile},
	}
	for _, f := range files {
		upload, err := readUpload(r, f.field, true)
		if err != nil {
			httpjson.HandleError(logger, w, err)
			return
		}
		*f.dst = *upload
	}

	points, err := formInt(r, "total_points")
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if points != nil {
		params.TotalPoints = *points
	}
	timeout, err := formInt(r, "timeout")
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if timeout != nil {
		params.Timeout = *timeout
	}
	openDate, err := formTime(r, "open_date")
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if openDate != nil {
		params.OpenDate = *openDate
	}
	dueDate, err := formTime(r, "due_date")
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if dueDate != nil {
		params.DueDate = *dueDate
	}

	a, err := h.assignmentSrvc.Create(r.Context(), params)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapAssignment(a, true))
}

func (h *AssignmentHttpHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
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
	instructor, err := h.courseSrvc.IsInstructorOf(r.Context(), claims.UserID, courseID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	if !instructor {
		if _, err := h.courseSrvc.RequireEnrolledStudent(r.Context(), claims.UserID, courseID); err != nil {
			httpjson.HandleError(logger, w, err)
			return
		}
	}

	assignments, err := h.assignmentSrvc.ListByCourse(r.Context(), courseID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	res := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		res = append(res, mapAssignment(a, instructor))
	}
	httpjson.WriteSuccessJson(w, res)
}

func (h *AssignmentHttpHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
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
	a, err := h.assignmentSrvc.RequireMember(r.Context(), claims.UserID, assignmentID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}
	instructor, err := h.courseSrvc.IsInstructorOf(r.Context(), claims.UserID, a.CourseID)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapAssignment(a, instructor))
}
