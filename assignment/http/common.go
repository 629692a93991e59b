package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/srvcerror"
)

type Assignment struct {
	ID             int64     `json:"id"`
	CourseID       int64     `json:"course_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StudentTest    string    `json:"student_test"`
	AssignmentFile string    `json:"assignment_file"`
	InstructorTest string    `json:"instructor_test,omitempty"`
	TotalPoints    int       `json:"total_points"`
	Timeout        int       `json:"timeout"`
	OpenDate       time.Time `json:"open_date"`
	DueDate        time.Time `json:"due_date"`
	PublishDate    time.Time `json:"publish_date"`
}

// the hidden test name is only shown to instructors
func mapAssignment(a assignment.Assignment, instructor bool) Assignment {
	res := Assignment{
		ID:             a.ID,
		CourseID:       a.CourseID,
		Title:          a.Title,
		Description:    a.Description,
		StudentTest:    layout.Base(a.StudentTest),
		AssignmentFile: layout.Base(a.AssignmentFile),
		TotalPoints:    a.TotalPoints,
		Timeout:        a.Timeout,
		OpenDate:       a.OpenDate,
		DueDate:        a.DueDate,
		PublishDate:    a.PublishDate,
	}
	if instructor {
		res.InstructorTest = layout.Base(a.InstructorTest)
	}
	return res
}

type OtherFile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func formString(r *http.Request, field string) *string {
	if _, ok := r.MultipartForm.Value[field]; !ok {
		return nil
	}
	v := r.FormValue(field)
	return &v
}

func formInt(r *http.Request, field string) (*int, error) {
	s := formString(r, field)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return nil, srvcerror.ErrInvalidRequest(fmt.Sprintf("%s must be an integer", field))
	}
	return &v, nil
}

func formTime(r *http.Request, field string) (*time.Time, error) {
	s := formString(r, field)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, strings.TrimSpace(*s))
	if err != nil {
		return nil, srvcerror.ErrInvalidRequest(fmt.Sprintf("%s must be an RFC 3339 timestamp", field))
	}
	return &v, nil
}
