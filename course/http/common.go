package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/srvcerror"
)

type Course struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	CourseCode       string `json:"course_code"`
	EnrollKey        string `json:"enroll_key,omitempty"`
	MaxExtensionDays int    `json:"max_extension_days"`
}

type Student struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Firstname  string `json:"firstname"`
	Lastname   string `json:"lastname"`
	RollNumber string `json:"roll_number"`
}

func mapCourse(c course.Course, withKey bool) Course {
	res := Course{
		ID:               c.ID,
		Name:             c.Name,
		CourseCode:       c.CourseCode,
		MaxExtensionDays: c.MaxExtensionDays,
	}
	if withKey {
		res.EnrollKey = c.EnrollKey
	}
	return res
}

func mapStudent(s course.Student) Student {
	return Student{
		ID:         s.ID,
		Username:   s.Username,
		Email:      s.Email,
		Firstname:  s.Firstname,
		Lastname:   s.Lastname,
		RollNumber: s.RollNumber(),
	}
}

func courseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "courseId"), 10, 64)
	if err != nil {
		return 0, srvcerror.ErrInvalidRequest("course id must be an integer")
	}
	return id, nil
}
