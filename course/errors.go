package course

import (
	"errors"
	"net/http"

	"github.com/programme-lv/autograde/srvcerror"
)

var errEnrollKeyTaken = errors.New("enroll key already taken")

const ErrCodeCourseNotFound = "course_not_found"

func newErrCourseNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeCourseNotFound,
		"course not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeInvalidEnrollKey = "invalid_enroll_key"

func newErrInvalidEnrollKey() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidEnrollKey,
		"no course matches this enrollment key",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeStudentNotFound = "student_not_found"

func newErrStudentNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeStudentNotFound,
		"student not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeNotInstructor = "not_instructor"

func newErrNotInstructor() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeNotInstructor,
		"only instructors can do this",
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeNotEnrolled = "not_enrolled"

func NewErrNotEnrolled() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeNotEnrolled,
		"you are not enrolled in this course",
	).SetHttpStatusCode(http.StatusForbidden)
}
