package course

import (
	"context"
	"strings"
)

type Course struct {
	ID               int64
	InstructorID     int64
	Name             string
	CourseCode       string
	EnrollKey        string
	MaxExtensionDays int
}

type Instructor struct {
	ID     int64
	UserID int64
}

type Student struct {
	ID             int64
	UserID         int64
	Email          string
	Username       string
	Firstname      string
	Lastname       string
	EmailConfirmed bool
	// SubmissionPass authenticates the runner script reporting results for this student.
	SubmissionPass string
}

// RollNumber is the local part of the student's email address.
func (s Student) RollNumber() string {
	if i := strings.Index(s.Email, "@"); i >= 0 {
		return s.Email[:i]
	}
	return s.Email
}

type Repo interface {
	// CreateInstructor returns the existing instructor if the user already is one.
	CreateInstructor(ctx context.Context, userID int64) (Instructor, error)
	GetInstructorByUser(ctx context.Context, userID int64) (Instructor, error)

	// CreateCourse fails with errEnrollKeyTaken if the key is in use.
	CreateCourse(ctx context.Context, c Course) (Course, error)
	GetCourse(ctx context.Context, id int64) (Course, error)
	GetCourseByEnrollKey(ctx context.Context, key string) (Course, error)
	ListCoursesByInstructor(ctx context.Context, instructorID int64) ([]Course, error)

	// CreateStudent returns the existing student if the user already is one.
	CreateStudent(ctx context.Context, s Student) (Student, error)
	GetStudent(ctx context.Context, id int64) (Student, error)
	GetStudentByUser(ctx context.Context, userID int64) (Student, error)

	// Enroll is idempotent.
	Enroll(ctx context.Context, courseID int64, studentID int64) error
	IsEnrolled(ctx context.Context, courseID int64, studentID int64) (bool, error)
	// ListStudents orders by email.
	ListStudents(ctx context.Context, courseID int64) ([]Student, error)
}
