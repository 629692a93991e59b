package course

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/programme-lv/autograde/logger"
	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/user"
	"github.com/programme-lv/autograde/validate"
)

const maxEnrollKeyAttempts = 5

type UserSrvcFacade interface {
	GetUserByID(ctx context.Context, id int64) (user.User, error)
}

type CourseSrvc struct {
	repo  Repo
	users UserSrvcFacade
}

func NewCourseSrvc(repo Repo, users UserSrvcFacade) *CourseSrvc {
	return &CourseSrvc{repo: repo, users: users}
}

// BecomeInstructor grants the instructor role. Granting it twice is a no-op.
func (s *CourseSrvc) BecomeInstructor(ctx context.Context, userID int64) (Instructor, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return Instructor{}, err
	}
	return s.repo.CreateInstructor(ctx, userID)
}

type CreateCourseParams struct {
	UserID           int64  `json:"-" validate:"required"`
	Name             string `json:"name" validate:"notblank,max=100"`
	CourseCode       string `json:"course_code" validate:"max=32"`
	MaxExtensionDays int    `json:"max_extension_days" validate:"gte=0"`
}

func (s *CourseSrvc) CreateCourse(ctx context.Context, p CreateCourseParams) (Course, error) {
	if err := validate.Struct(p); err != nil {
		return Course{}, err
	}
	instructor, err := s.repo.GetInstructorByUser(ctx, p.UserID)
	if err != nil {
		return Course{}, err
	}

	for attempt := 0; attempt < maxEnrollKeyAttempts; attempt++ {
		key, err := NewEnrollKey()
		if err != nil {
			return Course{}, srvcerror.ErrInternalSE().SetDebug(err)
		}
		c, err := s.repo.CreateCourse(ctx, Course{
			InstructorID:     instructor.ID,
			Name:             strings.TrimSpace(p.Name),
			CourseCode:       p.CourseCode,
			EnrollKey:        key,
			MaxExtensionDays: p.MaxExtensionDays,
		})
		if errors.Is(err, errEnrollKeyTaken) {
			logger.FromContext(ctx).Warn("enroll key collision, retrying", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return Course{}, err
		}
		logger.FromContext(ctx).Info("created course", "course_id", c.ID, "instructor_id", instructor.ID)
		return c, nil
	}
	return Course{}, srvcerror.ErrInternalSE().
		SetDebug(fmt.Errorf("failed to find a free enroll key in %d attempts", maxEnrollKeyAttempts))
}

func (s *CourseSrvc) GetCourse(ctx context.Context, id int64) (Course, error) {
	return s.repo.GetCourse(ctx, id)
}

func (s *CourseSrvc) ListInstructorCourses(ctx context.Context, userID int64) ([]Course, error) {
	instructor, err := s.repo.GetInstructorByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCoursesByInstructor(ctx, instructor.ID)
}

// Join enrolls the user in the course owning the key, creating their
// student profile on first use. Joining twice is a no-op.
func (s *CourseSrvc) Join(ctx context.Context, userID int64, enrollKey string) (Course, Student, error) {
	c, err := s.repo.GetCourseByEnrollKey(ctx, strings.ToUpper(strings.TrimSpace(enrollKey)))
	if err != nil {
		return Course{}, Student{}, err
	}

	st, err := s.repo.GetStudentByUser(ctx, userID)
	if srvcerror.HasCode(err, ErrCodeStudentNotFound) {
		st, err = s.createStudent(ctx, userID)
	}
	if err != nil {
		return Course{}, Student{}, err
	}

	if err := s.repo.Enroll(ctx, c.ID, st.ID); err != nil {
		return Course{}, Student{}, err
	}
	logger.FromContext(ctx).Info("student joined course", "course_id", c.ID, "student_id", st.ID)
	return c, st, nil
}

func (s *CourseSrvc) createStudent(ctx context.Context, userID int64) (Student, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return Student{}, err
	}
	pass, err := NewSubmissionPass()
	if err != nil {
		return Student{}, srvcerror.ErrInternalSE().SetDebug(err)
	}
	return s.repo.CreateStudent(ctx, Student{
		UserID:         u.ID,
		Email:          u.Email,
		Username:       u.Username,
		Firstname:      u.Firstname,
		Lastname:       u.Lastname,
		SubmissionPass: pass,
	})
}

func (s *CourseSrvc) ListStudents(ctx context.Context, courseID int64) ([]Student, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListStudents(ctx, courseID)
}

func (s *CourseSrvc) IsEnrolled(ctx context.Context, courseID int64, studentID int64) (bool, error) {
	return s.repo.IsEnrolled(ctx, courseID, studentID)
}

func (s *CourseSrvc) GetStudent(ctx context.Context, id int64) (Student, error) {
	return s.repo.GetStudent(ctx, id)
}

func (s *CourseSrvc) GetStudentByUser(ctx context.Context, userID int64) (Student, error) {
	return s.repo.GetStudentByUser(ctx, userID)
}

// IsInstructorOf reports whether the user owns the course.
func (s *CourseSrvc) IsInstructorOf(ctx context.Context, userID int64, courseID int64) (bool, error) {
	c, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return false, err
	}
	instructor, err := s.repo.GetInstructorByUser(ctx, userID)
	if srvcerror.HasCode(err, ErrCodeNotInstructor) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.InstructorID == instructor.ID, nil
}

// RequireInstructorOf is IsInstructorOf returning a forbidden error on false.
func (s *CourseSrvc) RequireInstructorOf(ctx context.Context, userID int64, courseID int64) error {
	ok, err := s.IsInstructorOf(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return srvcerror.ErrForbidden()
	}
	return nil
}

// RequireEnrolledStudent returns the user's student profile if they are enrolled in the course.
func (s *CourseSrvc) RequireEnrolledStudent(ctx context.Context, userID int64, courseID int64) (Student, error) {
	st, err := s.repo.GetStudentByUser(ctx, userID)
	if srvcerror.HasCode(err, ErrCodeStudentNotFound) {
		return Student{}, NewErrNotEnrolled()
	}
	if err != nil {
		return Student{}, err
	}
	ok, err := s.repo.IsEnrolled(ctx, courseID, st.ID)
	if err != nil {
		return Student{}, err
	}
	if !ok {
		return Student{}, NewErrNotEnrolled()
	}
	return st, nil
}
