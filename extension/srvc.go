package extension

import (
	"context"
	"time"

	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/keylock"
	"github.com/programme-lv/autograde/logger"
	"github.com/programme-lv/autograde/validate"
)

type CourseSrvcFacade interface {
	GetCourse(ctx context.Context, id int64) (course.Course, error)
}

type ExtensionSrvc struct {
	repo    Repo
	courses CourseSrvcFacade
	// one student's requests are checked against the allowance one at a time
	locks keylock.Locker[int64]
}

func NewExtensionSrvc(repo Repo, courses CourseSrvcFacade) *ExtensionSrvc {
	return &ExtensionSrvc{repo: repo, courses: courses}
}

type GrantParams struct {
	StudentID    int64 `json:"student_id" validate:"required"`
	AssignmentID int64 `json:"-" validate:"required"`
	CourseID     int64 `json:"-" validate:"required"`
	Days         int   `json:"days" validate:"gte=0"`
}

// Grant records an instructor grant. It is not capped by the course allowance.
func (s *ExtensionSrvc) Grant(ctx context.Context, p GrantParams) (Grant, error) {
	if err := validate.Struct(p); err != nil {
		return Grant{}, err
	}
	g, err := s.repo.Insert(ctx, Grant{
		StudentID:    p.StudentID,
		AssignmentID: p.AssignmentID,
		CourseID:     p.CourseID,
		Days:         p.Days,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return Grant{}, err
	}
	logger.FromContext(ctx).Info("granted extension",
		"student_id", p.StudentID, "assignment_id", p.AssignmentID, "days", p.Days)
	return g, nil
}

type RequestParams struct {
	StudentID    int64 `json:"-" validate:"required"`
	AssignmentID int64 `json:"-" validate:"required"`
	CourseID     int64 `json:"-" validate:"required"`
	Days         int   `json:"days"`
}

// Request lets a student spend their own late days on an assignment.
func (s *ExtensionSrvc) Request(ctx context.Context, p RequestParams) (Grant, error) {
	if err := validate.Struct(p); err != nil {
		return Grant{}, err
	}
	if p.Days < 1 {
		return Grant{}, newErrDaysInvalid()
	}

	unlock, err := s.locks.Lock(ctx, p.StudentID)
	if err != nil {
		return Grant{}, err
	}
	defer unlock()

	left, err := s.LateDaysLeft(ctx, p.StudentID, p.CourseID)
	if err != nil {
		return Grant{}, err
	}
	if p.Days > left {
		return Grant{}, newErrExceedsAllowance(left)
	}

	return s.Grant(ctx, GrantParams(p))
}

func (s *ExtensionSrvc) CorrectedDueDate(ctx context.Context, studentID int64, assignmentID int64, due time.Time) (time.Time, error) {
	grants, err := s.repo.ListForStudentAssignment(ctx, studentID, assignmentID)
	if err != nil {
		return time.Time{}, err
	}
	return CorrectedDueDate(due, grants), nil
}

func (s *ExtensionSrvc) LateDaysLeft(ctx context.Context, studentID int64, courseID int64) (int, error) {
	c, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	grants, err := s.repo.ListForStudentCourse(ctx, studentID, courseID)
	if err != nil {
		return 0, err
	}
	return LateDaysLeft(c.MaxExtensionDays, grants), nil
}

func (s *ExtensionSrvc) ListForCourse(ctx context.Context, courseID int64) ([]Grant, error) {
	return s.repo.ListForCourse(ctx, courseID)
}
