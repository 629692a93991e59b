package assignment

import (
	"context"

	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/srvcerror"
)

// RequireInstructor returns the assignment if the user teaches its course.
func (s *AssignmentSrvc) RequireInstructor(ctx context.Context, userID int64, assignmentID int64) (Assignment, error) {
	a, err := s.repo.Get(ctx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	ok, err := s.courses.IsInstructorOf(ctx, userID, a.CourseID)
	if err != nil {
		return Assignment{}, err
	}
	if !ok {
		return Assignment{}, srvcerror.ErrForbidden()
	}
	return a, nil
}

// RequireStudent returns the assignment and the user's student profile if they are enrolled.
func (s *AssignmentSrvc) RequireStudent(ctx context.Context, userID int64, assignmentID int64) (Assignment, course.Student, error) {
	a, err := s.repo.Get(ctx, assignmentID)
	if err != nil {
		return Assignment{}, course.Student{}, err
	}
	st, err := s.courses.RequireEnrolledStudent(ctx, userID, a.CourseID)
	if err != nil {
		return Assignment{}, course.Student{}, err
	}
	return a, st, nil
}

// RequireMember lets through the course instructor and enrolled students.
func (s *AssignmentSrvc) RequireMember(ctx context.Context, userID int64, assignmentID int64) (Assignment, error) {
	a, err := s.repo.Get(ctx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	ok, err := s.courses.IsInstructorOf(ctx, userID, a.CourseID)
	if err != nil {
		return Assignment{}, err
	}
	if ok {
		return a, nil
	}
	if _, err := s.courses.RequireEnrolledStudent(ctx, userID, a.CourseID); err != nil {
		return Assignment{}, err
	}
	return a, nil
}
