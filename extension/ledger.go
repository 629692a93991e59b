// Package extension keeps additive per-student, per-assignment extension grants.
package extension

import (
	"context"
	"time"
)

const day = 24 * time.Hour

type Grant struct {
	ID           int64
	StudentID    int64
	AssignmentID int64
	CourseID     int64
	Days         int
	CreatedAt    time.Time
}

// TotalDays sums the days over the grants, 0 for none.
func TotalDays(grants []Grant) int {
	total := 0
	for _, g := range grants {
		total += g.Days
	}
	return total
}

// CorrectedDueDate shifts the due date by every granted day.
func CorrectedDueDate(due time.Time, grants []Grant) time.Time {
	return due.Add(time.Duration(TotalDays(grants)) * day)
}

// LateDaysLeft is the course allowance minus what was granted. It is not clamped.
func LateDaysLeft(maxExtensionDays int, grants []Grant) int {
	return maxExtensionDays - TotalDays(grants)
}

type Repo interface {
	// Insert only appends, existing grants are never changed.
	Insert(ctx context.Context, g Grant) (Grant, error)
	ListForStudentAssignment(ctx context.Context, studentID int64, assignmentID int64) ([]Grant, error)
	ListForStudentCourse(ctx context.Context, studentID int64, courseID int64) ([]Grant, error)
	ListForCourse(ctx context.Context, courseID int64) ([]Grant, error)
}
