package subm

import (
	"context"
	"time"
)

// Submission File is the blob key of the uploaded zip.
type Submission struct {
	ID           int64
	StudentID    int64
	AssignmentID int64
	File         string
	Passed       int
	Failed       int
	PublishDate  time.Time
}

// Score scales the passed share of tests to totalPoints. No tests run means 0.
func Score(passed int, failed int, totalPoints int) float64 {
	if passed+failed == 0 {
		return 0
	}
	return float64(passed) * float64(totalPoints) / float64(passed+failed)
}

func (s Submission) Score(totalPoints int) float64 {
	return Score(s.Passed, s.Failed, totalPoints)
}

// IsNewerThan orders by publish date, ties broken by id.
func (s Submission) IsNewerThan(o Submission) bool {
	if !s.PublishDate.Equal(o.PublishDate) {
		return s.PublishDate.After(o.PublishDate)
	}
	return s.ID > o.ID
}

// GradingRequest is what the external grading service needs to run a submission.
type GradingRequest struct {
	SubmissionID  int64
	AssignmentID  int64
	StudentID     int64
	SubmissionKey string
	BundleKey     string
	Timeout       int
}

type Repo interface {
	Create(ctx context.Context, s Submission) (Submission, error)
	Get(ctx context.Context, id int64) (Submission, error)
	SetResult(ctx context.Context, id int64, passed int, failed int) (Submission, error)
	// ListByAssignment orders by publish date then id.
	ListByAssignment(ctx context.Context, assignmentID int64) ([]Submission, error)
	ListByStudentAssignment(ctx context.Context, studentID int64, assignmentID int64) ([]Submission, error)
}
