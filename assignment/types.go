package assignment

import (
	"context"
	"time"
)

const (
	DefaultTotalPoints = 25
	DefaultTimeout     = 3
)

// Assignment file fields hold blob keys.
type Assignment struct {
	ID             int64
	CourseID       int64
	Title          string
	Description    string
	InstructorTest string
	StudentTest    string
	AssignmentFile string
	TotalPoints    int
	Timeout        int
	OpenDate       time.Time
	DueDate        time.Time
	PublishDate    time.Time
}

type OtherFile struct {
	ID           int64
	AssignmentID int64
	File         string
}

type Repo interface {
	// Create fails with assignment_title_exists if the course already has the title.
	Create(ctx context.Context, a Assignment) (Assignment, error)
	Update(ctx context.Context, a Assignment) error
	Get(ctx context.Context, id int64) (Assignment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]Assignment, error)
	ListAll(ctx context.Context) ([]Assignment, error)

	AddOtherFile(ctx context.Context, f OtherFile) (OtherFile, error)
	// ListOtherFiles orders by insertion.
	ListOtherFiles(ctx context.Context, assignmentID int64) ([]OtherFile, error)
}
