package http

import (
	"time"

	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/subm"
)

type Submission struct {
	ID           int64     `json:"id"`
	AssignmentID int64     `json:"assignment_id"`
	Filename     string    `json:"filename"`
	Passed       int       `json:"passed"`
	Failed       int       `json:"failed"`
	Score        float64   `json:"score"`
	PublishDate  time.Time `json:"publish_date"`
}

func mapSubmission(s subm.Submission, totalPoints int) Submission {
	return Submission{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		Filename:     layout.Base(s.File),
		Passed:       s.Passed,
		Failed:       s.Failed,
		Score:        s.Score(totalPoints),
		PublishDate:  s.PublishDate,
	}
}

// runner script payload
type resultRequest struct {
	SubmissionID int64  `json:"submission_id"`
	Passed       int    `json:"passed"`
	Failed       int    `json:"failed"`
	Pass         string `json:"submission_pass"`
}
