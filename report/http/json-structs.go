package http

import (
	"time"

	"github.com/programme-lv/autograde/report"
)

type ReportRow struct {
	StudentID        int64      `json:"student_id"`
	Email            string     `json:"email"`
	RollNumber       string     `json:"roll_number"`
	Firstname        string     `json:"firstname"`
	Lastname         string     `json:"lastname"`
	SubmissionID     *int64     `json:"submission_id"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	Submissions      int        `json:"submissions"`
	Passed           int        `json:"passed"`
	Failed           int        `json:"failed"`
	Score            float64    `json:"score"`
	CorrectedDueDate time.Time  `json:"corrected_due_date"`
	Late             bool       `json:"late"`
}

type Summary struct {
	AssignmentID int64   `json:"assignment_id"`
	TotalPoints  int     `json:"total_points"`
	Enrolled     int     `json:"enrolled"`
	Submitted    int     `json:"submitted"`
	Late         int     `json:"late"`
	MeanScore    float64 `json:"mean_score"`
	MaxScore     float64 `json:"max_score"`
	MinScore     float64 `json:"min_score"`
}

type StudentStat struct {
	StudentID      int64   `json:"student_id"`
	Email          string  `json:"email"`
	RollNumber     string  `json:"roll_number"`
	LateDaysLeft   int     `json:"late_days_left"`
	Submitted      int     `json:"submitted"`
	Late           int     `json:"late"`
	TotalScore     float64 `json:"total_score"`
	PossiblePoints int     `json:"possible_points"`
}

func mapRows(rows []report.Row) []ReportRow {
	res := make([]ReportRow, 0, len(rows))
	for _, r := range rows {
		row := ReportRow{
			StudentID:        r.Student.ID,
			Email:            r.Student.Email,
			RollNumber:       r.Student.RollNumber(),
			Firstname:        r.Student.Firstname,
			Lastname:         r.Student.Lastname,
			Submissions:      r.Count,
			Score:            r.Score,
			CorrectedDueDate: r.CorrectedDueDate,
			Late:             r.Late,
		}
		if r.Latest != nil {
			id := r.Latest.ID
			at := r.Latest.PublishDate
			row.SubmissionID = &id
			row.SubmittedAt = &at
			row.Passed = r.Latest.Passed
			row.Failed = r.Latest.Failed
		}
		res = append(res, row)
	}
	return res
}

func mapSummary(s report.Summary) Summary {
	return Summary{
		AssignmentID: s.AssignmentID,
		TotalPoints:  s.TotalPoints,
		Enrolled:     s.Enrolled,
		Submitted:    s.Submitted,
		Late:         s.Late,
		MeanScore:    s.MeanScore,
		MaxScore:     s.MaxScore,
		MinScore:     s.MinScore,
	}
}

func mapStats(stats []report.StudentStat) []StudentStat {
	res := make([]StudentStat, 0, len(stats))
	for _, s := range stats {
		res = append(res, StudentStat{
			StudentID:      s.Student.ID,
			Email:          s.Student.Email,
			RollNumber:     s.Student.RollNumber(),
			LateDaysLeft:   s.LateDaysLeft,
			Submitted:      s.Submitted,
			Late:           s.Late,
			TotalScore:     s.TotalScore,
			PossiblePoints: s.PossiblePoints,
		})
	}
	return res
}
