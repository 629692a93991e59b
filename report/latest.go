// Package report derives scores, lateness and per-student summaries from
// recorded submissions.
package report

import (
	"time"

	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/subm"
)

// Row is one enrolled student's standing on an assignment.
type Row struct {
	Student course.Student
	// Latest is nil if the student has not submitted.
	Latest           *subm.Submission
	Count            int
	Score            float64
	CorrectedDueDate time.Time
	Late             bool
}

// Latest pairs every student with their newest submission. Rows keep the
// order of students, submissions of other students are ignored.
func Latest(students []course.Student, submissions []subm.Submission) []Row {
	index := make(map[int64]int, len(students))
	rows := make([]Row, len(students))
	for i, st := range students {
		index[st.ID] = i
		rows[i].Student = st
	}
	for _, s := range submissions {
		i, ok := index[s.StudentID]
		if !ok {
			continue
		}
		rows[i].Count++
		if rows[i].Latest == nil || s.IsNewerThan(*rows[i].Latest) {
			s := s
			rows[i].Latest = &s
		}
	}
	return rows
}
