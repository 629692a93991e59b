package main

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/report"
	"github.com/programme-lv/autograde/subm"
	"github.com/stretchr/testify/assert"
)

func TestRenderReport(t *testing.T) {
	due := time.Date(2024, 10, 10, 23, 59, 0, 0, time.UTC)
	rows := []report.Row{
		{
			Student:          course.Student{ID: 1, Email: "alice@uni.edu"},
			Latest:           &subm.Submission{ID: 3, Passed: 3, Failed: 1, PublishDate: due.Add(time.Hour)},
			Score:            15,
			CorrectedDueDate: due,
			Late:             true,
		},
		{Student: course.Student{ID: 2, Email: "bob@uni.edu"}, CorrectedDueDate: due},
	}
	out := renderReport(rows, 20)
	assert.Contains(t, out, "alice@uni.edu")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "15.00/20")
	assert.Contains(t, out, "2024-10-11 00:59:00")
	assert.Less(t, strings.Index(out, "alice"), strings.Index(out, "bob"))
}

func TestReportStyleMarksOnlyLateSubmissions(t *testing.T) {
	// second student is late, first and third are not
	style := reportStyle(map[int]bool{0: false, 1: true})
	red := lipgloss.Color("#e74c3c")

	assert.True(t, style(0, 1).GetBold())
	assert.NotEqual(t, red, style(1, 1).GetForeground())
	assert.Equal(t, red, style(2, 1).GetForeground())
	assert.NotEqual(t, red, style(2, 0).GetForeground())
	assert.NotEqual(t, red, style(3, 1).GetForeground())
}
