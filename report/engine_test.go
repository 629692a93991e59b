package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/extension"
	"github.com/programme-lv/autograde/report"
	"github.com/programme-lv/autograde/subm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var due = time.Date(2024, 10, 10, 23, 59, 0, 0, time.UTC)

var (
	alice = course.Student{ID: 1, Email: "alice@uni.edu"}
	bob   = course.Student{ID: 2, Email: "bob@uni.edu"}
	carol = course.Student{ID: 3, Email: "carol@uni.edu"}
)

type fixture struct {
	assignments []assignment.Assignment
	subms       []subm.Submission
	grants      []extension.Grant
}

func (f *fixture) Get(ctx context.Context, id int64) (assignment.Assignment, error) {
	for _, a := range f.assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return assignment.Assignment{}, assert.AnError
}

func (f *fixture) ListByCourse(ctx context.Context, courseID int64) ([]assignment.Assignment, error) {
	return f.assignments, nil
}

func (f *fixture) GetCourse(ctx context.Context, id int64) (course.Course, error) {
	return course.Course{ID: id, MaxExtensionDays: 5}, nil
}

func (f *fixture) ListStudents(ctx context.Context, courseID int64) ([]course.Student, error) {
	return []course.Student{alice, bob, carol}, nil
}

func (f *fixture) ListByAssignment(ctx context.Context, assignmentID int64) ([]subm.Submission, error) {
	var res []subm.Submission
	for _, s := range f.subms {
		if s.AssignmentID == assignmentID {
			res = append(res, s)
		}
	}
	return res, nil
}

func (f *fixture) ListForCourse(ctx context.Context, courseID int64) ([]extension.Grant, error) {
	return f.grants, nil
}

func newFixture() *fixture {
	return &fixture{
		assignments: []assignment.Assignment{
			{ID: 10, CourseID: 1, TotalPoints: 25, DueDate: due},
			{ID: 11, CourseID: 1, TotalPoints: 10, DueDate: due.Add(7 * 24 * time.Hour)},
		},
		subms: []subm.Submission{
			{ID: 1, StudentID: 1, AssignmentID: 10, Passed: 1, Failed: 4, PublishDate: due.Add(-48 * time.Hour)},
			{ID: 2, StudentID: 1, AssignmentID: 10, Passed: 4, Failed: 1, PublishDate: due.Add(-time.Hour)},
			// bob submits two days late but holds a three day extension
			{ID: 3, StudentID: 2, AssignmentID: 10, Passed: 5, Failed: 0, PublishDate: due.Add(48 * time.Hour)},
			{ID: 4, StudentID: 1, AssignmentID: 11, Passed: 2, Failed: 2, PublishDate: due.Add(30 * 24 * time.Hour)},
		},
		grants: []extension.Grant{
			{StudentID: 2, AssignmentID: 10, CourseID: 1, Days: 1},
			{StudentID: 2, AssignmentID: 10, CourseID: 1, Days: 2},
			{StudentID: 3, AssignmentID: 11, CourseID: 1, Days: 0},
		},
	}
}

func newEngine(f *fixture) *report.Engine {
	return report.NewEngine(f, f, f, f)
}

func TestLatestPicksNewestAndKeepsOrder(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := report.Latest([]course.Student{alice, bob}, []subm.Submission{
		{ID: 5, StudentID: 2, PublishDate: at},
		{ID: 6, StudentID: 1, PublishDate: at},
		{ID: 7, StudentID: 1, PublishDate: at},
		{ID: 8, StudentID: 99, PublishDate: at.Add(time.Hour)},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, alice.ID, rows[0].Student.ID)
	require.NotNil(t, rows[0].Latest)
	assert.Equal(t, int64(7), rows[0].Latest.ID)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, int64(5), rows[1].Latest.ID)

	rows = report.Latest([]course.Student{carol}, nil)
	assert.Nil(t, rows[0].Latest)
	assert.Zero(t, rows[0].Count)
}

func TestLatestSubmissions(t *testing.T) {
	rows, err := newEngine(newFixture()).LatestSubmissions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(2), rows[0].Latest.ID)
	assert.Equal(t, 20.0, rows[0].Score)
	assert.False(t, rows[0].Late)
	assert.Equal(t, due, rows[0].CorrectedDueDate)

	assert.Equal(t, 25.0, rows[1].Score)
	assert.Equal(t, due.Add(3*24*time.Hour), rows[1].CorrectedDueDate)
	assert.False(t, rows[1].Late)

	assert.Nil(t, rows[2].Latest)
	assert.Zero(t, rows[2].Score)
}

func TestAggregate(t *testing.T) {
	sum, err := newEngine(newFixture()).Aggregate(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Enrolled)
	assert.Equal(t, 2, sum.Submitted)
	assert.Equal(t, 0, sum.Late)
	assert.Equal(t, 22.5, sum.MeanScore)
	assert.Equal(t, 25.0, sum.MaxScore)
	assert.Equal(t, 20.0, sum.MinScore)

	empty := report.Summarize(1, 25, []report.Row{{Student: carol}})
	assert.Zero(t, empty.MinScore)
	assert.Zero(t, empty.MeanScore)
}

func TestCourseStudentStats(t *testing.T) {
	stats, err := newEngine(newFixture()).CourseStudentStats(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, 2, stats[0].Submitted)
	assert.Equal(t, 1, stats[0].Late)
	assert.Equal(t, 25.0, stats[0].TotalScore)
	assert.Equal(t, 35, stats[0].PossiblePoints)
	assert.Equal(t, 5, stats[0].LateDaysLeft)

	assert.Equal(t, 2, stats[1].LateDaysLeft)
	assert.Equal(t, 1, stats[1].Submitted)

	assert.Equal(t, 5, stats[2].LateDaysLeft)
	assert.Zero(t, stats[2].Submitted)
}
