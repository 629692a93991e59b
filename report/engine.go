package report

import (
	"context"
	"math"

	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/extension"
	"github.com/programme-lv/autograde/subm"
)

type AssignmentSrvcFacade interface {
	Get(ctx context.Context, id int64) (assignment.Assignment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]assignment.Assignment, error)
}

type CourseSrvcFacade interface {
	GetCourse(ctx context.Context, id int64) (course.Course, error)
	ListStudents(ctx context.Context, courseID int64) ([]course.Student, error)
}

type SubmSrvcFacade interface {
	ListByAssignment(ctx context.Context, assignmentID int64) ([]subm.Submission, error)
}

type ExtensionSrvcFacade interface {
	ListForCourse(ctx context.Context, courseID int64) ([]extension.Grant, error)
}

type Engine struct {
	assignments AssignmentSrvcFacade
	courses     CourseSrvcFacade
	subms       SubmSrvcFacade
	extensions  ExtensionSrvcFacade
}

func NewEngine(
	assignments AssignmentSrvcFacade,
	courses CourseSrvcFacade,
	subms SubmSrvcFacade,
	extensions ExtensionSrvcFacade,
) *Engine {
	return &Engine{
		assignments: assignments,
		courses:     courses,
		subms:       subms,
		extensions:  extensions,
	}
}

type grantKey struct {
	studentID    int64
	assignmentID int64
}

func groupGrants(grants []extension.Grant) map[grantKey][]extension.Grant {
	res := make(map[grantKey][]extension.Grant)
	for _, g := range grants {
		k := grantKey{g.StudentID, g.AssignmentID}
		res[k] = append(res[k], g)
	}
	return res
}

// LatestSubmissions has one row per enrolled student, ordered by email.
func (e *Engine) LatestSubmissions(ctx context.Context, assignmentID int64) ([]Row, error) {
	a, err := e.assignments.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	students, err := e.courses.ListStudents(ctx, a.CourseID)
	if err != nil {
		return nil, err
	}
	grants, err := e.extensions.ListForCourse(ctx, a.CourseID)
	if err != nil {
		return nil, err
	}
	return e.assignmentRows(ctx, a, students, groupGrants(grants))
}

func (e *Engine) assignmentRows(
	ctx context.Context,
	a assignment.Assignment,
	students []course.Student,
	grants map[grantKey][]extension.Grant,
) ([]Row, error) {
	subms, err := e.subms.ListByAssignment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	rows := Latest(students, subms)
	for i := range rows {
		r := &rows[i]
		r.CorrectedDueDate = extension.CorrectedDueDate(a.DueDate, grants[grantKey{r.Student.ID, a.ID}])
		if r.Latest != nil {
			r.Score = r.Latest.Score(a.TotalPoints)
			r.Late = r.Latest.PublishDate.After(r.CorrectedDueDate)
		}
	}
	return rows, nil
}

type Summary struct {
	AssignmentID int64
	TotalPoints  int
	Enrolled     int
	Submitted    int
	Late         int
	// score fields are zero when nobody submitted
	MeanScore float64
	MaxScore  float64
	MinScore  float64
}

func Summarize(assignmentID int64, totalPoints int, rows []Row) Summary {
	sum := Summary{AssignmentID: assignmentID, TotalPoints: totalPoints, Enrolled: len(rows)}
	total := 0.0
	sum.MinScore = math.Inf(1)
	for _, r := range rows {
		if r.Latest == nil {
			continue
		}
		sum.Submitted++
		if r.Late {
			sum.Late++
		}
		total += r.Score
		sum.MaxScore = math.Max(sum.MaxScore, r.Score)
		sum.MinScore = math.Min(sum.MinScore, r.Score)
	}
	if sum.Submitted == 0 {
		sum.MinScore = 0
		return sum
	}
	sum.MeanScore = total / float64(sum.Submitted)
	return sum
}

func (e *Engine) Aggregate(ctx context.Context, assignmentID int64) (Summary, error) {
	a, err := e.assignments.Get(ctx, assignmentID)
	if err != nil {
		return Summary{}, err
	}
	rows, err := e.LatestSubmissions(ctx, assignmentID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(a.ID, a.TotalPoints, rows), nil
}

type StudentStat struct {
	Student        course.Student
	LateDaysLeft   int
	Submitted      int
	Late           int
	TotalScore     float64
	PossiblePoints int
}

// CourseStudentStats sums every student's latest scores over all course assignments.
func (e *Engine) CourseStudentStats(ctx context.Context, courseID int64) ([]StudentStat, error) {
	c, err := e.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	students, err := e.courses.ListStudents(ctx, courseID)
	if err != nil {
		return nil, err
	}
	assignments, err := e.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	grants, err := e.extensions.ListForCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	grouped := groupGrants(grants)

	stats := make([]StudentStat, len(students))
	byStudent := make(map[int64][]extension.Grant)
	for _, g := range grants {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}
	for i, st := range students {
		stats[i] = StudentStat{
			Student:      st,
			LateDaysLeft: extension.LateDaysLeft(c.MaxExtensionDays, byStudent[st.ID]),
		}
	}

	for _, a := range assignments {
		rows, err := e.assignmentRows(ctx, a, students, grouped)
		if err != nil {
			return nil, err
		}
		for i, r := range rows {
			stats[i].PossiblePoints += a.TotalPoints
			if r.Latest == nil {
				continue
			}
			stats[i].Submitted++
			stats[i].TotalScore += r.Score
			if r.Late {
				stats[i].Late++
			}
		}
	}
	return stats, nil
}
