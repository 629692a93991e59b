package extension

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepo struct {
	pool *pgxpool.Pool
}

func NewPgRepo(pool *pgxpool.Pool) *PgRepo {
	return &PgRepo{pool: pool}
}

// course id is not stored, it is derived from the assignment
const grantSelect = `
	SELECT e.id, e.student_id, e.assignment_id, a.course_id, e.days, e.created_at
	FROM assignment_extensions e JOIN assignments a ON a.id = e.assignment_id`

func (r *PgRepo) Insert(ctx context.Context, g Grant) (Grant, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO assignment_extensions (assignment_id, student_id, days, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		g.AssignmentID, g.StudentID, g.Days, g.CreatedAt).Scan(&g.ID)
	if err != nil {
		return Grant{}, fmt.Errorf("failed to insert extension: %w", err)
	}
	return g, nil
}

func (r *PgRepo) list(ctx context.Context, where string, args ...any) ([]Grant, error) {
	rows, err := r.pool.Query(ctx, grantSelect+" WHERE "+where+" ORDER BY e.id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Grant, error) {
		var g Grant
		err := row.Scan(&g.ID, &g.StudentID, &g.AssignmentID, &g.CourseID, &g.Days, &g.CreatedAt)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan extensions: %w", err)
	}
	return res, nil
}

func (r *PgRepo) ListForStudentAssignment(ctx context.Context, studentID int64, assignmentID int64) ([]Grant, error) {
	return r.list(ctx, "e.student_id = $1 AND e.assignment_id = $2", studentID, assignmentID)
}

func (r *PgRepo) ListForStudentCourse(ctx context.Context, studentID int64, courseID int64) ([]Grant, error) {
	return r.list(ctx, "e.student_id = $1 AND a.course_id = $2", studentID, courseID)
}

func (r *PgRepo) ListForCourse(ctx context.Context, courseID int64) ([]Grant, error) {
	return r.list(ctx, "a.course_id = $1", courseID)
}
