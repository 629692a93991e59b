package subm

import (
	"context"
	"errors"
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

const submColumns = `id, student_id, assignment_id, submission_file, passed, failed, publish_date`

func scanSubmission(row pgx.Row) (Submission, error) {
	var s Submission
	err := row.Scan(&s.ID, &s.StudentID, &s.AssignmentID, &s.File, &s.Passed, &s.Failed, &s.PublishDate)
	return s, err
}

func (r *PgRepo) Create(ctx context.Context, s Submission) (Submission, error) {
	created, err := scanSubmission(r.pool.QueryRow(ctx, `
		INSERT INTO submissions (student_id, assignment_id, submission_file, passed, failed, publish_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+submColumns,
		s.StudentID, s.AssignmentID, s.File, s.Passed, s.Failed, s.PublishDate))
	if err != nil {
		return Submission{}, fmt.Errorf("failed to insert submission: %w", err)
	}
	return created, nil
}

func (r *PgRepo) Get(ctx context.Context, id int64) (Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx,
		`SELECT `+submColumns+` FROM submissions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, newErrSubmissionNotFound().SetDebug(fmt.Errorf("submission %d not found", id))
	}
	if err != nil {
		return Submission{}, fmt.Errorf("failed to select submission: %w", err)
	}
	return s, nil
}

func (r *PgRepo) SetResult(ctx context.Context, id int64, passed int, failed int) (Submission, error) {
	s, err := scanSubmission(r.pool.QueryRow(ctx, `
		UPDATE submissions SET passed = $2, failed = $3 WHERE id = $1
		RETURNING `+submColumns, id, passed, failed))
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, newErrSubmissionNotFound().SetDebug(fmt.Errorf("submission %d not found", id))
	}
	if err != nil {
		return Submission{}, fmt.Errorf("failed to update submission result: %w", err)
	}
	return s, nil
}

func (r *PgRepo) list(ctx context.Context, where string, args ...any) ([]Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submColumns+` FROM submissions WHERE `+where+` ORDER BY publish_date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Submission, error) {
		return scanSubmission(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan submissions: %w", err)
	}
	return res, nil
}

func (r *PgRepo) ListByAssignment(ctx context.Context, assignmentID int64) ([]Submission, error) {
	return r.list(ctx, "assignment_id = $1", assignmentID)
}

func (r *PgRepo) ListByStudentAssignment(ctx context.Context, studentID int64, assignmentID int64) ([]Submission, error) {
	return r.list(ctx, "student_id = $1 AND assignment_id = $2", studentID, assignmentID)
}
