package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/autograde/pgdb"
)

// unique on (course_id, title slug)
const titleConstraint = "assignments_course_slug_key"

type PgRepo struct {
	pool *pgxpool.Pool
}

func NewPgRepo(pool *pgxpool.Pool) *PgRepo {
	return &PgRepo{pool: pool}
}

const assignmentColumns = `id, course_id, title, description, instructor_test, student_test,
	assignment_file, total_points, timeout, open_date, due_date, publish_date`

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &a.InstructorTest, &a.StudentTest,
		&a.AssignmentFile, &a.TotalPoints, &a.Timeout, &a.OpenDate, &a.DueDate, &a.PublishDate)
	return a, err
}

func (r *PgRepo) Create(ctx context.Context, a Assignment) (Assignment, error) {
	created, err := scanAssignment(r.pool.QueryRow(ctx, `
		INSERT INTO assignments (course_id, title, description, instructor_test, student_test,
			assignment_file, total_points, timeout, open_date, due_date, publish_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+assignmentColumns,
		a.CourseID, a.Title, a.Description, a.InstructorTest, a.StudentTest,
		a.AssignmentFile, a.TotalPoints, a.Timeout, a.OpenDate, a.DueDate, a.PublishDate))
	if err != nil {
		if constraint, ok := pgdb.UniqueViolation(err); ok && constraint == titleConstraint {
			return Assignment{}, newErrAssignmentTitleExists().SetDebug(err)
		}
		return Assignment{}, fmt.Errorf("failed to insert assignment: %w", err)
	}
	return created, nil
}

func (r *PgRepo) Update(ctx context.Context, a Assignment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignments SET title = $2, description = $3, instructor_test = $4, student_test = $5,
			assignment_file = $6, total_points = $7, timeout = $8, open_date = $9, due_date = $10
		WHERE id = $1`,
		a.ID, a.Title, a.Description, a.InstructorTest, a.StudentTest,
		a.AssignmentFile, a.TotalPoints, a.Timeout, a.OpenDate, a.DueDate)
	if err != nil {
		if constraint, ok := pgdb.UniqueViolation(err); ok && constraint == titleConstraint {
			return newErrAssignmentTitleExists().SetDebug(err)
		}
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return newErrAssignmentNotFound()
	}
	return nil
}

func (r *PgRepo) Get(ctx context.Context, id int64) (Assignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, newErrAssignmentNotFound().SetDebug(fmt.Errorf("assignment %d not found", id))
	}
	if err != nil {
		return Assignment{}, fmt.Errorf("failed to select assignment: %w", err)
	}
	return a, nil
}

func (r *PgRepo) list(ctx context.Context, query string, args ...any) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Assignment, error) {
		return scanAssignment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan assignments: %w", err)
	}
	return res, nil
}

func (r *PgRepo) ListByCourse(ctx context.Context, courseID int64) ([]Assignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE course_id = $1 ORDER BY id`, courseID)
}

func (r *PgRepo) ListAll(ctx context.Context) ([]Assignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY id`)
}

func (r *PgRepo) AddOtherFile(ctx context.Context, f OtherFile) (OtherFile, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO other_files (assignment_id, file) VALUES ($1, $2) RETURNING id`,
		f.AssignmentID, f.File).Scan(&f.ID)
	if err != nil {
		return OtherFile{}, fmt.Errorf("failed to insert other file: %w", err)
	}
	return f, nil
}

func (r *PgRepo) ListOtherFiles(ctx context.Context, assignmentID int64) ([]OtherFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assignment_id, file FROM other_files WHERE assignment_id = $1 ORDER BY id`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list other files: %w", err)
	}
	res, err := pgx.CollectRows(rows, pgx.RowToStructByPos[OtherFile])
	if err != nil {
		return nil, fmt.Errorf("failed to scan other files: %w", err)
	}
	return res, nil
}
