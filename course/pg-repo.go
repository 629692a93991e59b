package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/programme-lv/autograde/pgdb"
)

type PgRepo struct {
	pool *pgxpool.Pool
}

func NewPgRepo(pool *pgxpool.Pool) *PgRepo {
	return &PgRepo{pool: pool}
}

func (r *PgRepo) CreateInstructor(ctx context.Context, userID int64) (Instructor, error) {
	var in Instructor
	err := r.pool.QueryRow(ctx, `
		INSERT INTO instructors (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id`, userID).Scan(&in.ID, &in.UserID)
	if err != nil {
		return Instructor{}, fmt.Errorf("failed to upsert instructor: %w", err)
	}
	return in, nil
}

func (r *PgRepo) GetInstructorByUser(ctx context.Context, userID int64) (Instructor, error) {
	var in Instructor
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id FROM instructors WHERE user_id = $1`, userID).Scan(&in.ID, &in.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Instructor{}, newErrNotInstructor()
	}
	if err != nil {
		return Instructor{}, fmt.Errorf("failed to select instructor: %w", err)
	}
	return in, nil
}

const courseColumns = `id, instructor_id, name, course_code, enroll_key, max_extension_days`

func scanCourse(row pgx.Row) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.InstructorID, &c.Name, &c.CourseCode, &c.EnrollKey, &c.MaxExtensionDays)
	return c, err
}

func (r *PgRepo) CreateCourse(ctx context.Context, c Course) (Course, error) {
	created, err := scanCourse(r.pool.QueryRow(ctx, `
		INSERT INTO courses (instructor_id, name, course_code, enroll_key, max_extension_days)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+courseColumns,
		c.InstructorID, c.Name, c.CourseCode, c.EnrollKey, c.MaxExtensionDays))
	if err != nil {
		if constraint, ok := pgdb.UniqueViolation(err); ok && constraint == "courses_enroll_key_key" {
			return Course{}, errEnrollKeyTaken
		}
		return Course{}, fmt.Errorf("failed to insert course: %w", err)
	}
	return created, nil
}

func (r *PgRepo) GetCourse(ctx context.Context, id int64) (Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, newErrCourseNotFound().SetDebug(fmt.Errorf("course %d not found", id))
	}
	if err != nil {
		return Course{}, fmt.Errorf("failed to select course: %w", err)
	}
	return c, nil
}

func (r *PgRepo) GetCourseByEnrollKey(ctx context.Context, key string) (Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE enroll_key = $1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, newErrInvalidEnrollKey()
	}
	if err != nil {
		return Course{}, fmt.Errorf("failed to select course by enroll key: %w", err)
	}
	return c, nil
}

func (r *PgRepo) ListCoursesByInstructor(ctx context.Context, instructorID int64) ([]Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE instructor_id = $1 ORDER BY id`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()
	res := []Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

const studentSelect = `
	SELECT s.id, s.user_id, u.email, u.username, u.firstname, u.lastname,
		s.email_confirmed, s.submission_pass
	FROM students s JOIN users u ON u.id = s.user_id`

func scanStudent(row pgx.Row) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.UserID, &s.Email, &s.Username, &s.Firstname, &s.Lastname,
		&s.EmailConfirmed, &s.SubmissionPass)
	return s, err
}

func (r *PgRepo) CreateStudent(ctx context.Context, s Student) (Student, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO students (user_id, email_confirmed, submission_pass)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		s.UserID, s.EmailConfirmed, s.SubmissionPass)
	if err != nil {
		return Student{}, fmt.Errorf("failed to insert student: %w", err)
	}
	return r.GetStudentByUser(ctx, s.UserID)
}

func (r *PgRepo) GetStudent(ctx context.Context, id int64) (Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx, studentSelect+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Student{}, newErrStudentNotFound().SetDebug(fmt.Errorf("student %d not found", id))
	}
	if err != nil {
		return Student{}, fmt.Errorf("failed to select student: %w", err)
	}
	return s, nil
}

func (r *PgRepo) GetStudentByUser(ctx context.Context, userID int64) (Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx, studentSelect+` WHERE s.user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Student{}, newErrStudentNotFound().SetDebug(fmt.Errorf("no student for user %d", userID))
	}
	if err != nil {
		return Student{}, fmt.Errorf("failed to select student: %w", err)
	}
	return s, nil
}

func (r *PgRepo) Enroll(ctx context.Context, courseID int64, studentID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO course_students (course_id, student_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, courseID, studentID)
	if err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	return nil
}

func (r *PgRepo) IsEnrolled(ctx context.Context, courseID int64, studentID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM course_students WHERE course_id = $1 AND student_id = $2)`,
		courseID, studentID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return ok, nil
}

func (r *PgRepo) ListStudents(ctx context.Context, courseID int64) ([]Student, error) {
	rows, err := r.pool.Query(ctx, studentSelect+`
		JOIN course_students cs ON cs.student_id = s.id
		WHERE cs.course_id = $1
		ORDER BY u.email, s.id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()
	res := []Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
