package user

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

const userColumns = `id, username, email, firstname, lastname, bcrypt_pwd, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Firstname, &u.Lastname, &u.BcryptPwd, &u.CreatedAt)
	return u, err
}

func (r *PgRepo) Create(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, firstname, lastname, bcrypt_pwd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.Username, u.Email, u.Firstname, u.Lastname, u.BcryptPwd, u.CreatedAt)
	created, err := scanUser(row)
	if err != nil {
		if constraint, ok := pgdb.UniqueViolation(err); ok {
			switch constraint {
			case "users_username_key":
				return User{}, newErrUsernameExists()
			case "users_email_key":
				return User{}, newErrEmailExists()
			}
		}
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return created, nil
}

func (r *PgRepo) GetByID(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, newErrUserNotFound().SetDebug(fmt.Errorf("user %d not found", id))
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

func (r *PgRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, newErrUserNotFound().SetDebug(fmt.Errorf("user %q not found", username))
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}
