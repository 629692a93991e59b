package user

import (
	"context"
	"time"
)

type User struct {
	ID        int64
	Username  string
	Email     string
	Firstname string
	Lastname  string
	BcryptPwd []byte
	CreatedAt time.Time
}

type Repo interface {
	// Create fails with a username_exists or email_exists error on conflicts.
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
}
