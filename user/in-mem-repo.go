package user

import (
	"context"
	"fmt"
	"sync"
)

type InMemRepo struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{users: make(map[int64]User), nextID: 1}
}

func (r *InMemRepo) Create(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return User{}, newErrUsernameExists()
		}
		if existing.Email == u.Email {
			return User{}, newErrEmailExists()
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return u, nil
}

func (r *InMemRepo) GetByID(ctx context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, newErrUserNotFound().SetDebug(fmt.Errorf("user %d not found", id))
	}
	return u, nil
}

func (r *InMemRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, newErrUserNotFound().SetDebug(fmt.Errorf("user %q not found", username))
}
