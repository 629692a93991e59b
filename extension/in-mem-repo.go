package extension

import (
	"context"
	"sync"
)

type InMemRepo struct {
	mu     sync.RWMutex
	grants []Grant
	nextID int64
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{nextID: 1}
}

func (r *InMemRepo) Insert(ctx context.Context, g Grant) (Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = r.nextID
	r.nextID++
	r.grants = append(r.grants, g)
	return g, nil
}

func (r *InMemRepo) filter(keep func(Grant) bool) []Grant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := []Grant{}
	for _, g := range r.grants {
		if keep(g) {
			res = append(res, g)
		}
	}
	return res
}

func (r *InMemRepo) ListForStudentAssignment(ctx context.Context, studentID int64, assignmentID int64) ([]Grant, error) {
	return r.filter(func(g Grant) bool {
		return g.StudentID == studentID && g.AssignmentID == assignmentID
	}), nil
}

func (r *InMemRepo) ListForStudentCourse(ctx context.Context, studentID int64, courseID int64) ([]Grant, error) {
	return r.filter(func(g Grant) bool {
		return g.StudentID == studentID && g.CourseID == courseID
	}), nil
}

func (r *InMemRepo) ListForCourse(ctx context.Context, courseID int64) ([]Grant, error) {
	return r.filter(func(g Grant) bool {
		return g.CourseID == courseID
	}), nil
}
