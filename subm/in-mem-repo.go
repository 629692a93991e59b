package subm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type InMemRepo struct {
	mu     sync.RWMutex
	subms  map[int64]Submission
	nextID int64
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{subms: make(map[int64]Submission), nextID: 1}
}

func (r *InMemRepo) Create(ctx context.Context, s Submission) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	r.subms[s.ID] = s
	return s, nil
}

func (r *InMemRepo) Get(ctx context.Context, id int64) (Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subms[id]
	if !ok {
		return Submission{}, newErrSubmissionNotFound().SetDebug(fmt.Errorf("submission %d not found", id))
	}
	return s, nil
}

func (r *InMemRepo) SetResult(ctx context.Context, id int64, passed int, failed int) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subms[id]
	if !ok {
		return Submission{}, newErrSubmissionNotFound().SetDebug(fmt.Errorf("submission %d not found", id))
	}
	s.Passed = passed
	s.Failed = failed
	r.subms[id] = s
	return s, nil
}

func (r *InMemRepo) list(keep func(Submission) bool) []Submission {
	res := []Submission{}
	for _, s := range r.subms {
		if keep(s) {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[j].IsNewerThan(res[i]) })
	return res
}

func (r *InMemRepo) ListByAssignment(ctx context.Context, assignmentID int64) ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(s Submission) bool { return s.AssignmentID == assignmentID }), nil
}

func (r *InMemRepo) ListByStudentAssignment(ctx context.Context, studentID int64, assignmentID int64) ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(s Submission) bool {
		return s.StudentID == studentID && s.AssignmentID == assignmentID
	}), nil
}
