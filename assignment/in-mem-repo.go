package assignment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/programme-lv/autograde/layout"
)

type InMemRepo struct {
	mu          sync.RWMutex
	assignments map[int64]Assignment
	otherFiles  []OtherFile
	nextID      int64
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{
		assignments: make(map[int64]Assignment),
		nextID:      1,
	}
}

func (r *InMemRepo) id() int64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *InMemRepo) titleTaken(a Assignment) bool {
	for _, existing := range r.assignments {
		if existing.ID != a.ID && existing.CourseID == a.CourseID &&
			layout.Slug(existing.Title) == layout.Slug(a.Title) {
			return true
		}
	}
	return false
}

func (r *InMemRepo) Create(ctx context.Context, a Assignment) (Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.titleTaken(a) {
		return Assignment{}, newErrAssignmentTitleExists()
	}
	a.ID = r.id()
	r.assignments[a.ID] = a
	return a, nil
}

func (r *InMemRepo) Update(ctx context.Context, a Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[a.ID]; !ok {
		return newErrAssignmentNotFound()
	}
	if r.titleTaken(a) {
		return newErrAssignmentTitleExists()
	}
	r.assignments[a.ID] = a
	return nil
}

func (r *InMemRepo) Get(ctx context.Context, id int64) (Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assignments[id]
	if !ok {
		return Assignment{}, newErrAssignmentNotFound().SetDebug(fmt.Errorf("assignment %d not found", id))
	}
	return a, nil
}

func (r *InMemRepo) list(keep func(Assignment) bool) []Assignment {
	res := []Assignment{}
	for _, a := range r.assignments {
		if keep(a) {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (r *InMemRepo) ListByCourse(ctx context.Context, courseID int64) ([]Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(a Assignment) bool { return a.CourseID == courseID }), nil
}

func (r *InMemRepo) ListAll(ctx context.Context) ([]Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(func(Assignment) bool { return true }), nil
}

func (r *InMemRepo) AddOtherFile(ctx context.Context, f OtherFile) (OtherFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[f.AssignmentID]; !ok {
		return OtherFile{}, newErrAssignmentNotFound()
	}
	f.ID = r.id()
	r.otherFiles = append(r.otherFiles, f)
	return f, nil
}

func (r *InMemRepo) ListOtherFiles(ctx context.Context, assignmentID int64) ([]OtherFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := []OtherFile{}
	for _, f := range r.otherFiles {
		if f.AssignmentID == assignmentID {
			res = append(res, f)
		}
	}
	return res, nil
}
