package course

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type InMemRepo struct {
	mu          sync.RWMutex
	instructors map[int64]Instructor
	courses     map[int64]Course
	students    map[int64]Student
	enrollments map[int64]map[int64]bool // course id -> student ids
	nextID      int64
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{
		instructors: make(map[int64]Instructor),
		courses:     make(map[int64]Course),
		students:    make(map[int64]Student),
		enrollments: make(map[int64]map[int64]bool),
		nextID:      1,
	}
}

func (r *InMemRepo) id() int64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *InMemRepo) CreateInstructor(ctx context.Context, userID int64) (Instructor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.instructors {
		if in.UserID == userID {
			return in, nil
		}
	}
	in := Instructor{ID: r.id(), UserID: userID}
	r.instructors[in.ID] = in
	return in, nil
}

func (r *InMemRepo) GetInstructorByUser(ctx context.Context, userID int64) (Instructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, in := range r.instructors {
		if in.UserID == userID {
			return in, nil
		}
	}
	return Instructor{}, newErrNotInstructor()
}

func (r *InMemRepo) CreateCourse(ctx context.Context, c Course) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.courses {
		if existing.EnrollKey == c.EnrollKey {
			return Course{}, errEnrollKeyTaken
		}
	}
	c.ID = r.id()
	r.courses[c.ID] = c
	return c, nil
}

func (r *InMemRepo) GetCourse(ctx context.Context, id int64) (Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.courses[id]
	if !ok {
		return Course{}, newErrCourseNotFound().SetDebug(fmt.Errorf("course %d not found", id))
	}
	return c, nil
}

func (r *InMemRepo) GetCourseByEnrollKey(ctx context.Context, key string) (Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		if c.EnrollKey == key {
			return c, nil
		}
	}
	return Course{}, newErrInvalidEnrollKey()
}

func (r *InMemRepo) ListCoursesByInstructor(ctx context.Context, instructorID int64) ([]Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := []Course{}
	for _, c := range r.courses {
		if c.InstructorID == instructorID {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *InMemRepo) CreateStudent(ctx context.Context, s Student) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.students {
		if existing.UserID == s.UserID {
			return existing, nil
		}
	}
	s.ID = r.id()
	r.students[s.ID] = s
	return s, nil
}

func (r *InMemRepo) GetStudent(ctx context.Context, id int64) (Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.students[id]
	if !ok {
		return Student{}, newErrStudentNotFound().SetDebug(fmt.Errorf("student %d not found", id))
	}
	return s, nil
}

func (r *InMemRepo) GetStudentByUser(ctx context.Context, userID int64) (Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return Student{}, newErrStudentNotFound().SetDebug(fmt.Errorf("no student for user %d", userID))
}

func (r *InMemRepo) Enroll(ctx context.Context, courseID int64, studentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[courseID]; !ok {
		return newErrCourseNotFound()
	}
	if _, ok := r.students[studentID]; !ok {
		return newErrStudentNotFound()
	}
	if r.enrollments[courseID] == nil {
		r.enrollments[courseID] = make(map[int64]bool)
	}
	r.enrollments[courseID][studentID] = true
	return nil
}

func (r *InMemRepo) IsEnrolled(ctx context.Context, courseID int64, studentID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enrollments[courseID][studentID], nil
}

func (r *InMemRepo) ListStudents(ctx context.Context, courseID int64) ([]Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := []Student{}
	for id := range r.enrollments[courseID] {
		res = append(res, r.students[id])
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Email != res[j].Email {
			return res[i].Email < res[j].Email
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}
