package assignment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/programme-lv/autograde/blob"
	"github.com/programme-lv/autograde/bundle"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/logger"
	"github.com/programme-lv/autograde/validate"
)

type CourseSrvcFacade interface {
	GetCourse(ctx context.Context, id int64) (course.Course, error)
	IsInstructorOf(ctx context.Context, userID int64, courseID int64) (bool, error)
	RequireEnrolledStudent(ctx context.Context, userID int64, courseID int64) (course.Student, error)
}

type AssignmentSrvc struct {
	repo     Repo
	store    blob.Store
	packager *bundle.Packager
	courses  CourseSrvcFacade
	now      func() time.Time
}

func NewAssignmentSrvc(repo Repo, store blob.Store, packager *bundle.Packager, courses CourseSrvcFacade) *AssignmentSrvc {
	return &AssignmentSrvc{
		repo:     repo,
		store:    store,
		packager: packager,
		courses:  courses,
		now:      time.Now,
	}
}

type FileUpload struct {
	Name    string `json:"name" validate:"notblank,max=255"`
	Content []byte `json:"-" validate:"required"`
}

type CreateParams struct {
	CourseID       int64      `json:"-" validate:"required"`
	Title          string     `json:"title" validate:"notblank,max=200"`
	Description    string     `json:"description"`
	InstructorTest FileUpload `json:"instructor_test"`
	StudentTest    FileUpload `json:"student_test"`
	AssignmentFile FileUpload `json:"assignment_file"`
	// zero means DefaultTotalPoints
	TotalPoints int `json:"total_points" validate:"gte=0"`
	// zero means DefaultTimeout
	Timeout  int       `json:"timeout" validate:"gte=0,lte=600"`
	OpenDate time.Time `json:"open_date" validate:"required"`
	DueDate  time.Time `json:"due_date" validate:"required"`
}

// Create stores the assignment files and builds the grading bundle.
// A failed rebuild is returned to the caller, the assignment row stays.
func (s *AssignmentSrvc) Create(ctx context.Context, p CreateParams) (Assignment, error) {
	if err := validate.Struct(p); err != nil {
		return Assignment{}, err
	}
	if _, err := s.courses.GetCourse(ctx, p.CourseID); err != nil {
		return Assignment{}, err
	}
	if err := distinctNames(p.InstructorTest.Name, p.StudentTest.Name, p.AssignmentFile.Name); err != nil {
		return Assignment{}, err
	}

	title := strings.TrimSpace(p.Title)
	a := Assignment{
		CourseID:       p.CourseID,
		Title:          title,
		Description:    p.Description,
		InstructorTest: layout.AssignmentFile(p.CourseID, title, p.InstructorTest.Name),
		StudentTest:    layout.AssignmentFile(p.CourseID, title, p.StudentTest.Name),
		AssignmentFile: layout.AssignmentFile(p.CourseID, title, p.AssignmentFile.Name),
		TotalPoints:    p.TotalPoints,
		Timeout:        p.Timeout,
		OpenDate:       p.OpenDate,
		DueDate:        p.DueDate,
		PublishDate:    s.now(),
	}
	if a.TotalPoints == 0 {
		a.TotalPoints = DefaultTotalPoints
	}
	if a.Timeout == 0 {
		a.Timeout = DefaultTimeout
	}

	// the row goes first so that a title clash never overwrites another assignment's files
	a, err := s.repo.Create(ctx, a)
	if err != nil {
		return Assignment{}, err
	}

	uploads := map[string]FileUpload{
		a.InstructorTest: p.InstructorTest,
		a.StudentTest:    p.StudentTest,
		a.AssignmentFile: p.AssignmentFile,
	}
	for key, f := range uploads {
		if err := s.store.Put(ctx, key, f.Content, ""); err != nil {
			return Assignment{}, fmt.Errorf("failed to store %s: %w", key, err)
		}
	}

	logger.FromContext(ctx).Info("created assignment",
		"assignment_id", a.ID, "course_id", a.CourseID, "title", a.Title)

	if _, err := s.rebuild(ctx, a); err != nil {
		return a, err
	}
	return a, nil
}

type UpdateParams struct {
	AssignmentID   int64       `json:"-" validate:"required"`
	Title          *string     `json:"title" validate:"omitnil,notblank,max=200"`
	Description    *string     `json:"description"`
	InstructorTest *FileUpload `json:"instructor_test"`
	StudentTest    *FileUpload `json:"student_test"`
	AssignmentFile *FileUpload `json:"assignment_file"`
	TotalPoints    *int        `json:"total_points" validate:"omitnil,gte=0"`
	Timeout        *int        `json:"timeout" validate:"omitnil,gte=1,lte=600"`
	OpenDate       *time.Time  `json:"open_date"`
	DueDate        *time.Time  `json:"due_date"`
}

// distinctNames rejects files that would share one key in the assignment directory.
func distinctNames(names ...string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		base := layout.Base(n)
		if seen[base] {
			return newErrDuplicateFileName(base)
		}
		seen[base] = true
	}
	return nil
}

// Update applies the given fields and rebuilds the bundle.
func (s *AssignmentSrvc) Update(ctx context.Context, p UpdateParams) (Assignment, error) {
	if err := validate.Struct(p); err != nil {
		return Assignment{}, err
	}
	a, err := s.repo.Get(ctx, p.AssignmentID)
	if err != nil {
		return Assignment{}, err
	}

	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.TotalPoints != nil {
		a.TotalPoints = *p.TotalPoints
	}
	if p.Timeout != nil {
		a.Timeout = *p.Timeout
	}
	if p.OpenDate != nil {
		a.OpenDate = *p.OpenDate
	}
	if p.DueDate != nil {
		a.DueDate = *p.DueDate
	}

	uploads := map[string]FileUpload{}
	replace := func(field *string, f *FileUpload) {
		if f == nil {
			return
		}
		*field = layout.AssignmentFile(a.CourseID, a.Title, f.Name)
		uploads[*field] = *f
	}
	replace(&a.InstructorTest, p.InstructorTest)
	replace(&a.StudentTest, p.StudentTest)
	replace(&a.AssignmentFile, p.AssignmentFile)
	if err := distinctNames(a.InstructorTest, a.StudentTest, a.AssignmentFile); err != nil {
		return Assignment{}, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return Assignment{}, err
	}
	for key, f := range uploads {
		if err := s.store.Put(ctx, key, f.Content, ""); err != nil {
			return Assignment{}, fmt.Errorf("failed to store %s: %w", key, err)
		}
	}

	if _, err := s.rebuild(ctx, a); err != nil {
		return a, err
	}
	return a, nil
}

// AttachFile adds a support file to the assignment and rebuilds the whole bundle.
func (s *AssignmentSrvc) AttachFile(ctx context.Context, assignmentID int64, f FileUpload) (OtherFile, error) {
	if err := validate.Struct(f); err != nil {
		return OtherFile{}, err
	}
	a, err := s.repo.Get(ctx, assignmentID)
	if err != nil {
		return OtherFile{}, err
	}

	for _, own := range []string{a.InstructorTest, a.StudentTest, a.AssignmentFile} {
		if layout.Base(own) == layout.Base(f.Name) {
			return OtherFile{}, newErrDuplicateFileName(layout.Base(f.Name))
		}
	}

	key := layout.OtherFile(a.CourseID, a.Title, f.Name)
	if err := s.store.Put(ctx, key, f.Content, ""); err != nil {
		return OtherFile{}, fmt.Errorf("failed to store %s: %w", key, err)
	}
	of, err := s.repo.AddOtherFile(ctx, OtherFile{AssignmentID: a.ID, File: key})
	if err != nil {
		return OtherFile{}, err
	}

	if _, err := s.rebuild(ctx, a); err != nil {
		return of, err
	}
	return of, nil
}

// Rebuild regenerates the manifest and archive from the stored assignment.
func (s *AssignmentSrvc) Rebuild(ctx context.Context, assignmentID int64) (bundle.Result, error) {
	a, err := s.repo.Get(ctx, assignmentID)
	if err != nil {
		return bundle.Result{}, err
	}
	return s.rebuild(ctx, a)
}

func (s *AssignmentSrvc) rebuild(ctx context.Context, a Assignment) (bundle.Result, error) {
	others, err := s.repo.ListOtherFiles(ctx, a.ID)
	if err != nil {
		return bundle.Result{}, err
	}
	return s.packager.Rebuild(ctx, BundleSource(a, others))
}

func BundleSource(a Assignment, others []OtherFile) bundle.Source {
	src := bundle.Source{
		AssignmentID:   a.ID,
		CourseID:       a.CourseID,
		Title:          a.Title,
		StudentTest:    a.StudentTest,
		AssignmentFile: a.AssignmentFile,
		Timeout:        a.Timeout,
		TotalPoints:    a.TotalPoints,
	}
	for _, of := range others {
		src.OtherFiles = append(src.OtherFiles, of.File)
	}
	return src
}

func (s *AssignmentSrvc) Get(ctx context.Context, id int64) (Assignment, error) {
	return s.repo.Get(ctx, id)
}

func (s *AssignmentSrvc) ListByCourse(ctx context.Context, courseID int64) ([]Assignment, error) {
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListByCourse(ctx, courseID)
}

func (s *AssignmentSrvc) ListAll(ctx context.Context) ([]Assignment, error) {
	return s.repo.ListAll(ctx)
}

func (s *AssignmentSrvc) OtherFiles(ctx context.Context, assignmentID int64) ([]OtherFile, error) {
	if _, err := s.repo.Get(ctx, assignmentID); err != nil {
		return nil, err
	}
	return s.repo.ListOtherFiles(ctx, assignmentID)
}

func (s *AssignmentSrvc) BundleKey(ctx context.Context, assignmentID int64) (string, error) {
	a, err := s.repo.Get(ctx, assignmentID)
	if err != nil {
		return "", err
	}
	return layout.Archive(a.CourseID, a.Title, a.ID), nil
}

// Bundle returns the stored archive content.
func (s *AssignmentSrvc) Bundle(ctx context.Context, assignmentID int64) (string, []byte, error) {
	key, err := s.BundleKey(ctx, assignmentID)
	if err != nil {
		return "", nil, err
	}
	content, err := s.store.Get(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return layout.ArchiveName(assignmentID), content, nil
}
