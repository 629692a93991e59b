// Package subm records student submissions and their grading results.
package subm

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/blob"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/logger"
	decorator "github.com/programme-lv/autograde/srvccqs"
	"github.com/programme-lv/autograde/validate"
	"github.com/wailsapp/mimetype"
)

const zipMime = "application/zip"

type AssignmentSrvcFacade interface {
	Get(ctx context.Context, id int64) (assignment.Assignment, error)
	BundleKey(ctx context.Context, assignmentID int64) (string, error)
}

type CourseSrvcFacade interface {
	IsEnrolled(ctx context.Context, courseID int64, studentID int64) (bool, error)
	GetStudent(ctx context.Context, id int64) (course.Student, error)
}

// Dispatcher hands a recorded submission to the grading service.
type Dispatcher interface {
	Dispatch(ctx context.Context, req GradingRequest) error
}

type Recorder struct {
	repo        Repo
	store       blob.Store
	assignments AssignmentSrvcFacade
	courses     CourseSrvcFacade
	dispatcher  Dispatcher
	now         func() time.Time

	recordResult decorator.CmdHandler[ResultParams]
}

func NewRecorder(
	repo Repo,
	store blob.Store,
	assignments AssignmentSrvcFacade,
	courses CourseSrvcFacade,
	dispatcher Dispatcher,
) *Recorder {
	r := &Recorder{
		repo:        repo,
		store:       store,
		assignments: assignments,
		courses:     courses,
		dispatcher:  dispatcher,
		now:         time.Now,
	}
	r.recordResult = decorator.WithCmdLogging[ResultParams]("record_result",
		decorator.CmdHandlerFunc[ResultParams](r.applyResult))
	return r
}

type SubmitParams struct {
	StudentID    int64  `validate:"required"`
	AssignmentID int64  `validate:"required"`
	Filename     string `validate:"notblank,max=255"`
	Content      []byte `validate:"required"`
	// zero means now
	At time.Time
}

// Submit stores the archive and records a submission with no results yet.
// A failed dispatch is logged, the submission stays recorded.
func (r *Recorder) Submit(ctx context.Context, p SubmitParams) (Submission, error) {
	if err := validate.Struct(p); err != nil {
		return Submission{}, err
	}
	a, err := r.assignments.Get(ctx, p.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	enrolled, err := r.courses.IsEnrolled(ctx, a.CourseID, p.StudentID)
	if err != nil {
		return Submission{}, err
	}
	if !enrolled {
		return Submission{}, course.NewErrNotEnrolled()
	}

	if detected := mimetype.Detect(p.Content); !isZip(detected) {
		return Submission{}, newErrSubmissionNotZip(detected.String())
	}

	at := p.At
	if at.IsZero() {
		at = r.now()
	}
	key := layout.Submission(p.StudentID, p.AssignmentID, at, p.Filename)
	if err := r.store.Put(ctx, key, p.Content, zipMime); err != nil {
		return Submission{}, fmt.Errorf("failed to store submission: %w", err)
	}

	s, err := r.repo.Create(ctx, Submission{
		StudentID:    p.StudentID,
		AssignmentID: p.AssignmentID,
		File:         key,
		PublishDate:  at,
	})
	if err != nil {
		return Submission{}, err
	}

	log := logger.FromContext(ctx).With("submission_id", s.ID, "assignment_id", s.AssignmentID)
	log.Info("recorded submission", "student_id", s.StudentID, "file", key)

	bundleKey, err := r.assignments.BundleKey(ctx, a.ID)
	if err != nil {
		log.Error("failed to resolve bundle for grading", "error", err)
		return s, nil
	}
	err = r.dispatcher.Dispatch(ctx, GradingRequest{
		SubmissionID:  s.ID,
		AssignmentID:  a.ID,
		StudentID:     s.StudentID,
		SubmissionKey: key,
		BundleKey:     bundleKey,
		Timeout:       a.Timeout,
	})
	if err != nil {
		log.Error("failed to dispatch submission for grading", "error", err)
	}
	return s, nil
}

// isZip also accepts zip based formats such as jar.
func isZip(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(zipMime) {
			return true
		}
	}
	return false
}

type ResultParams struct {
	SubmissionID int64 `json:"submission_id" validate:"required"`
	Passed       int   `json:"passed" validate:"gte=0"`
	Failed       int   `json:"failed" validate:"gte=0"`
}

// RecordResult is the only way passed and failed counts change.
func (r *Recorder) RecordResult(ctx context.Context, p ResultParams) error {
	return r.recordResult.Handle(ctx, p)
}

func (r *Recorder) applyResult(ctx context.Context, p ResultParams) error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	s, err := r.repo.SetResult(ctx, p.SubmissionID, p.Passed, p.Failed)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("recorded grading result",
		"submission_id", s.ID, "passed", s.Passed, "failed", s.Failed)
	return nil
}

// RecordResultWithPass is RecordResult authenticated by the submitting student's pass.
func (r *Recorder) RecordResultWithPass(ctx context.Context, pass string, p ResultParams) error {
	s, err := r.repo.Get(ctx, p.SubmissionID)
	if err != nil {
		return err
	}
	st, err := r.courses.GetStudent(ctx, s.StudentID)
	if err != nil {
		return err
	}
	if pass == "" || subtle.ConstantTimeCompare([]byte(pass), []byte(st.SubmissionPass)) != 1 {
		return newErrSubmissionPassInvalid()
	}
	return r.RecordResult(ctx, p)
}

func (r *Recorder) Get(ctx context.Context, id int64) (Submission, error) {
	return r.repo.Get(ctx, id)
}

func (r *Recorder) ListByAssignment(ctx context.Context, assignmentID int64) ([]Submission, error) {
	return r.repo.ListByAssignment(ctx, assignmentID)
}

func (r *Recorder) ListByStudentAssignment(ctx context.Context, studentID int64, assignmentID int64) ([]Submission, error) {
	return r.repo.ListByStudentAssignment(ctx, studentID, assignmentID)
}

// ModifiableFile returns the student's version of the skeleton file. The copy
// extracted by the runner wins, otherwise it is read from the submitted zip.
func (r *Recorder) ModifiableFile(ctx context.Context, s Submission, skeletonName string) ([]byte, error) {
	name := layout.Base(skeletonName)
	content, err := r.store.Get(ctx, layout.ModifiableFile(s.File, name))
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, blob.ErrNotFound) {
		return nil, fmt.Errorf("failed to read extracted file: %w", err)
	}

	archive, err := r.store.Get(ctx, s.File)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, newErrModifiableFileMissing(name).SetDebug(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read submission archive: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, newErrModifiableFileMissing(name).SetDebug(fmt.Errorf("failed to open submission archive: %w", err))
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || layout.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		return content, nil
	}
	return nil, newErrModifiableFileMissing(name)
}

// TestLog returns the runner's test output for the submission if it has been written.
func (r *Recorder) TestLog(ctx context.Context, s Submission) ([]byte, bool, error) {
	content, err := r.store.Get(ctx, layout.TestLog(s.File))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read test log: %w", err)
	}
	return content, true, nil
}
