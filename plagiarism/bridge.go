// Package plagiarism stages the latest submissions of an assignment and
// checks them with the similarity service.
package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/blob"
	"github.com/programme-lv/autograde/keylock"
	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/logger"
	"github.com/programme-lv/autograde/moss"
	"github.com/programme-lv/autograde/report"
	"github.com/programme-lv/autograde/subm"
)

const htmlMime = "text/html; charset=utf-8"

type ReportFacade interface {
	LatestSubmissions(ctx context.Context, assignmentID int64) ([]report.Row, error)
}

type AssignmentSrvcFacade interface {
	Get(ctx context.Context, id int64) (assignment.Assignment, error)
}

type SubmSrvcFacade interface {
	ModifiableFile(ctx context.Context, s subm.Submission, skeletonName string) ([]byte, error)
}

// Checker is the similarity service.
type Checker interface {
	Send(ctx context.Context, language string, base []moss.File, files []moss.File, opts moss.Options) (string, error)
	FetchReport(ctx context.Context, url string) ([]byte, error)
}

type Config struct {
	Language string
	// Timeout bounds one Submit including waiting for the assignment lock.
	Timeout time.Duration
	Options moss.Options
}

type Result struct {
	OK        bool
	Reason    string
	ReportURL string
	ReportKey string
	Staged    int
}

type Bridge struct {
	reports     ReportFacade
	assignments AssignmentSrvcFacade
	subms       SubmSrvcFacade
	store       blob.Store
	checker     Checker
	cfg         Config
	locks       keylock.Locker[int64]
}

func NewBridge(
	reports ReportFacade,
	assignments AssignmentSrvcFacade,
	subms SubmSrvcFacade,
	store blob.Store,
	checker Checker,
	cfg Config,
) *Bridge {
	if cfg.Language == "" {
		cfg.Language = "python"
	}
	if cfg.Options == (moss.Options{}) {
		cfg.Options = moss.DefaultOptions()
	}
	return &Bridge{
		reports:     reports,
		assignments: assignments,
		subms:       subms,
		store:       store,
		checker:     checker,
		cfg:         cfg,
	}
}

// Submit stages every student's latest modifiable file and asks the service
// for a report. Service failures come back as a Result with OK false, the
// error is reserved for storage failures.
func (b *Bridge) Submit(ctx context.Context, assignmentID int64) (Result, error) {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}
	unlock, err := b.locks.Lock(ctx, assignmentID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to lock assignment %d: %w", assignmentID, err)
	}
	defer unlock()

	log := logger.FromContext(ctx).With("assignment_id", assignmentID)

	a, err := b.assignments.Get(ctx, assignmentID)
	if err != nil {
		return Result{}, err
	}
	rows, err := b.reports.LatestSubmissions(ctx, assignmentID)
	if err != nil {
		return Result{}, err
	}

	dir := layout.MossDir(assignmentID)
	reportKey := layout.MossReport(assignmentID)
	if err := b.clearStaged(ctx, dir, reportKey); err != nil {
		return Result{}, err
	}

	skeleton := layout.Base(a.AssignmentFile)
	staged := 0
	for _, r := range rows {
		if r.Latest == nil {
			continue
		}
		content, err := b.subms.ModifiableFile(ctx, *r.Latest, skeleton)
		if err != nil {
			log.Warn("skipping submission without modifiable file",
				"submission_id", r.Latest.ID, "error", err)
			continue
		}
		key := dir + layout.StagedName(skeleton, r.Student.RollNumber())
		if err := b.store.Put(ctx, key, content, ""); err != nil {
			return Result{}, fmt.Errorf("failed to stage %s: %w", key, err)
		}
		staged++
	}

	if staged == 0 {
		log.Info("no submissions available for a similarity report")
		return Result{Reason: "no submissions available"}, nil
	}

	base, err := b.store.Get(ctx, a.AssignmentFile)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read skeleton: %w", err)
	}
	files, err := b.stagedFiles(ctx, dir, path.Ext(skeleton), reportKey)
	if err != nil {
		return Result{}, err
	}

	url, err := b.checker.Send(ctx, b.cfg.Language,
		[]moss.File{{Name: skeleton, Content: base}}, files, b.cfg.Options)
	if err != nil {
		log.Error("similarity service failed", "error", err)
		return Result{Reason: err.Error(), Staged: staged}, nil
	}
	if url == "" {
		log.Error("similarity service returned no report url")
		return Result{Reason: "no report url received", Staged: staged}, nil
	}
	log.Info("similarity report ready", "url", url, "staged", staged)

	page, err := b.checker.FetchReport(ctx, url)
	if err != nil {
		log.Error("failed to fetch similarity report", "url", url, "error", err)
		return Result{Reason: err.Error(), ReportURL: url, Staged: staged}, nil
	}
	if err := b.store.Put(ctx, reportKey, page, htmlMime); err != nil {
		return Result{}, fmt.Errorf("failed to store similarity report: %w", err)
	}

	return Result{OK: true, ReportURL: url, ReportKey: reportKey, Staged: staged}, nil
}

func (b *Bridge) clearStaged(ctx context.Context, dir string, reportKey string) error {
	keys, err := b.store.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to list staged files: %w", err)
	}
	for _, k := range keys {
		if k == reportKey {
			continue
		}
		if err := b.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("failed to remove staged file %s: %w", k, err)
		}
	}
	return nil
}

func (b *Bridge) stagedFiles(ctx context.Context, dir string, ext string, reportKey string) ([]moss.File, error) {
	keys, err := b.store.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}
	var files []moss.File
	for _, k := range keys {
		if k == reportKey || !strings.HasSuffix(k, ext) {
			continue
		}
		content, err := b.store.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("failed to read staged file %s: %w", k, err)
		}
		files = append(files, moss.File{Name: layout.Base(k), Content: content})
	}
	return files, nil
}

// Report returns the stored report key if a report has been generated.
func (b *Bridge) Report(ctx context.Context, assignmentID int64) (string, bool, error) {
	key := layout.MossReport(assignmentID)
	ok, err := b.store.Exists(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to check similarity report: %w", err)
	}
	return key, ok, nil
}

// ReportPage returns the stored report content.
func (b *Bridge) ReportPage(ctx context.Context, assignmentID int64) ([]byte, bool, error) {
	content, err := b.store.Get(ctx, layout.MossReport(assignmentID))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read similarity report: %w", err)
	}
	return content, true, nil
}
