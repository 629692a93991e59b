// Package bundle builds the per-assignment zip handed to the grading service.
package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/programme-lv/autograde/blob"
	"github.com/programme-lv/autograde/keylock"
	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/logger"
)

// RunAPIPlaceholder is replaced in the runner template by the grading service URL.
const RunAPIPlaceholder = "##RUN_API_URL##"

// entries get a fixed timestamp so that equal inputs give equal archives
var entryModTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Source is everything a bundle is built from. File fields are blob keys.
type Source struct {
	AssignmentID   int64
	CourseID       int64
	Title          string
	StudentTest    string
	AssignmentFile string
	OtherFiles     []string
	Timeout        int
	TotalPoints    int
}

type Result struct {
	ArchiveKey  string
	ManifestKey string
	Manifest    Manifest
	Entries     []string
	// Skipped lists inputs dropped because an entry with the same name was already written.
	Skipped []string
}

type Packager struct {
	store     blob.Store
	runAPIURL string
	locks     keylock.Locker[int64]
}

func NewPackager(store blob.Store, runAPIURL string) *Packager {
	return &Packager{store: store, runAPIURL: runAPIURL}
}

// Rebuild writes config.json and replaces the assignment's archive with a fresh one.
// Rebuilds of the same assignment never run concurrently.
func (p *Packager) Rebuild(ctx context.Context, src Source) (Result, error) {
	unlock, err := p.locks.Lock(ctx, src.AssignmentID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to lock assignment %d: %w", src.AssignmentID, err)
	}
	defer unlock()

	log := logger.FromContext(ctx).With("assignment_id", src.AssignmentID)

	manifest := BuildManifest(src)
	manifestJson, err := manifest.Encode()
	if err != nil {
		return Result{}, err
	}
	manifestKey := layout.Manifest(src.CourseID, src.Title)
	if err := p.store.Put(ctx, manifestKey, manifestJson, "application/json"); err != nil {
		return Result{}, fmt.Errorf("failed to store manifest: %w", err)
	}

	runner, err := p.runnerScript(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ArchiveKey:  layout.Archive(src.CourseID, src.Title, src.AssignmentID),
		ManifestKey: manifestKey,
		Manifest:    manifest,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	written := map[string]bool{}

	add := func(name string, content []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: entryModTime,
		})
		if err != nil {
			return fmt.Errorf("failed to create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(content); err != nil {
			return fmt.Errorf("failed to write zip entry %s: %w", name, err)
		}
		written[name] = true
		res.Entries = append(res.Entries, name)
		return nil
	}

	if err := add(layout.RunnerEntry, runner); err != nil {
		return Result{}, err
	}

	inputs := append([]string{src.StudentTest, src.AssignmentFile, manifestKey}, src.OtherFiles...)
	for _, key := range inputs {
		name := layout.Base(key)
		if written[name] {
			log.Warn("skipping duplicate bundle entry", "entry", name, "key", key)
			res.Skipped = append(res.Skipped, key)
			continue
		}
		content := manifestJson
		if key != manifestKey {
			content, err = p.store.Get(ctx, key)
			if errors.Is(err, blob.ErrNotFound) {
				return Result{}, newErrBundleInputMissing(name).SetDebug(err)
			}
			if err != nil {
				return Result{}, fmt.Errorf("failed to read bundle input %s: %w", key, err)
			}
		}
		if err := add(name, content); err != nil {
			return Result{}, err
		}
	}

	if err := zw.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := p.store.Put(ctx, res.ArchiveKey, buf.Bytes(), "application/zip"); err != nil {
		return Result{}, fmt.Errorf("failed to store archive: %w", err)
	}

	log.Info("rebuilt assignment bundle", "archive", res.ArchiveKey, "entries", len(res.Entries))
	return res, nil
}

func (p *Packager) runnerScript(ctx context.Context) ([]byte, error) {
	template, err := p.store.Get(ctx, layout.RunnerTemplate)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, newErrRunnerTemplateMissing().SetDebug(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read runner template: %w", err)
	}
	return []byte(strings.ReplaceAll(string(template), RunAPIPlaceholder, p.runAPIURL)), nil
}

// InstallRunnerTemplate stores the runner script template used by every rebuild.
func (p *Packager) InstallRunnerTemplate(ctx context.Context, content []byte) error {
	if err := p.store.Put(ctx, layout.RunnerTemplate, content, "text/x-python"); err != nil {
		return fmt.Errorf("failed to store runner template: %w", err)
	}
	return nil
}

// Entries lists the entry names of a stored archive in archive order.
func (p *Packager) Entries(ctx context.Context, archiveKey string) ([]string, error) {
	content, err := p.store.Get(ctx, archiveKey)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archiveKey, err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}
