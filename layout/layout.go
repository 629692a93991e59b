// Package layout derives the storage key of every persisted artifact.
// Writers and existence checks both go through these functions.
package layout

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	// RunnerTemplate is the runner script copied into every assignment bundle.
	RunnerTemplate = "uploads/assignment/run.py"
	// RunnerEntry is the archive entry name of the substituted runner script.
	RunnerEntry = "run.py"
	// ManifestName is the file name of the bundle manifest.
	ManifestName = "config.json"
	// TestLogName is written next to the extracted submission by the runner.
	TestLogName = "test-results.log"

	submissionTimeFormat = "2006-01-02-150405"
)

// Slug lowercases the title and replaces spaces with hyphens.
func Slug(title string) string {
	return strings.ToLower(strings.ReplaceAll(title, " ", "-"))
}

func AssignmentDir(courseID int64, title string) string {
	return fmt.Sprintf("uploads/assignment/course_%d/%s/", courseID, Slug(title))
}

func AssignmentFile(courseID int64, title string, filename string) string {
	return AssignmentDir(courseID, title) + Base(filename)
}

// OtherFile lives in the same directory as the assignment's own files.
func OtherFile(courseID int64, title string, filename string) string {
	return AssignmentFile(courseID, title, filename)
}

func Manifest(courseID int64, title string) string {
	return AssignmentDir(courseID, title) + ManifestName
}

func Archive(courseID int64, title string, assignmentID int64) string {
	return AssignmentDir(courseID, title) + ArchiveName(assignmentID)
}

func ArchiveName(assignmentID int64) string {
	return fmt.Sprintf("assignment%d.zip", assignmentID)
}

func Submission(studentID int64, assignmentID int64, at time.Time, filename string) string {
	return fmt.Sprintf("uploads/submission/student_%d/assignment_%d/%s%s",
		studentID, assignmentID, at.Format(submissionTimeFormat), Base(filename))
}

// SubmissionExtractDir is where the runner unpacks a submission archive.
func SubmissionExtractDir(archiveKey string) string {
	return strings.Replace(archiveKey, ".zip", "", 1) + "/"
}

func ModifiableFile(archiveKey string, skeletonName string) string {
	return SubmissionExtractDir(archiveKey) + Base(skeletonName)
}

func TestLog(archiveKey string) string {
	return SubmissionExtractDir(archiveKey) + TestLogName
}

func MossDir(assignmentID int64) string {
	return fmt.Sprintf("uploads/moss_submission/assignment_%d/", assignmentID)
}

func MossReport(assignmentID int64) string {
	return fmt.Sprintf("%s%d.html", MossDir(assignmentID), assignmentID)
}

// StagedName inserts the roll number before the last extension: sol.py -> sol-jdoe.py.
func StagedName(filename string, roll string) string {
	base := Base(filename)
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + roll + ext
}

// Base returns the last element of a slash or backslash separated name.
func Base(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return path.Base(name)
}
