package layout_test

import (
	"testing"
	"time"

	"github.com/programme-lv/autograde/layout"
	"github.com/stretchr/testify/assert"
)

func TestAssignmentPaths(t *testing.T) {
	assert.Equal(t, "add-two-numbers", layout.Slug("Add Two Numbers"))
	assert.Equal(t, "uploads/assignment/course_1/add-two-numbers/", layout.AssignmentDir(1, "Add Two Numbers"))
	assert.Equal(t,
		"uploads/assignment/course_1/add-two-numbers/sol.py",
		layout.AssignmentFile(1, "Add Two Numbers", "some/local/dir/sol.py"))
	assert.Equal(t,
		"uploads/assignment/course_1/add-two-numbers/config.json",
		layout.Manifest(1, "Add Two Numbers"))
	assert.Equal(t,
		"uploads/assignment/course_1/add-two-numbers/assignment42.zip",
		layout.Archive(1, "Add Two Numbers", 42))
}

func TestSubmissionPaths(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	key := layout.Submission(3, 42, at, "hw.zip")
	assert.Equal(t, "uploads/submission/student_3/assignment_42/2024-03-09-140507hw.zip", key)
	assert.Equal(t, "uploads/submission/student_3/assignment_42/2024-03-09-140507hw/", layout.SubmissionExtractDir(key))
	assert.Equal(t, "uploads/submission/student_3/assignment_42/2024-03-09-140507hw/sol.py", layout.ModifiableFile(key, "sol.py"))
	assert.Equal(t, "uploads/submission/student_3/assignment_42/2024-03-09-140507hw/test-results.log", layout.TestLog(key))
}

func TestMossPaths(t *testing.T) {
	assert.Equal(t, "uploads/moss_submission/assignment_7/", layout.MossDir(7))
	assert.Equal(t, "uploads/moss_submission/assignment_7/7.html", layout.MossReport(7))
}

func TestStagedName(t *testing.T) {
	assert.Equal(t, "sol-jdoe.py", layout.StagedName("sol.py", "jdoe"))
	assert.Equal(t, "my.sol-jdoe.py", layout.StagedName("my.sol.py", "jdoe"))
	assert.Equal(t, "Makefile-jdoe", layout.StagedName("Makefile", "jdoe"))
	assert.Equal(t, "sol-jdoe.py", layout.StagedName("a/b/sol.py", "jdoe"))
}
