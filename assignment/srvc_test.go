package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/blob"
	"github.com/programme-lv/autograde/bundle"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// user 1 teaches every course, user 2 is student 20 everywhere
type courseFacade struct{}

func (courseFacade) GetCourse(ctx context.Context, id int64) (course.Course, error) {
	return course.Course{ID: id, MaxExtensionDays: 5}, nil
}

func (courseFacade) IsInstructorOf(ctx context.Context, userID int64, courseID int64) (bool, error) {
	return userID == 1, nil
}

func (courseFacade) RequireEnrolledStudent(ctx context.Context, userID int64, courseID int64) (course.Student, error) {
	if userID != 2 {
		return course.Student{}, course.NewErrNotEnrolled()
	}
	return course.Student{ID: 20, UserID: 2}, nil
}

func newSrvc(t *testing.T) (*assignment.AssignmentSrvc, *bundle.Packager, blob.Store) {
	t.Helper()
	store, err := blob.NewDirStore(t.TempDir())
	require.NoError(t, err)
	packager := bundle.NewPackager(store, "http://localhost:8080/api/")
	require.NoError(t, packager.InstallRunnerTemplate(context.Background(), []byte("URL='##RUN_API_URL##'\n")))
	return assignment.NewAssignmentSrvc(assignment.NewInMemRepo(), store, packager, courseFacade{}), packager, store
}

func createParams() assignment.CreateParams {
	open := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	return assignment.CreateParams{
		CourseID:       1,
		Title:          "Hash Maps",
		InstructorTest: assignment.FileUpload{Name: "test_hidden.py", Content: []byte("hidden")},
		StudentTest:    assignment.FileUpload{Name: "test_sol.py", Content: []byte("visible")},
		AssignmentFile: assignment.FileUpload{Name: "sol.py", Content: []byte("skeleton")},
		OpenDate:       open,
		DueDate:        open.Add(14 * 24 * time.Hour),
	}
}

func TestCreateBuildsBundle(t *testing.T) {
	ctx := context.Background()
	srvc, packager, store := newSrvc(t)

	a, err := srvc.Create(ctx, createParams())
	require.NoError(t, err)
	assert.Equal(t, assignment.DefaultTotalPoints, a.TotalPoints)
	assert.Equal(t, assignment.DefaultTimeout, a.Timeout)
	assert.Equal(t, "uploads/assignment/course_1/hash-maps/sol.py", a.AssignmentFile)

	content, err := store.Get(ctx, a.InstructorTest)
	require.NoError(t, err)
	assert.Equal(t, "hidden", string(content))

	key, err := srvc.BundleKey(ctx, a.ID)
	require.NoError(t, err)
	entries, err := packager.Entries(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"run.py", "test_sol.py", "sol.py", "config.json"}, entries)

	name, archive, err := srvc.Bundle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "assignment1.zip", name)
	assert.NotEmpty(t, archive)
}

func TestCreateRejectsDuplicateTitle(t *testing.T) {
	ctx := context.Background()
	srvc, _, store := newSrvc(t)

	first, err := srvc.Create(ctx, createParams())
	require.NoError(t, err)

	p := createParams()
	p.AssignmentFile.Content = []byte("other skeleton")
	_, err = srvc.Create(ctx, p)
	assert.True(t, srvcerror.HasCode(err, assignment.ErrCodeAssignmentTitleExists), "got %v", err)

	// the first assignment's skeleton is untouched
	content, err := store.Get(ctx, first.AssignmentFile)
	require.NoError(t, err)
	assert.Equal(t, "skeleton", string(content))
}

func TestCreateRejectsTitleWithSameDirectory(t *testing.T) {
	ctx := context.Background()
	srvc, _, store := newSrvc(t)

	first, err := srvc.Create(ctx, createParams())
	require.NoError(t, err)

	p := createParams()
	p.Title = "hash-maps"
	p.AssignmentFile.Content = []byte("other skeleton")
	_, err = srvc.Create(ctx, p)
	assert.True(t, srvcerror.HasCode(err, assignment.ErrCodeAssignmentTitleExists), "got %v", err)

	other := createParams()
	other.Title = "Linked Lists"
	second, err := srvc.Create(ctx, other)
	require.NoError(t, err)
	title := "HASH MAPS"
	_, err = srvc.Update(ctx, assignment.UpdateParams{AssignmentID: second.ID, Title: &title})
	assert.True(t, srvcerror.HasCode(err, assignment.ErrCodeAssignmentTitleExists), "got %v", err)

	content, err := store.Get(ctx, first.AssignmentFile)
	require.NoError(t, err)
	assert.Equal(t, "skeleton", string(content))
}

func TestRejectsFilesSharingAName(t *testing.T) {
	ctx := context.Background()
	srvc, _, store := newSrvc(t)

	p := createParams()
	p.StudentTest.Name = "tests/test_hidden.py"
	_, err := srvc.Create(ctx, p)
	assert.True(t, srvcerror.HasCode(err, assignment.ErrCodeDuplicateFileName), "got %v", err)

	a, err := srvc.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = srvc.Update(ctx, assignment.UpdateParams{
		AssignmentID: a.ID,
		StudentTest:  &assignment.FileUpload{Name: "test_hidden.py", Content: []byte("visible")},
	})
	assert.True(t, srvcerror.HasCode(err, assignment.ErrCodeDuplicateFileName), "got %v", err)

	_, err = srvc.AttachFile(ctx, a.ID, assignment.FileUpload{Name: "test_hidden.py", Content: []byte("x")})
	assert.True(t, srvcerror.HasCode(err, assignment.ErrCodeDuplicateFileName), "got %v", err)

	// the hidden test keeps its content
	content, err := store.Get(ctx, a.InstructorTest)
	require.NoError(t, err)
	assert.Equal(t, "hidden", string(content))
}

func TestCreateValidates(t *testing.T) {
	srvc, _, _ := newSrvc(t)

	p := createParams()
	p.Title = "  "
	p.StudentTest.Content = nil
	_, err := srvc.Create(context.Background(), p)
	assert.True(t, srvcerror.HasCode(err, validate.ErrCodeValidationFailed), "got %v", err)
}

func TestAttachFileRebuildsWholeBundle(t *testing.T) {
	ctx := context.Background()
	srvc, packager, _ := newSrvc(t)

	a, err := srvc.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = srvc.AttachFile(ctx, a.ID, assignment.FileUpload{Name: "data.csv", Content: []byte("1,2")})
	require.NoError(t, err)
	_, err = srvc.AttachFile(ctx, a.ID, assignment.FileUpload{Name: "util.py", Content: []byte("X=1")})
	require.NoError(t, err)

	key, err := srvc.BundleKey(ctx, a.ID)
	require.NoError(t, err)
	entries, err := packager.Entries(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"run.py", "test_sol.py", "sol.py", "config.json", "data.csv", "util.py"}, entries)

	others, err := srvc.OtherFiles(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, "uploads/assignment/course_1/hash-maps/data.csv", others[0].File)

	res, err := srvc.Rebuild(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entries, res.Entries)
}

func TestUpdateReplacesFilesAndRebuilds(t *testing.T) {
	ctx := context.Background()
	srvc, _, store := newSrvc(t)

	a, err := srvc.Create(ctx, createParams())
	require.NoError(t, err)

	points := 40
	updated, err := srvc.Update(ctx, assignment.UpdateParams{
		AssignmentID:   a.ID,
		TotalPoints:    &points,
		AssignmentFile: &assignment.FileUpload{Name: "solution.py", Content: []byte("new skeleton")},
	})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.TotalPoints)
	assert.Equal(t, "uploads/assignment/course_1/hash-maps/solution.py", updated.AssignmentFile)

	manifest, err := store.Get(ctx, "uploads/assignment/course_1/hash-maps/config.json")
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"solution.py"`)
	assert.Contains(t, string(manifest), `"total_points": 40`)

	_, err = srvc.Update(ctx, assignment.UpdateParams{AssignmentID: 99})
	assert.True(t, srvcerror.HasCode(err, assignment.ErrCodeAssignmentNotFound))
}

func TestAccessChecks(t *testing.T) {
	ctx := context.Background()
	srvc, _, _ := newSrvc(t)
	a, err := srvc.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = srvc.RequireInstructor(ctx, 1, a.ID)
	require.NoError(t, err)
	_, err = srvc.RequireInstructor(ctx, 2, a.ID)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeForbidden))

	_, st, err := srvc.RequireStudent(ctx, 2, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), st.ID)

	_, err = srvc.RequireMember(ctx, 1, a.ID)
	require.NoError(t, err)
	_, err = srvc.RequireMember(ctx, 2, a.ID)
	require.NoError(t, err)
	_, err = srvc.RequireMember(ctx, 3, a.ID)
	assert.True(t, srvcerror.HasCode(err, course.ErrCodeNotEnrolled))

	_, err = srvc.RequireMember(ctx, 1, a.ID+1)
	assert.True(t, srvcerror.HasCode(err, assignment.ErrCodeAssignmentNotFound))
}
