package subm_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/blob"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/layout"
	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/subm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assignments struct{}

func (assignments) Get(ctx context.Context, id int64) (assignment.Assignment, error) {
	return assignment.Assignment{ID: id, CourseID: 1, Title: "Lab", Timeout: 3, TotalPoints: 25}, nil
}

func (assignments) BundleKey(ctx context.Context, id int64) (string, error) {
	return layout.Archive(1, "Lab", id), nil
}

// student 10 is enrolled in course 1, student 11 is not
type courses struct{}

func (courses) IsEnrolled(ctx context.Context, courseID int64, studentID int64) (bool, error) {
	return courseID == 1 && studentID == 10, nil
}

func (courses) GetStudent(ctx context.Context, id int64) (course.Student, error) {
	return course.Student{ID: id, Email: "jdoe@example.com", SubmissionPass: "secretpass12"}, nil
}

type dispatcher struct {
	mu   sync.Mutex
	reqs []subm.GradingRequest
	err  error
}

func (d *dispatcher) Dispatch(ctx context.Context, req subm.GradingRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reqs = append(d.reqs, req)
	return d.err
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newRecorder(t *testing.T, d *dispatcher) (*subm.Recorder, blob.Store) {
	t.Helper()
	store, err := blob.NewDirStore(t.TempDir())
	require.NoError(t, err)
	return subm.NewRecorder(subm.NewInMemRepo(), store, assignments{}, courses{}, d), store
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0.0, subm.Score(0, 0, 25))
	assert.Equal(t, 25.0, subm.Score(4, 0, 25))
	assert.Equal(t, 15.0, subm.Score(3, 2, 25))
	assert.Equal(t, 0.0, subm.Score(0, 7, 25))
	assert.InDelta(t, 8.333, subm.Submission{Passed: 1, Failed: 2}.Score(25), 0.001)
}

func TestSubmitStoresAndDispatches(t *testing.T) {
	ctx := context.Background()
	d := &dispatcher{}
	rec, store := newRecorder(t, d)
	at := time.Date(2024, 10, 3, 14, 5, 9, 0, time.UTC)

	s, err := rec.Submit(ctx, subm.SubmitParams{
		StudentID:    10,
		AssignmentID: 4,
		Filename:     "work.zip",
		Content:      zipOf(t, map[string]string{"sol.py": "print(1)"}),
		At:           at,
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/submission/student_10/assignment_4/2024-10-03-140509work.zip", s.File)
	assert.Zero(t, s.Passed)
	assert.Zero(t, s.Failed)

	ok, err := store.Exists(ctx, s.File)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, d.reqs, 1)
	assert.Equal(t, s.ID, d.reqs[0].SubmissionID)
	assert.Equal(t, "uploads/assignment/course_1/lab/assignment4.zip", d.reqs[0].BundleKey)
}

func TestSubmitKeepsSubmissionWhenDispatchFails(t *testing.T) {
	d := &dispatcher{err: errors.New("queue down")}
	rec, _ := newRecorder(t, d)

	s, err := rec.Submit(context.Background(), subm.SubmitParams{
		StudentID: 10, AssignmentID: 4, Filename: "w.zip",
		Content: zipOf(t, map[string]string{"sol.py": "x"}),
	})
	require.NoError(t, err)

	got, err := rec.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.File, got.File)
}

func TestSubmitRejects(t *testing.T) {
	ctx := context.Background()
	rec, _ := newRecorder(t, &dispatcher{})

	_, err := rec.Submit(ctx, subm.SubmitParams{
		StudentID: 11, AssignmentID: 4, Filename: "w.zip",
		Content: zipOf(t, map[string]string{"sol.py": "x"}),
	})
	assert.True(t, srvcerror.HasCode(err, course.ErrCodeNotEnrolled), "got %v", err)

	_, err = rec.Submit(ctx, subm.SubmitParams{
		StudentID: 10, AssignmentID: 4, Filename: "sol.py", Content: []byte("print('not a zip')\n"),
	})
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeSubmissionNotZip), "got %v", err)
}

func TestRecordResult(t *testing.T) {
	ctx := context.Background()
	rec, _ := newRecorder(t, &dispatcher{})
	s, err := rec.Submit(ctx, subm.SubmitParams{
		StudentID: 10, AssignmentID: 4, Filename: "w.zip",
		Content: zipOf(t, map[string]string{"sol.py": "x"}),
	})
	require.NoError(t, err)

	require.NoError(t, rec.RecordResult(ctx, subm.ResultParams{SubmissionID: s.ID, Passed: 3, Failed: 1}))
	got, err := rec.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Passed)
	assert.Equal(t, 1, got.Failed)

	err = rec.RecordResult(ctx, subm.ResultParams{SubmissionID: s.ID, Passed: -1})
	require.Error(t, err)

	err = rec.RecordResult(ctx, subm.ResultParams{SubmissionID: 999, Passed: 1})
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeSubmissionNotFound))

	err = rec.RecordResultWithPass(ctx, "wrongpass", subm.ResultParams{SubmissionID: s.ID, Passed: 5})
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeSubmissionPassInvalid))

	require.NoError(t, rec.RecordResultWithPass(ctx, "secretpass12", subm.ResultParams{SubmissionID: s.ID, Passed: 5}))
	got, err = rec.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Passed)
	assert.Equal(t, 0, got.Failed)
}

func TestModifiableFile(t *testing.T) {
	ctx := context.Background()
	rec, store := newRecorder(t, &dispatcher{})
	s, err := rec.Submit(ctx, subm.SubmitParams{
		StudentID: 10, AssignmentID: 4, Filename: "w.zip",
		Content: zipOf(t, map[string]string{"project/sol.py": "from zip", "README": "r"}),
	})
	require.NoError(t, err)

	content, err := rec.ModifiableFile(ctx, s, "sol.py")
	require.NoError(t, err)
	assert.Equal(t, "from zip", string(content))

	// the runner's extracted copy takes precedence
	require.NoError(t, store.Put(ctx, layout.ModifiableFile(s.File, "sol.py"), []byte("extracted"), ""))
	content, err = rec.ModifiableFile(ctx, s, "sol.py")
	require.NoError(t, err)
	assert.Equal(t, "extracted", string(content))

	_, err = rec.ModifiableFile(ctx, s, "other.py")
	assert.True(t, srvcerror.HasCode(err, subm.ErrCodeModifiableFileMissing))

	_, found, err := rec.TestLog(ctx, s)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLatestOrdering(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := subm.Submission{ID: 1, PublishDate: base}
	b := subm.Submission{ID: 2, PublishDate: base}
	c := subm.Submission{ID: 3, PublishDate: base.Add(-time.Hour)}
	assert.True(t, b.IsNewerThan(a))
	assert.False(t, a.IsNewerThan(b))
	assert.True(t, a.IsNewerThan(c))
}
