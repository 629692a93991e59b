package plagiarism_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/autograde/assignment"
	"github.com/programme-lv/autograde/blob"
	"github.com/programme-lv/autograde/course"
	"github.com/programme-lv/autograde/moss"
	"github.com/programme-lv/autograde/plagiarism"
	"github.com/programme-lv/autograde/report"
	"github.com/programme-lv/autograde/subm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const skeletonKey = "uploads/assignment/course_1/lab/sol.py"

type stubs struct {
	rows []report.Row
	// modifiable file content per submission id
	files map[int64]string
}

func (s *stubs) LatestSubmissions(ctx context.Context, assignmentID int64) ([]report.Row, error) {
	return s.rows, nil
}

func (s *stubs) Get(ctx context.Context, id int64) (assignment.Assignment, error) {
	return assignment.Assignment{ID: id, CourseID: 1, Title: "Lab", AssignmentFile: skeletonKey}, nil
}

func (s *stubs) ModifiableFile(ctx context.Context, sub subm.Submission, skeletonName string) ([]byte, error) {
	content, ok := s.files[sub.ID]
	if !ok {
		return nil, errors.New("no " + skeletonName + " in submission")
	}
	return []byte(content), nil
}

type fakeChecker struct {
	mu       sync.Mutex
	calls    int
	language string
	base     []moss.File
	files    []moss.File
	url      string
	sendErr  error
	page     string
	fetchErr error
}

func (c *fakeChecker) Send(ctx context.Context, language string, base []moss.File, files []moss.File, opts moss.Options) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.language = language
	c.base = base
	c.files = files
	return c.url, c.sendErr
}

func (c *fakeChecker) FetchReport(ctx context.Context, url string) ([]byte, error) {
	return []byte(c.page), c.fetchErr
}

func row(id int64, email string, submissionID int64) report.Row {
	r := report.Row{Student: course.Student{ID: id, Email: email}}
	if submissionID != 0 {
		r.Latest = &subm.Submission{ID: submissionID, StudentID: id, PublishDate: time.Now()}
	}
	return r
}

func newBridge(t *testing.T, s *stubs, c *fakeChecker) (*plagiarism.Bridge, blob.Store) {
	t.Helper()
	store, err := blob.NewDirStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), skeletonKey, []byte("def solve(): pass\n"), ""))
	return plagiarism.NewBridge(s, s, s, store, c, plagiarism.Config{Timeout: time.Minute}), store
}

func TestSubmitWithoutSubmissionsSkipsService(t *testing.T) {
	ctx := context.Background()
	checker := &fakeChecker{url: "http://moss/1"}
	b, _ := newBridge(t, &stubs{rows: []report.Row{row(1, "alice@uni.edu", 0)}}, checker)

	res, err := b.Submit(ctx, 4)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "no submissions available", res.Reason)
	assert.Zero(t, checker.calls)

	_, ok, err := b.Report(ctx, 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitStagesAndStoresReport(t *testing.T) {
	ctx := context.Background()
	s := &stubs{
		rows: []report.Row{
			row(1, "alice@uni.edu", 11),
			row(2, "bob@uni.edu", 12),
			row(3, "carol@uni.edu", 0),
			row(4, "dave@uni.edu", 14),
		},
		files: map[int64]string{11: "alice code", 12: "bob code"},
	}
	checker := &fakeChecker{url: "http://moss.stanford.edu/results/1/42", page: "<html>report</html>"}
	b, store := newBridge(t, s, checker)

	// leftovers from an earlier run are not resent
	require.NoError(t, store.Put(ctx, "uploads/moss_submission/assignment_4/sol-eve.py", []byte("old"), ""))

	res, err := b.Submit(ctx, 4)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 2, res.Staged)
	assert.Equal(t, "http://moss.stanford.edu/results/1/42", res.ReportURL)
	assert.Equal(t, "uploads/moss_submission/assignment_4/4.html", res.ReportKey)

	assert.Equal(t, "python", checker.language)
	require.Len(t, checker.base, 1)
	assert.Equal(t, "sol.py", checker.base[0].Name)
	assert.Equal(t, "def solve(): pass\n", string(checker.base[0].Content))
	require.Len(t, checker.files, 2)
	assert.Equal(t, "sol-alice.py", checker.files[0].Name)
	assert.Equal(t, "alice code", string(checker.files[0].Content))
	assert.Equal(t, "sol-bob.py", checker.files[1].Name)

	key, ok, err := b.Report(ctx, 4)
	require.NoError(t, err)
	require.True(t, ok)
	page, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "<html>report</html>", string(page))

	// a second run keeps the old report until it is replaced
	res, err = b.Submit(ctx, 4)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Len(t, checker.files, 2)
	assert.Equal(t, 2, checker.calls)
}

func TestSubmitServiceFailureIsAResult(t *testing.T) {
	ctx := context.Background()
	s := &stubs{rows: []report.Row{row(1, "alice@uni.edu", 11)}, files: map[int64]string{11: "x"}}

	checker := &fakeChecker{sendErr: errors.New("connection refused")}
	b, _ := newBridge(t, s, checker)
	res, err := b.Submit(ctx, 4)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "connection refused")
	assert.Equal(t, 1, checker.calls)

	checker = &fakeChecker{}
	b, _ = newBridge(t, s, checker)
	res, err = b.Submit(ctx, 4)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "no report url received", res.Reason)

	page, ok, err := b.ReportPage(ctx, 4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, page)
}
