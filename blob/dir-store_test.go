package blob_test

import (
	"context"
	"testing"

	"github.com/programme-lv/autograde/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *blob.DirStore {
	t.Helper()
	s, err := blob.NewDirStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestDirStoreOverwritesInPlace(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Put(ctx, "a/b/c.txt", []byte("one"), "text/plain"))
	require.NoError(t, s.Put(ctx, "a/b/c.txt", []byte("two"), "text/plain"))

	got, err := s.Get(ctx, "a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	keys, err := s.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/c.txt"}, keys)
}

func TestDirStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Get(ctx, "nope.txt")
	require.ErrorIs(t, err, blob.ErrNotFound)

	ok, err := s.Exists(ctx, "nope.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "nope.txt"))
}

func TestDirStoreListPrefix(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, k := range []string{"m/assignment_1/x-a.py", "m/assignment_1/x-b.py", "m/assignment_10/x-c.py", "other.txt"} {
		require.NoError(t, s.Put(ctx, k, []byte(k), ""))
	}

	keys, err := s.List(ctx, "m/assignment_1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"m/assignment_1/x-a.py", "m/assignment_1/x-b.py"}, keys)

	keys, err = s.List(ctx, "m/assignment_1")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	keys, err = s.List(ctx, "missing/dir/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, s.Delete(ctx, "m/assignment_1/x-a.py"))
	ok, err := s.Exists(ctx, "m/assignment_1/x-a.py")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirStoreKeysStayInsideRoot(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Put(ctx, "../../escape.txt", []byte("x"), ""))
	ok, err := s.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Error(t, s.Put(ctx, "dir/", []byte("x"), ""))
}
