package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key := ReportKey("u1", "s1", "a1")
	got, err := s.Put(ctx, key, strings.NewReader("<p>ok</p>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "reports/u1/s1/a1.html", got)

	rc, err := s.Get(ctx, got)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", string(b))

	u, err := s.SignedURL(ctx, got)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"))
}

func TestFSStore_Missing(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "reports/none.html")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_RejectsEscapingKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)
	for _, k := range []string{"", "../x", "a/../../x", "..\\x"} {
		_, err := s.Put(context.Background(), k, strings.NewReader("x"), "")
		assert.Error(t, err, "key %q", k)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n == 0 {
		return 0, errors.New("disk gone")
	}
	r.n--
	return copy(p, "<p>"), nil
}

func TestFSStore_FailedWriteLeavesNothing(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key := ReportKey("u1", "s1", "a2")
	_, err = s.Put(ctx, key, &failingReader{n: 2}, "text/html")
	require.ErrorContains(t, err, "disk gone")

	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}
