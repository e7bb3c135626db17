package sidecar

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "sidecars"))

	require.NoError(t, s.Write("deadbeef", "hello world"))

	text, ok, err := s.Read("deadbeef")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello world", text)
}

func TestRead_MissingSidecarIsNotAnError(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "sidecars"))

	text, ok, err := s.Read("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestPath_IsDigestKeyed(t *testing.T) {
	t.Parallel()
	s := New("/data/sidecars")
	assert.Equal(t, "/data/sidecars/abc123.txt.gz", s.Path("abc123"))
}

func TestTruncate_LeavesShortTextUnchanged(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", Truncate("short", 100))
}

func TestTruncate_JoinsHeadAndTailWithMarker(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("a", 50) + strings.Repeat("b", 50)
	out := Truncate(text, 40)
	assert.Contains(t, out, truncationMarker)
	assert.True(t, strings.HasPrefix(out, strings.Repeat("a", 20)))
	assert.True(t, strings.HasSuffix(out, strings.Repeat("b", 20)))
}

func TestWrite_SameDigestSharesOneSidecar(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "sidecars"))
	require.NoError(t, s.Write("samehash", "version one"))
	require.NoError(t, s.Write("samehash", "version two"))

	text, ok, err := s.Read("samehash")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "version two", text)
}
