package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lucien/internal/catalog"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestScan_RecordsAllFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "a.txt", "aaa")
	writeFile(t, root, "b.txt", "bb")
	writeFile(t, root, "c.txt", "c")

	cat := newTestCatalog(t)
	res, err := Scan(context.Background(), cat, root, Options{SkipDirs: DefaultSkipDirs()})
	require.NoError(t, err)
	assert.Equal(t, 3, res.FilesSeen)
	assert.Zero(t, res.Errors)

	n, err := cat.CountFiles()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestScan_PrunesSkippedDirectories(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "keep.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(root, "node_modules"), 0o755))
	writeFile(t, root, filepath.Join("node_modules", "skip.txt"), "y")
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	writeFile(t, root, filepath.Join(".git", "skip2.txt"), "z")

	cat := newTestCatalog(t)
	res, err := Scan(context.Background(), cat, root, Options{SkipDirs: DefaultSkipDirs()})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesSeen)
}

func TestScan_Rescan_UpdatesDigestForChangedFileOnly(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "a.txt", "aaa")
	writeFile(t, root, "b.txt", "bb")
	writeFile(t, root, "c.txt", "c")

	cat := newTestCatalog(t)
	_, err := Scan(context.Background(), cat, root, Options{SkipDirs: DefaultSkipDirs()})
	require.NoError(t, err)

	before, err := cat.FileByPath(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	beforeB, err := cat.FileByPath(filepath.Join(root, "b.txt"))
	require.NoError(t, err)
	beforeC, err := cat.FileByPath(filepath.Join(root, "c.txt"))
	require.NoError(t, err)

	writeFile(t, root, "b.txt", "changed-content")

	res, err := Scan(context.Background(), cat, root, Options{SkipDirs: DefaultSkipDirs()})
	require.NoError(t, err)
	assert.Equal(t, 3, res.FilesSeen)

	n, err := cat.CountFiles()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	afterA, err := cat.FileByPath(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, before.Digest, afterA.Digest)

	afterB, err := cat.FileByPath(filepath.Join(root, "b.txt"))
	require.NoError(t, err)
	assert.NotEqual(t, beforeB.Digest, afterB.Digest)

	afterC, err := cat.FileByPath(filepath.Join(root, "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, beforeC.Digest, afterC.Digest)
}

func TestScan_SymlinksNotFollowedByDefault(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	target := t.TempDir()
	writeFile(t, target, "outside.txt", "outside")
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link")))
	writeFile(t, root, "inside.txt", "inside")

	cat := newTestCatalog(t)
	res, err := Scan(context.Background(), cat, root, Options{SkipDirs: DefaultSkipDirs(), FollowSymlinks: false})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesSeen)
}
