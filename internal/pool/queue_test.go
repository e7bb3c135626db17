package pool

import (
	"fmt"
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

func TestWorkQueue_PagesThroughBacklog(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	for i := 0; i < 5; i++ {
		_, err := cat.UpsertFile(&catalog.File{Path: filepath.Join("/", "a", string(rune('a'+i))+".txt"), Digest: "d", Size: 1})
		require.NoError(t, err)
	}

	q := newWorkQueue(cat, nil, false)
	require.NoError(t, q.refill())
	assert.Equal(t, 5, q.len())
	assert.False(t, q.drained())

	count := 0
	for {
		_, ok := q.pop()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)
	assert.True(t, q.drained())
}

func TestWorkQueue_SkipsConfiguredExtensions(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	_, err := cat.UpsertFile(&catalog.File{Path: "/a.jpg", Digest: "d", Size: 1})
	require.NoError(t, err)
	_, err = cat.UpsertFile(&catalog.File{Path: "/b.txt", Digest: "d", Size: 1})
	require.NoError(t, err)

	q := newWorkQueue(cat, []string{".jpg"}, false)
	require.NoError(t, q.refill())
	assert.Equal(t, 1, q.len())
}

// TestWorkQueue_SurvivesConcurrentCompletionBetweenPages reproduces the
// scenario an offset-based cursor gets wrong: extractions for some of the
// first page's files complete (and so drop out of the "needs extraction"
// filter) before the queue asks for the next page. An id-keyed cursor must
// still return every file past the last id it has seen; an offset would
// have drifted against the now-smaller filtered set and silently skipped
// the remaining backlog.
func TestWorkQueue_SurvivesConcurrentCompletionBetweenPages(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)

	const total = queuePageSize + 5
	ids := make([]int64, 0, total)
	for i := 0; i < total; i++ {
		id, err := cat.UpsertFile(&catalog.File{Path: filepath.Join("/", fmt.Sprintf("%04d.txt", i)), Digest: "d", Size: 1})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	q := newWorkQueue(cat, nil, false)
	require.NoError(t, q.refill())
	require.Equal(t, queuePageSize, q.len(), "first page should fill to the page size")

	// Drain the first page, as the supervisor would while dispatching it.
	for q.len() > 0 {
		_, ok := q.pop()
		require.True(t, ok)
	}

	// Simulate half of the first page's files completing extraction
	// concurrently, before the queue is refilled for the second page.
	runID, err := cat.CreateRun(catalog.RunExtract, nil)
	require.NoError(t, err)
	for _, id := range ids[:queuePageSize/2] {
		_, err := cat.RecordExtraction(&catalog.Extraction{FileID: id, Method: "text", Status: catalog.ExtractionSuccess, ExtractionRunID: runID})
		require.NoError(t, err)
	}

	require.NoError(t, q.refill())
	assert.Equal(t, 5, q.len(), "the remaining backlog past the cursor must still surface in full")
}

func TestWorkQueue_ForceIncludesAlreadyExtractedFiles(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	id, err := cat.UpsertFile(&catalog.File{Path: "/a.txt", Digest: "d", Size: 1})
	require.NoError(t, err)

	runID, err := cat.CreateRun(catalog.RunExtract, nil)
	require.NoError(t, err)
	_, err = cat.RecordExtraction(&catalog.Extraction{FileID: id, Method: "text", Status: catalog.ExtractionSuccess, ExtractionRunID: runID})
	require.NoError(t, err)

	q := newWorkQueue(cat, nil, true)
	require.NoError(t, q.refill())
	assert.Equal(t, 1, q.len())
}
