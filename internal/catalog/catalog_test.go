package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	c, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpen_WALMode(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	var mode string
	require.NoError(t, c.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_CreatesAllTables(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	for _, table := range []string{"schema_version", "runs", "files", "extractions", "labels", "plans"} {
		var name string
		err := c.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	c1, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, c1.Close())

	c2, err := Open(dbPath)
	require.NoError(t, err)
	defer c2.Close()

	var version int
	require.NoError(t, c2.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version))
	assert.Equal(t, schemaVersion, version)
}

func TestRun_CreateCompleteGet(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	runID, err := c.CreateRun(RunScan, map[string]string{"root": "/data"})
	require.NoError(t, err)
	require.Positive(t, runID)

	run, err := c.GetRun(runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, RunScan, run.Type)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, c.CompleteRun(runID, nil))
	run, err = c.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
	assert.Nil(t, run.Error)
}

func TestRun_CompleteWithError(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	runID, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)

	require.NoError(t, c.CompleteRun(runID, assertError("boom")))
	run, err := c.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Equal(t, "boom", *run.Error)
}

func TestRun_GetMissing(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	run, err := c.GetRun(999)
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestLatestRunID_ReturnsMostRecentOfType(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	first, err := c.CreateRun(RunLabel, nil)
	require.NoError(t, err)
	second, err := c.CreateRun(RunLabel, nil)
	require.NoError(t, err)
	_, err = c.CreateRun(RunScan, nil)
	require.NoError(t, err)

	latest, err := c.LatestRunID(RunLabel)
	require.NoError(t, err)
	assert.Equal(t, second, latest)
	assert.NotEqual(t, first, latest)
}

func TestLatestRunID_ErrorsWhenNoneExist(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	_, err := c.LatestRunID(RunPlan)
	require.Error(t, err)
}

func TestFile_UpsertIsIdempotentByPath(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	f := &File{Path: "/data/a.pdf", Digest: "d1", Size: 100, MimeType: "application/pdf", Mtime: 10, Ctime: 10}
	id1, err := c.UpsertFile(f)
	require.NoError(t, err)

	f2 := &File{Path: "/data/a.pdf", Digest: "d2", Size: 200, MimeType: "application/pdf", Mtime: 20, Ctime: 20}
	id2, err := c.UpsertFile(f2)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "re-upserting the same path must reuse the row")

	got, err := c.FileByPath("/data/a.pdf")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "d2", got.Digest)
	assert.EqualValues(t, 200, got.Size)

	n, err := c.CountFiles()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFile_ByPathNotFound(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	got, err := c.FileByPath("/nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExtraction_RecordIsIdempotentByFileAndRun(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	fileID, err := c.UpsertFile(&File{Path: "/data/a.txt", Digest: "d1", Size: 10})
	require.NoError(t, err)
	runID, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)

	sidecar := "/sidecars/aa.txt.gz"
	id1, err := c.RecordExtraction(&Extraction{FileID: fileID, Method: "text", Status: ExtractionSuccess, SidecarPath: &sidecar, ExtractionRunID: runID})
	require.NoError(t, err)

	id2, err := c.RecordExtraction(&Extraction{FileID: fileID, Method: "ocr", Status: ExtractionSuccess, SidecarPath: &sidecar, ExtractionRunID: runID})
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "re-recording for the same (file, run) must update in place")

	stats, err := c.ExtractionStatsFor(runID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Success)
}

func TestFilesNeedingExtraction_ExcludesSuccessfullyExtracted(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	id1, err := c.UpsertFile(&File{Path: "/a.txt", Digest: "d1", Size: 1})
	require.NoError(t, err)
	_, err = c.UpsertFile(&File{Path: "/b.txt", Digest: "d2", Size: 1})
	require.NoError(t, err)

	runID, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)
	_, err = c.RecordExtraction(&Extraction{FileID: id1, Method: "text", Status: ExtractionSuccess, ExtractionRunID: runID})
	require.NoError(t, err)

	items, err := c.FilesNeedingExtraction(nil, 0, 10, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/b.txt", items[0].Path)
}

func TestFilesNeedingExtraction_ForceIncludesAlreadyExtracted(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	id1, err := c.UpsertFile(&File{Path: "/a.txt", Digest: "d1", Size: 1})
	require.NoError(t, err)
	_, err = c.UpsertFile(&File{Path: "/b.txt", Digest: "d2", Size: 1})
	require.NoError(t, err)

	runID, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)
	_, err = c.RecordExtraction(&Extraction{FileID: id1, Method: "text", Status: ExtractionSuccess, ExtractionRunID: runID})
	require.NoError(t, err)

	items, err := c.FilesNeedingExtraction(nil, 0, 10, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestFilesNeedingExtraction_SkipsConfiguredExtensions(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	_, err := c.UpsertFile(&File{Path: "/a.jpg", Digest: "d1", Size: 1})
	require.NoError(t, err)
	_, err = c.UpsertFile(&File{Path: "/b.txt", Digest: "d2", Size: 1})
	require.NoError(t, err)

	items, err := c.FilesNeedingExtraction([]string{".jpg"}, 0, 10, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/b.txt", items[0].Path)
}

func TestSampleFilesNeedingExtraction_CapsAtLimit(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	for _, p := range []string{"/a.txt", "/b.txt", "/c.txt"} {
		_, err := c.UpsertFile(&File{Path: p, Digest: "d", Size: 1})
		require.NoError(t, err)
	}

	sample, err := c.SampleFilesNeedingExtraction(2)
	require.NoError(t, err)
	assert.Len(t, sample, 2)
	assert.Equal(t, "/a.txt", sample[0])
}

func TestFilesNeedingLabeling_UsesMostRecentSuccessfulExtractionRun(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	fileID, err := c.UpsertFile(&File{Path: "/a.txt", Digest: "d1", Size: 1})
	require.NoError(t, err)

	run1, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)
	sidecar1 := "/sidecars/old.txt.gz"
	_, err = c.RecordExtraction(&Extraction{FileID: fileID, Method: "text", Status: ExtractionSuccess, SidecarPath: &sidecar1, ExtractionRunID: run1})
	require.NoError(t, err)

	run2, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)
	sidecar2 := "/sidecars/new.txt.gz"
	_, err = c.RecordExtraction(&Extraction{FileID: fileID, Method: "docling", Status: ExtractionSuccess, SidecarPath: &sidecar2, ExtractionRunID: run2})
	require.NoError(t, err)

	items, err := c.FilesNeedingLabeling(10, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, sidecar2, items[0].SidecarPath)
	assert.Equal(t, "docling", items[0].ExtractMethod)
}

func TestFilesNeedingLabeling_ForceIncludesAlreadyLabeled(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	fileID, err := c.UpsertFile(&File{Path: "/a.txt", Digest: "d1", Size: 1})
	require.NoError(t, err)
	extractRun, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)
	sidecar := "/sidecars/a.txt.gz"
	_, err = c.RecordExtraction(&Extraction{FileID: fileID, Method: "text", Status: ExtractionSuccess, SidecarPath: &sidecar, ExtractionRunID: extractRun})
	require.NoError(t, err)

	labelRun, err := c.CreateRun(RunLabel, nil)
	require.NoError(t, err)
	_, err = c.RecordLabel(&Label{FileID: fileID, DocType: "other", CanonicalName: "a", TargetGroupPath: "misc", Confidence: 0.1, LabelingRunID: labelRun})
	require.NoError(t, err)

	items, err := c.FilesNeedingLabeling(10, false)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = c.FilesNeedingLabeling(10, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestFilesNeedingLabeling_ExcludesFilesWithoutSuccessfulExtraction(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	fileID, err := c.UpsertFile(&File{Path: "/a.txt", Digest: "d1", Size: 1})
	require.NoError(t, err)
	runID, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)
	_, err = c.RecordExtraction(&Extraction{FileID: fileID, Method: "text", Status: ExtractionFailed, ExtractionRunID: runID})
	require.NoError(t, err)

	items, err := c.FilesNeedingLabeling(10, false)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLabel_RecordIsIdempotentByFileAndRun(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	fileID, err := c.UpsertFile(&File{Path: "/a.txt", Digest: "d1", Size: 1})
	require.NoError(t, err)
	runID, err := c.CreateRun(RunLabel, nil)
	require.NoError(t, err)

	l := &Label{FileID: fileID, DocType: "invoice", Confidence: 0.9, ModelName: "local-model", PromptVersion: "abc123", LabelingRunID: runID, SuggestedTags: []string{"finance"}}
	id1, err := c.RecordLabel(l)
	require.NoError(t, err)

	l.DocType = "receipt"
	id2, err := c.RecordLabel(l)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	stats, err := c.LabelingStatsFor(runID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByDocType["receipt"])
}

func TestLabelingStats_LowConfidenceThreshold(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	runID, err := c.CreateRun(RunLabel, nil)
	require.NoError(t, err)

	for i, conf := range []float64{0.3, 0.5, 0.95} {
		fileID, err := c.UpsertFile(&File{Path: filepath.Join("/", "doc", string(rune('a'+i))), Digest: "d", Size: 1})
		require.NoError(t, err)
		_, err = c.RecordLabel(&Label{FileID: fileID, DocType: "other", Confidence: conf, ModelName: "m", PromptVersion: "v", LabelingRunID: runID})
		require.NoError(t, err)
	}

	stats, err := c.LabelingStatsFor(runID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.LowConfidence)
}

func TestPlan_InsertAndByRun(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	fileID, err := c.UpsertFile(&File{Path: "/a.txt", Digest: "d1", Size: 1})
	require.NoError(t, err)
	labelRunID, err := c.CreateRun(RunLabel, nil)
	require.NoError(t, err)
	labelID, err := c.RecordLabel(&Label{FileID: fileID, DocType: "invoice", ModelName: "m", PromptVersion: "v", LabelingRunID: labelRunID})
	require.NoError(t, err)

	planRunID, err := c.CreateRun(RunPlan, nil)
	require.NoError(t, err)

	id, err := c.InsertPlan(&Plan{
		FileID: fileID, LabelID: labelID, Operation: OpCopy,
		SourcePath: "/a.txt", TargetPath: "/library/invoices", TargetFilename: "2024-01-01-acme-invoice.txt",
		Tags: []string{"finance", "invoice"}, NeedsReview: false, PlanRunID: planRunID,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	plans, err := c.PlansByRun(planRunID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, OpCopy, plans[0].Operation)
	assert.Equal(t, []string{"finance", "invoice"}, plans[0].Tags)
}

func TestStats_AggregatesAcrossTables(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	_, err := c.UpsertFile(&File{Path: "/a.txt", Digest: "d1", Size: 1})
	require.NoError(t, err)
	scanRunID, err := c.CreateRun(RunScan, nil)
	require.NoError(t, err)
	extractRunID, err := c.CreateRun(RunExtract, nil)
	require.NoError(t, err)
	_ = scanRunID

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.RunsByType["scan"])
	assert.Equal(t, 1, stats.RunsByType["extract"])
	_ = extractRunID
}

func TestCategorizeError(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Extension .xyz has no extractor":     "Extension ",
		"No extractor available for mimetype": "No extractor available",
		"All extractors failed for file":      "All extractors failed",
		"Worker hung after 600s":              "Worker hung after",
		"Worker error: exit status 1":         "Worker error",
		"connection timed out after 30s":      "timed out",
		"some unrelated message":              "",
	}
	for msg, want := range cases {
		assert.Equal(t, want, CategorizeError(msg), "message: %s", msg)
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }
