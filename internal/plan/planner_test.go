package plan

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lucien/internal/catalog"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	c, err := catalog.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func recordLabel(t *testing.T, cat *catalog.Catalog, labelRunID int64, path string, label catalog.Label) catalog.Label {
	t.Helper()
	fileID, err := cat.UpsertFile(&catalog.File{Path: path, Digest: "d-" + path, Size: 10})
	require.NoError(t, err)
	label.FileID = fileID
	label.LabelingRunID = labelRunID
	label.ModelName = "local-model"
	label.PromptVersion = "v1"
	id, err := cat.RecordLabel(&label)
	require.NoError(t, err)
	label.ID = id
	return label
}

func TestGenerate_ComputesTargetPathAndFilename(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	labelRunID, err := cat.CreateRun(catalog.RunLabel, nil)
	require.NoError(t, err)

	recordLabel(t, cat, labelRunID, "/source/a.pdf", catalog.Label{
		DocType:         "invoice",
		CanonicalName:   "2024-01-01-Finance-Acme-Invoice",
		TargetGroupPath: "Finance/Invoices",
		SuggestedTags:   []string{"finance", "invoice"},
		Confidence:      0.95,
	})

	runID, rows, err := Generate(cat, labelRunID)
	require.NoError(t, err)
	require.NotZero(t, runID)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Finance/Invoices", row.TargetPath)
	assert.Equal(t, "2024-01-01-Finance-Acme-Invoice.pdf", row.TargetFilename)
	assert.Equal(t, []string{"finance", "invoice"}, row.Tags)
	assert.False(t, row.NeedsReview)
	assert.Equal(t, "/source/a.pdf", row.SourcePath)
}

func TestGenerate_FlagsLowConfidenceForReview(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	labelRunID, err := cat.CreateRun(catalog.RunLabel, nil)
	require.NoError(t, err)

	recordLabel(t, cat, labelRunID, "/source/b.pdf", catalog.Label{
		DocType:         "invoice",
		CanonicalName:   "2024-01-01-Finance-Acme-Invoice",
		TargetGroupPath: "Finance/Invoices",
		Confidence:      0.3,
	})

	_, rows, err := Generate(cat, labelRunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].NeedsReview)
}

func TestGenerate_FlagsUncategorizedForReview(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	labelRunID, err := cat.CreateRun(catalog.RunLabel, nil)
	require.NoError(t, err)

	recordLabel(t, cat, labelRunID, "/source/c.pdf", catalog.Label{
		DocType:         "other",
		CanonicalName:   "2024-01-01-Unknown",
		TargetGroupPath: "Unsorted",
		Confidence:      0.99,
	})

	_, rows, err := Generate(cat, labelRunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].NeedsReview)
}

func TestGenerate_DoesNotDoubleAppendExtensionAlreadyPresent(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	labelRunID, err := cat.CreateRun(catalog.RunLabel, nil)
	require.NoError(t, err)

	recordLabel(t, cat, labelRunID, "/source/d.txt", catalog.Label{
		DocType:       "note",
		CanonicalName: "2024-01-01-Note.txt",
		Confidence:    0.9,
	})

	_, rows, err := Generate(cat, labelRunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-01-Note.txt", rows[0].TargetFilename)
}

func TestExportJSONL_WritesOneObjectPerLine(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	labelRunID, err := cat.CreateRun(catalog.RunLabel, nil)
	require.NoError(t, err)
	recordLabel(t, cat, labelRunID, "/source/e.pdf", catalog.Label{
		DocType: "invoice", CanonicalName: "x", TargetGroupPath: "g", Confidence: 0.9,
	})
	recordLabel(t, cat, labelRunID, "/source/f.pdf", catalog.Label{
		DocType: "receipt", CanonicalName: "y", TargetGroupPath: "g", Confidence: 0.9,
	})
	_, rows, err := Generate(cat, labelRunID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportJSONL(&buf, rows))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestExportCSV_IncludesHeaderAndJoinedLabelFields(t *testing.T) {
	t.Parallel()
	cat := newTestCatalog(t)
	labelRunID, err := cat.CreateRun(catalog.RunLabel, nil)
	require.NoError(t, err)
	recordLabel(t, cat, labelRunID, "/source/g.pdf", catalog.Label{
		DocType: "invoice", CanonicalName: "x", TargetGroupPath: "g",
		SuggestedTags: []string{"a", "b"}, Confidence: 0.87,
	})
	_, rows, err := Generate(cat, labelRunID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, cat, rows))
	out := buf.String()
	assert.Contains(t, out, "file_id,source_path,target_path,target_filename,doc_type,tags,confidence,needs_review")
	assert.Contains(t, out, "invoice")
	assert.Contains(t, out, "a;b")
}
