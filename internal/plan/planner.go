// Package plan derives materialization plans from label rows and realizes
// them into a staging tree.
package plan

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jward/lucien/internal/catalog"
)

// lowConfidenceThreshold and the uncategorized doc_types below are the
// needs-review predicate, ported from the only non-stub logic in the
// original planner (should_needs_review).
const lowConfidenceThreshold = 0.5

var uncategorizedDocTypes = map[string]bool{
	"other":         true,
	"uncategorized": true,
}

// Generate reads every label produced by labelingRunID, computes a plan row
// for each, and inserts them under a fresh plan run. It returns that run's
// id and the rows it wrote.
func Generate(cat *catalog.Catalog, labelingRunID int64) (int64, []catalog.Plan, error) {
	labels, err := cat.LabelsByRun(labelingRunID)
	if err != nil {
		return 0, nil, fmt.Errorf("plan: load labels for run %d: %w", labelingRunID, err)
	}

	runID, err := cat.CreateRun(catalog.RunPlan, map[string]any{"labeling_run_id": labelingRunID})
	if err != nil {
		return 0, nil, fmt.Errorf("plan: create plan run: %w", err)
	}

	var rows []catalog.Plan
	var runErr error
	for _, label := range labels {
		p, err := planForLabel(cat, &label, runID)
		if err != nil {
			runErr = err
			continue
		}
		id, err := cat.InsertPlan(p)
		if err != nil {
			runErr = err
			continue
		}
		p.ID = id
		rows = append(rows, *p)
	}

	if err := cat.CompleteRun(runID, runErr); err != nil {
		return runID, rows, fmt.Errorf("plan: complete run: %w", err)
	}
	return runID, rows, nil
}

func planForLabel(cat *catalog.Catalog, label *catalog.Label, planRunID int64) (*catalog.Plan, error) {
	file, err := cat.File(label.FileID)
	if err != nil {
		return nil, fmt.Errorf("plan: load file %d: %w", label.FileID, err)
	}

	return &catalog.Plan{
		FileID:         label.FileID,
		LabelID:        label.ID,
		Operation:      catalog.OpCopy,
		SourcePath:     file.Path,
		TargetPath:     targetPath(label),
		TargetFilename: targetFilename(label, file.Path),
		Tags:           label.SuggestedTags,
		NeedsReview:    needsReview(label),
		PlanRunID:      planRunID,
	}, nil
}

// targetPath is the label's own target group path, used verbatim as a
// directory path relative to the staging root.
func targetPath(label *catalog.Label) string {
	return label.TargetGroupPath
}

// targetFilename appends the source file's original extension to the
// model's canonical filename.
func targetFilename(label *catalog.Label, sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	if strings.HasSuffix(label.CanonicalName, ext) {
		return label.CanonicalName
	}
	return label.CanonicalName + ext
}

// needsReview flags a plan row when its label's confidence is low or its
// doc_type never resolved to a real category, ported one-for-one from the
// original's should_needs_review.
func needsReview(label *catalog.Label) bool {
	if label.Confidence < lowConfidenceThreshold {
		return true
	}
	return uncategorizedDocTypes[label.DocType]
}

// ExportJSONL writes one JSON object per line for every plan row.
func ExportJSONL(w io.Writer, rows []catalog.Plan) error {
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("plan: encode jsonl row for file %d: %w", row.FileID, err)
		}
	}
	return nil
}

var csvHeader = []string{
	"file_id", "source_path", "target_path", "target_filename",
	"doc_type", "tags", "confidence", "needs_review",
}

// ExportCSV writes a human-reviewable CSV view of the plan, one row per
// file, joined against the originating labels for doc_type and confidence.
func ExportCSV(w io.Writer, cat *catalog.Catalog, rows []catalog.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("plan: write csv header: %w", err)
	}

	for _, row := range rows {
		label, err := cat.Label(row.LabelID)
		if err != nil {
			return fmt.Errorf("plan: load label %d for csv export: %w", row.LabelID, err)
		}
		record := []string{
			strconv.FormatInt(row.FileID, 10),
			row.SourcePath,
			row.TargetPath,
			row.TargetFilename,
			label.DocType,
			strings.Join(row.Tags, ";"),
			strconv.FormatFloat(label.Confidence, 'f', 2, 64),
			strconv.FormatBool(row.NeedsReview),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("plan: write csv row for file %d: %w", row.FileID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
