package catalog

import (
	"encoding/json"
	"fmt"
)

// RecordLabel inserts or updates (by file_id, labeling_run_id) a label row.
func (c *Catalog) RecordLabel(l *Label) (int64, error) {
	tagsJSON, err := json.Marshal(l.SuggestedTags)
	if err != nil {
		return 0, fmt.Errorf("catalog: marshal tags for file %d: %w", l.FileID, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO labels (
			file_id, doc_type, title, canonical_filename, suggested_tags,
			target_group_path, date, issuer, source, confidence, explanation,
			model_name, prompt_version, labeling_run_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s','now'))
		ON CONFLICT(file_id, labeling_run_id) DO UPDATE SET
			doc_type = excluded.doc_type,
			title = excluded.title,
			canonical_filename = excluded.canonical_filename,
			suggested_tags = excluded.suggested_tags,
			target_group_path = excluded.target_group_path,
			date = excluded.date,
			issuer = excluded.issuer,
			source = excluded.source,
			confidence = excluded.confidence,
			explanation = excluded.explanation,
			model_name = excluded.model_name,
			prompt_version = excluded.prompt_version`,
		l.FileID, l.DocType, l.Title, l.CanonicalName, string(tagsJSON),
		l.TargetGroupPath, l.Date, l.Issuer, l.Source, l.Confidence, l.Explanation,
		l.ModelName, l.PromptVersion, l.LabelingRunID,
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: record label for file %d: %w", l.FileID, err)
	}
	var id int64
	row := c.db.QueryRow(`SELECT id FROM labels WHERE file_id = ? AND labeling_run_id = ?`, l.FileID, l.LabelingRunID)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("catalog: read back label for file %d: %w", l.FileID, err)
	}
	return id, nil
}

// FilesNeedingLabeling returns files with a successful extraction but no
// label row, joined to the sidecar path of their most recent successful
// extraction run. Ambiguity across multiple extraction runs (spec's open
// question) is resolved here: ORDER BY extraction_run_id DESC picks the
// latest run's sidecar deterministically, rather than SQL's unordered
// MAX(output_path). When force is true, the no-label filter is dropped so
// already-labeled files are relabeled too.
func (c *Catalog) FilesNeedingLabeling(limit int, force bool) ([]WorkItem, error) {
	query := `
		SELECT f.id, f.path, f.digest, f.size, f.mime_type, f.mtime,
		       COALESCE(le.sidecar_path, ''), COALESCE(le.method, '')
		FROM files f
		INNER JOIN extractions e ON e.file_id = f.id AND e.status = 'success'
		LEFT JOIN labels l ON l.file_id = f.id
		LEFT JOIN (
			SELECT e1.file_id, e1.sidecar_path, e1.method
			FROM extractions e1
			WHERE e1.status = 'success'
			AND e1.extraction_run_id = (
				SELECT e2.extraction_run_id FROM extractions e2
				WHERE e2.file_id = e1.file_id AND e2.status = 'success'
				ORDER BY e2.extraction_run_id DESC LIMIT 1
			)
		) le ON le.file_id = f.id`
	if !force {
		query += "\n\t\tWHERE l.id IS NULL"
	}
	query += "\n\t\tGROUP BY f.id\n\t\tORDER BY f.path"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: files needing labeling: %w", err)
	}
	defer rows.Close()

	var items []WorkItem
	for rows.Next() {
		var w WorkItem
		if err := rows.Scan(&w.FileID, &w.Path, &w.Digest, &w.Size, &w.MimeType, &w.Mtime, &w.SidecarPath, &w.ExtractMethod); err != nil {
			return nil, fmt.Errorf("catalog: scan labeling work item: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// Label fetches one label row by id.
func (c *Catalog) Label(labelID int64) (*Label, error) {
	row := c.db.QueryRow(
		`SELECT id, file_id, doc_type, title, canonical_filename, suggested_tags,
		        target_group_path, date, issuer, source, confidence, explanation,
		        model_name, prompt_version, labeling_run_id, created_at
		 FROM labels WHERE id = ?`, labelID)

	var l Label
	var tagsJSON string
	if err := row.Scan(&l.ID, &l.FileID, &l.DocType, &l.Title, &l.CanonicalName, &tagsJSON,
		&l.TargetGroupPath, &l.Date, &l.Issuer, &l.Source, &l.Confidence, &l.Explanation,
		&l.ModelName, &l.PromptVersion, &l.LabelingRunID, &l.CreatedAt); err != nil {
		return nil, fmt.Errorf("catalog: label %d: %w", labelID, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &l.SuggestedTags); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal tags for label %d: %w", labelID, err)
	}
	return &l, nil
}

// CountFilesNeedingLabeling is the count variant of FilesNeedingLabeling.
func (c *Catalog) CountFilesNeedingLabeling() (int, error) {
	var n int
	err := c.db.QueryRow(`
		SELECT COUNT(DISTINCT f.id)
		FROM files f
		INNER JOIN extractions e ON e.file_id = f.id AND e.status = 'success'
		LEFT JOIN labels l ON l.file_id = f.id
		WHERE l.id IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("catalog: count files needing labeling: %w", err)
	}
	return n, nil
}

// LabelingStatsFor summarizes label rows, optionally scoped to one run.
func (c *Catalog) LabelingStatsFor(runID int64) (LabelingStats, error) {
	filter := ""
	var args []any
	if runID != 0 {
		filter = " WHERE labeling_run_id = ?"
		args = append(args, runID)
	}

	stats := LabelingStats{ByDocType: map[string]int{}, ByModel: map[string]int{}}

	if err := c.db.QueryRow("SELECT COUNT(*) FROM labels"+filter, args...).Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("catalog: labeling stats total: %w", err)
	}

	rows, err := c.db.Query("SELECT doc_type, COUNT(*) FROM labels"+filter+" GROUP BY doc_type", args...)
	if err != nil {
		return stats, fmt.Errorf("catalog: labeling stats by doc_type: %w", err)
	}
	for rows.Next() {
		var docType string
		var n int
		if err := rows.Scan(&docType, &n); err != nil {
			rows.Close()
			return stats, fmt.Errorf("catalog: scan doc_type stats: %w", err)
		}
		stats.ByDocType[docType] = n
	}
	rows.Close()

	rows, err = c.db.Query("SELECT model_name, COUNT(*) FROM labels"+filter+" GROUP BY model_name", args...)
	if err != nil {
		return stats, fmt.Errorf("catalog: labeling stats by model: %w", err)
	}
	for rows.Next() {
		var model string
		var n int
		if err := rows.Scan(&model, &n); err != nil {
			rows.Close()
			return stats, fmt.Errorf("catalog: scan model stats: %w", err)
		}
		stats.ByModel[model] = n
	}
	rows.Close()

	var avg, min, max *float64
	err = c.db.QueryRow("SELECT AVG(confidence), MIN(confidence), MAX(confidence) FROM labels"+filter, args...).Scan(&avg, &min, &max)
	if err != nil {
		return stats, fmt.Errorf("catalog: labeling stats confidence: %w", err)
	}
	if avg != nil {
		stats.AvgConfidence, stats.MinConfidence, stats.MaxConfidence = *avg, *min, *max
	}

	lowFilter := "WHERE confidence < 0.7"
	lowArgs := []any{}
	if runID != 0 {
		lowFilter += " AND labeling_run_id = ?"
		lowArgs = append(lowArgs, runID)
	}
	if err := c.db.QueryRow("SELECT COUNT(*) FROM labels "+lowFilter, lowArgs...).Scan(&stats.LowConfidence); err != nil {
		return stats, fmt.Errorf("catalog: labeling stats low confidence: %w", err)
	}

	return stats, nil
}
