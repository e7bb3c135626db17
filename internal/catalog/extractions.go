package catalog

import (
	"fmt"
	"strings"
)

// RecordExtraction inserts or updates (by file_id, extraction_run_id) the
// outcome of one extraction attempt.
func (c *Catalog) RecordExtraction(e *Extraction) (int64, error) {
	_, err := c.db.Exec(
		`INSERT INTO extractions (file_id, method, status, sidecar_path, error, extraction_run_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, strftime('%s','now'))
		 ON CONFLICT(file_id, extraction_run_id) DO UPDATE SET
		   method = excluded.method,
		   status = excluded.status,
		   sidecar_path = excluded.sidecar_path,
		   error = excluded.error`,
		e.FileID, e.Method, string(e.Status), e.SidecarPath, e.Error, e.ExtractionRunID,
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: record extraction for file %d: %w", e.FileID, err)
	}
	var id int64
	row := c.db.QueryRow(`SELECT id FROM extractions WHERE file_id = ? AND extraction_run_id = ?`, e.FileID, e.ExtractionRunID)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("catalog: read back extraction for file %d: %w", e.FileID, err)
	}
	return id, nil
}

// skipClause builds the "AND LOWER(path) NOT LIKE '%ext'" fragment for a
// skip-extensions list, matching on a case-insensitive suffix.
func skipClause(column string, skipExtensions []string) (string, []any) {
	if len(skipExtensions) == 0 {
		return "", nil
	}
	var b strings.Builder
	args := make([]any, 0, len(skipExtensions))
	for i, ext := range skipExtensions {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "LOWER(%s) NOT LIKE ?", column)
		args = append(args, "%"+strings.ToLower(ext))
	}
	return b.String(), args
}

// FilesNeedingExtraction pages through files with no successful extraction
// row, ordered by id, optionally excluding paths whose lowercased suffix is
// in skipExtensions. afterID/limit implement a stable keyset cursor (every
// returned id is strictly greater than afterID) rather than LIMIT/OFFSET:
// offset-based paging drifts when rows are concurrently removed from the
// filtered set (here, by extractions completing mid-run), silently
// skipping over genuine backlog files. A cursor on the immutable id column
// has no such drift. When force is true, the successful-extraction filter
// is dropped and every file in the catalog is returned instead, so a run
// can recompute extractions that already succeeded.
func (c *Catalog) FilesNeedingExtraction(skipExtensions []string, afterID int64, limit int, force bool) ([]WorkItem, error) {
	query := `SELECT f.id, f.path, f.digest, f.size, f.mime_type, f.mtime
		FROM files f
		LEFT JOIN extractions e ON f.id = e.file_id AND e.status = 'success'`
	where := []string{"f.id > ?"}
	args := []any{afterID}
	if !force {
		where = append(where, "e.id IS NULL")
	}
	if clause, clauseArgs := skipClause("f.path", skipExtensions); clause != "" {
		where = append(where, "("+clause+")")
		args = append(args, clauseArgs...)
	}
	query += " WHERE " + strings.Join(where, " AND ")
	query += " ORDER BY f.id LIMIT ?"
	args = append(args, limit)

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: files needing extraction: %w", err)
	}
	defer rows.Close()

	var items []WorkItem
	for rows.Next() {
		var w WorkItem
		if err := rows.Scan(&w.FileID, &w.Path, &w.Digest, &w.Size, &w.MimeType, &w.Mtime); err != nil {
			return nil, fmt.Errorf("catalog: scan work item: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// CountFilesNeedingExtraction is the count variant of FilesNeedingExtraction,
// used for progress reporting.
func (c *Catalog) CountFilesNeedingExtraction(skipExtensions []string) (int, error) {
	query := `SELECT COUNT(*) FROM files f
		LEFT JOIN extractions e ON f.id = e.file_id AND e.status = 'success'
		WHERE e.id IS NULL`
	var args []any
	if clause, clauseArgs := skipClause("f.path", skipExtensions); clause != "" {
		query += " AND (" + clause + ")"
		args = append(args, clauseArgs...)
	}
	var n int
	if err := c.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count files needing extraction: %w", err)
	}
	return n, nil
}

// SampleFilesNeedingExtraction returns up to n paths still awaiting
// extraction, for spot-checking a large backlog without paging through it.
func (c *Catalog) SampleFilesNeedingExtraction(n int) ([]string, error) {
	rows, err := c.db.Query(`
		SELECT f.path FROM files f
		LEFT JOIN extractions e ON f.id = e.file_id AND e.status = 'success'
		WHERE e.id IS NULL
		ORDER BY f.path LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("catalog: sample files needing extraction: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("catalog: scan sample path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// ExtractionStatsFor returns success/failed/skipped counts, optionally
// scoped to a single extraction run (runID == 0 means all runs).
func (c *Catalog) ExtractionStatsFor(runID int64) (ExtractionStats, error) {
	query := `SELECT status, COUNT(*) FROM extractions`
	var args []any
	if runID != 0 {
		query += ` WHERE extraction_run_id = ?`
		args = append(args, runID)
	}
	query += ` GROUP BY status`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return ExtractionStats{}, fmt.Errorf("catalog: extraction stats: %w", err)
	}
	defer rows.Close()

	var stats ExtractionStats
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return ExtractionStats{}, fmt.Errorf("catalog: scan extraction stats: %w", err)
		}
		switch ExtractionStatus(status) {
		case ExtractionSuccess:
			stats.Success = n
		case ExtractionFailed:
			stats.Failed = n
		case ExtractionSkipped:
			stats.Skipped = n
		}
	}
	return stats, rows.Err()
}
