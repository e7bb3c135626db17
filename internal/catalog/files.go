package catalog

import (
	"database/sql"
	"errors"
	"fmt"
)

// UpsertFile inserts a new file row or updates digest/size/MIME/mtime/ctime
// and scan_run_id when the path already exists. A zero ScanRunID is stored
// as NULL. Returns the file id.
func (c *Catalog) UpsertFile(f *File) (int64, error) {
	var scanRunID any
	if f.ScanRunID != 0 {
		scanRunID = f.ScanRunID
	}
	_, err := c.db.Exec(
		`INSERT INTO files (path, digest, size, mime_type, mtime, ctime, scan_run_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, strftime('%s','now'))
		 ON CONFLICT(path) DO UPDATE SET
		   digest = excluded.digest,
		   size = excluded.size,
		   mime_type = excluded.mime_type,
		   mtime = excluded.mtime,
		   ctime = excluded.ctime,
		   scan_run_id = excluded.scan_run_id`,
		f.Path, f.Digest, f.Size, f.MimeType, f.Mtime, f.Ctime, scanRunID,
	)
	if err != nil {
		return 0, fmt.Errorf("catalog: upsert file %s: %w", f.Path, err)
	}
	return c.FileIDByPath(f.Path)
}

// FileIDByPath returns the id of the file at path.
func (c *Catalog) FileIDByPath(path string) (int64, error) {
	var id int64
	err := c.db.QueryRow(`SELECT id FROM files WHERE path = ?`, path).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("catalog: lookup file %s: %w", path, err)
	}
	return id, nil
}

// FileByPath returns the file row at path, or nil if it doesn't exist.
func (c *Catalog) FileByPath(path string) (*File, error) {
	row := c.db.QueryRow(
		`SELECT id, path, digest, size, mime_type, mtime, ctime, COALESCE(scan_run_id, 0), created_at FROM files WHERE path = ?`,
		path,
	)
	f := &File{}
	if err := row.Scan(&f.ID, &f.Path, &f.Digest, &f.Size, &f.MimeType, &f.Mtime, &f.Ctime, &f.ScanRunID, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: get file %s: %w", path, err)
	}
	return f, nil
}

// File returns the file row by id.
func (c *Catalog) File(fileID int64) (*File, error) {
	row := c.db.QueryRow(
		`SELECT id, path, digest, size, mime_type, mtime, ctime, COALESCE(scan_run_id, 0), created_at FROM files WHERE id = ?`,
		fileID,
	)
	f := &File{}
	if err := row.Scan(&f.ID, &f.Path, &f.Digest, &f.Size, &f.MimeType, &f.Mtime, &f.Ctime, &f.ScanRunID, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: get file %d: %w", fileID, err)
	}
	return f, nil
}

// CountFiles returns the total number of file rows.
func (c *Catalog) CountFiles() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count files: %w", err)
	}
	return n, nil
}
