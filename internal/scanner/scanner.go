// Package scanner walks a source root and upserts discovered files into the
// catalog under a scan run.
package scanner

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/jward/lucien/internal/catalog"
)

// Options configures one scan.
type Options struct {
	SkipDirs       map[string]bool
	FollowSymlinks bool
}

// Result summarizes the outcome of one scan run.
type Result struct {
	RunID      int64
	FilesSeen  int
	Errors     int
}

// Scan walks root and upserts every regular file found into cat under a new
// scan run, returning the run id and counts. Stat/read errors on individual
// files are counted but do not abort the walk.
func Scan(ctx context.Context, cat *catalog.Catalog, root string, opts Options) (Result, error) {
	runID, err := cat.CreateRun(catalog.RunScan, map[string]any{
		"root":            root,
		"follow_symlinks": opts.FollowSymlinks,
	})
	if err != nil {
		return Result{}, fmt.Errorf("scanner: create run: %w", err)
	}

	var res Result
	res.RunID = runID

	walkErr := walk(ctx, root, opts, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := statAndHash(path, runID)
		if err != nil {
			res.Errors++
			return nil
		}
		if _, err := cat.UpsertFile(f); err != nil {
			res.Errors++
			return nil
		}
		res.FilesSeen++
		return nil
	})

	if walkErr != nil {
		_ = cat.CompleteRun(runID, walkErr)
		return res, fmt.Errorf("scanner: walk %s: %w", root, walkErr)
	}
	if err := cat.CompleteRun(runID, nil); err != nil {
		return res, fmt.Errorf("scanner: complete run: %w", err)
	}
	return res, nil
}

func statAndHash(path string, runID int64) (*catalog.File, error) {
	info, err := statFollow(path)
	if err != nil {
		return nil, fmt.Errorf("scanner: stat %s: %w", path, err)
	}

	digest, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("scanner: hash %s: %w", path, err)
	}

	return &catalog.File{
		Path:      path,
		Digest:    digest,
		Size:      info.Size(),
		MimeType:  guessMimeType(path),
		Mtime:     info.ModTime().Unix(),
		Ctime:     statCtime(info),
		ScanRunID: runID,
	}, nil
}

func guessMimeType(path string) string {
	ext := filepath.Ext(path)
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// DefaultSkipDirs is the set pruned by a scan unless overridden by
// config.ScanConfig.SkipDirs.
func DefaultSkipDirs() map[string]bool {
	return map[string]bool{
		".git": true, ".DS_Store": true, "node_modules": true, "__pycache__": true,
	}
}
