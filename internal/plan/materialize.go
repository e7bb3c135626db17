package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jward/lucien/internal/catalog"
)

// Summary reports how a materialization run went.
type Summary struct {
	Placed int
	Failed int
	Errors []error
}

// Materialize places every plan row under stagingRoot, either hardlinking
// or copying the source depending on each row's Operation, then applies the
// row's tags. A failure on one row is counted and remembered, never
// aborting the run.
func Materialize(rows []catalog.Plan, stagingRoot string, applyTags bool) Summary {
	var summary Summary
	for _, row := range rows {
		if err := materializeOne(row, stagingRoot, applyTags); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Errorf("plan: materialize file %d: %w", row.FileID, err))
			continue
		}
		summary.Placed++
	}
	return summary
}

func materializeOne(row catalog.Plan, stagingRoot string, applyTags bool) error {
	dest := filepath.Join(stagingRoot, row.TargetPath, row.TargetFilename)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	if err := place(row, dest); err != nil {
		return err
	}

	if applyTags && len(row.Tags) > 0 {
		if err := ApplyTags(dest, row.Tags); err != nil {
			return fmt.Errorf("apply tags: %w", err)
		}
	}
	return nil
}

func place(row catalog.Plan, dest string) error {
	if row.Operation == catalog.OpHardlink {
		err := os.Link(row.SourcePath, dest)
		if err == nil {
			return nil
		}
		if !errors.Is(err, syscall.EXDEV) {
			return fmt.Errorf("hardlink: %w", err)
		}
		// Cross-device link: fall through to a copy.
	}
	return copyFile(row.SourcePath, dest)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
