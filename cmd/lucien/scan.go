package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/lucien/internal/catalog"
	"github.com/jward/lucien/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Walk source_root and record every file in the catalog",
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Open(cfg.IndexDB)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	skipDirs := make(map[string]bool, len(cfg.Scan.SkipDirs))
	for _, d := range cfg.Scan.SkipDirs {
		skipDirs[d] = true
	}

	result, err := scanner.Scan(context.Background(), cat, cfg.SourceRoot, scanner.Options{
		SkipDirs:       skipDirs,
		FollowSymlinks: cfg.Scan.FollowSymlinks,
	})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	logger.Sugar().Infow("scan complete", "files_seen", result.FilesSeen, "errors", result.Errors)
	fmt.Fprintf(os.Stdout, "Scanned %d files (%d errors), run %d\n", result.FilesSeen, result.Errors, result.RunID)
	return nil
}
