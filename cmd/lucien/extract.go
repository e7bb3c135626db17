package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jward/lucien/internal/catalog"
	"github.com/jward/lucien/internal/config"
	"github.com/jward/lucien/internal/pool"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the process-isolated extractor pool over the scan backlog",
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Open(cfg.IndexDB)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sup := pool.New(cat, pool.DefaultBinaryPath(), pool.Options{
		Workers:           cfg.Pool.Workers,
		MaxTasksPerWorker: maxTasksPerWorker(cfg),
		SidecarRoot:       cfg.ExtractedTextDir,
		MaxChars:          cfg.Extraction.MaxTextLength,
		SkipExtensions:    cfg.Extraction.SkipExtensions,
		Force:             flagForce,
	})

	runID, err := sup.Run(ctx)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	stats, err := cat.ExtractionStatsFor(runID)
	if err != nil {
		return fmt.Errorf("extract: load stats: %w", err)
	}
	logger.Sugar().Infow("extraction complete", "run_id", runID, "success", stats.Success, "failed", stats.Failed, "skipped", stats.Skipped)
	fmt.Fprintf(os.Stdout, "Extraction run %d: %d succeeded, %d failed, %d skipped\n", runID, stats.Success, stats.Failed, stats.Skipped)
	return nil
}

// maxTasksPerWorker recycles workers sooner when a heavy native extractor
// is enabled, since those leak memory across invocations faster than the
// lightweight chain members.
func maxTasksPerWorker(c *config.Config) int {
	if c.Extraction.UseDocling || c.Extraction.UseOCR {
		return 20
	}
	return 200
}
