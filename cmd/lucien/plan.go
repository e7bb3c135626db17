package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/lucien/internal/catalog"
	"github.com/jward/lucien/internal/plan"
)

var (
	flagLabelingRun int64
	flagPlanOutDir  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a materialization plan from a labeling run and export it for review",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().Int64Var(&flagLabelingRun, "labeling-run", 0, "labeling run id to plan from (default: most recent)")
	planCmd.Flags().StringVar(&flagPlanOutDir, "out-dir", ".", "directory to write plan-<run>.jsonl and plan-<run>.csv into")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Open(cfg.IndexDB)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	labelingRunID := flagLabelingRun
	if labelingRunID == 0 {
		runID, err := cat.LatestRunID(catalog.RunLabel)
		if err != nil {
			return fmt.Errorf("plan: find latest labeling run: %w", err)
		}
		labelingRunID = runID
	}

	runID, rows, err := plan.Generate(cat, labelingRunID)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	outDir := flagPlanOutDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("plan: create output dir: %w", err)
	}

	jsonlPath := filepath.Join(outDir, fmt.Sprintf("plan-%d.jsonl", runID))
	if err := writePlanJSONL(jsonlPath, rows); err != nil {
		return err
	}
	csvPath := filepath.Join(outDir, fmt.Sprintf("plan-%d.csv", runID))
	if err := writePlanCSV(csvPath, cat, rows); err != nil {
		return err
	}

	needsReview := 0
	for _, r := range rows {
		if r.NeedsReview {
			needsReview++
		}
	}

	logger.Sugar().Infow("plan generated", "run_id", runID, "rows", len(rows), "needs_review", needsReview)
	fmt.Fprintf(os.Stdout, "Plan run %d: %d rows (%d need review)\nWrote %s\nWrote %s\n", runID, len(rows), needsReview, jsonlPath, csvPath)
	return nil
}

func writePlanJSONL(path string, rows []catalog.Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plan: create %s: %w", path, err)
	}
	defer f.Close()
	return plan.ExportJSONL(f, rows)
}

func writePlanCSV(path string, cat *catalog.Catalog, rows []catalog.Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plan: create %s: %w", path, err)
	}
	defer f.Close()
	return plan.ExportCSV(f, cat, rows)
}
