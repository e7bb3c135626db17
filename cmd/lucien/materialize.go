package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/lucien/internal/catalog"
	"github.com/jward/lucien/internal/plan"
)

var flagPlanRun int64

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Copy or hardlink planned files into the staging tree",
	RunE:  runMaterialize,
}

func init() {
	materializeCmd.Flags().Int64Var(&flagPlanRun, "plan-run", 0, "plan run id to materialize (default: most recent)")
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Open(cfg.IndexDB)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	planRunID := flagPlanRun
	if planRunID == 0 {
		runID, err := cat.LatestRunID(catalog.RunPlan)
		if err != nil {
			return fmt.Errorf("materialize: find latest plan run: %w", err)
		}
		planRunID = runID
	}

	rows, err := cat.PlansByRun(planRunID)
	if err != nil {
		return fmt.Errorf("materialize: load plan rows: %w", err)
	}

	applyTags := cfg.Materialize.ApplyTags
	if cfg.Materialize.DefaultMode == "hardlink" {
		for i := range rows {
			rows[i].Operation = catalog.OpHardlink
		}
	}

	summary := plan.Materialize(rows, cfg.StagingRoot, applyTags)

	logger.Sugar().Infow("materialization complete", "plan_run_id", planRunID, "placed", summary.Placed, "failed", summary.Failed)
	fmt.Fprintf(os.Stdout, "Materialized plan %d: %d placed, %d failed\n", planRunID, summary.Placed, summary.Failed)
	for _, e := range summary.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	}
	return nil
}
