package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/lucien/internal/catalog"
	"github.com/jward/lucien/internal/labeling"
	"github.com/jward/lucien/internal/llm"
	"github.com/jward/lucien/internal/sidecar"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label every extracted file with a local LLM, escalating when necessary",
	RunE:  runLabel,
}

func runLabel(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Open(cfg.IndexDB)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	timeout, err := time.ParseDuration(cfg.LLM.Timeout)
	if err != nil {
		timeout = 120 * time.Second
	}
	client := llm.New(cfg.LLM.BaseURL, timeout)
	client.MaxRetries = cfg.LLM.MaxRetries
	client.Temperature = cfg.LLM.Temperature
	client.MaxTokens = cfg.LLM.MaxTokens

	ctx := context.Background()
	required := []string{cfg.LLM.DefaultModel, cfg.LLM.EscalationModel}
	ok, missing, err := client.ProbeModels(ctx, required)
	if err != nil {
		logger.Sugar().Warnw("could not probe LLM endpoint for loaded models, continuing anyway", "error", err)
	} else if !ok {
		return fmt.Errorf("label: required model(s) not loaded: %v", missing)
	}

	store := sidecar.New(cfg.ExtractedTextDir)

	limit := flagLimit
	items, err := cat.FilesNeedingLabeling(limit, flagForce)
	if err != nil {
		return fmt.Errorf("label: load work queue: %w", err)
	}

	runID, err := cat.CreateRun(catalog.RunLabel, map[string]any{
		"default_model":    cfg.LLM.DefaultModel,
		"escalation_model": cfg.LLM.EscalationModel,
	})
	if err != nil {
		return fmt.Errorf("label: create run: %w", err)
	}

	var labeled, escalated, failed int
	var runErr error
	for _, item := range items {
		fileCtx := labeling.BuildContext(item, store, cfg.Taxonomy)

		result, err := labeling.Label(ctx, client, cfg.LLM, fileCtx)
		if err != nil {
			failed++
			logger.Sugar().Errorw("labeling failed", "file_id", item.FileID, "path", item.Path, "error", err)
			runErr = err
			continue
		}

		if _, err := cat.RecordLabel(toLabelRow(item.FileID, runID, result, fileCtx)); err != nil {
			failed++
			runErr = err
			continue
		}

		labeled++
		if result.Escalated {
			escalated++
		}
	}

	if err := cat.CompleteRun(runID, runErr); err != nil {
		return fmt.Errorf("label: complete run: %w", err)
	}

	logger.Sugar().Infow("labeling complete", "run_id", runID, "labeled", labeled, "escalated", escalated, "failed", failed)
	fmt.Fprintf(os.Stdout, "Labeling run %d: %d labeled (%d escalated), %d failed\n", runID, labeled, escalated, failed)

	if stats, err := cat.LabelingStatsFor(runID); err == nil && stats.Total > 0 {
		fmt.Fprintf(os.Stdout, "Confidence: min %.2f avg %.2f max %.2f, %d below threshold\n",
			stats.MinConfidence, stats.AvgConfidence, stats.MaxConfidence, stats.LowConfidence)
	}
	return nil
}

func toLabelRow(fileID, runID int64, result labeling.Result, fileCtx llm.Context) *catalog.Label {
	out := result.Label
	return &catalog.Label{
		FileID:          fileID,
		DocType:         out.DocType,
		Title:           out.Title,
		CanonicalName:   out.CanonicalName,
		SuggestedTags:   out.SuggestedTags,
		TargetGroupPath: out.TargetGroup,
		Date:            out.Date,
		Issuer:          out.Issuer,
		Source:          out.Source,
		Confidence:      out.Confidence,
		Explanation:     out.Why,
		ModelName:       result.ModelName,
		PromptVersion:   llm.PromptVersion(fileCtx),
		LabelingRunID:   runID,
	}
}
