package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jward/lucien/internal/catalog"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the catalog: files, extractions, labels, plans, runs",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Open(cfg.IndexDB)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	s, err := cat.Stats()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	if flagOutput == "json" {
		return writeJSON(os.Stdout, s)
	}
	formatStatsText(os.Stdout, s)

	if flagLimit > 0 {
		sample, err := cat.SampleFilesNeedingExtraction(flagLimit)
		if err != nil {
			return fmt.Errorf("stats: sample files needing extraction: %w", err)
		}
		if len(sample) > 0 {
			fmt.Fprintf(os.Stdout, "\nSample of files still needing extraction:\n")
			for _, p := range sample {
				fmt.Fprintf(os.Stdout, "  %s\n", p)
			}
		}
	}
	return nil
}

func formatStatsText(w *os.File, s catalog.Stats) {
	fmt.Fprintf(w, "Files:       %d\n", s.TotalFiles)
	fmt.Fprintf(w, "Extractions: %d\n", s.TotalExtractions)
	fmt.Fprintf(w, "Labels:      %d\n", s.TotalLabels)
	fmt.Fprintf(w, "Plans:       %d\n", s.TotalPlans)
	fmt.Fprintf(w, "Runs:        %d\n", s.TotalRuns)

	if len(s.RunsByType) == 0 {
		return
	}
	types := make([]string, 0, len(s.RunsByType))
	for t := range s.RunsByType {
		types = append(types, t)
	}
	sort.Strings(types)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nRUN TYPE\tCOUNT")
	for _, t := range types {
		fmt.Fprintf(tw, "%s\t%d\n", t, s.RunsByType[t])
	}
	tw.Flush()
}
