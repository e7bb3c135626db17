package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jward/lucien/internal/config"
	"github.com/jward/lucien/internal/logging"
)

var (
	flagDB      string
	flagConfig  string
	flagOutput  string
	flagForce   bool
	flagLimit   int
	flagWorkers int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "lucien",
	Short:         "Turn an archive of loose files into a labeled, searchable library",
	Long:          "Lucien scans an archive tree, extracts text from each file, labels it with a local LLM, and plans a reviewable, re-organized copy of the archive.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "catalog database path (overrides config index_db)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "project config file path (default: ./lucien.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "text", "output format: text|json")
	rootCmd.PersistentFlags().BoolVar(&flagForce, "force", false, "re-process files that already have a result")
	rootCmd.PersistentFlags().IntVar(&flagLimit, "limit", 0, "process at most this many files (0 = no limit)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "extraction worker count (overrides config pool.workers)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(materializeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(workerCmd)
}

// loadRuntime loads the layered config and builds the shared logger. Both
// zap configs default to stderr, so this is safe to run even for the
// hidden worker subcommand, which reserves stdout for its JSON protocol.
func loadRuntime() error {
	projectFile := flagConfig
	if projectFile == "" {
		if _, err := os.Stat("lucien.yaml"); err == nil {
			projectFile = "lucien.yaml"
		}
	}

	userFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".config", "lucien", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			userFile = candidate
		}
	}

	loaded, err := config.Load(projectFile, userFile)
	if err != nil {
		return err
	}
	if flagDB != "" {
		loaded.IndexDB = flagDB
	}
	if flagWorkers > 0 {
		loaded.Pool.Workers = flagWorkers
	}
	cfg = loaded

	lg, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	logger = lg
	return nil
}
