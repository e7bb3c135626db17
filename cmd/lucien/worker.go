package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/lucien/internal/extract"
	"github.com/jward/lucien/internal/pool"
	"github.com/jward/lucien/internal/sidecar"
)

// workerCmd is the hidden re-exec target the extraction pool's supervisor
// spawns for each worker slot (os.Args[0] lucien-worker). It is never meant
// to be invoked by a human; it speaks newline-delimited JSON tasks/results
// over stdin/stdout and nothing else.
var workerCmd = &cobra.Command{
	Use:           "lucien-worker",
	Hidden:        true,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	chain := extract.BuildChain(cfg.Extraction)
	store := sidecar.New(cfg.ExtractedTextDir)

	if err := pool.Serve(chain, store, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("lucien-worker: %w", err)
	}
	return nil
}
