package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jward/lucien/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:           "init-config",
	Short:         "Write a default lucien.yaml in the current directory",
	RunE:          runInitConfig,
	SilenceErrors: true,
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := "lucien.yaml"
	if flagConfig != "" {
		path = flagConfig
	}

	if _, err := os.Stat(path); err == nil && !flagForce {
		return fmt.Errorf("init-config: %s already exists (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("init-config: marshal defaults: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("init-config: write %s: %w", path, err)
	}

	fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	return nil
}
