// Package logging builds the zap logger shared by the CLI and every pipeline
// phase, configured from internal/config.LoggingConfig.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jward/lucien/internal/config"
)

// New builds a zap.Logger from a LoggingConfig. Format "console" uses zap's
// human-readable development encoder; anything else uses the production
// JSON encoder, matching the pattern of every other cobra-based CLI in the
// pack that distinguishes interactive runs from piped/scripted ones.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("logging: unknown level %q: %w", level, err)
	}
	return l, nil
}
