package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix environment variables use to override config
// values, with nested keys joined by a double underscore, e.g.
// LUCIEN_LLM__DEFAULT_MODEL overrides llm.default_model.
const EnvPrefix = "LUCIEN_"

// Load builds a Config by layering, from lowest to highest precedence:
// built-in defaults, a user-global file, a project-local file, then
// environment variables. Either file path may be empty, in which case that
// layer is skipped; a present-but-unreadable file is an error, a missing
// one is not.
func Load(projectFile, userFile string) (*Config, error) {
	cfg := Default()

	if err := mergeFile(cfg, userFile); err != nil {
		return nil, err
	}
	if err := mergeFile(cfg, projectFile); err != nil {
		return nil, err
	}
	applyEnv(cfg, os.Environ())

	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays LUCIEN_-prefixed environment variables onto cfg. Nested
// fields use "__" between path segments (LUCIEN_LLM__BASE_URL). No
// reflection: a small explicit table of setters, since no third-party
// env-binding library appears anywhere in the example pack.
func applyEnv(cfg *Config, environ []string) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	if len(env) == 0 {
		return
	}

	for key, setter := range envSetters(cfg) {
		if v, ok := env[EnvPrefix+key]; ok {
			setter(v)
		}
	}
}

func envSetters(cfg *Config) map[string]func(string) {
	return map[string]func(string){
		"SOURCE_ROOT":        func(v string) { cfg.SourceRoot = v },
		"INDEX_DB":           func(v string) { cfg.IndexDB = v },
		"EXTRACTED_TEXT_DIR": func(v string) { cfg.ExtractedTextDir = v },
		"STAGING_ROOT":       func(v string) { cfg.StagingRoot = v },

		"LLM__BASE_URL":             func(v string) { cfg.LLM.BaseURL = v },
		"LLM__DEFAULT_MODEL":        func(v string) { cfg.LLM.DefaultModel = v },
		"LLM__ESCALATION_MODEL":     func(v string) { cfg.LLM.EscalationModel = v },
		"LLM__ESCALATION_THRESHOLD": func(v string) { setFloat(&cfg.LLM.EscalationThreshold, v) },
		"LLM__MAX_RETRIES":          func(v string) { setInt(&cfg.LLM.MaxRetries, v) },
		"LLM__TIMEOUT":              func(v string) { cfg.LLM.Timeout = v },

		"EXTRACTION__USE_DOCLING": func(v string) { setBool(&cfg.Extraction.UseDocling, v) },
		"EXTRACTION__USE_OCR":     func(v string) { setBool(&cfg.Extraction.UseOCR, v) },

		"SCAN__FOLLOW_SYMLINKS": func(v string) { setBool(&cfg.Scan.FollowSymlinks, v) },

		"MATERIALIZE__DEFAULT_MODE": func(v string) { cfg.Materialize.DefaultMode = v },
		"MATERIALIZE__APPLY_TAGS":   func(v string) { setBool(&cfg.Materialize.ApplyTags, v) },

		"POOL__WORKERS": func(v string) { setInt(&cfg.Pool.Workers, v) },

		"LOGGING__LEVEL":  func(v string) { cfg.Logging.Level = v },
		"LOGGING__FORMAT": func(v string) { cfg.Logging.Format = v },
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setFloat(dst *float64, v string) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
