// Package config loads and merges Lucien's runtime settings: a plain struct
// tree populated from defaults, then a user-global file, then a
// project-local file, then environment variables, each layer overriding the
// last.
package config

// Config is the full settings tree for one Lucien invocation.
type Config struct {
	SourceRoot        string `yaml:"source_root"`
	IndexDB           string `yaml:"index_db"`
	ExtractedTextDir  string `yaml:"extracted_text_dir"`
	StagingRoot       string `yaml:"staging_root"`

	LLM         LLMConfig         `yaml:"llm"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Scan        ScanConfig        `yaml:"scan"`
	Taxonomy    TaxonomyConfig    `yaml:"taxonomy"`
	Naming      NamingConfig      `yaml:"naming"`
	Materialize MaterializeConfig `yaml:"materialize"`
	Pool        PoolConfig        `yaml:"pool"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LLMConfig configures the labeling client and escalation policy.
type LLMConfig struct {
	BaseURL            string   `yaml:"base_url"`
	DefaultModel       string   `yaml:"default_model"`
	EscalationModel    string   `yaml:"escalation_model"`
	EscalationThreshold float64 `yaml:"escalation_threshold"`
	EscalationDocTypes []string `yaml:"escalation_doc_types"`
	MaxRetries         int      `yaml:"max_retries"`
	Timeout            string   `yaml:"timeout"`
	Temperature        float64  `yaml:"temperature"`
	MaxTokens          int      `yaml:"max_tokens"`
}

// ExtractionConfig configures the extractor chain.
type ExtractionConfig struct {
	SkipExtensions []string `yaml:"skip_extensions"`
	Methods        []string `yaml:"methods"`
	MaxTextLength  int      `yaml:"max_text_length"`
	UseDocling     bool     `yaml:"use_docling"`
	UseOCR         bool     `yaml:"use_ocr"`
	DoclingTimeout string   `yaml:"docling_timeout"`
}

// ScanConfig configures the directory walk.
type ScanConfig struct {
	SkipDirs       []string `yaml:"skip_dirs"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	HashAlgorithm  string   `yaml:"hash_algorithm"`
}

// TaxonomyConfig holds the controlled vocabularies that drive both the LLM
// prompt and post-hoc validation. These are user-extensible data, not enums.
type TaxonomyConfig struct {
	TopLevel      []string `yaml:"top_level"`
	DocTypes      []string `yaml:"doc_types"`
	Tags          []string `yaml:"tags"`
	FamilyMembers []string `yaml:"family_members"`
}

// NamingConfig holds the canonical filename settings from configuration.
// The prompt builder does not read them; the system prompt fixes its own
// filename format.
type NamingConfig struct {
	Format     string `yaml:"format"`
	Separator  string `yaml:"separator"`
	DateFormat string `yaml:"date_format"`
}

// MaterializeConfig configures the staging-tree placement step.
type MaterializeConfig struct {
	DefaultMode string `yaml:"default_mode"`
	ApplyTags   bool   `yaml:"apply_tags"`
}

// PoolConfig configures the process-isolated worker pool.
type PoolConfig struct {
	Workers             int    `yaml:"workers"`
	MaxTasksPerChild    int    `yaml:"max_tasks_per_child"`
	TaskTimeoutSeconds  int    `yaml:"task_timeout_seconds"`
	HangCheckSeconds    int    `yaml:"hang_check_seconds"`
	RefillBatch         int    `yaml:"refill_batch"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
