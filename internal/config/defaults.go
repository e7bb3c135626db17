package config

// Default returns the configuration used when no file or environment
// override is present. Every layered loader starts from this value.
func Default() *Config {
	return &Config{
		SourceRoot:       "./source",
		IndexDB:          "./lucien.db",
		ExtractedTextDir: "./extracted",
		StagingRoot:      "./staging",

		LLM: LLMConfig{
			BaseURL:             "http://localhost:1234",
			DefaultModel:        "local-model",
			EscalationModel:     "local-model-large",
			EscalationThreshold: 0.7,
			EscalationDocTypes:  []string{"tax", "medical", "legal", "insurance"},
			MaxRetries:          3,
			Timeout:             "120s",
			Temperature:         0.1,
			MaxTokens:           1000,
		},

		Extraction: ExtractionConfig{
			SkipExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".mp4", ".mp3", ".zip"},
			Methods:        []string{"docling", "pypdf", "ocr", "text"},
			MaxTextLength:  50000,
			UseDocling:     true,
			UseOCR:         true,
			DoclingTimeout: "90s",
		},

		Scan: ScanConfig{
			SkipDirs:       []string{".git", ".DS_Store", "node_modules", "__pycache__"},
			FollowSymlinks: false,
			HashAlgorithm:  "sha256",
		},

		Taxonomy: TaxonomyConfig{
			TopLevel:      []string{"financial", "legal", "medical", "personal", "work", "other"},
			DocTypes:      []string{"invoice", "receipt", "tax", "medical", "insurance", "legal", "contract", "statement", "other", "uncategorized"},
			Tags:          []string{},
			FamilyMembers: []string{},
		},

		Naming: NamingConfig{
			Format:     "YYYY-MM-DD__Domain__Issuer__Title",
			Separator:  "__",
			DateFormat: "2006-01-02",
		},

		Materialize: MaterializeConfig{
			DefaultMode: "copy",
			ApplyTags:   true,
		},

		Pool: PoolConfig{
			Workers:            4,
			MaxTasksPerChild:   200,
			TaskTimeoutSeconds: 600,
			HangCheckSeconds:   120,
			RefillBatch:        8,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
