package extract

import (
	"time"

	"github.com/jward/lucien/internal/config"
)

// BuildChain assembles the default extractor order from configuration:
// docling (if enabled), pypdf, OCR (if enabled), then the plain-text
// fallback, which always matches and so always terminates the chain.
func BuildChain(cfg config.ExtractionConfig) *Chain {
	var extractors []Extractor
	if cfg.UseDocling {
		timeout, err := time.ParseDuration(cfg.DoclingTimeout)
		if err != nil || timeout <= 0 {
			timeout = 90 * time.Second
		}
		extractors = append(extractors, &DoclingExtractor{Timeout: timeout})
	}
	extractors = append(extractors, &PyPDFExtractor{})
	if cfg.UseOCR {
		extractors = append(extractors, &OCRExtractor{})
	}
	extractors = append(extractors, &TextExtractor{})
	return NewChain(extractors, cfg.SkipExtensions)
}
