// Package extract implements the ordered, try-next-on-failure chain of
// format-specific text extractors described for the extraction pool.
package extract

import "context"

// Status is the outcome of one extractor invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is what one extractor (or the chain as a whole) produces.
type Result struct {
	Status Status
	Method string
	Text   string
	Error  string
}

// Extractor is one format-specific text extraction strategy.
type Extractor interface {
	// Name identifies the extractor in Result.Method and log output.
	Name() string
	// CanHandle reports whether this extractor applies to path, based on
	// its suffix.
	CanHandle(path string) bool
	// Extract attempts to derive text from path. ctx carries the
	// extractor's own internal timeout, if any.
	Extract(ctx context.Context, path string) Result
}
