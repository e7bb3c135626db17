package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Chain is an ordered, registered list of extractors queried for each file.
type Chain struct {
	extractors     []Extractor
	skipExtensions map[string]bool
}

// NewChain builds a chain from extractors in priority order and a set of
// lowercased suffixes that short-circuit to skipped before any extractor
// runs.
func NewChain(extractors []Extractor, skipExtensions []string) *Chain {
	skip := make(map[string]bool, len(skipExtensions))
	for _, ext := range skipExtensions {
		skip[strings.ToLower(ext)] = true
	}
	return &Chain{extractors: extractors, skipExtensions: skip}
}

// Extract runs the chain against path: skip-extension short-circuit, then
// each matching extractor in order, returning on the first success. If none
// succeed, the last extractor's error is reported; if none match, the file
// is skipped.
func (c *Chain) Extract(ctx context.Context, path string) Result {
	ext := strings.ToLower(filepath.Ext(path))
	if c.skipExtensions[ext] {
		return Result{Status: StatusSkipped, Error: fmt.Sprintf("Extension %s in skip list", ext)}
	}

	matched := c.matching(path)
	if len(matched) == 0 {
		return Result{Status: StatusSkipped, Error: "No extractor available for this file type"}
	}

	var lastErr string
	for _, extractor := range matched {
		res := extractor.Extract(ctx, path)
		if res.Status == StatusSuccess {
			return res
		}
		lastErr = res.Error
	}
	return Result{Status: StatusFailed, Error: "All extractors failed. Last error: " + lastErr}
}

func (c *Chain) matching(path string) []Extractor {
	var matched []Extractor
	for _, e := range c.extractors {
		if e.CanHandle(path) {
			matched = append(matched, e)
		}
	}
	return matched
}
