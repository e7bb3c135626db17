//go:build !darwin

package extract

import "context"

// OCRExtractor has no host vision API outside macOS, per spec's Non-goals
// ("no non-PDF OCR" and no cross-platform OCR requirement). It is present so
// the chain's extractor list stays uniform across platforms but never
// matches any file.
type OCRExtractor struct {
	Command string
}

func (o *OCRExtractor) Name() string { return "ocr" }

func (o *OCRExtractor) CanHandle(path string) bool { return false }

func (o *OCRExtractor) Extract(ctx context.Context, path string) Result {
	return Result{Status: StatusSkipped, Method: o.Name(), Error: "OCR extractor unavailable on this platform"}
}
