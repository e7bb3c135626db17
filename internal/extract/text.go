package extract

import (
	"context"
	"os"
	"unicode/utf8"
)

// TextExtractor is the final fallback: a plain-text reader that accepts
// valid UTF-8 outright, strips a BOM if present, and otherwise falls back
// to a lossy UTF-8 reinterpretation rather than failing outright. No
// charset-detection library appears anywhere in the pack, so this is
// stdlib-only (see DESIGN.md).
type TextExtractor struct{}

func (t *TextExtractor) Name() string { return "text" }

func (t *TextExtractor) CanHandle(path string) bool { return true }

func (t *TextExtractor) Extract(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Status: StatusFailed, Method: t.Name(), Error: err.Error()}
	}

	data = stripBOM(data)
	if utf8.Valid(data) {
		return Result{Status: StatusSuccess, Method: t.Name(), Text: string(data)}
	}

	return Result{Status: StatusSuccess, Method: t.Name(), Text: toValidUTF8Lossy(data)}
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// toValidUTF8Lossy replaces invalid byte sequences with the Unicode
// replacement character (U+FFFD) by converting through []rune; a plain
// string(data) conversion would keep the invalid bytes.
func toValidUTF8Lossy(data []byte) string {
	return string([]rune(string(data)))
}
