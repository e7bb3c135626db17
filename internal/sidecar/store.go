// Package sidecar is the content-addressed store of extracted text: one
// gzip-compressed file per source digest, so identical bytes under
// different paths share a single sidecar.
package sidecar

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const truncationMarker = "[... middle section omitted ...]"

// Store reads and writes sidecars under a root directory.
type Store struct {
	root string
}

// New returns a Store rooted at root. The directory is created lazily on
// first write.
func New(root string) *Store {
	return &Store{root: root}
}

// Path returns the on-disk path for a given digest, whether or not it exists.
func (s *Store) Path(digest string) string {
	return filepath.Join(s.root, digest+".txt.gz")
}

// Truncate keeps the first and last half of text when it exceeds maxChars,
// joining the two halves with a marker. Text at or under the limit is
// returned unchanged.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	half := maxChars / 2
	return text[:half] + truncationMarker + text[len(text)-half:]
}

// Write gzip-compresses text and stores it at Path(digest), creating parent
// directories as needed.
func (s *Store) Write(digest, text string) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("sidecar: create root %s: %w", s.root, err)
	}

	path := s.Path(digest)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sidecar: create %s: %w", path, err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	if _, err := io.Copy(gw, bytes.NewReader([]byte(text))); err != nil {
		gw.Close()
		return fmt.Errorf("sidecar: write %s: %w", path, err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("sidecar: close gzip writer for %s: %w", path, err)
	}
	return nil
}

// Read decompresses and returns the text stored for digest. A missing
// sidecar is not an error: it returns ("", false, nil), which callers must
// treat as "no text".
func (s *Store) Read(digest string) (string, bool, error) {
	path := s.Path(digest)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sidecar: open %s: %w", path, err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return "", false, fmt.Errorf("sidecar: gzip reader for %s: %w", path, err)
	}
	defer gr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, gr); err != nil {
		return "", false, fmt.Errorf("sidecar: decompress %s: %w", path, err)
	}
	return buf.String(), true, nil
}

// ReadPath is like Read but takes a sidecar path directly, for callers that
// already have one from a catalog row rather than a bare digest.
func (s *Store) ReadPath(path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sidecar: open %s: %w", path, err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return "", false, fmt.Errorf("sidecar: gzip reader for %s: %w", path, err)
	}
	defer gr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, gr); err != nil {
		return "", false, fmt.Errorf("sidecar: decompress %s: %w", path, err)
	}
	return buf.String(), true, nil
}
