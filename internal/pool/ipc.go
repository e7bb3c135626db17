// Package pool is the process-isolated worker pool that drives the
// extractor chain across many files concurrently, described as "the hard
// part" of the pipeline: workers are OS processes, not goroutines, so a
// native library leak or crash in one file's extraction cannot touch its
// siblings or the supervisor.
package pool

// Task is what the supervisor sends a worker over stdin, one JSON object
// per line.
type Task struct {
	FileID      int64  `json:"file_id"`
	Path        string `json:"path"`
	Digest      string `json:"digest"`
	SidecarRoot string `json:"sidecar_root"`
	MaxChars    int    `json:"max_chars"`
}

// TaskResult is what a worker returns over stdout, one JSON object per
// line. Extracted text itself never crosses this boundary — only the
// sidecar path the worker already wrote it to.
type TaskResult struct {
	Status      string `json:"status"`
	Method      string `json:"method"`
	SidecarPath string `json:"sidecar_path,omitempty"`
	Error       string `json:"error,omitempty"`
}
