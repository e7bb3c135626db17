package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DoclingExtractor shells out to an external document-conversion tool that
// produces markdown-like text from PDF and office formats. No native Go
// binding exists in the ecosystem for this class of converter, so it is
// invoked as a subprocess exactly the way the teacher's engine shells out to
// `git` in engine.go.
type DoclingExtractor struct {
	// Command is the executable name or path (default "docling").
	Command string
	// Timeout bounds the subprocess; the spec's 90s default applies per
	// call, enforced here via context rather than the original's POSIX
	// signal mechanism (see DESIGN.md).
	Timeout time.Duration
}

var doclingExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".pptx": true, ".xlsx": true,
}

func (d *DoclingExtractor) Name() string { return "docling" }

func (d *DoclingExtractor) CanHandle(path string) bool {
	return doclingExtensions[strings.ToLower(filepath.Ext(path))]
}

func (d *DoclingExtractor) Extract(ctx context.Context, path string) Result {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := d.Command
	if command == "" {
		command = "docling"
	}

	cmd := exec.CommandContext(cctx, command, "--to", "md", "--output", "-", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cctx.Err() != nil {
		return Result{Status: StatusFailed, Method: d.Name(), Error: fmt.Sprintf("%s timed out after %ds", d.Name(), int(timeout.Seconds()))}
	}
	if err != nil {
		return Result{Status: StatusFailed, Method: d.Name(), Error: fmt.Sprintf("docling: %v: %s", err, strings.TrimSpace(stderr.String()))}
	}
	return Result{Status: StatusSuccess, Method: d.Name(), Text: stdout.String()}
}
