package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// PyPDFExtractor shells out to a lightweight PDF-text tool for simple PDFs
// docling either can't reach or is disabled for. Like DoclingExtractor this
// has no native Go binding in the pack, so it is a subprocess.
type PyPDFExtractor struct {
	Command string
}

func (p *PyPDFExtractor) Name() string { return "pypdf" }

func (p *PyPDFExtractor) CanHandle(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}

func (p *PyPDFExtractor) Extract(ctx context.Context, path string) Result {
	command := p.Command
	if command == "" {
		command = "pypdf-extract"
	}
	cmd := exec.CommandContext(ctx, command, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{Status: StatusFailed, Method: p.Name(), Error: fmt.Sprintf("pypdf: %v: %s", err, strings.TrimSpace(stderr.String()))}
	}
	return Result{Status: StatusSuccess, Method: p.Name(), Text: stdout.String()}
}
