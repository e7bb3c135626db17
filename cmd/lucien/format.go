package main

import (
	"encoding/json"
	"io"
)

// writeJSON is the shared --output json path for commands that also
// support a human-readable default.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
