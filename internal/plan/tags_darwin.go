//go:build darwin

package plan

import (
	"fmt"
	"os/exec"
	"strings"
)

// ApplyTags sets macOS Finder tags on path by shelling out to the `tag`
// command-line tool, the same approach spec.md calls out for this
// collaborator (no native Go binding exists for Finder's extended
// attribute format in the example pack).
func ApplyTags(path string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	cmd := exec.Command("tag", "--add", strings.Join(tags, ","), path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("tag: %w: %s", err, string(out))
	}
	return nil
}
