//go:build !darwin

package plan

// ApplyTags is a no-op outside macOS: Finder tags have no equivalent on
// other platforms.
func ApplyTags(path string, tags []string) error {
	return nil
}
