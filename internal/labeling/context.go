// Package labeling pulls unlabeled files from the catalog's work-queue,
// builds a per-file context, applies the escalation policy, and persists
// the resulting label.
package labeling

import (
	"path/filepath"

	"github.com/jward/lucien/internal/catalog"
	"github.com/jward/lucien/internal/config"
	"github.com/jward/lucien/internal/llm"
	"github.com/jward/lucien/internal/sidecar"
)

const parentFolderDepth = 5

// BuildContext assembles an llm.Context for one work item: filename, the
// last five parent directory names, decompressed sidecar text (or none if
// missing/unreadable), and the configured controlled vocabularies.
func BuildContext(item catalog.WorkItem, store *sidecar.Store, taxonomy config.TaxonomyConfig) llm.Context {
	text, ok, err := readSidecar(item, store)

	return llm.Context{
		Filename:      filepath.Base(item.Path),
		ParentFolders: lastParents(item.Path, parentFolderDepth),
		Text:          text,
		HasText:       ok && err == nil,
		Size:          item.Size,
		MimeType:      item.MimeType,
		Mtime:         item.Mtime,

		TopLevel:      taxonomy.TopLevel,
		DocTypes:      taxonomy.DocTypes,
		Tags:          taxonomy.Tags,
		FamilyMembers: taxonomy.FamilyMembers,
	}
}

func readSidecar(item catalog.WorkItem, store *sidecar.Store) (string, bool, error) {
	if item.SidecarPath == "" {
		return "", false, nil
	}
	return store.ReadPath(item.SidecarPath)
}

// lastParents returns up to n of path's innermost parent directory names,
// outermost first, matching Python's file_path.parent.parts[-n:].
func lastParents(path string, n int) []string {
	dir := filepath.Dir(path)
	var parts []string
	for {
		base := filepath.Base(dir)
		parent := filepath.Dir(dir)
		if base == "" || base == "." || base == string(filepath.Separator) || parent == dir {
			break
		}
		parts = append([]string{base}, parts...)
		dir = parent
		if len(parts) >= n {
			break
		}
	}
	if len(parts) > n {
		parts = parts[len(parts)-n:]
	}
	return parts
}
