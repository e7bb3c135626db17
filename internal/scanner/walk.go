package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// walk visits every regular file under root, pruning directories named in
// opts.SkipDirs. Symlinks are followed only when opts.FollowSymlinks is set,
// and a visited-real-path set guards against cycles when following is
// enabled.
func walk(ctx context.Context, root string, opts Options, visit func(path string) error) error {
	seen := map[string]bool{}
	return walkDir(ctx, root, opts, seen, visit)
}

func walkDir(ctx context.Context, dir string, opts Options, seen map[string]bool, visit func(path string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Permission errors on a directory are skipped, not fatal.
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		name := entry.Name()

		if entry.IsDir() {
			if opts.SkipDirs[name] {
				continue
			}
			if err := walkDir(ctx, path, opts, seen, visit); err != nil {
				return err
			}
			continue
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			if !opts.FollowSymlinks {
				continue
			}
			real, err := filepath.EvalSymlinks(path)
			if err != nil {
				continue
			}
			if seen[real] {
				continue
			}
			seen[real] = true

			info, err := os.Stat(real)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if err := walkDir(ctx, real, opts, seen, visit); err != nil {
					return err
				}
				continue
			}
			if !info.Mode().IsRegular() {
				continue
			}
			if err := visit(path); err != nil {
				return err
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}
		if err := visit(path); err != nil {
			return err
		}
	}
	return nil
}

func statFollow(path string) (os.FileInfo, error) {
	return os.Stat(path)
}
