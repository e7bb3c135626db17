//go:build !linux && !darwin

package scanner

import "os"

// statCtime has no portable equivalent; fall back to mtime on platforms
// without a Stat_t change-time field (notably Windows).
func statCtime(info os.FileInfo) int64 {
	return info.ModTime().Unix()
}
