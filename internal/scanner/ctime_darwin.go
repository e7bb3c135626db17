//go:build darwin

package scanner

import (
	"os"
	"syscall"
)

// statCtime extracts the inode change time on macOS, where the field is
// named Ctimespec rather than Linux's Ctim.
func statCtime(info os.FileInfo) int64 {
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		return int64(sys.Ctimespec.Sec)
	}
	return info.ModTime().Unix()
}
