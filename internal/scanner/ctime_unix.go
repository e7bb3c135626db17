//go:build linux

package scanner

import (
	"os"
	"syscall"
)

// statCtime extracts the inode change time on Linux.
func statCtime(info os.FileInfo) int64 {
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		return int64(sys.Ctim.Sec)
	}
	return info.ModTime().Unix()
}
