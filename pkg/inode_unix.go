//go:build unix

package dupefilehash

import (
	"os"
	"syscall"
)

// fileIdentity returns the device and inode behind info
func fileIdentity(info os.FileInfo) (dev, ino uint64, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return uint64(stat.Dev), uint64(stat.Ino), true
}
