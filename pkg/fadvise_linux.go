package dupefilehash

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential tells the kernel the whole file will be read once, front to back
func adviseSequential(file *os.File) {
	if err := unix.Fadvise(int(file.Fd()), 0, 0, unix.FADV_SEQUENTIAL); err != nil && IsDebugEnabled(DebugHash) {
		VerboseLog(3, "fadvise %s: %v", file.Name(), err)
	}
}
