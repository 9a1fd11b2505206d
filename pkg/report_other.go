//go:build !linux

package dupefilehash

import "os"

// writeVectored falls back to buffered writes where writev is not wired up
func writeVectored(file *os.File, lines [][]byte) error {
	return writeBuffered(file, lines)
}
