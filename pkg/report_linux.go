package dupefilehash

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/google/vectorio"
)

// writeVectored writes lines with writev, IOV_MAX lines at a time. A short or
// would-block writev is completed with ordinary writes.
func writeVectored(file *os.File, lines [][]byte) error {
	nonEmpty := make([][]byte, 0, len(lines))
	for _, line := range lines {
		if len(line) > 0 {
			nonEmpty = append(nonEmpty, line)
		}
	}

	fd := file.Fd()
	for offset := 0; offset < len(nonEmpty); offset += fallbackIOVMax {
		end := offset + fallbackIOVMax
		if end > len(nonEmpty) {
			end = len(nonEmpty)
		}
		chunk := nonEmpty[offset:end]

		iovecs := make([]syscall.Iovec, len(chunk))
		expected := 0
		for i, line := range chunk {
			iovecs[i].Base = &line[0]
			iovecs[i].SetLen(len(line))
			expected += len(line)
		}

		nw, err := vectorio.WritevRaw(fd, iovecs)
		if err != nil {
			if !errors.Is(err, syscall.EAGAIN) && !errors.Is(err, syscall.EINTR) {
				return fmt.Errorf("failed to write report with vectorio: %w", err)
			}
			nw = 0
		}
		if nw < expected {
			if err := writeRemainder(file, chunk, nw); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeRemainder writes whatever follows the first written bytes of chunk
func writeRemainder(file *os.File, chunk [][]byte, written int) error {
	for _, line := range chunk {
		if written >= len(line) {
			written -= len(line)
			continue
		}
		if _, err := file.Write(line[written:]); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		written = 0
	}
	return nil
}
