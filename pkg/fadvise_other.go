//go:build !linux

package dupefilehash

import "os"

func adviseSequential(file *os.File) {}
