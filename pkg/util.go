package dupefilehash

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseHumanSize parses a positive human-readable size ("64K", "2M", "1G")
// that must fit in an int
func ParseHumanSize(sizeStr string) (int, error) {
	size, err := ParseHumanSize64(sizeStr)
	if err != nil {
		return 0, err
	}
	if size <= 0 || size > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("size %q out of range", sizeStr)
	}
	return int(size), nil
}

// sizeSuffixes maps a unit suffix to its binary multiplier
var sizeSuffixes = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseHumanSize64 parses a non-negative human-readable size. Suffixes are
// binary: K=1024, M=1024^2, G=1024^3, with an optional trailing B.
func ParseHumanSize64(sizeStr string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(sizeStr))
	if trimmed == "" {
		return 0, fmt.Errorf("empty size string")
	}

	split := strings.IndexFunc(trimmed, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	numPart, suffix := trimmed, ""
	if split >= 0 {
		numPart, suffix = trimmed[:split], strings.TrimSpace(trimmed[split:])
	}
	if numPart == "" {
		return 0, fmt.Errorf("size %q has no number", sizeStr)
	}

	multiplier, ok := sizeSuffixes[suffix]
	if !ok {
		return 0, fmt.Errorf("size %q has unknown unit %q", sizeStr, suffix)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("size %q: %w", sizeStr, err)
	}

	result := num * float64(multiplier)
	if result >= 1<<63 {
		return 0, fmt.Errorf("size %q overflows int64", sizeStr)
	}
	return int64(result), nil
}

// relativeSlashPath returns path relative to root with forward slashes, or
// path itself if it is not under root
func relativeSlashPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
