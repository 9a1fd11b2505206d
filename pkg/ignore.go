package dupefilehash

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// IgnoreManager decides which root-relative paths the walker skips. Patterns
// are RE2 regexps matched against slash-separated paths; a directory is also
// tried with a trailing slash so "^build/" prunes the whole subtree.
type IgnoreManager struct {
	fs         afero.Fs
	ignorePath string
	patterns   []*regexp.Regexp
	loaded     bool
}

// NewIgnoreManager creates a manager reading patterns from ignorePath on fs.
// An empty ignorePath means only patterns given to AddPattern apply.
func NewIgnoreManager(fs afero.Fs, ignorePath string) *IgnoreManager {
	return &IgnoreManager{fs: fs, ignorePath: ignorePath}
}

// LoadIgnorePatterns reads the ignore file once. Blank lines and # comments
// are skipped; an invalid regexp fails the whole load.
func (im *IgnoreManager) LoadIgnorePatterns() error {
	if im.loaded || im.ignorePath == "" {
		im.loaded = true
		return nil
	}

	file, err := im.fs.Open(im.ignorePath)
	if err != nil {
		return fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer file.Close()

	patterns, err := parseIgnorePatterns(file, im.ignorePath)
	if err != nil {
		return err
	}

	im.patterns = append(im.patterns, patterns...)
	im.loaded = true
	VerboseLog(2, "loaded %d ignore patterns from %s", len(patterns), im.ignorePath)
	return nil
}

func parseIgnorePatterns(r io.Reader, source string) ([]*regexp.Regexp, error) {
	var patterns []*regexp.Regexp
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		pattern, err := regexp.Compile(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid ignore pattern %q: %w", source, lineNum, line, err)
		}
		patterns = append(patterns, pattern)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return patterns, nil
}

// AddPattern adds one regexp, e.g. from the command line
func (im *IgnoreManager) AddPattern(expr string) error {
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid ignore pattern %q: %w", expr, err)
	}
	im.patterns = append(im.patterns, pattern)
	return nil
}

// Match returns the first pattern matching relPath
func (im *IgnoreManager) Match(relPath string) (*regexp.Regexp, bool) {
	for _, pattern := range im.patterns {
		if pattern.MatchString(relPath) {
			return pattern, true
		}
	}
	return nil, false
}

// ShouldIgnore reports whether any pattern matches relPath
func (im *IgnoreManager) ShouldIgnore(relPath string) bool {
	_, ok := im.Match(relPath)
	return ok
}

// HasPatterns reports whether any pattern is loaded
func (im *IgnoreManager) HasPatterns() bool {
	return len(im.patterns) > 0
}

// GetPatterns returns the loaded patterns in match order
func (im *IgnoreManager) GetPatterns() []*regexp.Regexp {
	return im.patterns
}
