package dupefilehash

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// DupeFinder runs one duplicate scan of a directory tree with the settings of
// a Config
type DupeFinder struct {
	RootDir       string
	fs            afero.Fs
	config        *Config
	algorithm     *HashAlgorithm
	hashBuffer    int
	hashWorkers   int
	minSize       int64
	progress      time.Duration
	ignoreManager *IgnoreManager
}

// NewDupeFinder creates a finder for rootDir. A nil config uses the defaults
// and a nil fs uses the operating system filesystem.
func NewDupeFinder(rootDir string, config *Config, fs afero.Fs) (*DupeFinder, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	all := config.GetAllConfig()

	algorithm, err := GetHashAlgorithm(all.Hash.Default)
	if err != nil {
		return nil, err
	}

	hashBuffer, err := ParseHumanSize(all.Performance.HashBuffer)
	if err != nil {
		return nil, fmt.Errorf("invalid hash buffer: %w", err)
	}

	ignoreManager := NewIgnoreManager(fs, all.Scan.IgnoreFile)
	if err := ignoreManager.LoadIgnorePatterns(); err != nil {
		return nil, fmt.Errorf("failed to load ignore patterns: %w", err)
	}

	return &DupeFinder{
		RootDir:       filepath.Clean(rootDir),
		fs:            fs,
		config:        config,
		algorithm:     algorithm,
		hashBuffer:    hashBuffer,
		hashWorkers:   all.Performance.HashWorkers,
		minSize:       all.Scan.MinSize,
		progress:      all.Output.ProgressInterval,
		ignoreManager: ignoreManager,
	}, nil
}

// AddIgnorePattern adds a regexp for paths to skip, relative to the root
func (df *DupeFinder) AddIgnorePattern(pattern string) error {
	return df.ignoreManager.AddPattern(pattern)
}

// Algorithm returns the hash algorithm in use
func (df *DupeFinder) Algorithm() *HashAlgorithm {
	return df.algorithm
}

// FindDuplicates validates the root, indexes every file under it with a
// fresh DuplicateIndex and returns the report. Path problems with the root
// are returned as ErrPathNotFound or ErrNotADirectory. If the scan is
// interrupted the partial report is returned together with ErrInterrupted.
func (df *DupeFinder) FindDuplicates(shutdownChan <-chan struct{}) (*Report, error) {
	defer VerboseEnter()()

	if err := ValidateRoot(df.fs, df.RootDir); err != nil {
		return nil, err
	}

	VerboseLog(1, "scanning %s with %s (%d workers, %d byte buffer)",
		df.RootDir, df.algorithm.Name, df.hashWorkers, df.hashBuffer)

	hasher := NewContentHasher(df.fs, df.algorithm, df.hashBuffer, shutdownChan)
	idx := NewDuplicateIndex(hasher)
	walker := NewWalker(df.fs, df.RootDir, df.ignoreManager, df.minSize, df.hashWorkers)
	walker.SetProgress(df.progress, hasher.BytesRead)

	result, err := walker.Walk(idx, shutdownChan)

	report := &Report{
		Root:        df.RootDir,
		Algorithm:   df.algorithm.Name,
		GeneratedAt: time.Now(),
		Groups:      idx.Groups(),
		Scan:        result,
		Index:       idx.Stats(),
		BytesRead:   hasher.BytesRead(),
	}
	return report, err
}
