package dupefilehash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// FileFailure records a file that could not be indexed
type FileFailure struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

// ScanResult summarises a walk over the tree
type ScanResult struct {
	Root         string        `json:"root"`
	FilesSeen    int64         `json:"files_seen"`
	FilesIndexed int64         `json:"files_indexed"`
	Ignored      int64         `json:"ignored"`
	TooSmall     int64         `json:"too_small"`
	Skipped      int64         `json:"skipped_special"`
	Failures     []FileFailure `json:"failures"`
	Duration     time.Duration `json:"duration_ns"`
}

// Walker enumerates the regular files under a root and feeds them to a
// DuplicateIndex
type Walker struct {
	fs            afero.Fs
	root          string
	ignoreManager *IgnoreManager
	minSize       int64
	workers       int

	progressInterval time.Duration
	progressBytes    func() int64
}

// NewWalker creates a walker over root. ignoreManager may be nil.
func NewWalker(fs afero.Fs, root string, ignoreManager *IgnoreManager, minSize int64, workers int) *Walker {
	if ignoreManager == nil {
		ignoreManager = NewIgnoreManager(fs, "")
	}
	if workers < 1 {
		workers = 1
	}
	return &Walker{
		fs:            fs,
		root:          filepath.Clean(root),
		ignoreManager: ignoreManager,
		minSize:       minSize,
		workers:       workers,
	}
}

// SetProgress makes Walk log the bytes hashed and the hash rate every
// interval, reading the running total from bytesRead. A non-positive
// interval turns progress reporting off.
func (w *Walker) SetProgress(interval time.Duration, bytesRead func() int64) {
	w.progressInterval = interval
	w.progressBytes = bytesRead
}

// ValidateRoot checks that root exists and is a directory
func ValidateRoot(fs afero.Fs, root string) error {
	info, err := fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}
	return nil
}

// scanState is shared between the walking goroutine and index workers
type scanState struct {
	mu          sync.Mutex
	result      *ScanResult
	interrupted bool
}

func (s *scanState) indexed() {
	s.mu.Lock()
	s.result.FilesIndexed++
	s.mu.Unlock()
}

func (s *scanState) failed(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, ErrInterrupted) {
		s.interrupted = true
		return
	}
	s.result.Failures = append(s.result.Failures, FileFailure{
		Path:    path,
		Kind:    errorKindName(err),
		Message: err.Error(),
		Err:     err,
	})
}

// Walk adds every regular file under the root to idx, in sorted path order
// when running with a single worker. Per-file failures are collected in the
// result and do not stop the walk. A closed shutdownChan stops the walk with
// ErrInterrupted.
func (w *Walker) Walk(idx *DuplicateIndex, shutdownChan <-chan struct{}) (*ScanResult, error) {
	defer VerboseEnter()()
	start := time.Now()

	state := &scanState{result: &ScanResult{Root: w.root}}

	add := func(rec FileRecord) {
		if err := idx.Add(rec); err != nil {
			if !errors.Is(err, ErrInterrupted) {
				logFileFailure(rec.Path, err)
			}
			state.failed(rec.Path, err)
			return
		}
		state.indexed()
	}

	var submit func(FileRecord)
	var wg sync.WaitGroup
	var records chan FileRecord

	if w.workers == 1 {
		submit = add
	} else {
		records = make(chan FileRecord, w.workers*4)
		for i := 0; i < w.workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for rec := range records {
					add(rec)
				}
			}()
		}
		submit = func(rec FileRecord) { records <- rec }
	}

	stopProgress := w.startProgress()
	walkErr := w.walk(submit, state.result, shutdownChan)

	if records != nil {
		close(records)
		wg.Wait()
	}
	stopProgress()

	result := state.result
	result.Duration = time.Since(start)
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})

	VerboseLog(1, "scanned %s: %d files seen, %d indexed, %d failures in %v",
		w.root, result.FilesSeen, result.FilesIndexed, len(result.Failures), result.Duration)

	if walkErr != nil {
		return result, walkErr
	}
	if state.interrupted {
		return result, ErrInterrupted
	}
	return result, nil
}

// startProgress logs a progress line every progressInterval until the
// returned stop function is called. stop waits for the logger goroutine.
func (w *Walker) startProgress() (stop func()) {
	if w.progressInterval <= 0 || w.progressBytes == nil {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(w.progressInterval)
		defer ticker.Stop()

		lastBytes := w.progressBytes()
		lastTime := time.Now()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				total := w.progressBytes()
				VerboseLog(1, "%s", progressLine(total-lastBytes, now.Sub(lastTime)))
				lastBytes, lastTime = total, now
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// progressLine describes delta bytes hashed over elapsed
func progressLine(delta int64, elapsed time.Duration) string {
	var rate uint64
	if elapsed > 0 {
		rate = uint64(float64(delta) / elapsed.Seconds())
	}
	return fmt.Sprintf("hashed %s in the last %v, rate %s/s",
		humanize.IBytes(uint64(delta)), elapsed.Round(time.Millisecond), humanize.IBytes(rate))
}

// walk visits paths in lexicographic order, calling submit for each regular
// file. Counters it touches are only written from this goroutine.
func (w *Walker) walk(submit func(FileRecord), result *ScanResult, shutdownChan <-chan struct{}) error {
	// pending is sorted in descending order; the next path is at the end
	pending := []string{w.root}

	for len(pending) > 0 {
		select {
		case <-shutdownChan:
			VerboseLog(1, "scan of %s interrupted by shutdown", w.root)
			return ErrInterrupted
		default:
		}

		currentPath := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		var info os.FileInfo
		var err error
		if currentPath == w.root {
			// A symlinked root is still scanned
			info, err = w.fs.Stat(currentPath)
		} else {
			info, err = w.lstat(currentPath)
		}
		if err != nil {
			logger.WithField("path", currentPath).Warnf("skipping: %v", err)
			continue
		}

		relPath := relativeSlashPath(w.root, currentPath)

		switch {
		case info.IsDir():
			if currentPath != w.root && (w.ignored(relPath) || w.ignored(relPath+"/")) {
				result.Ignored++
				continue
			}

			entries, err := afero.ReadDir(w.fs, currentPath)
			if err != nil {
				logger.WithField("path", currentPath).Warnf("cannot read directory: %v", err)
				continue
			}

			newPaths := make([]string, 0, len(entries))
			for _, entry := range entries {
				newPaths = append(newPaths, filepath.Join(currentPath, entry.Name()))
			}
			pending = pushSorted(pending, newPaths)

		case info.Mode().IsRegular():
			result.FilesSeen++
			if w.ignored(relPath) {
				result.Ignored++
				continue
			}
			if info.Size() < w.minSize {
				result.TooSmall++
				continue
			}
			if IsDebugEnabled(DebugScan) {
				VerboseLog(3, "scan: found file %s (%d bytes)", relPath, info.Size())
			}
			submit(NewFileRecord(currentPath, info))

		default:
			// Symlinks, devices, sockets and pipes are never indexed
			result.Skipped++
			if IsDebugEnabled(DebugScan) {
				VerboseLog(3, "scan: skipping %s (mode %v)", relPath, info.Mode())
			}
		}
	}

	return nil
}

func (w *Walker) ignored(relPath string) bool {
	pattern, ok := w.ignoreManager.Match(relPath)
	if ok && IsDebugEnabled(DebugScan) {
		VerboseLog(3, "scan: %s ignored by %q", relPath, pattern.String())
	}
	return ok
}

// lstat stats path without following a final symlink when fs supports it
func (w *Walker) lstat(path string) (os.FileInfo, error) {
	if lstater, ok := w.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return w.fs.Stat(path)
}

// pushSorted adds the children of one directory to the descending pending
// stack. Every pending path sorts either before all of them or after all of
// them, so they go in as one block.
func pushSorted(pending []string, children []string) []string {
	if len(children) == 0 {
		return pending
	}
	sort.Sort(sort.Reverse(sort.StringSlice(children)))
	pos := sort.Search(len(pending), func(i int) bool {
		return pending[i] < children[0]
	})
	return slices.Insert(pending, pos, children...)
}
