package dupefilehash

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound is returned when the scan root does not exist
	ErrPathNotFound = errors.New("path not found")
	// ErrNotADirectory is returned when the scan root is not a directory
	ErrNotADirectory = errors.New("not a directory")
	// ErrFileOpenFailed marks a file that could not be opened for hashing
	ErrFileOpenFailed = errors.New("file open failed")
	// ErrFileReadFailed marks a file whose content could not be read in full
	ErrFileReadFailed = errors.New("file read failed")
	// ErrDeferredFileFailed marks an Add that failed because the previously
	// deferred file of the same size could not be hashed.
	ErrDeferredFileFailed = errors.New("deferred file of same size could not be hashed")
	// ErrInterrupted is returned when a shutdown signal stops a scan or a hash
	ErrInterrupted = errors.New("interrupted by shutdown")
	// ErrUnsupportedAlgorithm is returned for unknown hash algorithm names
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
)

// HashError describes a per-file hashing failure. It matches both its Kind
// and the underlying error with errors.Is.
type HashError struct {
	Path string
	Kind error
	Err  error
}

func (e *HashError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *HashError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// errorKindName returns a short label for logging the kind of a scan error
func errorKindName(err error) string {
	switch {
	case errors.Is(err, ErrInterrupted):
		return "interrupted"
	case errors.Is(err, ErrDeferredFileFailed):
		return "deferred"
	case errors.Is(err, ErrFileOpenFailed):
		return "open"
	case errors.Is(err, ErrFileReadFailed):
		return "read"
	default:
		return "other"
	}
}
