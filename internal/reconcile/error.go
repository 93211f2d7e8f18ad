package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLogPattern indicates reconciliation was started without a log pattern
	ErrNoLogPattern = errors.New("no log file pattern given")

	// ErrNoSamplesPattern indicates reconciliation was started without a sample file pattern
	ErrNoSamplesPattern = errors.New("no sample file pattern given")

	// ErrInvalidMarker indicates the failure marker is not a valid regular expression
	ErrInvalidMarker = errors.New("invalid failure marker")
)

// FileError is a problem with one evidence file. Reconciliation records it and
// carries on with the remaining files.
type FileError struct {
	Kind string // "log", "samples" or "completed"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("skipping %s file %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// PatternError is an unusable glob pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
