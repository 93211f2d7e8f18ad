package distribute

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound indicates a required input path does not exist
	ErrPathNotFound = errors.New("path does not exist")

	// ErrDirectoryCreate indicates the output directory could not be created
	ErrDirectoryCreate = errors.New("unable to create directory")

	// ErrNoTemplate indicates a plan without a template
	ErrNoTemplate = errors.New("no template given")

	// ErrConflictingUnits indicates a plan with both chunks and pre-split sample files
	ErrConflictingUnits = errors.New("plan has both sample chunks and pre-split sample files")

	// ErrManifestVersion indicates a manifest written by an incompatible version
	ErrManifestVersion = errors.New("manifest was written by an incompatible version")
)

// PathKind classifies a PathError.
type PathKind int

const (
	PathNotFound PathKind = iota
	DirectoryCreateFailed
)

// PathError describes one invalid input or output path found during pre-flight.
type PathError struct {
	Kind PathKind
	Role string // What the path is for, e.g. "template", "sample list"
	Path string
	Err  error // Underlying OS error, if any
}

func (e *PathError) Error() string {
	switch e.Kind {
	case DirectoryCreateFailed:
		if e.Err != nil {
			return fmt.Sprintf("unable to create %s directory %s: %v", e.Role, e.Path, e.Err)
		}
		return fmt.Sprintf("unable to create %s directory %s", e.Role, e.Path)
	default:
		return fmt.Sprintf("the specified %s does not exist: %s", e.Role, e.Path)
	}
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the ErrPathNotFound and ErrDirectoryCreate sentinels.
func (e *PathError) Is(target error) bool {
	switch target {
	case ErrPathNotFound:
		return e.Kind == PathNotFound
	case ErrDirectoryCreate:
		return e.Kind == DirectoryCreateFailed
	}
	return false
}

// UnitError is a failure writing the files of one job.
type UnitError struct {
	Index int
	Path  string
	Err   error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("job %d: failed to write %s: %v", e.Index, e.Path, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// IsPathError checks if an error is (or wraps) a PathError
func IsPathError(err error) bool {
	var pe *PathError
	return errors.As(err, &pe)
}
