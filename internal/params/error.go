package params

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParameterFileNotFound indicates the parameter file does not exist
	ErrParameterFileNotFound = errors.New("parameter file not found")

	// ErrPromptAborted indicates interactive input ended before all values were given
	ErrPromptAborted = errors.New("parameter entry aborted")
)

// MissingError lists template parameters that have no value.
type MissingError struct {
	Names []string // Missing placeholder names, sorted
}

func (e *MissingError) Error() string {
	var msg strings.Builder
	msg.WriteString("No values found for the following parameters:")
	for _, name := range e.Names {
		msg.WriteString("\n  ")
		msg.WriteString(name)
	}
	return msg.String()
}

// MalformedError represents a parameter file line without a "name: value" delimiter.
type MalformedError struct {
	Path    string // Parameter file path (empty when parsed from a reader)
	Line    int    // 1-based line number
	Content string // Offending line
}

func (e *MalformedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed parameter file %s at line %d (%q): expected 'name: value'",
			e.Path, e.Line, e.Content)
	}
	return fmt.Sprintf("malformed parameter at line %d (%q): expected 'name: value'", e.Line, e.Content)
}

// NewMalformedError creates a new MalformedError
func NewMalformedError(path string, line int, content string) *MalformedError {
	return &MalformedError{
		Path:    path,
		Line:    line,
		Content: content,
	}
}

// IsMissingError checks if an error is a MissingError
func IsMissingError(err error) bool {
	var me *MissingError
	return errors.As(err, &me)
}

// IsMalformedError checks if an error is a MalformedError
func IsMalformedError(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}
