package template

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound indicates the template file does not exist
var ErrTemplateNotFound = errors.New("template file not found")

// SubstitutionError is returned when placeholders remain unresolved at render time.
type SubstitutionError struct {
	Template string   // Template path (may be empty for raw text)
	Names    []string // Unresolved placeholder names, sorted
}

func (e *SubstitutionError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("template %s has unresolved placeholders: %s", e.Template, quoteNames(e.Names))
	}
	return fmt.Sprintf("unresolved placeholders: %s", quoteNames(e.Names))
}

// IsSubstitutionError checks if an error is a SubstitutionError
func IsSubstitutionError(err error) bool {
	var se *SubstitutionError
	return errors.As(err, &se)
}
