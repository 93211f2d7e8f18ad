// Package template discovers named placeholders in job script templates and
// renders them against a complete parameter mapping.
package template

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Reserved placeholders are filled per chunk instead of from user input.
const (
	SamplesFP = "samples_fp"
	JobID     = "job_id"
)

// placeholderRe matches {name}: a non-greedy run of characters between a
// single pair of curly braces. Nested braces are not supported.
var placeholderRe = regexp.MustCompile(`\{(.*?)\}`)

// Template is a job script template loaded from disk.
type Template struct {
	Path string
	Text string
}

// IsReserved reports whether name is populated automatically per chunk.
func IsReserved(name string) bool {
	return name == SamplesFP || name == JobID
}

// Load reads a template file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return &Template{Path: path, Text: string(data)}, nil
}

// Placeholders returns the distinct placeholder names of the template, sorted.
func (t *Template) Placeholders() []string {
	return Extract(t.Text)
}

// Naming returns the output naming scheme derived from the template file name.
func (t *Template) Naming() Naming {
	return NamingFor(t.Path)
}

// Render substitutes every placeholder of the template using values.
func (t *Template) Render(values map[string]string) (string, error) {
	out, err := Render(t.Text, values)
	if err != nil {
		var se *SubstitutionError
		if errors.As(err, &se) {
			se.Template = t.Path
		}
		return "", err
	}
	return out, nil
}

// Extract returns the distinct placeholder names found in text, sorted.
// Duplicates and ordering are discarded.
func Extract(text string) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render replaces every {name} in text with values[name]. If any placeholder
// has no value, nothing is returned and the error lists every unresolved name.
func Render(text string, values map[string]string) (string, error) {
	var unresolved []string
	seen := make(map[string]bool)

	out := placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		if v, ok := values[name]; ok {
			return v
		}
		if !seen[name] {
			seen[name] = true
			unresolved = append(unresolved, name)
		}
		return match
	})

	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return "", &SubstitutionError{Names: unresolved}
	}
	return out, nil
}

// quoteNames formats names for error messages: "a", "b"
func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
