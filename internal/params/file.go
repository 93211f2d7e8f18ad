package params

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smdabdoub/ClusterDistribute/internal/utils"
)

// Parameter files hold one "name: value" pair per line. The first colon is the
// delimiter, so values may contain colons. Whitespace around both sides is
// trimmed and blank lines are ignored.

// ParseFile reads a parameter file.
func ParseFile(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrParameterFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open parameter file: %w", err)
	}
	defer f.Close()

	m, err := parse(f, path)
	if err != nil {
		return nil, err
	}
	utils.PrintDebug("Read %s parameter(s) from %s", utils.StyleNumber(len(m)), utils.StylePath(path))
	return m, nil
}

// Parse reads "name: value" lines from r.
func Parse(r io.Reader) (Mapping, error) {
	return parse(r, "")
}

func parse(r io.Reader, path string) (Mapping, error) {
	m := make(Mapping)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, NewMalformedError(path, lineNo, line)
		}
		m[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading parameters: %w", err)
	}
	return m, nil
}

// Format renders the mapping in parameter file format, reserved entries
// excluded, sorted by name, with a trailing newline.
func Format(m Mapping) string {
	var b strings.Builder
	clean := m.WithoutReserved()
	for _, k := range clean.Keys() {
		fmt.Fprintf(&b, "%s: %s\n", k, clean[k])
	}
	return b.String()
}

// Save writes the mapping to path in parameter file format.
func Save(path string, m Mapping) error {
	if err := utils.WriteFileAtomic(path, []byte(Format(m)), utils.PermFile); err != nil {
		return fmt.Errorf("failed to save parameters: %w", err)
	}
	return nil
}
