package params

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smdabdoub/ClusterDistribute/internal/template"
)

// Prompt asks for a value for every non-reserved placeholder, one line each,
// in the order given. Input is taken verbatim apart from the line ending.
func Prompt(in io.Reader, out io.Writer, placeholders []string) (Mapping, error) {
	fmt.Fprintf(out, "The following %d parameters were found in the template file.\n", len(placeholders))
	fmt.Fprintln(out, "Please enter values for each:")

	reader := bufio.NewReader(in)
	m := make(Mapping)
	for _, name := range placeholders {
		if template.IsReserved(name) {
			continue
		}
		fmt.Fprintf(out, "%s: ", name)
		input, err := reader.ReadString('\n')
		if err != nil {
			// A final line without newline still counts as an answer
			if !(errors.Is(err, io.EOF) && input != "") {
				return nil, fmt.Errorf("%w: no value entered for %q", ErrPromptAborted, name)
			}
		}
		m[name] = strings.TrimRight(input, "\r\n")
	}
	return m, nil
}
