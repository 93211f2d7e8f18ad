package params

import (
	"sort"

	"github.com/smdabdoub/ClusterDistribute/internal/template"
)

// Missing returns the placeholders that have no value in m, ignoring the
// reserved names which are filled per chunk. The result is sorted.
func Missing(placeholders []string, m Mapping) []string {
	var missing []string
	for _, name := range placeholders {
		if template.IsReserved(name) {
			continue
		}
		if _, ok := m[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Resolve checks that m supplies a value for every non-reserved placeholder.
// It returns a *MissingError listing every name that is absent.
func Resolve(placeholders []string, m Mapping) error {
	if missing := Missing(placeholders, m); len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}
