// Package params builds the placeholder → value mapping used to render job
// scripts, either from a parameter file or interactively.
package params

import (
	"sort"
	"strconv"

	"github.com/smdabdoub/ClusterDistribute/internal/template"
)

// Mapping maps placeholder names to their values.
//
// A Mapping is built once per run and treated as immutable afterwards; per-chunk
// values go into the copy returned by WithChunk.
type Mapping map[string]string

// Keys returns the mapping's names, sorted.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WithChunk returns a copy of m with the reserved job_id and samples_fp entries
// set for one chunk. Any existing values for those keys are overwritten in the
// copy; m itself is not modified.
func (m Mapping) WithChunk(index int, samplesPath string) Mapping {
	out := m.Clone()
	out[template.JobID] = strconv.Itoa(index)
	out[template.SamplesFP] = samplesPath
	return out
}

// WithoutReserved returns a copy of m without job_id and samples_fp.
func (m Mapping) WithoutReserved() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		if template.IsReserved(k) {
			continue
		}
		out[k] = v
	}
	return out
}
