package reconcile

import (
	"path/filepath"
	"strings"
)

// Position selects which separator-delimited token of a file stem to use.
type Position int

const (
	// Last is the token after the final separator (the whole stem if none).
	Last Position = iota
	// First is the token before the first separator (the whole stem if none).
	First
)

// TokenRule extracts an identifier from a file name. Only the stem (name
// without its final extension) is considered.
//
// The reconciler correlates files purely by these tokens: a log and a sample
// subset file belong to the same run when their run tokens are equal, and a
// completed output file names its sample with its sample token. Tokens are
// compared as strings and are not required to be numeric.
type TokenRule struct {
	Sep      string
	Position Position
}

var (
	// DefaultRunToken matches the materializer's naming: run_3.pbs, run_samples_3.txt, job_3.out.
	DefaultRunToken = TokenRule{Sep: "_", Position: Last}
	// DefaultSampleToken reads S123 from output files such as S123_contigs.fna.
	DefaultSampleToken = TokenRule{Sep: "_", Position: First}
)

// Token returns the rule's token for path.
func (r TokenRule) Token(path string) string {
	stem := Stem(path)
	if r.Sep == "" {
		return stem
	}
	switch r.Position {
	case First:
		tok, _, _ := strings.Cut(stem, r.Sep)
		return tok
	default:
		if i := strings.LastIndex(stem, r.Sep); i >= 0 {
			return stem[i+len(r.Sep):]
		}
		return stem
	}
}

// Stem returns the file name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// ParsePosition maps "first"/"last" to a Position.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return First, true
	case "last":
		return Last, true
	}
	return Last, false
}
