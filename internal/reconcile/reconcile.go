// Package reconcile works out which samples still need processing after a
// round of jobs: samples from runs whose logs show a failure, minus samples
// whose output already exists.
package reconcile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-zglob"

	"github.com/smdabdoub/ClusterDistribute/internal/utils"
)

// DefaultOutput is the default file name for the residual sample list.
const DefaultOutput = "failed_samples.txt"

// Options configures a reconciliation run.
type Options struct {
	LogPattern string // Glob for job logs, e.g. "logs/megahit_*.out"
	FailMarker string // Regular expression (or literal text) that marks a failed run
	Literal    bool   // Treat FailMarker as plain text

	SamplesPattern   string // Glob for sample subset files
	CompletedPattern string // Glob for completed outputs, files or directories (optional)

	RunToken    TokenRule // Zero value means DefaultRunToken
	SampleToken TokenRule // Zero value means DefaultSampleToken
}

// Result is the outcome of a reconciliation run.
type Result struct {
	FailedRuns []string // Run tokens of failed logs, sorted
	Implicated int      // Distinct samples in failed runs
	Completed  int      // Distinct completed samples found
	Residual   []string // Implicated minus completed, sorted

	// Problems holds per-file errors (unreadable logs or sample files).
	// They do not abort the scan.
	Problems []error
}

// ProblemsError returns the per-file problems as one error, or nil.
func (r *Result) ProblemsError() error {
	var result *multierror.Error
	for _, p := range r.Problems {
		result = multierror.Append(result, p)
	}
	return result.ErrorOrNil()
}

// Run performs reconciliation.
func Run(opts Options) (*Result, error) {
	if opts.LogPattern == "" {
		return nil, ErrNoLogPattern
	}
	if opts.SamplesPattern == "" {
		return nil, ErrNoSamplesPattern
	}
	if opts.RunToken.Sep == "" {
		opts.RunToken = DefaultRunToken
	}
	if opts.SampleToken.Sep == "" {
		opts.SampleToken = DefaultSampleToken
	}

	failed, err := newMatcher(opts.FailMarker, opts.Literal)
	if err != nil {
		return nil, err
	}

	res := &Result{}

	// 1. Failed runs
	logs, err := Glob(opts.LogPattern)
	if err != nil {
		return nil, err
	}
	utils.PrintDebug("Scanning %s log file(s) matching %s", utils.StyleNumber(len(logs)), utils.StylePath(opts.LogPattern))

	failedRuns := make(map[string]bool)
	for _, lf := range logs {
		data, err := os.ReadFile(lf)
		if err != nil {
			res.problem("log", lf, err)
			continue
		}
		if failed(string(data)) {
			failedRuns[opts.RunToken.Token(lf)] = true
		}
	}
	res.FailedRuns = sortedKeys(failedRuns)
	utils.PrintMessage("Failed runs found: %s", utils.StyleNumber(len(res.FailedRuns)))

	// 2. Samples of failed runs
	sampleFiles, err := Glob(opts.SamplesPattern)
	if err != nil {
		return nil, err
	}
	implicated := make(map[string]bool)
	for _, sf := range sampleFiles {
		if !failedRuns[opts.RunToken.Token(sf)] {
			continue
		}
		ids, err := utils.ReadLines(sf)
		if err != nil {
			res.problem("samples", sf, err)
			continue
		}
		for _, id := range ids {
			implicated[id] = true
		}
	}
	res.Implicated = len(implicated)
	utils.PrintMessage("Samples in failed jobs: %s", utils.StyleNumber(res.Implicated))

	// 3. Completed samples
	completed := make(map[string]bool)
	if opts.CompletedPattern != "" {
		outputs, err := GlobPaths(opts.CompletedPattern)
		if err != nil {
			return nil, err
		}
		for _, of := range outputs {
			completed[opts.SampleToken.Token(of)] = true
		}
	}
	res.Completed = len(completed)

	// 4. Residual
	res.Residual = []string{}
	for id := range implicated {
		if !completed[id] {
			res.Residual = append(res.Residual, id)
		}
	}
	sort.Strings(res.Residual)
	if opts.CompletedPattern != "" {
		utils.PrintMessage("Already completed: %s", utils.StyleNumber(res.Implicated-len(res.Residual)))
	}

	return res, nil
}

// Glob returns the regular files matching pattern, sorted. "**" matches
// across directories. A pattern that matches nothing returns no error.
func Glob(pattern string) ([]string, error) {
	return glob(pattern, utils.FileExists)
}

// GlobPaths is Glob for any existing path, so per-sample output
// directories such as A_megahit/ count as matches.
func GlobPaths(pattern string) ([]string, error) {
	return glob(pattern, utils.PathExists)
}

func glob(pattern string, keep func(string) bool) ([]string, error) {
	matches, err := zglob.Glob(pattern)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	paths := matches[:0]
	for _, m := range matches {
		if keep(m) {
			paths = append(paths, filepath.Clean(m))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// WriteSamples writes ids one per line with a trailing newline, the sample
// list format the distribute step reads.
func WriteSamples(path string, ids []string) error {
	if err := utils.WriteFileAtomic(path, []byte(utils.JoinLines(ids)), utils.PermFile); err != nil {
		return fmt.Errorf("failed to write sample list: %w", err)
	}
	return nil
}

func (r *Result) problem(kind, path string, err error) {
	fe := &FileError{Kind: kind, Path: path, Err: err}
	r.Problems = append(r.Problems, fe)
	utils.PrintDebug("Skipping %s", utils.StylePath(path))
}

// newMatcher returns a predicate reporting whether log text marks a failure.
func newMatcher(marker string, literal bool) (func(string) bool, error) {
	if literal {
		return func(text string) bool { return strings.Contains(text, marker) }, nil
	}
	re, err := regexp.Compile(marker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarker, err)
	}
	return re.MatchString, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
