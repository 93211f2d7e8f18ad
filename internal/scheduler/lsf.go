package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

var lsfJobIDRe = regexp.MustCompile(`Job <(\d+)>`)

// LsfScheduler implements the Scheduler interface for IBM Spectrum LSF
type LsfScheduler struct {
	bsubBin string
	jobIDRe *regexp.Regexp
}

// NewLsfScheduler creates a new LSF scheduler instance using bsub from PATH
func NewLsfScheduler() (*LsfScheduler, error) {
	return NewLsfSchedulerWithBinary("")
}

// NewLsfSchedulerWithBinary creates an LSF scheduler using an explicit bsub path
func NewLsfSchedulerWithBinary(bsubBin string) (*LsfScheduler, error) {
	binPath, err := resolveBinary(bsubBin, "bsub")
	if err != nil {
		return nil, err
	}
	return &LsfScheduler{
		bsubBin: binPath,
		jobIDRe: lsfJobIDRe,
	}, nil
}

// IsAvailable checks if LSF is available and we're not inside an LSF job
func (l *LsfScheduler) IsAvailable() bool {
	return l.bsubBin != "" && !inJobOf(SchedulerLSF)
}

// GetInfo returns information about the LSF scheduler
func (l *LsfScheduler) GetInfo() *SchedulerInfo {
	info := &SchedulerInfo{
		Type:      string(SchedulerLSF),
		Binary:    l.bsubBin,
		InJob:     inJobOf(SchedulerLSF),
		Available: l.IsAvailable(),
	}
	// Output like "IBM Spectrum LSF 10.1.0.0, ..."; keep the first line
	if version, err := binaryVersion(l.bsubBin, "-V"); err == nil {
		info.Version, _, _ = strings.Cut(version, "\n")
	}
	return info
}

// LSF uses: -w "done(id1) && done(id2)"
func (l *LsfScheduler) depArgs(dependencyJobIDs []string) []string {
	if len(dependencyJobIDs) == 0 {
		return nil
	}
	conditions := make([]string, len(dependencyJobIDs))
	for i, id := range dependencyJobIDs {
		conditions[i] = fmt.Sprintf("done(%s)", id)
	}
	return []string{"-w", strings.Join(conditions, " && ")}
}

// Command returns the bsub invocation for scriptPath
func (l *LsfScheduler) Command(scriptPath string, dependencyJobIDs []string) string {
	parts := []string{"bsub"}
	if dep := l.depArgs(dependencyJobIDs); dep != nil {
		parts = append(parts, dep[0], fmt.Sprintf("%q", dep[1]))
	}
	return strings.Join(append(parts, "<", scriptPath), " ")
}

// Submit submits an LSF job with optional dependency chain.
// bsub reads the script from stdin.
func (l *LsfScheduler) Submit(scriptPath string, dependencyJobIDs []string) (string, error) {
	script, err := os.Open(scriptPath)
	if err != nil {
		return "", &SubmissionError{Scheduler: SchedulerLSF, Script: scriptPath, Err: err}
	}
	defer script.Close()

	cmd := exec.Command(l.bsubBin, l.depArgs(dependencyJobIDs)...)
	cmd.Stdin = script
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &SubmissionError{Scheduler: SchedulerLSF, Script: scriptPath, Output: string(output), Err: err}
	}

	// Parse job ID from output like "Job <12345> is submitted to queue <normal>."
	matches := l.jobIDRe.FindStringSubmatch(string(output))
	if len(matches) < 2 {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, string(output))
	}
	return matches[1], nil
}
