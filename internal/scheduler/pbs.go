package scheduler

import (
	"fmt"
	"os/exec"
	"strings"
)

// PbsScheduler implements the Scheduler interface for PBS/Torque
type PbsScheduler struct {
	qsubBin string
}

// NewPbsScheduler creates a new PBS scheduler instance using qsub from PATH
func NewPbsScheduler() (*PbsScheduler, error) {
	return NewPbsSchedulerWithBinary("")
}

// NewPbsSchedulerWithBinary creates a PBS scheduler using an explicit qsub path
func NewPbsSchedulerWithBinary(qsubBin string) (*PbsScheduler, error) {
	binPath, err := resolveBinary(qsubBin, "qsub")
	if err != nil {
		return nil, err
	}
	return &PbsScheduler{qsubBin: binPath}, nil
}

// IsAvailable checks if PBS is available and we're not inside a PBS job
func (p *PbsScheduler) IsAvailable() bool {
	return p.qsubBin != "" && !inJobOf(SchedulerPBS)
}

// GetInfo returns information about the PBS scheduler
func (p *PbsScheduler) GetInfo() *SchedulerInfo {
	info := &SchedulerInfo{
		Type:      string(SchedulerPBS),
		Binary:    p.qsubBin,
		InJob:     inJobOf(SchedulerPBS),
		Available: p.IsAvailable(),
	}
	if version, err := binaryVersion(p.qsubBin, "--version"); err == nil {
		info.Version = version
	}
	return info
}

func (p *PbsScheduler) args(scriptPath string, dependencyJobIDs []string) []string {
	args := []string{scriptPath}
	if len(dependencyJobIDs) > 0 {
		depArg := fmt.Sprintf("depend=afterok:%s", strings.Join(dependencyJobIDs, ":"))
		args = append([]string{"-W", depArg}, args...)
	}
	return args
}

// Command returns the qsub invocation for scriptPath
func (p *PbsScheduler) Command(scriptPath string, dependencyJobIDs []string) string {
	return strings.Join(append([]string{"qsub"}, p.args(scriptPath, dependencyJobIDs)...), " ")
}

// Submit submits a PBS job with optional dependency chain
func (p *PbsScheduler) Submit(scriptPath string, dependencyJobIDs []string) (string, error) {
	cmd := exec.Command(p.qsubBin, p.args(scriptPath, dependencyJobIDs)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &SubmissionError{Scheduler: SchedulerPBS, Script: scriptPath, Output: string(output), Err: err}
	}

	// qsub prints only the job id, e.g. "12345.pbs-server"
	jobID := strings.TrimSpace(string(output))
	if jobID == "" {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, string(output))
	}
	return jobID, nil
}
