package scheduler

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var slurmJobIDRe = regexp.MustCompile(`Submitted batch job (\d+)`)

// SlurmScheduler implements the Scheduler interface for SLURM
type SlurmScheduler struct {
	sbatchBin string
	jobIDRe   *regexp.Regexp
}

// NewSlurmScheduler creates a new SLURM scheduler instance using sbatch from PATH
func NewSlurmScheduler() (*SlurmScheduler, error) {
	return NewSlurmSchedulerWithBinary("")
}

// NewSlurmSchedulerWithBinary creates a SLURM scheduler using an explicit sbatch path
func NewSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	binPath, err := resolveBinary(sbatchBin, "sbatch")
	if err != nil {
		return nil, err
	}
	return &SlurmScheduler{
		sbatchBin: binPath,
		jobIDRe:   slurmJobIDRe,
	}, nil
}

// IsAvailable checks if SLURM is available and we're not inside a SLURM job
func (s *SlurmScheduler) IsAvailable() bool {
	return s.sbatchBin != "" && !inJobOf(SchedulerSLURM)
}

// GetInfo returns information about the SLURM scheduler
func (s *SlurmScheduler) GetInfo() *SchedulerInfo {
	info := &SchedulerInfo{
		Type:      string(SchedulerSLURM),
		Binary:    s.sbatchBin,
		InJob:     inJobOf(SchedulerSLURM),
		Available: s.IsAvailable(),
	}

	// Parse version from output like "slurm 23.02.6"
	if version, err := binaryVersion(s.sbatchBin, "--version"); err == nil {
		if parts := strings.Fields(version); len(parts) >= 2 {
			info.Version = parts[1]
		} else {
			info.Version = version
		}
	}

	return info
}

func (s *SlurmScheduler) args(scriptPath string, dependencyJobIDs []string) []string {
	args := []string{scriptPath}
	if len(dependencyJobIDs) > 0 {
		depArg := fmt.Sprintf("--dependency=afterok:%s", strings.Join(dependencyJobIDs, ","))
		args = append([]string{depArg}, args...)
	}
	return args
}

// Command returns the sbatch invocation for scriptPath
func (s *SlurmScheduler) Command(scriptPath string, dependencyJobIDs []string) string {
	return strings.Join(append([]string{"sbatch"}, s.args(scriptPath, dependencyJobIDs)...), " ")
}

// Submit submits a SLURM job with optional dependency chain
func (s *SlurmScheduler) Submit(scriptPath string, dependencyJobIDs []string) (string, error) {
	cmd := exec.Command(s.sbatchBin, s.args(scriptPath, dependencyJobIDs)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &SubmissionError{Scheduler: SchedulerSLURM, Script: scriptPath, Output: string(output), Err: err}
	}

	matches := s.jobIDRe.FindStringSubmatch(string(output))
	if len(matches) < 2 {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, string(output))
	}
	return matches[1], nil
}
