// Package scheduler submits generated job scripts to HPC batch schedulers
package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SchedulerType represents the type of job scheduler
type SchedulerType string

const (
	SchedulerUnknown SchedulerType = ""
	SchedulerSLURM   SchedulerType = "SLURM"
	SchedulerPBS     SchedulerType = "PBS"
	SchedulerLSF     SchedulerType = "LSF"
)

// jobEnvVars maps each scheduler to the environment variable set inside its jobs.
var jobEnvVars = map[SchedulerType]string{
	SchedulerSLURM: "SLURM_JOB_ID",
	SchedulerPBS:   "PBS_JOBID",
	SchedulerLSF:   "LSB_JOBID",
}

// SchedulerInfo holds information about the detected scheduler
type SchedulerInfo struct {
	Type      string // Scheduler type (e.g., "SLURM", "PBS", "LSF")
	Binary    string // Path to scheduler binary (e.g., "/usr/bin/sbatch")
	Version   string // Scheduler version (if available)
	InJob     bool   // Whether we're currently inside a scheduled job
	Available bool   // Whether scheduler is available for job submission
}

// Scheduler defines the interface for job schedulers
type Scheduler interface {
	// IsAvailable checks if the scheduler is available and we're not already in a job
	IsAvailable() bool

	// GetInfo returns information about the scheduler
	GetInfo() *SchedulerInfo

	// Submit submits a job script with optional dependency chain
	// Returns the job ID assigned by the scheduler
	Submit(scriptPath string, dependencyJobIDs []string) (string, error)

	// Command returns the shell form of the submission, as printed in dry runs
	Command(scriptPath string, dependencyJobIDs []string) string
}

// DetectSchedulerWithBinary attempts to initialize a scheduler using a preferred binary path.
// If preferredBin is empty, detection falls back to PATH lookup (sbatch, qsub, bsub).
// This function returns a Scheduler instance if the scheduler binary is present, regardless of availability.
func DetectSchedulerWithBinary(preferredBin string) (Scheduler, error) {
	if preferredBin != "" {
		switch filepath.Base(preferredBin) {
		case "qsub":
			return NewPbsSchedulerWithBinary(preferredBin)
		case "bsub":
			return NewLsfSchedulerWithBinary(preferredBin)
		default:
			// Default to SLURM for sbatch and any other binary
			return NewSlurmSchedulerWithBinary(preferredBin)
		}
	}

	if slurm, err := NewSlurmScheduler(); err == nil {
		return slurm, nil
	}
	if pbs, err := NewPbsScheduler(); err == nil {
		return pbs, nil
	}
	if lsf, err := NewLsfScheduler(); err == nil {
		return lsf, nil
	}

	return nil, ErrSchedulerNotFound
}

// ForType initializes the scheduler named by a config value ("SLURM", "pbs", ...)
// using its binary from PATH.
func ForType(name string) (Scheduler, error) {
	switch SchedulerType(strings.ToUpper(name)) {
	case SchedulerSLURM:
		return NewSlurmScheduler()
	case SchedulerPBS:
		return NewPbsScheduler()
	case SchedulerLSF:
		return NewLsfScheduler()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheduler, name)
	}
}

// Offline returns a scheduler of type t bound to its default binary name
// without looking it up. It can format commands for dry runs on machines
// without the scheduler installed; Submit fails unless the binary is in PATH.
func Offline(t SchedulerType) (Scheduler, error) {
	switch SchedulerType(strings.ToUpper(string(t))) {
	case SchedulerSLURM:
		return &SlurmScheduler{sbatchBin: "sbatch", jobIDRe: slurmJobIDRe}, nil
	case SchedulerPBS, SchedulerUnknown:
		return &PbsScheduler{qsubBin: "qsub"}, nil
	case SchedulerLSF:
		return &LsfScheduler{bsubBin: "bsub", jobIDRe: lsfJobIDRe}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheduler, t)
	}
}

// Init detects the scheduler for preferredBin (PATH lookup when empty) and
// makes it the active scheduler. On failure the active scheduler is cleared.
func Init(preferredBin string) (SchedulerType, error) {
	sched, err := DetectSchedulerWithBinary(preferredBin)
	if err != nil {
		ClearActiveScheduler()
		return SchedulerUnknown, err
	}

	SetActiveScheduler(sched)
	return SchedulerType(sched.GetInfo().Type), nil
}

// IsInsideJob checks if we're currently running inside a scheduler job.
// This is useful to avoid nested job submission.
func IsInsideJob() bool {
	for _, env := range jobEnvVars {
		if _, ok := os.LookupEnv(env); ok {
			return true
		}
	}
	return false
}

// inJobOf reports whether the current process runs inside a job of the given scheduler.
func inJobOf(t SchedulerType) bool {
	_, ok := os.LookupEnv(jobEnvVars[t])
	return ok
}

// resolveBinary finds name in PATH when bin is empty, otherwise checks that bin exists.
func resolveBinary(bin, name string) (string, error) {
	if bin == "" {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
		return path, nil
	}

	if absPath, err := filepath.Abs(bin); err == nil {
		bin = absPath
	}
	info, err := os.Stat(bin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrSchedulerNotFound, bin)
	}
	return bin, nil
}

// binaryVersion runs bin with a version flag and returns the trimmed output.
func binaryVersion(bin string, flag string) (string, error) {
	output, err := exec.Command(bin, flag).CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
