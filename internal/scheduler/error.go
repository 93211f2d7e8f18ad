package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchedulerNotAvailable is returned when the scheduler cannot accept jobs
	ErrSchedulerNotAvailable = errors.New("scheduler is not available")

	// ErrSchedulerNotFound is returned when no sbatch, qsub or bsub binary is found
	ErrSchedulerNotFound = errors.New("scheduler binary not found in PATH")

	// ErrUnknownScheduler is returned for a scheduler_type other than SLURM, PBS or LSF
	ErrUnknownScheduler = errors.New("unknown scheduler type")

	// ErrAlreadyInJob refuses nested submission from inside a running job
	ErrAlreadyInJob = errors.New("already inside a scheduler job")

	// ErrScriptNotFound is returned for a job script that does not exist
	ErrScriptNotFound = errors.New("job script not found")

	// ErrJobIDParseFailed is returned when the submit command printed no job id
	ErrJobIDParseFailed = errors.New("no job id in scheduler output")
)

// SubmissionError is a job script the scheduler refused.
type SubmissionError struct {
	Scheduler SchedulerType
	Script    string // Path of the job script
	Output    string // Combined output of the submit command
	Err       error
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("%s rejected %s: %v", e.Scheduler, e.Script, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsSubmissionError reports whether err contains a *SubmissionError.
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
