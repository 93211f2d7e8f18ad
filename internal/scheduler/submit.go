package scheduler

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/smdabdoub/ClusterDistribute/internal/utils"
)

// SubmitOptions controls SubmitScripts.
type SubmitOptions struct {
	DryRun bool      // Print the commands only
	After  []string  // Job IDs every script depends on
	Out    io.Writer // Command and job id echo; os.Stdout when nil
}

// Submission records one submitted (or dry-run) script.
type Submission struct {
	Script  string
	Command string
	JobID   string // empty for dry runs and failures
}

// SubmitScripts submits each script in order. For every script the submit
// command is printed, followed by the scheduler's job id. Failed submissions
// are reported and skipped; the returned error aggregates all of them.
func SubmitScripts(s Scheduler, scripts []string, opts SubmitOptions) ([]Submission, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var result *multierror.Error
	subs := make([]Submission, 0, len(scripts))
	for _, script := range scripts {
		sub := Submission{Script: script, Command: s.Command(script, opts.After)}
		fmt.Fprintln(out, sub.Command)

		if opts.DryRun {
			subs = append(subs, sub)
			continue
		}

		if !utils.FileExists(script) {
			err := fmt.Errorf("%w: %s", ErrScriptNotFound, script)
			utils.PrintWarning("%v", err)
			result = multierror.Append(result, err)
			subs = append(subs, sub)
			continue
		}

		jobID, err := s.Submit(script, opts.After)
		if err != nil {
			utils.PrintWarning("Failed to submit %s", utils.StylePath(script))
			result = multierror.Append(result, err)
			subs = append(subs, sub)
			continue
		}
		sub.JobID = jobID
		fmt.Fprintln(out, jobID)
		subs = append(subs, sub)
	}

	return subs, result.ErrorOrNil()
}

// CheckSubmittable returns ErrAlreadyInJob when called from inside a scheduler
// job, and ErrSchedulerNotAvailable when s cannot submit.
func CheckSubmittable(s Scheduler) error {
	if IsInsideJob() {
		return ErrAlreadyInJob
	}
	if s == nil || !s.IsAvailable() {
		return ErrSchedulerNotAvailable
	}
	return nil
}
