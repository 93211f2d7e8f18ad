package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/smdabdoub/ClusterDistribute/internal/config"
	"github.com/smdabdoub/ClusterDistribute/internal/distribute"
	"github.com/smdabdoub/ClusterDistribute/internal/scheduler"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
	"github.com/spf13/cobra"
)

var submitFlags struct {
	manifest string
	dryRun   bool
	after    []string
}

var submitCmd = &cobra.Command{
	Use:     "submit SCRIPT... | --manifest FILE",
	Aliases: []string{"sub"},
	Short:   "Submit job scripts to the scheduler",
	Long: `Submit job scripts to the detected scheduler (SLURM sbatch, PBS qsub or
LSF bsub), printing each command followed by the job id.

Scripts are taken from the arguments or from a run manifest written by
'cdist distribute'. A failed submission does not stop the remaining ones.
Submission is refused from inside a scheduler job unless --dry-run is given.`,
	Example: `  cdist submit run_1.pbs run_2.pbs run_3.pbs
  cdist submit --manifest jobs/run_manifest.yaml
  cdist submit -t jobs/run_*.pbs                 # print commands only
  cdist submit --after 12345 run_*.pbs           # start after job 12345 succeeds`,
	Run: func(cmd *cobra.Command, args []string) {
		scripts, err := submitScripts(args, submitFlags.manifest)
		if err != nil {
			ExitWithError("%v", err)
		}

		dryRun := submitFlags.dryRun
		if !dryRun && !config.Global.SubmitJob {
			utils.PrintNote("Job submission is disabled (--local or submit_job: false); printing commands only")
			dryRun = true
		}

		if err := runSubmit(scripts, dryRun, submitFlags.after, os.Stdout); err != nil {
			printErrors(err)
			os.Exit(ExitCodeError)
		}
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	f := submitCmd.Flags()
	f.StringVarP(&submitFlags.manifest, "manifest", "m", "", "submit the jobs of a run manifest")
	f.BoolVarP(&submitFlags.dryRun, "dry-run", "t", false, "print the submit commands without running them")
	f.StringSliceVar(&submitFlags.after, "after", nil, "job ids every script depends on (afterok)")

	submitCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return findLocalFilesWithFilter(toComplete, 1, utils.IsJobScript), cobra.ShellCompDirectiveNoFileComp
	}
	submitCmd.RegisterFlagCompletionFunc("manifest", fileFlagCompletion(func(name string) bool {
		ext := filepath.Ext(name)
		return ext == ".yaml" || ext == ".yml"
	}))
}

// submitScripts returns the scripts named on the command line or in the manifest.
func submitScripts(args []string, manifestPath string) ([]string, error) {
	switch {
	case manifestPath != "" && len(args) > 0:
		return nil, errors.New("give either scripts or --manifest, not both")
	case manifestPath != "":
		m, err := distribute.ReadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		utils.PrintDebug("Manifest %s lists %d job(s)", utils.StylePath(manifestPath), len(m.Jobs))
		return m.Scripts(), nil
	case len(args) > 0:
		return args, nil
	default:
		return nil, errors.New("no job scripts given")
	}
}

// runSubmit picks the scheduler and submits scripts, echoing commands to out.
func runSubmit(scripts []string, dryRun bool, after []string, out io.Writer) error {
	sched, err := submitScheduler(dryRun)
	if err != nil {
		return err
	}
	if !dryRun {
		if err := scheduler.CheckSubmittable(sched); err != nil {
			if errors.Is(err, scheduler.ErrAlreadyInJob) {
				utils.PrintHint("Use --dry-run to print the commands instead")
			}
			return err
		}
	}

	subs, err := scheduler.SubmitScripts(sched, scripts, scheduler.SubmitOptions{
		DryRun: dryRun,
		After:  after,
		Out:    out,
	})

	submitted := 0
	for _, s := range subs {
		if s.JobID != "" {
			submitted++
		}
	}
	if !dryRun {
		utils.PrintMessage("Submitted %s of %s job(s)", utils.StyleNumber(submitted), utils.StyleNumber(len(scripts)))
	}
	return err
}

// submitScheduler returns the active scheduler, detecting one when needed.
// Dry runs fall back to an offline scheduler of the configured type.
func submitScheduler(dryRun bool) (scheduler.Scheduler, error) {
	if sched := scheduler.ActiveScheduler(); sched != nil {
		return sched, nil
	}

	var (
		sched scheduler.Scheduler
		err   error
	)
	switch {
	case config.Global.SchedulerBin != "":
		sched, err = scheduler.DetectSchedulerWithBinary(config.Global.SchedulerBin)
	case config.Global.SchedulerType != "":
		sched, err = scheduler.ForType(config.Global.SchedulerType)
	default:
		sched, err = scheduler.DetectSchedulerWithBinary("")
	}
	if err == nil {
		return sched, nil
	}
	if dryRun {
		utils.PrintDebug("No scheduler binary found (%v); formatting commands offline", err)
		return scheduler.Offline(scheduler.SchedulerType(config.Global.SchedulerType))
	}
	return nil, err
}
