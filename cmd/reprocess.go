package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/smdabdoub/ClusterDistribute/internal/config"
	"github.com/smdabdoub/ClusterDistribute/internal/reconcile"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
	"github.com/spf13/cobra"
)

// reprocessOptions holds the resolved inputs of one reprocess run.
type reprocessOptions struct {
	LogPattern     string
	FailString     string
	SamplesPattern string
	JobFolder      string
	JobOutPattern  string
	Output         string
	Literal        bool
	Separator      string
	RunToken       string // "first" or "last"; empty means last
	SampleToken    string // "first" or "last"; empty means first
}

var reprocessFlags struct {
	jobFolder     string
	jobOutPattern string
	output        string
	literal       bool
	separator     string
	runToken      string
	sampleToken   string
}

var reprocessCmd = &cobra.Command{
	Use:     "reprocess LOG_PATTERN [FAIL_STRING] SAMPLES_PATTERN",
	Aliases: []string{"reconcile"},
	Short:   "Collect the samples of failed jobs for resubmission",
	Long: `Scan job logs for a failure marker and write the samples of the failed jobs
to a new sample list, leaving out samples whose output already exists.

Logs and sample subset files are matched by the token after their last "_":
job_3.out belongs to run_samples_3.txt. Completed outputs (-j/-P) name their
sample by the token before the first "_": S12_contigs.fna completes S12, and
so does a directory S12_megahit/. --separator, --run-token and --sample-token
change these conventions.

FAIL_STRING is a regular expression (plain text with --literal). It may be
omitted when reprocess.fail_string is set in the config. A relative
SAMPLES_PATTERN is resolved against the directory of LOG_PATTERN. Patterns
support "**" for recursive matching; quote them so the shell does not expand
them.`,
	Example: `  cdist reprocess 'logs/job_*.out' 'Segmentation fault' 'run_samples_*.txt'
  cdist reprocess 'logs/*.out' 'ERROR|Killed' '../jobs/run_samples_*.txt' -j assemblies -P '*_final.fna'
  cdist reprocess 'logs/*.out' 'exit code [1-9]' 'run_samples_*.txt' -o retry.txt`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		opts := reprocessOptionsFromFlags(args)

		res, err := runReprocess(opts)
		if err != nil {
			ExitWithError("%v", err)
		}
		if perr := res.ProblemsError(); perr != nil {
			printErrors(perr)
			utils.PrintWarning("%s file(s) could not be read and were skipped", utils.StyleNumber(len(res.Problems)))
		}
		if len(res.Residual) == 0 {
			utils.PrintSuccess("No samples need reprocessing; wrote empty %s", utils.StylePath(opts.Output))
			return
		}
		utils.PrintSuccess("Wrote %s sample(s) to %s", utils.StyleNumber(len(res.Residual)), utils.StylePath(opts.Output))
		utils.PrintHint("Resubmit with: %s", utils.StyleCommand("cdist distribute TEMPLATE -l "+opts.Output))
	},
}

func init() {
	rootCmd.AddCommand(reprocessCmd)

	f := reprocessCmd.Flags()
	f.StringVarP(&reprocessFlags.jobFolder, "job-folder", "j", "", "folder holding completed job outputs")
	f.StringVarP(&reprocessFlags.jobOutPattern, "job-out-pattern", "P", "", "pattern of completed outputs inside --job-folder (e.g. '*_final.fna')")
	f.StringVarP(&reprocessFlags.output, "output", "o", "", "residual sample list (default from config, failed_samples.txt)")
	f.BoolVar(&reprocessFlags.literal, "literal", false, "treat FAIL_STRING as plain text, not a regular expression")
	f.StringVar(&reprocessFlags.separator, "separator", "", "token separator in file names (default from config, \"_\")")
	f.StringVar(&reprocessFlags.runToken, "run-token", "", "token of log and sample file stems holding the run index: first or last (default last)")
	f.StringVar(&reprocessFlags.sampleToken, "sample-token", "", "token of completed output stems holding the sample: first or last (default first)")

	reprocessCmd.MarkFlagsRequiredTogether("job-folder", "job-out-pattern")
	positions := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"first", "last"}, cobra.ShellCompDirectiveNoFileComp
	}
	reprocessCmd.RegisterFlagCompletionFunc("run-token", positions)
	reprocessCmd.RegisterFlagCompletionFunc("sample-token", positions)
	reprocessCmd.RegisterFlagCompletionFunc("job-folder", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveFilterDirs
	})
}

// reprocessOptionsFromFlags merges positional arguments and flags with config defaults.
func reprocessOptionsFromFlags(args []string) reprocessOptions {
	opts := reprocessOptions{
		LogPattern:    args[0],
		FailString:    config.Global.Reprocess.FailString,
		JobFolder:     reprocessFlags.jobFolder,
		JobOutPattern: reprocessFlags.jobOutPattern,
		Output:        config.Global.Reprocess.Output,
		Literal:       config.Global.Reprocess.Literal || reprocessFlags.literal,
		Separator:     config.Global.Reprocess.Separator,
		RunToken:      config.Global.Reprocess.RunToken,
		SampleToken:   config.Global.Reprocess.SampleToken,
	}
	if len(args) == 3 {
		opts.FailString = args[1]
		opts.SamplesPattern = args[2]
	} else {
		opts.SamplesPattern = args[1]
	}
	if reprocessFlags.output != "" {
		opts.Output = reprocessFlags.output
	}
	if reprocessFlags.separator != "" {
		opts.Separator = reprocessFlags.separator
	}
	if reprocessFlags.runToken != "" {
		opts.RunToken = reprocessFlags.runToken
	}
	if reprocessFlags.sampleToken != "" {
		opts.SampleToken = reprocessFlags.sampleToken
	}
	return opts
}

// runReprocess reconciles and writes the residual sample list.
func runReprocess(opts reprocessOptions) (*reconcile.Result, error) {
	if opts.FailString == "" {
		return nil, errors.New("no failure marker given (pass FAIL_STRING or set reprocess.fail_string)")
	}
	if (opts.JobFolder == "") != (opts.JobOutPattern == "") {
		return nil, errors.New("--job-folder and --job-out-pattern must be given together")
	}
	if opts.Output == "" {
		opts.Output = reconcile.DefaultOutput
	}
	sep := opts.Separator
	if sep == "" {
		sep = "_"
	}
	runPos, err := tokenPosition("run token", opts.RunToken, reconcile.Last)
	if err != nil {
		return nil, err
	}
	samplePos, err := tokenPosition("sample token", opts.SampleToken, reconcile.First)
	if err != nil {
		return nil, err
	}

	ropts := reconcile.Options{
		LogPattern:     opts.LogPattern,
		FailMarker:     opts.FailString,
		Literal:        opts.Literal,
		SamplesPattern: resolveSamplesPattern(opts.LogPattern, opts.SamplesPattern),
		RunToken:       reconcile.TokenRule{Sep: sep, Position: runPos},
		SampleToken:    reconcile.TokenRule{Sep: sep, Position: samplePos},
	}
	if opts.JobFolder != "" {
		ropts.CompletedPattern = filepath.Join(opts.JobFolder, opts.JobOutPattern)
	}
	utils.PrintDebug("Sample files: %s", utils.StylePath(ropts.SamplesPattern))
	if ropts.CompletedPattern != "" {
		utils.PrintDebug("Completed outputs: %s", utils.StylePath(ropts.CompletedPattern))
	}

	res, err := reconcile.Run(ropts)
	if err != nil {
		return nil, err
	}
	if err := reconcile.WriteSamples(opts.Output, res.Residual); err != nil {
		return res, err
	}
	return res, nil
}

// tokenPosition parses a "first"/"last" setting, using def when it is empty.
func tokenPosition(name, value string, def reconcile.Position) (reconcile.Position, error) {
	if value == "" {
		return def, nil
	}
	pos, ok := reconcile.ParsePosition(value)
	if !ok {
		return def, fmt.Errorf("%s must be first or last, got %q", name, value)
	}
	return pos, nil
}

// resolveSamplesPattern joins a relative samples pattern to the log pattern's directory.
func resolveSamplesPattern(logPattern, samplesPattern string) string {
	if filepath.IsAbs(samplesPattern) {
		return samplesPattern
	}
	return filepath.Join(filepath.Dir(logPattern), samplesPattern)
}
