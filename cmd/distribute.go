package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/smdabdoub/ClusterDistribute/internal/config"
	"github.com/smdabdoub/ClusterDistribute/internal/distribute"
	"github.com/smdabdoub/ClusterDistribute/internal/params"
	"github.com/smdabdoub/ClusterDistribute/internal/partition"
	"github.com/smdabdoub/ClusterDistribute/internal/template"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
	"github.com/spf13/cobra"
)

// distributeOptions holds the resolved inputs of one distribute run.
type distributeOptions struct {
	Template    string
	SampleList  string
	SplitFiles  []string
	Partition   int
	ParamsFile  string
	OutputDir   string
	SaveParams  string
	Manifest    bool
	Workers     int
	ShowPrompts bool // Print prompt text while reading parameter values from stdin
}

var distributeFlags struct {
	sampleList string
	splitFiles []string
	partition  int
	paramsFile string
	outputDir  string
	saveParams string
	noManifest bool
	workers    int
}

var distributeCmd = &cobra.Command{
	Use:     "distribute TEMPLATE (-l SAMPLES | -s SAMPLE_FILE...)",
	Aliases: []string{"dist"},
	Short:   "Create one job script per group of samples from a template",
	Long: `Fill a job script template once per group of samples.

Placeholders in the template are written as {name}. Values come from a
parameter file (-p, one "name: value" per line) or are prompted for. Two
placeholders are filled per job:

  {samples_fp}  path of the job's sample subset file
  {job_id}      1-based job number

Output files are named after the template: for run_template.pbs the jobs are
run_1.pbs, run_2.pbs, ... with sample subsets run_samples_1.txt, ...

With -s, sample subset files from an earlier run (e.g. a failed_samples.txt
split by hand, or run_samples_*.txt) are reused as they are, one job each.`,
	Example: `  cdist distribute run_template.pbs -l samples.txt -n 10 -p params.txt -o jobs
  cdist distribute run_template.pbs -s jobs/run_samples_2.txt jobs/run_samples_5.txt -p params.txt
  cdist distribute run_template.pbs -l samples.txt --save-params params.txt`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := distributeOptionsFromFlags(cmd, args)
		if err != nil {
			ExitWithError("%v", err)
		}

		res, err := runDistribute(cmd.Context(), opts, os.Stdin, os.Stdout)
		if err != nil {
			printErrors(err)
			os.Exit(ExitCodeError)
		}
		reportDistribute(res)
	},
}

func init() {
	rootCmd.AddCommand(distributeCmd)

	f := distributeCmd.Flags()
	f.StringVarP(&distributeFlags.sampleList, "samples", "l", "", "file with one sample ID per line")
	f.StringSliceVarP(&distributeFlags.splitFiles, "split", "s", nil, "pre-split sample files from an earlier run (one job each)")
	f.IntVarP(&distributeFlags.partition, "partition", "n", 10, "samples per job script (ignored with -s)")
	f.StringVarP(&distributeFlags.paramsFile, "params", "p", "", "parameter file with 'name: value' lines (prompted if omitted)")
	f.StringVarP(&distributeFlags.outputDir, "output-dir", "o", ".", "directory for job scripts and sample files")
	f.StringVar(&distributeFlags.saveParams, "save-params", "", "save the parameter values to this file")
	f.BoolVar(&distributeFlags.noManifest, "no-manifest", false, "do not write the run manifest")
	f.IntVar(&distributeFlags.workers, "workers", 0, "concurrent file writers (default from config)")

	distributeCmd.MarkFlagsMutuallyExclusive("samples", "split")
	distributeCmd.MarkFlagsOneRequired("samples", "split")

	distributeCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return findLocalFilesWithFilter(toComplete, 1, utils.IsJobScript), cobra.ShellCompDirectiveNoFileComp
		}
		return findLocalFilesWithFilter(toComplete, 1, utils.IsSampleList), cobra.ShellCompDirectiveNoFileComp
	}
	distributeCmd.RegisterFlagCompletionFunc("samples", fileFlagCompletion(utils.IsSampleList))
	distributeCmd.RegisterFlagCompletionFunc("split", fileFlagCompletion(utils.IsSampleList))
	distributeCmd.RegisterFlagCompletionFunc("output-dir", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveFilterDirs
	})
}

// distributeOptionsFromFlags merges flags with config defaults. Extra
// positional arguments are taken as more -s files, so a shell glob after -s
// works as expected.
func distributeOptionsFromFlags(cmd *cobra.Command, args []string) (distributeOptions, error) {
	opts := distributeOptions{
		Template:    args[0],
		SampleList:  distributeFlags.sampleList,
		SplitFiles:  distributeFlags.splitFiles,
		Partition:   config.Global.Distribute.Partition,
		ParamsFile:  distributeFlags.paramsFile,
		OutputDir:   distributeFlags.outputDir,
		SaveParams:  distributeFlags.saveParams,
		Manifest:    config.Global.Distribute.WriteManifest && !distributeFlags.noManifest,
		Workers:     config.Global.Distribute.Workers,
		ShowPrompts: utils.IsInteractiveShell(),
	}
	if cmd.Flags().Changed("partition") {
		opts.Partition = distributeFlags.partition
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = distributeFlags.workers
	}

	if extra := args[1:]; len(extra) > 0 {
		if len(opts.SplitFiles) == 0 {
			return opts, fmt.Errorf("unexpected arguments %v (sample files must follow -s)", extra)
		}
		opts.SplitFiles = append(opts.SplitFiles, extra...)
	}
	return opts, nil
}

// runDistribute validates inputs, resolves parameters, and writes the job
// scripts. in and out are used for interactive parameter entry.
func runDistribute(ctx context.Context, opts distributeOptions, in io.Reader, out io.Writer) (*distribute.Result, error) {
	if (opts.SampleList == "") == (len(opts.SplitFiles) == 0) {
		return nil, errors.New("exactly one of a sample list (-l) or pre-split sample files (-s) is required")
	}

	// Pre-flight: every problem is reported, nothing is written on failure
	if err := distribute.Preflight(distribute.Inputs{
		Template:    opts.Template,
		SampleList:  opts.SampleList,
		SampleFiles: opts.SplitFiles,
		ParamsFile:  opts.ParamsFile,
		OutputDir:   opts.OutputDir,
	}); err != nil {
		return nil, err
	}

	tpl, err := template.Load(opts.Template)
	if err != nil {
		return nil, err
	}
	placeholders := tpl.Placeholders()
	utils.PrintDebug("Template %s has placeholders %v", utils.StylePath(tpl.Path), placeholders)

	values, err := resolveParams(opts, placeholders, in, out)
	if err != nil {
		return nil, err
	}

	plan := &distribute.Plan{
		Template:   tpl,
		Params:     values,
		OutputDir:  opts.OutputDir,
		SaveParams: opts.SaveParams,
		Workers:    opts.Workers,
	}

	if opts.SampleList != "" {
		ids, err := utils.ReadLines(opts.SampleList)
		if err != nil {
			return nil, fmt.Errorf("failed to read sample list %s: %w", opts.SampleList, err)
		}
		chunks, err := partition.Split(ids, opts.Partition)
		if err != nil {
			return nil, err
		}
		utils.PrintDebug("%d samples in %d groups of up to %d", len(ids), len(chunks), opts.Partition)
		plan.Chunks = chunks
	} else {
		if opts.Partition != config.Global.Distribute.Partition {
			utils.PrintNote("Partition size is ignored with pre-split sample files")
		}
		plan.SampleFiles = opts.SplitFiles
	}

	if opts.Manifest {
		plan.ManifestPath = filepath.Join(opts.OutputDir, tpl.Naming().ManifestName())
	}

	return distribute.Materialize(ctx, plan)
}

// resolveParams reads the parameter file, or reads one value per line from
// in when there is none, and fails with a *params.MissingError listing every
// placeholder without a value. Prompt text goes to out only with ShowPrompts,
// so answers can also be piped in.
func resolveParams(opts distributeOptions, placeholders []string, in io.Reader, out io.Writer) (params.Mapping, error) {
	var (
		values params.Mapping
		err    error
	)
	switch {
	case opts.ParamsFile != "":
		values, err = params.ParseFile(opts.ParamsFile)
	case len(params.Missing(placeholders, nil)) > 0:
		if !opts.ShowPrompts || out == nil {
			out = io.Discard
		}
		if in == nil {
			in = strings.NewReader("")
		}
		values, err = params.Prompt(in, out, placeholders)
	default:
		values = params.Mapping{}
	}
	if err != nil {
		return nil, err
	}

	if err := params.Resolve(placeholders, values); err != nil {
		return nil, err
	}
	return values, nil
}

func reportDistribute(res *distribute.Result) {
	if len(res.Units) == 0 {
		utils.PrintWarning("No samples given; no job scripts were written")
		return
	}
	for _, u := range res.Units {
		utils.PrintDebug("Job %d: %s (%s)", u.Index, utils.StylePath(u.Script), utils.StylePath(u.Samples))
	}
	utils.PrintSuccess("Created %s job scripts: %s .. %s",
		utils.StyleNumber(len(res.Units)),
		utils.StylePath(res.Units[0].Script),
		utils.StylePath(res.Units[len(res.Units)-1].Script))
	if res.ParamsFile != "" {
		utils.PrintNote("Parameters saved to %s", utils.StylePath(res.ParamsFile))
	}
	if res.Manifest != "" {
		utils.PrintNote("Run manifest written to %s", utils.StylePath(res.Manifest))
		utils.PrintHint("Submit all jobs with: %s", utils.StyleCommand("cdist submit --manifest "+res.Manifest))
	}
}
