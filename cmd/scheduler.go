package cmd

import (
	"fmt"

	"github.com/smdabdoub/ClusterDistribute/internal/config"
	"github.com/smdabdoub/ClusterDistribute/internal/scheduler"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:     "scheduler",
	Aliases: []string{"sched"},
	Short:   "Display scheduler information",
	Long: `Display information about the detected job scheduler.

Shows scheduler type (SLURM, PBS, LSF), binary path, version, and availability status.`,
	Example: `  cdist scheduler           # Show scheduler information
  cdist sched               # Short alias`,
	Run: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) {
	sched, err := scheduler.DetectSchedulerWithBinary(config.Global.SchedulerBin)

	if err != nil {
		// If we're inside a scheduled job, show a concise message and exit
		if scheduler.IsInsideJob() {
			utils.PrintMessage("Scheduler Status: %s", utils.StyleWarning("Unavailable (inside job)"))
			utils.PrintMessage("")
			utils.PrintMessage("You are currently inside a scheduled job; job submission is disabled to prevent nested submissions.")
			return
		}

		utils.PrintMessage("Scheduler Status: %s", utils.StyleError("Not Found"))
		utils.PrintMessage("")
		utils.PrintMessage("No job scheduler detected on this system.")
		utils.PrintMessage("Supported schedulers: SLURM (sbatch), PBS (qsub), LSF (bsub)")
		utils.PrintHint("Job scripts can still be written; use %s to print the submit commands.", utils.StyleCommand("cdist submit --dry-run"))
		return
	}

	info := sched.GetInfo()

	// Structured output, no [CDIST] prefix
	fmt.Println("Scheduler Information:")
	fmt.Printf("  Type:      %s\n", utils.StyleInfo(info.Type))
	fmt.Printf("  Binary:    %s\n", utils.StylePath(info.Binary))

	if info.Version != "" {
		fmt.Printf("  Version:   %s\n", utils.StyleNumber(info.Version))
	}

	switch {
	case info.InJob:
		fmt.Printf("  Status:    %s (inside job)\n", utils.StyleError("Unavailable"))
		fmt.Println()
		fmt.Println("You are currently inside a scheduled job (detected via environment).")
		fmt.Println("Job submission is disabled to prevent nested job submissions.")
	case info.Available:
		fmt.Printf("  Status:    %s\n", utils.StyleSuccess("Available"))
		fmt.Println()
		fmt.Println("The scheduler is available and ready for job submission.")
	default:
		fmt.Printf("  Status:    %s\n", utils.StyleError("Unavailable"))
		fmt.Println()
		fmt.Println("Scheduler detected but not available for job submission.")
	}

	if !config.Global.SubmitJob {
		fmt.Println()
		fmt.Println("Job submission is disabled (--local or submit_job: false); 'cdist submit' prints commands only.")
	}
}
