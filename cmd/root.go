package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smdabdoub/ClusterDistribute/internal/config"
	"github.com/smdabdoub/ClusterDistribute/internal/scheduler"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	quietMode bool
	localMode bool
)

var rootCmd = &cobra.Command{
	Use:           "cdist",
	Short:         "ClusterDistribute: split sample lists into scheduler job scripts and collect failed samples for resubmission.",
	Version:       config.VERSION,
	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load defaults
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Auto-detect the scheduler binary if needed and save to config
		updated, err := config.AutoDetectAndSave()
		if err != nil {
			utils.PrintDebug("Failed to save config: %v", err)
		} else if updated {
			if configPath, err := config.GetUserConfigPath(); err == nil {
				utils.PrintDebug("Auto-detected scheduler saved to: %s", configPath)
			}
		}

		// Step 4: Load values from Viper into Global config
		config.LoadFromViper()

		// Step 5: Apply command-line flags (highest priority)
		if quietMode {
			utils.QuietMode = true
			config.Global.Quiet = true
		}
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("ClusterDistribute Version: %s", utils.StyleInfo(config.VERSION))
			if config.Global.SchedulerBin != "" {
				utils.PrintDebug("Scheduler Binary: %s", config.Global.SchedulerBin)
			}
			utils.PrintDebug("Samples per job: %d", config.Global.Distribute.Partition)
			utils.PrintDebug("Writers: %d", config.Global.Distribute.Workers)
		}

		if localMode {
			config.Global.SubmitJob = false
			utils.PrintDebug("Local mode enabled (job submission disabled)")
		}

		// Step 6: Initialize scheduler if job submission is enabled
		if config.Global.SubmitJob && config.Global.SchedulerBin != "" {
			typ, err := scheduler.Init(config.Global.SchedulerBin)
			switch {
			case err != nil:
				utils.PrintDebug("Scheduler not available: %v", err)
			case scheduler.IsInsideJob():
				utils.PrintDebug("Scheduler %s initialized (inside a job, submission refused)", typ)
			default:
				utils.PrintDebug("Scheduler %s initialized and available", typ)
			}
		}
	},
}

// Execute runs the root command; SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(ExitCodeError)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Only print warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&localMode, "local", false, "Disable job submission (submit prints commands only)")
}
