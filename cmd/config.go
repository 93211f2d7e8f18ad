package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/smdabdoub/ClusterDistribute/internal/config"
	"github.com/smdabdoub/ClusterDistribute/internal/reconcile"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	showPath   bool
	initSystem bool
)

// configKeys is the list of known configuration keys for shell completion
var configKeys = []string{
	"scheduler_bin",
	"scheduler_type",
	"submit_job",
	"distribute.partition",
	"distribute.workers",
	"distribute.write_manifest",
	"reprocess.fail_string",
	"reprocess.output",
	"reprocess.separator",
	"reprocess.literal",
	"reprocess.run_token",
	"reprocess.sample_token",
}

// configKeysCompletion returns config keys for shell completion
func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return configKeys, cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		return configValueCompletion(args[0]), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// configValueCompletion returns suggested values for a config key
func configValueCompletion(key string) []string {
	switch key {
	case "submit_job", "distribute.write_manifest", "reprocess.literal":
		return []string{"true", "false"}
	case "scheduler_type":
		return []string{"SLURM", "PBS", "LSF"}
	case "distribute.partition":
		return []string{"5", "10", "20", "50"}
	case "distribute.workers":
		return []string{"1", "2", "4", "8"}
	case "reprocess.output":
		return []string{"failed_samples.txt"}
	case "reprocess.separator":
		return []string{"_", "-", "."}
	case "reprocess.run_token", "reprocess.sample_token":
		return []string{"first", "last"}
	default:
		return nil
	}
}

// getConfigEnvVars returns the environment variable for every known key, sorted
func getConfigEnvVars() []string {
	vars := make([]string, 0, len(configKeys))
	for _, key := range configKeys {
		vars = append(vars, config.EnvVarName(key))
	}
	sort.Strings(vars)
	return vars
}

// parseConfigValue validates value for key and converts it to the key's type.
func parseConfigValue(key, value string) (interface{}, error) {
	switch key {
	case "submit_job", "distribute.write_manifest", "reprocess.literal":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		return b, nil
	case "distribute.partition", "distribute.workers":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		return n, nil
	case "scheduler_type":
		t := strings.ToUpper(value)
		switch t {
		case "SLURM", "PBS", "LSF":
			return t, nil
		}
		return nil, fmt.Errorf("%s must be SLURM, PBS or LSF, got %q", key, value)
	case "reprocess.run_token", "reprocess.sample_token":
		if _, ok := reconcile.ParsePosition(value); !ok {
			return nil, fmt.Errorf("%s must be first or last, got %q", key, value)
		}
		return strings.ToLower(strings.TrimSpace(value)), nil
	case "reprocess.separator", "reprocess.output":
		if value == "" {
			return nil, fmt.Errorf("%s must not be empty", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cdist configuration",
	Long: `Manage cdist configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (CDIST_*, e.g. CDIST_DISTRIBUTE_PARTITION)
  3. User config file (~/.config/cdist/config.yaml)
  4. ~/.cdist/config.yaml, /etc/cdist/config.yaml, ./config.yaml
  5. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display current configuration values and their sources.

Shows:
  - Config file search paths and which one is in use
  - All configuration settings
  - Environment variable overrides`,
	Run: func(cmd *cobra.Command, args []string) {
		if showPath {
			printConfigPath()
			return
		}

		fmt.Println(utils.StyleTitle("Config File Search Paths:"))
		foundActive := false
		for i, sp := range config.GetConfigSearchPaths() {
			status := ""
			if sp.InUse {
				status = " " + utils.StyleSuccess("← in use")
				foundActive = true
			} else if utils.FileExists(sp.File) {
				status = " " + utils.StyleInfo("(exists)")
			}
			fmt.Printf("  %d. %s%s\n", i+1, sp.File, status)
		}
		if !foundActive {
			fmt.Printf("  %s (use 'cdist config init' to create)\n", utils.StyleWarning("No config file found"))
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Scheduler:"))
		schedulerBin := viper.GetString("scheduler_bin")
		if schedulerBin == "" {
			schedulerBin = utils.StyleWarning("not found")
		}
		fmt.Printf("  scheduler_bin:   %s\n", schedulerBin)
		fmt.Printf("  scheduler_type:  %s\n", viper.GetString("scheduler_type"))
		fmt.Printf("  submit_job:      %v\n", config.Global.SubmitJob)
		fmt.Println()

		fmt.Println(utils.StyleTitle("Distribute:"))
		fmt.Printf("  partition:       %d\n", config.Global.Distribute.Partition)
		fmt.Printf("  workers:         %d\n", config.Global.Distribute.Workers)
		fmt.Printf("  write_manifest:  %v\n", config.Global.Distribute.WriteManifest)
		fmt.Println()

		fmt.Println(utils.StyleTitle("Reprocess:"))
		failString := config.Global.Reprocess.FailString
		if failString == "" {
			failString = utils.StyleInfo("none")
		}
		fmt.Printf("  fail_string:     %s\n", failString)
		fmt.Printf("  output:          %s\n", config.Global.Reprocess.Output)
		fmt.Printf("  separator:       %q\n", config.Global.Reprocess.Separator)
		fmt.Printf("  literal:         %v\n", config.Global.Reprocess.Literal)
		fmt.Printf("  run_token:       %s\n", config.Global.Reprocess.RunToken)
		fmt.Printf("  sample_token:    %s\n", config.Global.Reprocess.SampleToken)
		fmt.Println()

		fmt.Println(utils.StyleTitle("Environment Variable Overrides:"))
		hasEnvOverrides := false
		for _, envVar := range getConfigEnvVars() {
			if val, ok := os.LookupEnv(envVar); ok {
				fmt.Printf("  %s=%s\n", envVar, val)
				hasEnvOverrides = true
			}
		}
		if !hasEnvOverrides {
			fmt.Printf("  %s\n", utils.StyleInfo("none"))
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user config file path",
	Run: func(cmd *cobra.Command, args []string) {
		printConfigPath()
	},
}

func printConfigPath() {
	configPath, err := config.GetUserConfigPath()
	if err != nil {
		ExitWithError("Failed to get config path: %v", err)
	}
	fmt.Println(configPath)
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  cdist config get scheduler_bin
  cdist config get distribute.partition`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		value := viper.Get(args[0])
		if value == nil {
			ExitWithError("Unknown config key: %s", args[0])
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save to the user config file.

Examples:
  cdist config set distribute.partition 20
  cdist config set reprocess.fail_string 'Segmentation fault|Killed'
  cdist config set scheduler_bin /opt/slurm/bin/sbatch
  cdist config set submit_job false`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		key, raw := args[0], args[1]

		known := false
		for _, k := range configKeys {
			if k == key {
				known = true
				break
			}
		}
		if !known {
			utils.PrintWarning("'%s' is not a standard config key", key)
		}

		value, err := parseConfigValue(key, raw)
		if err != nil {
			ExitWithError("%v", err)
		}
		if key == "scheduler_bin" && !config.ValidateBinary(raw) {
			utils.PrintWarning("Scheduler binary not found or not executable: %s", raw)
		}

		viper.Set(key, value)
		if err := config.SaveConfig(); err != nil {
			ExitWithError("Failed to save config: %v", err)
		}

		configPath, _ := config.GetUserConfigPath()
		utils.PrintSuccess("Set %s = %v", utils.StyleInfo(key), utils.StyleInfo(fmt.Sprint(value)))
		utils.PrintNote("Config saved to: %s", configPath)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with defaults",
	Long: `Create a configuration file with default values and the auto-detected scheduler.

By default the file is written to the user config directory
(~/.config/cdist/config.yaml). With --system it is written to
/etc/cdist/config.yaml, which requires appropriate permissions.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			ExitWithError("Failed to get config path: %v", err)
		}
		if initSystem {
			configPath = "/etc/cdist/config.yaml"
		}

		if utils.FileExists(configPath) {
			utils.PrintWarning("Config file already exists: %s", configPath)
			if !utils.IsInteractiveShell() {
				utils.PrintNote("Cancelled")
				return
			}
			fmt.Print("Overwrite? [y/N]: ")
			var response string
			fmt.Scanln(&response)
			response = strings.ToLower(strings.TrimSpace(response))
			if response != "y" && response != "yes" {
				utils.PrintNote("Cancelled")
				return
			}
		}

		updated, err := config.ForceDetectAndSave(configPath)
		if err != nil {
			ExitWithError("Failed to save config: %v", err)
		}

		if updated {
			utils.PrintSuccess("Config file created with auto-detected settings")
		} else {
			utils.PrintSuccess("Config file created")
		}
		fmt.Printf("  Location: %s\n", utils.StylePath(configPath))

		fmt.Println()
		fmt.Println(utils.StyleTitle("Detected settings:"))
		if schedulerBin := viper.GetString("scheduler_bin"); schedulerBin != "" {
			fmt.Printf("  Scheduler: %s (%s)\n", schedulerBin, viper.GetString("scheduler_type"))
		} else {
			fmt.Printf("  Scheduler: %s\n", utils.StyleWarning("not found"))
		}
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit config file in default editor",
	Long:  "Open the configuration file in your default text editor ($EDITOR)",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			ExitWithError("Failed to get config path: %v", err)
		}

		if !utils.FileExists(configPath) {
			utils.PrintNote("Config file doesn't exist, creating it first...")
			if err := config.SaveConfig(); err != nil {
				ExitWithError("Failed to create config: %v", err)
			}
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		editorCmd := exec.Command(editor, configPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr

		if err := editorCmd.Run(); err != nil {
			ExitWithError("Failed to open editor: %v", err)
		}
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Check that every configured value is usable and the scheduler binary is accessible",
	Run: func(cmd *cobra.Command, args []string) {
		valid := true

		if !utils.QuietMode {
			fmt.Println(utils.StyleTitle("Validating configuration..."))
			fmt.Println()
		}

		schedulerBin := viper.GetString("scheduler_bin")
		switch {
		case schedulerBin == "":
			if !utils.QuietMode {
				fmt.Printf("%s Scheduler binary: %s\n", utils.StyleWarning("⚠"), "not configured")
			}
		case config.ValidateBinary(schedulerBin):
			if !utils.QuietMode {
				fmt.Printf("%s Scheduler binary: %s\n", utils.StyleSuccess("✓"), schedulerBin)
			}
		default:
			fmt.Printf("%s Scheduler binary not found: %s\n", utils.StyleError("✗"), schedulerBin)
			valid = false
		}

		for _, key := range configKeys {
			if key == "scheduler_bin" || (key == "scheduler_type" && viper.GetString(key) == "") {
				continue
			}
			if key == "reprocess.fail_string" {
				continue
			}
			if _, err := parseConfigValue(key, viper.GetString(key)); err != nil {
				fmt.Printf("%s %v\n", utils.StyleError("✗"), err)
				valid = false
			} else if !utils.QuietMode {
				fmt.Printf("%s %s: %v\n", utils.StyleSuccess("✓"), key, viper.Get(key))
			}
		}

		if !utils.QuietMode {
			fmt.Println()
		}
		if !valid {
			ExitWithError("Configuration has errors")
		}
		if !utils.QuietMode {
			utils.PrintSuccess("Configuration is valid")
		}
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showPath, "path", false, "Show only the config file path")
	configInitCmd.Flags().BoolVar(&initSystem, "system", false, "Write the system config (/etc/cdist/config.yaml)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configValidateCmd)

	rootCmd.AddCommand(configCmd)
}
