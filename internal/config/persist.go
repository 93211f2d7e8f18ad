package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix is the prefix of environment variable overrides (CDIST_*)
const EnvPrefix = "CDIST"

// ConfigSearchPath is one directory viper looks in for the config file.
type ConfigSearchPath struct {
	Dir   string
	File  string
	InUse bool
}

// configDirs returns the config search directories, highest priority first.
func configDirs() []string {
	var dirs []string
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userConfigDir, "cdist"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".cdist"))
	}
	dirs = append(dirs, "/etc/cdist", ".")
	return dirs
}

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (CDIST_*)
// 3. User config file (~/.config/cdist/config.yaml)
// 4. System config file (/etc/cdist/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	for _, dir := range configDirs() {
		viper.AddConfigPath(dir)
	}

	// Environment variables; nested keys use underscores (CDIST_DISTRIBUTE_PARTITION)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("scheduler_bin", "")
	viper.SetDefault("scheduler_type", "")
	viper.SetDefault("submit_job", true)

	viper.SetDefault("distribute.partition", 10)
	viper.SetDefault("distribute.workers", 4)
	viper.SetDefault("distribute.write_manifest", true)

	viper.SetDefault("reprocess.fail_string", "")
	viper.SetDefault("reprocess.output", "failed_samples.txt")
	viper.SetDefault("reprocess.separator", "_")
	viper.SetDefault("reprocess.literal", false)
	viper.SetDefault("reprocess.run_token", "last")
	viper.SetDefault("reprocess.sample_token", "first")
}

// GetConfigSearchPaths lists the config directories and marks the file in use.
func GetConfigSearchPaths() []ConfigSearchPath {
	used := viper.ConfigFileUsed()
	var paths []ConfigSearchPath
	for _, dir := range configDirs() {
		file := filepath.Join(dir, ConfigFilename+"."+ConfigType)
		abs, _ := filepath.Abs(file)
		usedAbs, _ := filepath.Abs(used)
		paths = append(paths, ConfigSearchPath{
			Dir:   dir,
			File:  file,
			InUse: used != "" && abs == usedAbs,
		})
	}
	return paths
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".cdist", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "cdist", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveConfigTo(configPath)
}

// SaveConfigTo saves current Viper config to the given path
func SaveConfigTo(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	// If it's a full path, check directly
	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil {
			return false
		}
		// Check if it's executable (unix-style check)
		return !info.IsDir() && info.Mode()&0111 != 0
	}

	// Otherwise, try to find it in PATH
	_, err := exec.LookPath(binPath)
	return err == nil
}

// DetectSchedulerBin attempts to find scheduler binary
// Returns (binary_path, scheduler_type) if found
func DetectSchedulerBin() (string, string) {
	// Try SLURM first (most common in HPC)
	if path, err := exec.LookPath("sbatch"); err == nil {
		return path, "SLURM"
	}

	// Try PBS/Torque
	if path, err := exec.LookPath("qsub"); err == nil {
		return path, "PBS"
	}

	// Try LSF
	if path, err := exec.LookPath("bsub"); err == nil {
		return path, "LSF"
	}

	return "", ""
}

// AutoDetectAndSave detects the scheduler binary when the configured one is
// missing or invalid, and saves it to the user config.
// Returns true if config was updated
func AutoDetectAndSave() (bool, error) {
	schedulerBin := viper.GetString("scheduler_bin")
	if ValidateBinary(schedulerBin) {
		return false, nil
	}

	detectedBin, detectedType := DetectSchedulerBin()
	if detectedBin == "" {
		return false, nil
	}
	viper.Set("scheduler_bin", detectedBin)
	viper.Set("scheduler_type", detectedType)

	if err := SaveConfig(); err != nil {
		return false, err
	}
	return true, nil
}

// ForceDetectAndSave always re-detects the scheduler binary from the current
// environment and writes the config file to configPath (user config if empty).
// Returns true if the detected values changed
func ForceDetectAndSave(configPath string) (bool, error) {
	updated := false

	detectedBin, detectedType := DetectSchedulerBin()
	if detectedBin != "" {
		currentBin := viper.GetString("scheduler_bin")
		currentType := viper.GetString("scheduler_type")
		if currentBin != detectedBin || currentType != detectedType {
			viper.Set("scheduler_bin", detectedBin)
			viper.Set("scheduler_type", detectedType)
			updated = true
		}
	}

	// Always save (even if nothing changed, to create the file)
	var err error
	if configPath == "" {
		err = SaveConfig()
	} else {
		err = SaveConfigTo(configPath)
	}
	if err != nil {
		return false, err
	}

	return updated, nil
}

// LoadFromViper loads config from Viper into Global struct
func LoadFromViper() {
	if bin := viper.GetString("scheduler_bin"); bin != "" {
		Global.SchedulerBin = bin
	}
	if schedType := viper.GetString("scheduler_type"); schedType != "" {
		Global.SchedulerType = schedType
	}

	if submitJob := viper.GetBool("submit_job"); !submitJob {
		Global.SubmitJob = submitJob
	}

	if partition := viper.GetInt("distribute.partition"); partition > 0 {
		Global.Distribute.Partition = partition
	}
	if workers := viper.GetInt("distribute.workers"); workers > 0 {
		Global.Distribute.Workers = workers
	}
	Global.Distribute.WriteManifest = viper.GetBool("distribute.write_manifest")

	if failString := viper.GetString("reprocess.fail_string"); failString != "" {
		Global.Reprocess.FailString = failString
	}
	if output := viper.GetString("reprocess.output"); output != "" {
		Global.Reprocess.Output = output
	}
	if sep := viper.GetString("reprocess.separator"); sep != "" {
		Global.Reprocess.Separator = sep
	}
	Global.Reprocess.Literal = viper.GetBool("reprocess.literal")
	if tok := viper.GetString("reprocess.run_token"); tok != "" {
		Global.Reprocess.RunToken = tok
	}
	if tok := viper.GetString("reprocess.sample_token"); tok != "" {
		Global.Reprocess.SampleToken = tok
	}
}
