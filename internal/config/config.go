package config

const VERSION = "1.0.0"

// Config holds global application settings
type Config struct {
	Debug     bool
	Quiet     bool
	SubmitJob bool
	Version   string

	SchedulerBin  string
	SchedulerType string

	Distribute DistributeConfig
	Reprocess  ReprocessConfig
}

// DistributeConfig holds defaults for the distribute command
type DistributeConfig struct {
	Partition     int  // Samples per job script
	Workers       int  // Concurrent file writers
	WriteManifest bool // Write {prefix}_manifest.yaml next to the scripts
}

// ReprocessConfig holds defaults for the reprocess command
type ReprocessConfig struct {
	FailString string // Failure marker searched for in job logs
	Output     string // Residual sample list file
	Separator  string // Separator of run-index and sample tokens in file names
	Literal    bool   // Treat the failure marker as plain text instead of a regex

	RunToken    string // "first" or "last": which token of a log/subset stem is the run index
	SampleToken string // "first" or "last": which token of a completed output stem is the sample
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults resets Global to built-in defaults.
func LoadDefaults() {
	Global = Config{
		Debug:     false,
		SubmitJob: true,
		Version:   VERSION,

		Distribute: DistributeConfig{
			Partition:     10,
			Workers:       4,
			WriteManifest: true,
		},
		Reprocess: ReprocessConfig{
			FailString: "",
			Output:     "failed_samples.txt",
			Separator:  "_",

			RunToken:    "last",
			SampleToken: "first",
		},
	}
}
