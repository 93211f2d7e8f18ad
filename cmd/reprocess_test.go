package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/smdabdoub/ClusterDistribute/internal/reconcile"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
)

// writeRound lays out one finished round: logs for jobs 3 and 7 failed.
func writeRound(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "logs", "job_1.out"), "done\n")
	writeFile(t, filepath.Join(dir, "logs", "job_3.out"), "megahit: Segmentation fault\n")
	writeFile(t, filepath.Join(dir, "logs", "job_7.out"), "Segmentation fault (core dumped)\n")
	writeFile(t, filepath.Join(dir, "jobs", "run_samples_1.txt"), "Z\n")
	writeFile(t, filepath.Join(dir, "jobs", "run_samples_3.txt"), "A\n")
	writeFile(t, filepath.Join(dir, "jobs", "run_samples_7.txt"), "B\n")
}

func TestRunReprocess(t *testing.T) {
	dir := t.TempDir()
	writeRound(t, dir)
	out := filepath.Join(dir, "failed_samples.txt")

	res, err := runReprocess(reprocessOptions{
		LogPattern:     filepath.Join(dir, "logs", "job_*.out"),
		FailString:     "Segmentation fault",
		SamplesPattern: "../jobs/run_samples_*.txt",
		Output:         out,
	})
	if err != nil {
		t.Fatalf("runReprocess: %v", err)
	}
	if !reflect.DeepEqual(res.Residual, []string{"A", "B"}) {
		t.Errorf("residual = %v, want [A B]", res.Residual)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "A\nB\n" {
		t.Errorf("output = %q", data)
	}
}

func TestRunReprocessWithCompleted(t *testing.T) {
	dir := t.TempDir()
	writeRound(t, dir)
	writeFile(t, filepath.Join(dir, "asm", "A_final.fna"), ">contig\n")

	res, err := runReprocess(reprocessOptions{
		LogPattern:     filepath.Join(dir, "logs", "*.out"),
		FailString:     "Segmentation fault",
		SamplesPattern: filepath.Join(dir, "jobs", "run_samples_*.txt"),
		JobFolder:      filepath.Join(dir, "asm"),
		JobOutPattern:  "*_final.fna",
		Output:         filepath.Join(dir, "retry.txt"),
	})
	if err != nil {
		t.Fatalf("runReprocess: %v", err)
	}
	if !reflect.DeepEqual(res.Residual, []string{"B"}) {
		t.Errorf("residual = %v, want [B]", res.Residual)
	}
}

func TestRunReprocessTokenPositions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "3_job.out"), "Segmentation fault\n")
	writeFile(t, filepath.Join(dir, "4_job.out"), "done\n")
	writeFile(t, filepath.Join(dir, "3_samples.txt"), "A\nB\n")
	writeFile(t, filepath.Join(dir, "4_samples.txt"), "C\n")
	if err := os.MkdirAll(filepath.Join(dir, "asm", "megahit_A"), 0755); err != nil {
		t.Fatal(err)
	}

	res, err := runReprocess(reprocessOptions{
		LogPattern:     filepath.Join(dir, "*_job.out"),
		FailString:     "Segmentation fault",
		SamplesPattern: "*_samples.txt",
		JobFolder:      filepath.Join(dir, "asm"),
		JobOutPattern:  "megahit_*",
		Output:         filepath.Join(dir, "retry.txt"),
		RunToken:       "first",
		SampleToken:    "last",
	})
	if err != nil {
		t.Fatalf("runReprocess: %v", err)
	}
	if !reflect.DeepEqual(res.Residual, []string{"B"}) {
		t.Errorf("residual = %v, want [B]", res.Residual)
	}
}

func TestTokenPosition(t *testing.T) {
	if pos, err := tokenPosition("run token", "", reconcile.Last); err != nil || pos != reconcile.Last {
		t.Errorf("empty value = %v, %v", pos, err)
	}
	if pos, err := tokenPosition("run token", "FIRST", reconcile.Last); err != nil || pos != reconcile.First {
		t.Errorf("FIRST = %v, %v", pos, err)
	}
	if _, err := tokenPosition("sample token", "middle", reconcile.First); err == nil {
		t.Error("expected error for middle")
	}
}

func TestReprocessSkippedFilesReported(t *testing.T) {
	var stderr bytes.Buffer
	orig := utils.Stderr
	utils.Stderr = &stderr
	t.Cleanup(func() { utils.Stderr = orig })

	res := &reconcile.Result{Problems: []error{
		&reconcile.FileError{Kind: "log", Path: "logs/job_2.out", Err: errors.New("permission denied")},
		&reconcile.FileError{Kind: "samples", Path: "jobs/run_samples_5.txt", Err: errors.New("permission denied")},
	}}
	printErrors(res.ProblemsError())

	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), stderr.String())
	}
	if !strings.Contains(lines[0], "logs/job_2.out") || !strings.Contains(lines[1], "jobs/run_samples_5.txt") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunReprocessValidation(t *testing.T) {
	base := reprocessOptions{LogPattern: "*.out", FailString: "x", SamplesPattern: "*.txt", Output: filepath.Join(t.TempDir(), "o.txt")}

	noMarker := base
	noMarker.FailString = ""
	if _, err := runReprocess(noMarker); err == nil {
		t.Error("expected error without a failure marker")
	}

	halfCompleted := base
	halfCompleted.JobFolder = "asm"
	if _, err := runReprocess(halfCompleted); err == nil {
		t.Error("expected error with --job-folder but no --job-out-pattern")
	}

	badToken := base
	badToken.RunToken = "middle"
	if _, err := runReprocess(badToken); err == nil {
		t.Error("expected error for an unknown run token")
	}
}

func TestResolveSamplesPattern(t *testing.T) {
	tests := []struct {
		logs, samples, want string
	}{
		{"job_*.out", "run_samples_*.txt", "run_samples_*.txt"},
		{"logs/job_*.out", "run_samples_*.txt", "logs/run_samples_*.txt"},
		{"logs/job_*.out", "../jobs/run_samples_*.txt", "jobs/run_samples_*.txt"},
		{"logs/job_*.out", "/data/run_samples_*.txt", "/data/run_samples_*.txt"},
	}
	for _, tt := range tests {
		if got := resolveSamplesPattern(tt.logs, tt.samples); got != tt.want {
			t.Errorf("resolveSamplesPattern(%q, %q) = %q, want %q", tt.logs, tt.samples, got, tt.want)
		}
	}
}

func TestReprocessOptionsFromArgs(t *testing.T) {
	reset := func() {
		reprocessFlags.output, reprocessFlags.separator = "", ""
		reprocessFlags.runToken, reprocessFlags.sampleToken = "", ""
	}
	t.Cleanup(reset)
	withDefaults := func() {
		reset()
		configDefaultsForTest()
	}

	withDefaults()
	opts := reprocessOptionsFromFlags([]string{"logs/*.out", "ERROR", "*.txt"})
	if opts.FailString != "ERROR" || opts.SamplesPattern != "*.txt" {
		t.Errorf("three args: %+v", opts)
	}
	if opts.Output != "failed_samples.txt" || opts.Separator != "_" {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if opts.RunToken != "last" || opts.SampleToken != "first" {
		t.Errorf("token defaults not applied: %+v", opts)
	}

	withDefaults()
	reprocessFlags.runToken = "first"
	opts = reprocessOptionsFromFlags([]string{"logs/*.out", "*.txt"})
	if opts.RunToken != "first" || opts.SampleToken != "first" {
		t.Errorf("--run-token not applied: %+v", opts)
	}

	withDefaults()
	reprocessFlags.output = "retry.txt"
	opts = reprocessOptionsFromFlags([]string{"logs/*.out", "*.txt"})
	if opts.FailString != "" || opts.SamplesPattern != "*.txt" || opts.Output != "retry.txt" {
		t.Errorf("two args: %+v", opts)
	}
}
