package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadLinesSkipsBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.txt")
	content := "S1\n\n  S2  \r\nS3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	want := []string{"S1", "S2", "S3"}
	if len(lines) != len(want) {
		t.Fatalf("ReadLines = %v; want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q; want %q", i, lines[i], want[i])
		}
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "nope.txt"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestJoinLines(t *testing.T) {
	tests := []struct {
		input []string
		want  string
	}{
		{nil, ""},
		{[]string{"A"}, "A\n"},
		{[]string{"A", "B"}, "A\nB\n"},
	}
	for _, tt := range tests {
		if got := JoinLines(tt.input); got != tt.want {
			t.Errorf("JoinLines(%v) = %q; want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_1.pbs")

	if err := WriteFileAtomic(path, []byte("first"), PermFile); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), PermFile); err != nil {
		t.Fatalf("WriteFileAtomic overwrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q; want %q", data, "second")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, found %d entries", len(entries))
	}
}

func TestExtensionChecks(t *testing.T) {
	tests := []struct {
		path   string
		script bool
		sample bool
	}{
		{"run_1.pbs", true, false},
		{"job_3.SH", true, false},
		{"run_samples_1.txt", false, true},
		{"params.cfg", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsJobScript(tt.path); got != tt.script {
				t.Errorf("IsJobScript(%q) = %v; want %v", tt.path, got, tt.script)
			}
			if got := IsSampleList(tt.path); got != tt.sample {
				t.Errorf("IsSampleList(%q) = %v; want %v", tt.path, got, tt.sample)
			}
		})
	}
}
