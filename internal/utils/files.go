package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Standard default permissions
// File: u=rw, g=rw, o=r
const PermFile os.FileMode = 0664

// Dir:  u=rwx, g=rwx, o=rx (Requires +x to traverse)
const PermDir os.FileMode = 0775

// --- Extension Checks (String-based) ---

// jobScriptExts lists the extensions commonly used for scheduler job scripts.
var jobScriptExts = map[string]bool{
	".pbs":    true,
	".sh":     true,
	".slurm":  true,
	".sbatch": true,
	".lsf":    true,
	".job":    true,
}

// IsJobScript checks if the path has a typical job script extension.
func IsJobScript(path string) bool {
	return jobScriptExts[strings.ToLower(filepath.Ext(path))]
}

// IsSampleList checks if the path looks like a plain-text sample list (.txt).
func IsSampleList(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".txt"
}

// --- Filesystem Checks (OS-based) ---

// PathExists checks if a path exists, whether file or directory.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDir checks if a directory exists, and creates it if it doesn't.
func EnsureDir(path string) error {
	if DirExists(path) {
		return nil
	}
	return os.MkdirAll(path, PermDir)
}

// --- Line-oriented files ---

// ReadLines returns the non-empty lines of a file with surrounding whitespace trimmed.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return lines, nil
}

// JoinLines joins lines with "\n" and appends a trailing newline.
// An empty slice produces an empty string.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// WriteFileAtomic writes data to a temporary file in the destination directory
// and renames it into place, so readers never see a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
