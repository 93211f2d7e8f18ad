package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
	"github.com/spf13/cobra"
)

// Exit codes used by various commands
const (
	// Generic error code
	ExitCodeError = 1
)

// ExitWithError prints an error and exits with ExitCodeError
func ExitWithError(format string, a ...interface{}) {
	utils.PrintError(format, a...)
	os.Exit(ExitCodeError)
}

// printErrors prints every error aggregated in err on its own line.
func printErrors(err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			utils.PrintError("%v", e)
		}
		return
	}
	utils.PrintError("%v", err)
}

// fileFlagCompletion completes local files accepted by filter, recursing
// one directory level.
func fileFlagCompletion(filter func(name string) bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return findLocalFilesWithFilter(toComplete, 1, filter), cobra.ShellCompDirectiveNoFileComp
	}
}

// findLocalFilesWithFilter is a shared helper for finding local files recursively
// Recursively finds files up to maxDepth
func findLocalFilesWithFilter(toComplete string, maxDepth int, fileFilter func(name string) bool) []string {
	pathDir, _ := filepath.Split(toComplete)
	dirForRead := pathDir
	if dirForRead == "" {
		dirForRead = "."
	}

	suggestions := []string{}

	var findFiles func(dir string, prefix string, currentDepth int)
	findFiles = func(dir string, prefix string, currentDepth int) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}

		for _, entry := range entries {
			name := entry.Name()

			// Skip hidden files/directories (starting with .)
			if strings.HasPrefix(name, ".") {
				continue
			}

			candidate := name
			if prefix != "" {
				candidate = prefix + name
			}

			if entry.IsDir() {
				if currentDepth < maxDepth {
					findFiles(filepath.Join(dir, name), candidate+"/", currentDepth+1)
				}
			} else if fileFilter(name) {
				if toComplete == "" || strings.HasPrefix(candidate, toComplete) {
					suggestions = append(suggestions, candidate)
				}
			}
		}
	}

	findFiles(dirForRead, pathDir, 0)
	return suggestions
}
