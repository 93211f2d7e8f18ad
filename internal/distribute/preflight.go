package distribute

import (
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/smdabdoub/ClusterDistribute/internal/utils"
)

// Inputs lists every path a distribute run reads or writes.
type Inputs struct {
	Template    string
	SampleList  string   // Mode (a): one sample ID per line
	SampleFiles []string // Mode (b): pre-split sample files from an earlier run
	ParamsFile  string   // Empty for interactive entry
	OutputDir   string
}

// Preflight checks every input path and that the output directory, if it
// already exists, is a directory. It writes nothing; Materialize creates the
// output directory once parameters and partitioning have succeeded.
//
// All problems are collected and returned together as a *multierror.Error so
// the caller can report each of them.
func Preflight(in Inputs) error {
	var result *multierror.Error

	check := func(role, path string) {
		if path == "" {
			return
		}
		if _, err := os.Stat(path); err != nil {
			result = multierror.Append(result, &PathError{Kind: PathNotFound, Role: role, Path: path, Err: err})
		}
	}

	check("template", in.Template)
	check("sample list", in.SampleList)
	for _, fp := range in.SampleFiles {
		check("sample file", fp)
	}
	check("parameter file", in.ParamsFile)

	if in.OutputDir != "" && utils.PathExists(in.OutputDir) && !utils.DirExists(in.OutputDir) {
		result = multierror.Append(result, &PathError{Kind: DirectoryCreateFailed, Role: "output", Path: in.OutputDir})
	}

	return result.ErrorOrNil()
}
