package template

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Naming derives output file names from a template file name.
//
// For "run_template.pbs" the prefix is "run" and the extension ".pbs", giving
// scripts run_1.pbs, run_2.pbs, ... and sample lists run_samples_1.txt, ...
// Indices are 1-based without zero padding. The reconciler relies on this
// scheme: the token after the last underscore of both names is the run index.
type Naming struct {
	Prefix    string
	Extension string
}

// NamingFor returns the naming scheme for a template path. The prefix is the
// file stem up to its first underscore, or the whole stem if there is none.
func NamingFor(templatePath string) Naming {
	base := filepath.Base(templatePath)
	ext := filepath.Ext(base)
	if ext == base {
		// dotfile such as ".pbs": no extension, whole name is the stem
		ext = ""
	}
	stem := strings.TrimSuffix(base, ext)
	prefix, _, _ := strings.Cut(stem, "_")
	return Naming{Prefix: prefix, Extension: ext}
}

// ScriptName returns the job script file name for the given 1-based index.
func (n Naming) ScriptName(index int) string {
	return fmt.Sprintf("%s_%d%s", n.Prefix, index, n.Extension)
}

// SamplesName returns the sample subset file name for the given 1-based index.
func (n Naming) SamplesName(index int) string {
	return fmt.Sprintf("%s_samples_%d.txt", n.Prefix, index)
}

// ManifestName returns the file name of the run manifest.
func (n Naming) ManifestName() string {
	return n.Prefix + "_manifest.yaml"
}
