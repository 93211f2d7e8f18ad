package distribute

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/smdabdoub/ClusterDistribute/internal/config"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
)

// Manifest records one distribute round so later steps (submission,
// resubmission) can find its scripts without re-deriving names.
type Manifest struct {
	Version    string        `yaml:"version"`
	Template   string        `yaml:"template"`
	Prefix     string        `yaml:"prefix"`
	OutputDir  string        `yaml:"output_dir"`
	Presplit   bool          `yaml:"presplit,omitempty"`
	ParamsFile string        `yaml:"params_file,omitempty"`
	Jobs       []ManifestJob `yaml:"jobs"`
}

// ManifestJob is one job of a Manifest.
type ManifestJob struct {
	JobID   int    `yaml:"job_id"`
	Script  string `yaml:"script"`
	Samples string `yaml:"samples"`
	Count   int    `yaml:"count,omitempty"`
}

// NewManifest builds the manifest for a materialized plan.
func NewManifest(p *Plan, units []Unit) *Manifest {
	m := &Manifest{
		Version:    config.VERSION,
		Template:   p.Template.Path,
		Prefix:     p.Template.Naming().Prefix,
		OutputDir:  p.OutputDir,
		Presplit:   p.Presplit(),
		ParamsFile: p.SaveParams,
		Jobs:       make([]ManifestJob, 0, len(units)),
	}
	for _, u := range units {
		m.Jobs = append(m.Jobs, ManifestJob{
			JobID:   u.Index,
			Script:  u.Script,
			Samples: u.Samples,
			Count:   len(u.IDs),
		})
	}
	return m
}

// Scripts returns the manifest's job script paths in job order.
func (m *Manifest) Scripts() []string {
	scripts := make([]string, len(m.Jobs))
	for i, j := range m.Jobs {
		scripts[i] = j.Script
	}
	return scripts
}

// WriteManifest writes m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := utils.WriteFileAtomic(path, data, utils.PermFile); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	utils.PrintDebug("Manifest written to %s", utils.StylePath(path))
	return nil
}

// ReadManifest loads a manifest. Relative script and sample paths are kept as
// written. A manifest from a newer major version is rejected; a newer minor
// version only produces a warning.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PathError{Kind: PathNotFound, Role: "manifest", Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filepath.Base(path), err)
	}

	if err := checkManifestVersion(m.Version, config.VERSION); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// checkManifestVersion compares the writer's version to the running version.
// Unparseable versions are accepted.
func checkManifestVersion(written, running string) error {
	w := canonical(written)
	r := canonical(running)
	if w == "" || r == "" {
		return nil
	}
	if semver.Compare(semver.Major(w), semver.Major(r)) > 0 {
		return fmt.Errorf("%w: written by %s, running %s", ErrManifestVersion, written, running)
	}
	if semver.Compare(semver.MajorMinor(w), semver.MajorMinor(r)) > 0 {
		utils.PrintWarning("Manifest was written by a newer version (%s > %s)", written, running)
	}
	return nil
}

// canonical returns the canonical "vX.Y.Z" form, adding the leading 'v' the
// semver package requires. Empty on failure.
func canonical(version string) string {
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return semver.Canonical(version)
}
