// Package distribute materializes one job script, and optionally one sample
// subset file, per unit of work from a template and a parameter mapping.
package distribute

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/smdabdoub/ClusterDistribute/internal/params"
	"github.com/smdabdoub/ClusterDistribute/internal/template"
	"github.com/smdabdoub/ClusterDistribute/internal/utils"
)

// DefaultWorkers is the number of concurrent file writers when a plan sets none.
const DefaultWorkers = 4

// Plan describes one distribute round.
//
// Exactly one of Chunks and SampleFiles supplies the units: Chunks are freshly
// partitioned sample IDs that get written to new subset files, SampleFiles are
// pre-split subset files from an earlier round that are used as they are.
type Plan struct {
	Template  *template.Template
	Params    params.Mapping // Resolved base mapping; never modified
	OutputDir string

	Chunks      [][]string
	SampleFiles []string

	SaveParams   string // Write the mapping here after materializing (optional)
	ManifestPath string // Write the run manifest here (optional)
	Workers      int
}

// Unit is one materialized job.
type Unit struct {
	Index   int
	Script  string
	Samples string
	IDs     []string // nil for pre-split sample files
	Text    string   // Rendered script
}

// Result reports what Materialize produced.
type Result struct {
	Naming     template.Naming
	Units      []Unit
	ParamsFile string
	Manifest   string
}

// Scripts returns the job script paths in job order.
func (r *Result) Scripts() []string {
	scripts := make([]string, len(r.Units))
	for i, u := range r.Units {
		scripts[i] = u.Script
	}
	return scripts
}

// Presplit reports whether the plan reuses existing sample files.
func (p *Plan) Presplit() bool {
	return p.SampleFiles != nil
}

// Prepare computes every unit of the plan and renders its script without
// touching the filesystem. A placeholder left unresolved in any unit fails the
// whole plan.
func Prepare(p *Plan) ([]Unit, error) {
	if p.Template == nil {
		return nil, ErrNoTemplate
	}
	if p.Chunks != nil && p.SampleFiles != nil {
		return nil, ErrConflictingUnits
	}

	naming := p.Template.Naming()
	n := len(p.Chunks)
	if p.Presplit() {
		n = len(p.SampleFiles)
	}

	units := make([]Unit, 0, n)
	for i := 1; i <= n; i++ {
		u := Unit{
			Index:  i,
			Script: filepath.Join(p.OutputDir, naming.ScriptName(i)),
		}
		if p.Presplit() {
			u.Samples = p.SampleFiles[i-1]
		} else {
			u.Samples = filepath.Join(p.OutputDir, naming.SamplesName(i))
			u.IDs = p.Chunks[i-1]
		}

		text, err := p.Template.Render(p.Params.WithChunk(i, u.Samples))
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
		u.Text = text
		units = append(units, u)
	}
	return units, nil
}

// Materialize renders every unit and writes the scripts and sample subset
// files. Nothing is written unless every unit renders.
//
// Writes run concurrently on up to Workers goroutines. A failed write does not
// stop the other units; all failures are returned together. The parameter file
// and manifest are only written when every unit succeeded.
func Materialize(ctx context.Context, p *Plan) (*Result, error) {
	units, err := Prepare(p)
	if err != nil {
		return nil, err
	}

	res := &Result{Naming: p.Template.Naming(), Units: units}

	if p.OutputDir != "" {
		if err := utils.EnsureDir(p.OutputDir); err != nil {
			return nil, &PathError{Kind: DirectoryCreateFailed, Role: "output", Path: p.OutputDir, Err: err}
		}
	}

	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	errs := make([]error, len(units))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range units {
		i := i
		u := &units[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = &UnitError{Index: u.Index, Path: u.Script, Err: err}
				return nil
			}
			errs[i] = writeUnit(u)
			return nil
		})
	}
	_ = g.Wait()

	var result *multierror.Error
	for _, e := range errs {
		if e != nil {
			result = multierror.Append(result, e)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return res, err
	}

	if p.SaveParams != "" {
		if err := params.Save(p.SaveParams, p.Params); err != nil {
			return res, err
		}
		res.ParamsFile = p.SaveParams
		utils.PrintDebug("Parameters saved to %s", utils.StylePath(p.SaveParams))
	}

	if p.ManifestPath != "" {
		m := NewManifest(p, units)
		if err := WriteManifest(p.ManifestPath, m); err != nil {
			return res, err
		}
		res.Manifest = p.ManifestPath
	}

	return res, nil
}

// writeUnit writes the sample subset file (fresh chunks only) and the script.
func writeUnit(u *Unit) error {
	if u.IDs != nil {
		if err := utils.WriteFileAtomic(u.Samples, []byte(utils.JoinLines(u.IDs)), utils.PermFile); err != nil {
			return &UnitError{Index: u.Index, Path: u.Samples, Err: err}
		}
	}
	if err := utils.WriteFileAtomic(u.Script, []byte(u.Text), utils.PermFile); err != nil {
		return &UnitError{Index: u.Index, Path: u.Script, Err: err}
	}
	utils.PrintDebug("Wrote %s (%s)", utils.StylePath(u.Script), utils.StylePath(u.Samples))
	return nil
}
