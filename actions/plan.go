package actions

import (
	"context"
	"sort"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/sampler"
	"gopkg.in/yaml.v3"
)

// Plan is the yaml options file shared by the command line and the plugin.
//
//	srs: 32617
//	strict: true
//	families: [FPLAIN.DAT, CADPTS.DAT]
//	grid: {size: 50, prune: true}
//	sample:
//	  - {column: elevation, source: raster, path: dem.tif, method: mean, fill: true}
//	schematize: [channels, levees, arf]
type Plan struct {
	Srs        int          `yaml:"srs"`
	Strict     bool         `yaml:"strict"`
	Families   []string     `yaml:"families"`
	Grid       *GridPlan    `yaml:"grid"`
	Sample     []SamplePlan `yaml:"sample"`
	Schematize []string     `yaml:"schematize"`
}

type GridPlan struct {
	Size         float64 `yaml:"size"`
	AnchorRaster string  `yaml:"anchor_raster"`
	Prune        bool    `yaml:"prune"`
}

type SamplePlan struct {
	// Column is "elevation" or "manning".
	Column string `yaml:"column"`
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
	Layer  string `yaml:"layer"`
	Field  string `yaml:"field"`
	Method string `yaml:"method"`
	Fill   bool   `yaml:"fill"`
}

func (sp SamplePlan) options() SampleOptions {
	return SampleOptions{
		Source: sp.Source,
		Path:   sp.Path,
		Layer:  sp.Layer,
		Field:  sp.Field,
		Method: sp.Method,
		Fill:   sp.Fill,
	}
}

var routines = map[string]func(o *Orchestrator) (Report, error){
	"channels":  (*Orchestrator).SchematizeChannels,
	"streets":   (*Orchestrator).SchematizeStreets,
	"levees":    (*Orchestrator).SchematizeLevees,
	"areas":     (*Orchestrator).SchematizeAreas,
	"arf":       (*Orchestrator).EvaluateArfWrf,
	"xsections": (*Orchestrator).InterpolateCrossSections,
}

// Routines lists the names a plan may schematize.
func Routines() []string {
	out := make([]string, 0, len(routines))
	for name := range routines {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Schematize runs one routine by name.
func (o *Orchestrator) Schematize(name string) (Report, error) {
	fn, ok := routines[name]
	if !ok {
		return newReport(name), errors.Errorf("unknown schematize routine %q", name)
	}
	return fn(o)
}

// ReadPlan parses and checks a plan document. An empty document is an empty
// plan.
func ReadPlan(b []byte) (Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, errors.Wrap(err, 0)
	}
	if p.Srs == 0 {
		p.Srs = 4326
	}
	for _, s := range p.Sample {
		if s.Column != string(sampler.Elevation) && s.Column != "manning" {
			return p, errors.Errorf("sample column %q is neither elevation nor manning", s.Column)
		}
	}
	for _, name := range p.Schematize {
		if _, ok := routines[name]; !ok {
			return p, errors.Errorf("unknown schematize routine %q", name)
		}
	}
	return p, nil
}

// DatFamilies turns the families filter into dat families; empty means all.
func (p Plan) DatFamilies() []dat.Family {
	out := make([]dat.Family, len(p.Families))
	for i, f := range p.Families {
		out[i] = dat.Family(f)
	}
	return out
}

// Execute runs the grid, sampling and schematizing steps of p in that order
// and stops at the first failure.
func (o *Orchestrator) Execute(ctx context.Context, p Plan) ([]Report, error) {
	reports := make([]Report, 0)
	if p.Grid != nil {
		rep, err := o.CreateGrid(ctx, GridOptions{Size: p.Grid.Size, AnchorRaster: p.Grid.AnchorRaster, Prune: p.Grid.Prune})
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
	}
	for _, s := range p.Sample {
		sample := o.SampleElevation
		if s.Column == "manning" {
			sample = o.SampleManning
		}
		rep, err := sample(ctx, s.options())
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
	}
	for _, name := range p.Schematize {
		rep, err := o.Schematize(name)
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}
