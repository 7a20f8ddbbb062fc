package actions

import (
	"github.com/usace/flo2d-mutator/schematize"
)

type routine func(s *schematize.Schematizer) (schematize.Summary, error)

func (o *Orchestrator) schematize(name string, routines ...routine) (Report, error) {
	rep := newReport(name)
	defer rep.finish()
	if err := o.idle(); err != nil {
		return rep, err
	}
	s, err := schematize.InitSchematizer(o.c, o.provider(o.c))
	if err != nil {
		return rep, err
	}
	for _, fn := range routines {
		sum, err := fn(s)
		rep.Warnings = append(rep.Warnings, sum.Warnings...)
		if err != nil {
			fail(name, name, err)
			return rep, err
		}
		rep.Counts[name] += sum.Rows
	}
	return rep, nil
}

// SchematizeChannels rasterizes the user centerlines and derives bank lines
// from the 1D domain.
func (o *Orchestrator) SchematizeChannels() (Report, error) {
	return o.schematize("channels", (*schematize.Schematizer).Channels, (*schematize.Schematizer).BankLines)
}

func (o *Orchestrator) SchematizeStreets() (Report, error) {
	return o.schematize("streets", (*schematize.Schematizer).Streets)
}

func (o *Orchestrator) SchematizeLevees() (Report, error) {
	return o.schematize("levees", (*schematize.Schematizer).Levees)
}

// SchematizeAreas rebuilds rain ARF and the spatial tolerance, Froude,
// shallow n and gutter cells.
func (o *Orchestrator) SchematizeAreas() (Report, error) {
	return o.schematize("areas", (*schematize.Schematizer).RainArf, (*schematize.Schematizer).Areas)
}

func (o *Orchestrator) EvaluateArfWrf() (Report, error) {
	return o.schematize("arf", (*schematize.Schematizer).EvaluateArfWrf)
}

// InterpolateCrossSections fills a cross section into every left bank cell.
// Run SchematizeChannels first so the bank lines exist.
func (o *Orchestrator) InterpolateCrossSections() (Report, error) {
	return o.schematize("xsections", (*schematize.Schematizer).InterpolateCrossSections)
}
