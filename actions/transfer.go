package actions

import (
	"os"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/exporter"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/importer"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

// ImportOptions tune ImportDat.
type ImportOptions struct {
	// Strict stops at the first family that fails. Otherwise the failure is
	// logged, reported as a warning and the next family runs.
	Strict bool
	// Confirm is asked before a container that already holds a grid is
	// overwritten. A nil Confirm overwrites without asking.
	Confirm func(path string) bool
	// Families limits the import; empty means every family found.
	Families []dat.Family
}

// ExportOptions tune ExportDat.
type ExportOptions struct {
	Strict   bool
	Families []dat.Family
}

func wanted(filter []dat.Family, f dat.Family) bool {
	if len(filter) == 0 {
		return true
	}
	for _, w := range filter {
		if w == f {
			return true
		}
	}
	return false
}

// fatal reports whether err ends the run even when it is not strict.
func fatal(err error) bool {
	var ce gpkg.ContainerError
	return errors.As(err, &ce)
}

// ImportDat loads every .DAT file found in dir, topology first. Families
// whose file is missing are skipped.
func (o *Orchestrator) ImportDat(dir string, opts ImportOptions) (Report, error) {
	rep := newReport("import")
	defer rep.finish()
	if err := o.idle(); err != nil {
		return rep, err
	}
	project, err := dat.Scan(dir)
	if err != nil {
		return rep, err
	}
	if opts.Confirm != nil {
		empty, err := o.c.IsTableEmpty("grid")
		if err != nil {
			return rep, err
		}
		if !empty && !opts.Confirm(o.c.Path) {
			return rep, gpkg.ContainerError{Reason: "import declined, " + o.c.Path + " already holds a model"}
		}
	}
	im := importer.InitImporter(o.c, project)
	for _, f := range importer.Families() {
		if !wanted(opts.Families, f) {
			continue
		}
		if !project.Has(f) {
			logger.Get().Debug("not found, skipped", zap.String("family", string(f)))
			continue
		}
		var n int
		err := rep.timed(string(f), func() (err error) {
			n, err = im.Import(f)
			return err
		})
		if err != nil {
			fail("import", string(f), err)
			if opts.Strict || fatal(err) {
				return rep, err
			}
			rep.warn(string(f), err)
			continue
		}
		rep.Counts[string(f)] = n
	}
	o.remember(control.LastDatDir, dir)
	return rep, nil
}

// ExportDat writes one file per family that has data into dir. Each file is
// written whole or not at all.
func (o *Orchestrator) ExportDat(dir string, opts ExportOptions) (Report, error) {
	rep := newReport("export")
	defer rep.finish()
	if err := o.idle(); err != nil {
		return rep, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return rep, errors.Wrap(err, 0)
	}
	ex := exporter.InitExporter(o.c, dir)
	for _, f := range exporter.Families() {
		if !wanted(opts.Families, f) {
			continue
		}
		var written bool
		err := rep.timed(string(f), func() (err error) {
			written, err = ex.Export(f)
			return err
		})
		if err != nil {
			fail("export", string(f), err)
			if opts.Strict || fatal(err) {
				return rep, err
			}
			rep.warn(string(f), err)
			continue
		}
		if written {
			rep.Counts[string(f)] = 1
		}
	}
	o.remember(control.LastDatDir, dir)
	return rep, nil
}
