package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/usace/cc-go-sdk"
	"github.com/usace/flo2d-mutator/actions"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/logger"
	"github.com/usace/flo2d-mutator/task"
	"go.uber.org/zap"
)

var pluginName string = "flo2d-mutator"

func main() {
	logger.Get().Info(pluginName + " starting")
	pm, err := cc.InitPluginManager()
	if err != nil {
		logger.Get().Fatal("could not initiate plugin manager", zap.Error(err))
		return
	}
	err = computePayload(pm)
	if err != nil {
		pm.LogError(cc.Error{
			ErrorLevel: cc.FATAL,
			Error:      "could not compute payload: " + err.Error(),
		})
		return
	}
	pm.ReportProgress(cc.StatusReport{
		Status:   "complete",
		Progress: 100,
	})
}

// sources sorts the payload data sources by what they carry.
type sources struct {
	options   *cc.DataSource
	container *cc.DataSource
	dats      []cc.DataSource
}

func isDat(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".dat")
}

func isContainer(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".gpkg")
}

func sortSources(all []cc.DataSource) sources {
	var s sources
	for i := range all {
		ds := all[i]
		switch {
		case isDat(ds.Name):
			s.dats = append(s.dats, ds)
		case isContainer(ds.Name):
			s.container = &ds
		case strings.Contains(strings.ToLower(ds.Name), "options"):
			s.options = &ds
		}
	}
	return s
}

// computePayload converts between .DAT files and a container. Inputs named
// *.DAT are imported, a *.gpkg input is opened instead of a fresh container,
// and an "options" input holds the yaml plan. Outputs named *.gpkg receive
// the container, outputs named *.DAT receive the exported family.
func computePayload(pm *cc.PluginManager) error {
	payload := pm.GetPayload()
	in := sortSources(payload.Inputs)
	out := sortSources(payload.Outputs)
	if in.container == nil && len(in.dats) == 0 {
		return fmt.Errorf("expecting a *.gpkg or *.DAT input, found %v inputs", len(payload.Inputs))
	}
	if out.container == nil && len(out.dats) == 0 {
		return fmt.Errorf("expecting a *.gpkg or *.DAT output, found %v outputs", len(payload.Outputs))
	}

	plan := actions.Plan{Srs: 4326}
	if in.options != nil {
		b, err := pm.GetFile(*in.options, 0)
		if err != nil {
			return err
		}
		plan, err = actions.ReadPlan(b)
		if err != nil {
			return err
		}
	}

	work, err := os.MkdirTemp("", pluginName)
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)
	settings := control.MemorySettings{}
	containerPath := filepath.Join(work, "model.gpkg")
	o, err := openContainer(pm, in.container, containerPath, plan, settings)
	if err != nil {
		return err
	}
	defer o.Container().Close()
	o.Progress = func(p task.Progress) {
		pm.LogMessage(cc.Message{Message: p.Message})
	}

	if len(in.dats) > 0 {
		datDir := filepath.Join(work, "dat")
		if err := os.MkdirAll(datDir, 0755); err != nil {
			return err
		}
		for _, ds := range in.dats {
			b, err := pm.GetFile(ds, 0)
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(datDir, strings.ToUpper(ds.Name)), b, 0644); err != nil {
				return err
			}
		}
		rep, err := o.ImportDat(datDir, actions.ImportOptions{Strict: plan.Strict, Families: plan.DatFamilies()})
		if err != nil {
			return err
		}
		for _, w := range rep.Warnings {
			pm.LogMessage(cc.Message{Message: w})
		}
	}
	pm.ReportProgress(cc.StatusReport{Status: "imported", Progress: 30})

	if _, err := o.Execute(context.Background(), plan); err != nil {
		return err
	}
	pm.ReportProgress(cc.StatusReport{Status: "processed", Progress: 60})

	if len(out.dats) > 0 {
		exportDir := filepath.Join(work, "export")
		rep, err := o.ExportDat(exportDir, actions.ExportOptions{Strict: plan.Strict})
		if err != nil {
			return err
		}
		for _, ds := range out.dats {
			name := strings.ToUpper(ds.Name)
			if rep.Counts[name] == 0 {
				pm.LogMessage(cc.Message{Message: "nothing to export for " + name})
				continue
			}
			b, err := os.ReadFile(filepath.Join(exportDir, name))
			if err != nil {
				return err
			}
			if err := pm.PutFile(b, ds, 0); err != nil {
				return err
			}
		}
	}
	if out.container != nil {
		if err := o.Container().Close(); err != nil {
			return err
		}
		b, err := os.ReadFile(containerPath)
		if err != nil {
			return err
		}
		if err := pm.PutFile(b, *out.container, 0); err != nil {
			return err
		}
	}
	return nil
}

// openContainer downloads the input container, or creates an empty one in
// the plan's srs.
func openContainer(pm *cc.PluginManager, ds *cc.DataSource, path string, plan actions.Plan, settings control.Settings) (*actions.Orchestrator, error) {
	if ds == nil {
		c, err := actions.CreateContainer(path, plan.Srs, layers.GdalCrsResolver{}, settings)
		if err != nil {
			return nil, err
		}
		return actions.InitOrchestrator(c, settings), nil
	}
	b, err := pm.GetFile(*ds, 0)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return nil, err
	}
	c, err := actions.OpenContainer(path, settings)
	if err != nil {
		return nil, err
	}
	return actions.InitOrchestrator(c, settings), nil
}
