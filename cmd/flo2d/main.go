// Command flo2d converts FLO-2D .DAT projects to and from a GeoPackage model
// container and builds the schematic layers.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/usace/flo2d-mutator/actions"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/logger"
	"github.com/usace/flo2d-mutator/task"
	"go.uber.org/zap"
)

var cfg = struct {
	Container string
	Options   string
	Srs       int
	Strict    bool
}{Srs: 4326}

var rootCmd = &cobra.Command{
	Use:   "flo2d",
	Short: "Convert FLO-2D .DAT projects and schematize GeoPackage models",
	Long: `flo2d keeps a FLO-2D model in a GeoPackage container.

Typical session:
  flo2d import ./project --gpkg model.gpkg
  flo2d grid --gpkg model.gpkg --size 50
  flo2d sample elevation --gpkg model.gpkg --source raster --path dem.tif
  flo2d schematize channels levees --gpkg model.gpkg
  flo2d export ./out --gpkg model.gpkg`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.Container, "gpkg", "", "model container path")
	rootCmd.PersistentFlags().StringVar(&cfg.Options, "options", "", "yaml plan file")
	rootCmd.PersistentFlags().IntVar(&cfg.Srs, "srs", cfg.Srs, "srs id for a new container")
	rootCmd.PersistentFlags().BoolVar(&cfg.Strict, "strict", false, "stop at the first failing family")
	rootCmd.MarkPersistentFlagRequired("gpkg")
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exitWithError(msg string, err error) {
	logger.Get().Error(msg, zap.Error(err))
	logger.Sync()
	os.Exit(1)
}

// settings keeps the last used directories next to the user's other config.
func settings() control.Settings {
	dir, err := os.UserConfigDir()
	if err != nil {
		return control.MemorySettings{}
	}
	dir = filepath.Join(dir, "flo2d")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return control.MemorySettings{}
	}
	s, err := control.OpenSettings(filepath.Join(dir, "settings.yaml"))
	if err != nil {
		logger.Get().Warn("settings unreadable, using defaults", zap.Error(err))
		return control.MemorySettings{}
	}
	return s
}

// plan reads the --options file; without one the flags make the plan.
func plan() (actions.Plan, error) {
	if cfg.Options == "" {
		return actions.Plan{Srs: cfg.Srs, Strict: cfg.Strict}, nil
	}
	b, err := os.ReadFile(cfg.Options)
	if err != nil {
		return actions.Plan{}, err
	}
	p, err := actions.ReadPlan(b)
	if err != nil {
		return p, err
	}
	p.Strict = p.Strict || cfg.Strict
	return p, nil
}

// orchestrator opens --gpkg, creating it when create is set and the file
// does not exist yet.
func orchestrator(create bool, srs int) *actions.Orchestrator {
	s := settings()
	_, statErr := os.Stat(cfg.Container)
	var o *actions.Orchestrator
	if create && os.IsNotExist(statErr) {
		c, err := actions.CreateContainer(cfg.Container, srs, layers.GdalCrsResolver{}, s)
		if err != nil {
			exitWithError("could not create container", err)
		}
		o = actions.InitOrchestrator(c, s)
	} else {
		c, err := actions.OpenContainer(cfg.Container, s)
		if err != nil {
			exitWithError("could not open container", err)
		}
		o = actions.InitOrchestrator(c, s)
	}
	o.Progress = func(p task.Progress) {
		logger.Get().Info(p.Message, zap.Int("done", p.Done), zap.Int("total", p.Total))
	}
	return o
}

func logReport(rep actions.Report) {
	for name, d := range rep.Timings {
		logger.Get().Debug("timing", zap.String("operation", rep.Operation), zap.String("item", name), zap.Duration("elapsed", d))
	}
	for _, w := range rep.Warnings {
		logger.Get().Warn("warning", zap.String("operation", rep.Operation), zap.String("detail", w))
	}
}
