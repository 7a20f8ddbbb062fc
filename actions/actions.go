// Package actions is the operator surface: each action drives the importer,
// exporter, grid builder, sampler or schematizer against one container and
// returns a Report.
package actions

import (
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/logger"
	"github.com/usace/flo2d-mutator/task"
	"go.uber.org/zap"
)

// Report is what every action returns. Timings holds the time spent on each
// family of an import or export.
type Report struct {
	RunID     uuid.UUID
	Operation string
	Counts    map[string]int
	Timings   map[string]time.Duration
	Elapsed   time.Duration
	Warnings  []string
	start     time.Time
}

func newReport(operation string) Report {
	return Report{
		RunID:     uuid.New(),
		Operation: operation,
		Counts:    make(map[string]int),
		Timings:   make(map[string]time.Duration),
		start:     time.Now(),
	}
}

// timed runs fn and records how long it took under name.
func (r *Report) timed(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Timings[name] = time.Since(start)
	return err
}

func (r *Report) finish() {
	r.Elapsed = time.Since(r.start)
	logger.Get().Info(r.Operation+" finished",
		zap.String("run", r.RunID.String()),
		zap.Any("counts", r.Counts),
		zap.Int("warnings", len(r.Warnings)),
		zap.Duration("elapsed", r.Elapsed))
}

func (r *Report) warn(name string, err error) {
	r.Warnings = append(r.Warnings, name+": "+err.Error())
}

// Orchestrator carries the collaborators the actions share.
type Orchestrator struct {
	c *gpkg.Container
	// Settings remembers the last directories used; nil disables it.
	Settings control.Settings
	// Layers overrides where user layers come from. When nil they are read
	// from the container itself.
	Layers layers.LayerProvider
	// Progress receives reports from grid and sampling tasks.
	Progress func(p task.Progress)
}

func InitOrchestrator(c *gpkg.Container, settings control.Settings) *Orchestrator {
	return &Orchestrator{c: c, Settings: settings}
}

func (o *Orchestrator) Container() *gpkg.Container {
	return o.c
}

// provider returns the user layer source for reads made through c, which may
// be a transaction.
func (o *Orchestrator) provider(c *gpkg.Container) layers.LayerProvider {
	if o.Layers != nil {
		return o.Layers
	}
	return layers.NewContainerProvider(c)
}

func (o *Orchestrator) idle() error {
	if o.c.Busy() {
		return gpkg.ContainerError{Reason: "a task is running on " + o.c.Path}
	}
	return nil
}

func (o *Orchestrator) remember(key, dir string) {
	remember(o.Settings, key, dir)
}

func remember(settings control.Settings, key, dir string) {
	if settings == nil {
		return
	}
	if err := settings.Set(key, dir); err != nil {
		logger.Get().Warn("could not save settings", zap.String("key", key), zap.Error(err))
	}
}

// fail logs an error with its stack when it carries one.
func fail(operation, name string, err error) {
	fields := []zap.Field{zap.String("item", name), zap.Error(err)}
	var e *errors.Error
	if errors.As(err, &e) {
		fields = append(fields, zap.String("stack", e.ErrorStack()))
	}
	logger.Get().Error(operation+" failed", fields...)
}

// CreateContainer builds a new container registered under srsID. The
// resolver supplies the definition of srs ids the container does not know;
// nil only works for the built in ones.
func CreateContainer(path string, srsID int, resolver layers.CrsResolver, settings control.Settings) (*gpkg.Container, error) {
	definition := ""
	if resolver != nil && srsID != 4326 {
		d, err := resolver.Definition(srsID)
		if err != nil {
			return nil, err
		}
		definition = d
	}
	c, err := gpkg.CreateContainer(path, srsID, definition)
	if err != nil {
		return nil, err
	}
	remember(settings, control.LastContainerDir, filepath.Dir(path))
	logger.Get().Info("container created", zap.String("path", path), zap.Int("srs", srsID))
	return c, nil
}

// OpenContainer opens an existing container.
func OpenContainer(path string, settings control.Settings) (*gpkg.Container, error) {
	c, err := gpkg.OpenContainer(path)
	if err != nil {
		return nil, err
	}
	remember(settings, control.LastContainerDir, filepath.Dir(path))
	return c, nil
}
