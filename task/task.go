// Package task runs one long step, such as building the grid or sampling a
// raster, on its own goroutine while the caller keeps the foreground. A task
// owns its container until it finishes: the step writes through a single
// transaction that commits on success and rolls back on error or cancel.
package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

// CancelledError is returned by a step, and by Wait, once the task was
// cancelled.
type CancelledError struct{}

func (CancelledError) Error() string {
	return "task cancelled"
}

// Progress is one report from a running step.
type Progress struct {
	Done    int
	Total   int
	Message string
}

// Reporter is handed to the step. Steps call Check between cells and Report
// whenever they have something to show.
type Reporter struct {
	ctx      context.Context
	progress chan Progress
}

// Report publishes progress without blocking; reports nobody reads are dropped.
func (r *Reporter) Report(done, total int, message string) {
	select {
	case r.progress <- Progress{Done: done, Total: total, Message: message}:
	default:
	}
}

// Check returns CancelledError once the task has been cancelled.
func (r *Reporter) Check() error {
	select {
	case <-r.ctx.Done():
		return CancelledError{}
	default:
		return nil
	}
}

// Step is the work a task runs; tx is the open transaction.
type Step func(r *Reporter, tx *gpkg.Container) error

// Task is a step in flight.
type Task struct {
	Name     string
	cancel   context.CancelFunc
	progress chan Progress
	finished chan struct{}
	once     sync.Once
	err      error
}

// Run starts step against c. Only one task may hold a container at a time;
// a second Run fails with a ContainerError until the first finishes.
func Run(ctx context.Context, c *gpkg.Container, name string, step Step) (*Task, error) {
	if !c.Acquire() {
		return nil, gpkg.ContainerError{Reason: "a task is already running on " + c.Path}
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		Name:     name,
		cancel:   cancel,
		progress: make(chan Progress, 16),
		finished: make(chan struct{}),
	}
	r := &Reporter{ctx: ctx, progress: t.progress}
	go func() {
		start := time.Now()
		defer close(t.finished)
		defer close(t.progress)
		defer c.Release()
		defer cancel()
		t.err = c.InTx(func(tx *gpkg.Container) error {
			if err := r.Check(); err != nil {
				return err
			}
			if err := step(r, tx); err != nil {
				return err
			}
			// a cancel that arrives after the last check still discards the work
			return r.Check()
		})
		log := logger.Get().With(zap.String("task", name), zap.Duration("elapsed", time.Since(start)))
		var cancelled CancelledError
		switch {
		case t.err == nil:
			log.Info("task finished")
		case errors.As(t.err, &cancelled):
			log.Warn("task cancelled, changes rolled back")
		default:
			log.Error("task failed, changes rolled back", zap.Error(t.err))
		}
	}()
	return t, nil
}

// Progress delivers reports until the task finishes, then closes.
func (t *Task) Progress() <-chan Progress {
	return t.progress
}

// Cancel asks the step to stop at its next Check.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
}

// Finished is closed when the task is done and the container released.
func (t *Task) Finished() <-chan struct{} {
	return t.finished
}

// Wait blocks until the task is done and returns its error.
func (t *Task) Wait() error {
	<-t.finished
	return t.err
}
