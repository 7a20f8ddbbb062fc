package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/gpkg"
)

func newContainer(t *testing.T) *gpkg.Container {
	t.Helper()
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRunCommits(t *testing.T) {
	c := newContainer(t)
	task, err := Run(context.Background(), c, "store", func(r *Reporter, tx *gpkg.Container) error {
		r.Report(1, 1, "storing")
		return control.Store(tx, "CELLSIZE", "50")
	})
	if err != nil {
		t.Fatal(err)
	}
	reports := 0
	for range task.Progress() {
		reports++
	}
	if err := task.Wait(); err != nil {
		t.Fatal(err)
	}
	if reports != 1 {
		t.Errorf("expected one progress report, got %d", reports)
	}
	if c.Busy() {
		t.Errorf("container should be released")
	}
	cfg, err := control.Load(c)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Raw("CELLSIZE") != "50" {
		t.Errorf("expected the write to commit, got %q", cfg.Raw("CELLSIZE"))
	}
}

func TestCancelRollsBack(t *testing.T) {
	c := newContainer(t)
	stored := make(chan struct{})
	release := make(chan struct{})
	task, err := Run(context.Background(), c, "cancel", func(r *Reporter, tx *gpkg.Container) error {
		if err := control.Store(tx, "CELLSIZE", "75"); err != nil {
			return err
		}
		close(stored)
		<-release
		return r.Check()
	})
	if err != nil {
		t.Fatal(err)
	}
	<-stored
	task.Cancel()
	close(release)
	err = task.Wait()
	var cancelled CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("expected CancelledError, got %v", err)
	}
	cfg, err := control.Load(c)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Has("CELLSIZE") {
		t.Errorf("cancelled write should roll back")
	}
}

func TestOneTaskPerContainer(t *testing.T) {
	c := newContainer(t)
	release := make(chan struct{})
	first, err := Run(context.Background(), c, "first", func(r *Reporter, tx *gpkg.Container) error {
		<-release
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Run(context.Background(), c, "second", func(r *Reporter, tx *gpkg.Container) error { return nil })
	var ce gpkg.ContainerError
	if !errors.As(err, &ce) {
		t.Errorf("expected ContainerError for a second task, got %v", err)
	}
	close(release)
	if err := first.Wait(); err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), c, "second", func(r *Reporter, tx *gpkg.Container) error { return nil })
	if err != nil {
		t.Fatalf("container should be free again: %v", err)
	}
	if err := second.Wait(); err != nil {
		t.Error(err)
	}
}
