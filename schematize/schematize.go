// Package schematize turns user drawn layers into the cell aligned tables the
// simulator reads. Every routine clears its own output tables first, so a
// rerun over the same input gives the same rows.
package schematize

import (
	"errors"
	"time"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

// Summary reports what a routine wrote and which cells or features it had
// to skip.
type Summary struct {
	Rows     int
	Skipped  int
	Warnings []string
}

func (s *Summary) skip(routine string, err error, fields ...zap.Field) {
	s.Skipped++
	s.Warnings = append(s.Warnings, err.Error())
	logger.Get().Warn(routine+": skipped", append(fields, zap.Error(err))...)
}

// Schematizer holds the grid in memory while routines run against it.
type Schematizer struct {
	c       *gpkg.Container
	layers  layers.LayerProvider
	size    float64
	snap    geometry.Snapper
	cells   []grid.Cell
	centers map[int]orb.Point
	lookup  grid.Lookup
	index   *layers.RTreeIndex
}

// InitSchematizer loads the grid. User layers are read through provider,
// normally a layers.ContainerProvider over the same container.
func InitSchematizer(c *gpkg.Container, provider layers.LayerProvider) (*Schematizer, error) {
	cfg, err := control.Load(c)
	if err != nil {
		return nil, err
	}
	size, err := cfg.CellSize()
	if err != nil {
		return nil, err
	}
	cells, err := grid.Cells(c)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, gpkg.ContainerError{Reason: "grid is empty"}
	}
	snap, err := geometry.InitSnapper(cells[0].Center, size)
	if err != nil {
		return nil, err
	}
	s := &Schematizer{
		c:       c,
		layers:  provider,
		size:    size,
		snap:    snap,
		cells:   cells,
		centers: make(map[int]orb.Point, len(cells)),
		lookup:  grid.NewLookup(snap, cells),
		index:   layers.NewRTreeIndex(),
	}
	for _, cell := range cells {
		s.centers[cell.Fid] = cell.Center
		s.index.Insert(cell.Fid, geometry.Square(cell.Center, size).Bound())
	}
	return s, nil
}

// fids maps rasterized centroids to cells, dropping the ones off the grid.
func (s *Schematizer) fids(points []orb.Point) ([]int, int) {
	out := make([]int, 0, len(points))
	missed := 0
	for _, p := range points {
		fid := s.lookup.Fid(p)
		if fid == 0 {
			missed++
			continue
		}
		out = append(out, fid)
	}
	return out, missed
}

func (s *Schematizer) line(fids ...int) orb.LineString {
	ls := make(orb.LineString, 0, len(fids)+1)
	for _, f := range fids {
		ls = append(ls, s.centers[f])
	}
	if len(ls) == 1 {
		ls = append(ls, ls[0])
	}
	return ls
}

// replace clears tables, writes the fragments and runs the after steps in
// one transaction.
func (s *Schematizer) replace(routine string, tables []string, start time.Time, frags []*gpkg.Fragment, after ...func(tx *gpkg.Container) error) error {
	err := s.c.InTx(func(tx *gpkg.Container) error {
		if err := tx.ClearTables(tables...); err != nil {
			return err
		}
		if err := tx.BatchExecute(frags...); err != nil {
			return err
		}
		for _, fn := range after {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	rows := 0
	for _, f := range frags {
		rows += f.Len()
	}
	logger.Get().Info(routine,
		zap.Int("rows", rows),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// recoverable reports geometry errors, which skip one feature or cell
// instead of failing the routine.
func recoverable(err error) bool {
	var ge geometry.GeometryError
	return errors.As(err, &ge)
}
