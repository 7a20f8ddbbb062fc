package sampler

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

// Column is a grid attribute the sampler may write.
type Column string

const (
	Elevation Column = "elevation"
	Roughness Column = "n_value"
)

// Result counts what a sampling run did.
type Result struct {
	Assigned int
	Filled   int
	Missing  int
}

// Compute produces values for the cells. It receives the grid and its cell
// size, may read the current column values through base, and polls tick.
type Compute func(cells []grid.Cell, size float64, base map[int]float64, tick grid.Tick) (map[int]float64, error)

// Options drive Run. Fill closes holes left by the compute step. Replace
// makes the result the whole column: cells still without a value are set
// to NULL. Without it they keep what they had.
type Options struct {
	Fill    bool
	Replace bool
	Tick    grid.Tick
}

// Run loads the grid, computes the values, optionally fills the holes and
// writes the column in one transaction.
func Run(c *gpkg.Container, column Column, opts Options, compute Compute) (Result, error) {
	if column != Elevation && column != Roughness {
		return Result{}, errors.Errorf("grid column %q cannot be sampled", column)
	}
	start := time.Now()
	cfg, err := control.Load(c)
	if err != nil {
		return Result{}, err
	}
	size, err := cfg.CellSize()
	if err != nil {
		return Result{}, err
	}
	cells, err := grid.Cells(c)
	if err != nil {
		return Result{}, err
	}
	if len(cells) == 0 {
		return Result{}, gpkg.ContainerError{Reason: "grid is empty"}
	}
	base, err := current(c, column)
	if err != nil {
		return Result{}, err
	}
	vals, err := compute(cells, size, base, opts.Tick)
	if err != nil {
		return Result{}, err
	}
	res := Result{Assigned: len(vals)}
	if opts.Fill {
		if res.Filled, err = Fill(cells, size, vals, opts.Tick); err != nil {
			return Result{}, err
		}
	}
	res.Missing = len(cells) - len(vals)
	err = c.InTx(func(tx *gpkg.Container) error {
		for i, cell := range cells {
			if err := opts.Tick.At(i, len(cells)); err != nil {
				return err
			}
			var err error
			v, ok := vals[cell.Fid]
			switch {
			case ok:
				_, err = tx.Exec("UPDATE grid SET "+string(column)+" = ? WHERE fid = ?", v, cell.Fid)
			case opts.Replace:
				_, err = tx.Exec("UPDATE grid SET "+string(column)+" = NULL WHERE fid = ?", cell.Fid)
			default:
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	logger.Get().Info("sampled grid",
		zap.String("column", string(column)),
		zap.Int("assigned", res.Assigned),
		zap.Int("filled", res.Filled),
		zap.Int("missing", res.Missing),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func current(c *gpkg.Container, column Column) (map[int]float64, error) {
	rows, err := c.Query("SELECT fid, " + string(column) + " FROM grid WHERE " + string(column) + " IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int]float64)
	for rows.Next() {
		var fid int
		var v float64
		if err := rows.Scan(&fid, &v); err != nil {
			return nil, errors.Wrap(err, 0)
		}
		out[fid] = v
	}
	return out, rows.Err()
}
