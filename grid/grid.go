package grid

import (
	"strconv"
	"time"

	"github.com/go-errors/errors"
	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

// Cell is one grid row as the schematizers see it.
type Cell struct {
	Fid    int
	Col    int
	Row    int
	Center orb.Point
}

// Options drive Create. Anchor, when set, is the upper left corner the
// cells are aligned to, normally the corner of an elevation raster pixel.
// Tick is polled while cells are written and pruned.
type Options struct {
	Size   float64
	Anchor *orb.Point
	Prune  bool
	Tick   Tick
}

// Create tessellates domain into square cells and replaces the grid. Every
// schematic table that references cells is emptied first. It returns the
// number of cells kept after pruning.
func Create(c *gpkg.Container, domain orb.Polygon, opts Options) (int, error) {
	if opts.Size <= 0 {
		return 0, control.ConfigError{Name: "CELLSIZE", Reason: "must be greater than zero"}
	}
	if len(domain) == 0 || len(domain[0]) < 4 {
		return 0, geometry.GeometryError{Kind: geometry.EmptyGeometry, Detail: "domain polygon"}
	}
	start := time.Now()
	cfg, err := control.Load(c)
	if err != nil {
		return 0, err
	}
	manning, err := cfg.Real("MANNING")
	if err != nil {
		return 0, err
	}
	frame := InitFrame(domain.Bound(), opts.Size, opts.Anchor)
	sites := frame.Walk(domain)
	if len(sites) == 0 {
		return 0, geometry.GeometryError{Kind: geometry.EmptyGeometry, Detail: "no cell centroid falls inside the domain"}
	}
	kept := 0
	err = c.InTx(func(tx *gpkg.Container) error {
		if err := tx.ClearTables(append([]string{"grid"}, gpkg.CellTables...)...); err != nil {
			return err
		}
		frag := gpkg.NewFragment("INSERT INTO grid (fid, col, row, n_value, geom) VALUES", 5)
		for i, s := range sites {
			if err := opts.Tick.At(i, len(sites)); err != nil {
				return err
			}
			geom, err := tx.Encode(geometry.Square(s.Center, opts.Size))
			if err != nil {
				return err
			}
			if err := frag.Add(i+1, s.Col, s.Row, manning, geom); err != nil {
				return err
			}
		}
		if err := tx.BatchExecute(frag); err != nil {
			return err
		}
		if opts.Prune {
			if _, err := Prune(tx, opts.Tick); err != nil {
				return err
			}
		}
		if err := Renumber(tx); err != nil {
			return err
		}
		if err := control.Store(tx, "CELLSIZE", strconv.FormatFloat(opts.Size, 'f', -1, 64)); err != nil {
			return err
		}
		n, err := tx.Count("grid")
		if err != nil {
			return err
		}
		kept = n
		return tx.UpdateExtent("grid", Extent(frame))
	})
	if err != nil {
		return 0, err
	}
	logger.Get().Info("grid created",
		zap.Int("cells", kept),
		zap.Int("walked", len(sites)),
		zap.Duration("elapsed", time.Since(start)))
	return kept, nil
}

// Extent is the bound covered by the frame.
func Extent(f Frame) orb.Bound {
	return orb.Bound{
		Min: orb.Point{f.MinX, f.MaxY - float64(f.Rows)*f.Size},
		Max: orb.Point{f.MinX + float64(f.Cols)*f.Size, f.MaxY},
	}
}

// Cells reads the grid in fid order.
func Cells(c *gpkg.Container) ([]Cell, error) {
	rows, err := c.Query("SELECT fid, col, row, geom FROM grid ORDER BY fid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Cell, 0)
	for rows.Next() {
		var cell Cell
		var col, row *int
		var blob []byte
		if err := rows.Scan(&cell.Fid, &col, &row, &blob); err != nil {
			return nil, errors.Wrap(err, 0)
		}
		if col != nil && row != nil {
			cell.Col, cell.Row = *col, *row
		}
		g, err := gpkg.DecodeGeometry(blob)
		if err != nil {
			return nil, err
		}
		b := g.Bound()
		cell.Center = b.Center()
		out = append(out, cell)
	}
	return out, rows.Err()
}

// Index finds cells by (col,row).
type Index map[[2]int]int

func NewIndex(cells []Cell) Index {
	ix := make(Index, len(cells))
	for _, c := range cells {
		ix[[2]int{c.Col, c.Row}] = c.Fid
	}
	return ix
}

// offsets in geometry.Directions order; rows grow south.
var offsets = [8][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}}

// Neighbours returns the fid of each of the eight neighbours of c, 0 where
// the neighbour is missing. Order is N E S W NE SE SW NW.
func (ix Index) Neighbours(c Cell) [8]int {
	var out [8]int
	for i, o := range offsets {
		out[i] = ix[[2]int{c.Col + o[0], c.Row + o[1]}]
	}
	return out
}

// IsDangling reports a cell with three or more missing cardinal neighbours,
// or with every cardinal and three or more ordinal neighbours missing.
func IsDangling(n [8]int) bool {
	cardinal, ordinal := 0, 0
	for i, fid := range n {
		if fid != 0 {
			continue
		}
		if i < 4 {
			cardinal++
		} else {
			ordinal++
		}
	}
	return cardinal >= 3 || (cardinal == 4 && ordinal >= 3)
}

// Prune deletes dangling cells until none remain and returns how many were
// removed. Fids are left sparse; call Renumber afterwards.
func Prune(c *gpkg.Container, tick Tick) (int, error) {
	removed := 0
	err := c.InTx(func(tx *gpkg.Container) error {
		for {
			cells, err := Cells(tx)
			if err != nil {
				return err
			}
			ix := NewIndex(cells)
			doomed := make([]int, 0)
			for i, cell := range cells {
				if err := tick.At(i, len(cells)); err != nil {
					return err
				}
				if IsDangling(ix.Neighbours(cell)) {
					doomed = append(doomed, cell.Fid)
				}
			}
			if len(doomed) == 0 {
				return nil
			}
			for _, fid := range doomed {
				if _, err := tx.Exec("DELETE FROM grid WHERE fid = ?", fid); err != nil {
					return err
				}
			}
			removed += len(doomed)
		}
	})
	if removed > 0 {
		logger.Get().Info("pruned dangling cells", zap.Int("removed", removed))
	}
	return removed, err
}

// Renumber makes grid fids dense again, keeping their order.
func Renumber(c *gpkg.Container) error {
	return c.InTx(func(tx *gpkg.Container) error {
		for _, stmt := range []string{
			"DROP TABLE IF EXISTS grid_rebuild",
			"CREATE TEMP TABLE grid_rebuild AS SELECT ROW_NUMBER() OVER (ORDER BY fid) AS new_fid, col, row, n_value, elevation, geom FROM grid",
			"DELETE FROM grid",
			"INSERT INTO grid (fid, col, row, n_value, elevation, geom) SELECT new_fid, col, row, n_value, elevation, geom FROM grid_rebuild ORDER BY new_fid",
			"DROP TABLE grid_rebuild",
			"DELETE FROM sqlite_sequence WHERE name = 'grid'",
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// AssignIndices derives (col,row) for every cell from its centroid. Used for
// grids that arrive without indices, such as an imported FPLAIN.DAT.
func AssignIndices(c *gpkg.Container, size float64) error {
	cells, err := Cells(c)
	if err != nil {
		return err
	}
	if len(cells) == 0 {
		return nil
	}
	centers := make([]orb.Point, len(cells))
	for i, cell := range cells {
		centers[i] = cell.Center
	}
	frame := FrameOf(centers, size)
	return c.InTx(func(tx *gpkg.Container) error {
		for _, cell := range cells {
			col, row := frame.ColRow(cell.Center)
			if _, err := tx.Exec("UPDATE grid SET col = ?, row = ? WHERE fid = ?", col, row, cell.Fid); err != nil {
				return err
			}
		}
		return tx.UpdateExtent("grid", Extent(frame))
	})
}

// Snapper returns the Bresenham snapper aligned with the current grid.
func Snapper(c *gpkg.Container, size float64) (geometry.Snapper, error) {
	var fid int
	if err := c.QueryRow("SELECT fid FROM grid ORDER BY fid LIMIT 1").Scan(&fid); err != nil {
		return geometry.Snapper{}, gpkg.ContainerError{Reason: "grid is empty", Err: err}
	}
	p, err := c.SingleCentroid(fid)
	if err != nil {
		return geometry.Snapper{}, err
	}
	return geometry.InitSnapper(p, size)
}

// Lookup maps snapped centroids back to fids.
type Lookup struct {
	snap  geometry.Snapper
	cells map[[2]int]int
}

func NewLookup(snap geometry.Snapper, cells []Cell) Lookup {
	m := make(map[[2]int]int, len(cells))
	for _, c := range cells {
		i, j := snap.Index(c.Center)
		m[[2]int{i, j}] = c.Fid
	}
	return Lookup{snap: snap, cells: m}
}

// Fid returns the cell containing p, or 0.
func (l Lookup) Fid(p orb.Point) int {
	i, j := l.snap.Index(p)
	return l.cells[[2]int{i, j}]
}
