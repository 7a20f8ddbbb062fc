package importer

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

// gridTables is everything a new grid invalidates.
func gridTables() []string {
	return append([]string{"grid"}, gpkg.CellTables...)
}

// importFplain rebuilds the grid from FPLAIN.DAT and CADPTS.DAT. The square
// size comes from the first cell's neighbour.
func (im *Importer) importFplain() (int, error) {
	if !im.project.Has(dat.CadptsFamily) {
		return 0, dat.ParseError{File: string(dat.CadptsFamily), Reason: "required by FPLAIN.DAT"}
	}
	size, side, err := dat.CellSize(im.path(dat.FplainFamily), im.path(dat.CadptsFamily))
	if err != nil {
		return 0, err
	}
	logger.Get().Debug("cell size", zap.Float64("size", size), zap.String("side", side))
	fp, err := dat.ReadFplain(im.path(dat.FplainFamily))
	if err != nil {
		return 0, err
	}
	cp, err := dat.ReadCadpts(im.path(dat.CadptsFamily))
	if err != nil {
		return 0, err
	}
	xy := make(map[int]orb.Point, len(cp.Points))
	for _, p := range cp.Points {
		xy[p.Fid] = orb.Point{p.X, p.Y}
	}
	frag := gpkg.NewFragment("INSERT INTO grid (fid, n_value, elevation, geom) VALUES", 4)
	bound := orb.Bound{}
	for i, c := range fp.Cells {
		center, ok := xy[c.Fid]
		if !ok {
			return 0, gpkg.ReferenceError{Table: "CADPTS.DAT", Fid: c.Fid}
		}
		sq := geometry.Square(center, size)
		if i == 0 {
			bound = sq.Bound()
		} else {
			bound = bound.Union(sq.Bound())
		}
		blob, err := im.encode(sq)
		if err != nil {
			return 0, err
		}
		if err := frag.Add(c.Fid, c.NValue, c.Elevation, blob); err != nil {
			return 0, err
		}
	}
	return im.load(gridTables(), []*gpkg.Fragment{frag}, im.finishGrid(size, bound))
}

// importTopo builds the grid from TOPO.DAT points when no FPLAIN.DAT exists.
// Cells are numbered in file order and MANNINGS_N.DAT supplies roughness,
// falling back to MANNING.
func (im *Importer) importTopo() (int, error) {
	if im.project.Has(dat.FplainFamily) {
		logger.Get().Info("TOPO.DAT ignored, FPLAIN.DAT defines the grid")
		return 0, nil
	}
	tp, err := dat.ReadTopo(im.path(dat.TopoFamily))
	if err != nil {
		return 0, err
	}
	size, err := dat.TopoCellSize(tp)
	if err != nil {
		return 0, err
	}
	cfg, err := control.Load(im.c)
	if err != nil {
		return 0, err
	}
	manning, err := cfg.Real("MANNING")
	if err != nil {
		return 0, err
	}
	roughness := make(map[int]float64)
	if im.project.Has(dat.ManningsFamily) {
		mn, err := dat.ReadMannings(im.path(dat.ManningsFamily))
		if err != nil {
			return 0, err
		}
		for _, c := range mn.Cells {
			roughness[c.Fid] = c.N
		}
	}
	frag := gpkg.NewFragment("INSERT INTO grid (fid, n_value, elevation, geom) VALUES", 4)
	bound := orb.Bound{}
	for i, p := range tp.Points {
		fid := i + 1
		sq := geometry.Square(orb.Point{p.X, p.Y}, size)
		if i == 0 {
			bound = sq.Bound()
		} else {
			bound = bound.Union(sq.Bound())
		}
		blob, err := im.encode(sq)
		if err != nil {
			return 0, err
		}
		n, ok := roughness[fid]
		if !ok {
			n = manning
		}
		if err := frag.Add(fid, n, p.Elevation, blob); err != nil {
			return 0, err
		}
	}
	return im.load(gridTables(), []*gpkg.Fragment{frag}, im.finishGrid(size, bound))
}

func (im *Importer) finishGrid(size float64, bound orb.Bound) func(tx *gpkg.Container) error {
	return func(tx *gpkg.Container) error {
		if err := grid.AssignIndices(tx, size); err != nil {
			return err
		}
		if err := control.Store(tx, "CELLSIZE", strconv.FormatFloat(size, 'f', -1, 64)); err != nil {
			return err
		}
		im.size = size
		return tx.UpdateExtent("grid", bound)
	}
}
