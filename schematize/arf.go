package schematize

import (
	"math"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"go.uber.org/zap"
)

// arf values at or above this are written as fully blocked
const fullBlock = 0.98

// Reduction is the area and width reduction of one cell by one blocker.
type Reduction struct {
	Arf float64
	Wrf [8]float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Reduce computes the reductions of the cell centered on center. Area
// reduction is the blocked share of the cell; each width reduction is the
// share of the matching octagon side inside the blocker.
func Reduce(o geometry.Overlay, center orb.Point, size float64, arf, wrf bool) (Reduction, error) {
	r := Reduction{}
	if arf {
		a, err := o.Area(geometry.Square(center, size))
		if err != nil {
			return r, err
		}
		r.Arf = round2(math.Min(a/(size*size), 1))
		if r.Arf >= fullBlock {
			r.Arf = 1
		}
	}
	if wrf {
		side := geometry.OctagonSideLength(size)
		for i, d := range geometry.Directions {
			ls, err := geometry.OctagonSide(center, d, size)
			if err != nil {
				return r, err
			}
			l, err := o.Length(ls)
			if err != nil {
				return r, err
			}
			r.Wrf[i] = round2(math.Min(l/side, 1))
		}
	}
	return r, nil
}

func (r Reduction) empty() bool {
	if r.Arf > 0 {
		return false
	}
	for _, w := range r.Wrf {
		if w > 0 {
			return false
		}
	}
	return true
}

// FoldBlockedCellsSQL merges several blocker rows on one cell: width factors
// add up to at most 1 and the largest area factor wins.
const FoldBlockedCellsSQL = `CREATE TEMP TABLE blocked_fold AS
SELECT MIN(fid) AS fid, grid_fid, MIN(area_fid) AS area_fid, MAX(arf) AS arf,
MIN(SUM(wrf1), 1) AS wrf1, MIN(SUM(wrf2), 1) AS wrf2, MIN(SUM(wrf3), 1) AS wrf3, MIN(SUM(wrf4), 1) AS wrf4,
MIN(SUM(wrf5), 1) AS wrf5, MIN(SUM(wrf6), 1) AS wrf6, MIN(SUM(wrf7), 1) AS wrf7, MIN(SUM(wrf8), 1) AS wrf8,
MIN(geom) AS geom
FROM blocked_cells GROUP BY grid_fid`

func foldBlockedCells(tx *gpkg.Container) error {
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS blocked_fold",
		FoldBlockedCellsSQL,
		"DELETE FROM blocked_cells",
		`INSERT INTO blocked_cells (fid, grid_fid, area_fid, arf, wrf1, wrf2, wrf3, wrf4, wrf5, wrf6, wrf7, wrf8, geom)
		SELECT fid, grid_fid, area_fid, arf, wrf1, wrf2, wrf3, wrf4, wrf5, wrf6, wrf7, wrf8, geom FROM blocked_fold ORDER BY fid`,
		"DROP TABLE blocked_fold",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// EvaluateArfWrf rebuilds blocked_cells from user_blocked_areas.
func (s *Schematizer) EvaluateArfWrf() (Summary, error) {
	start := time.Now()
	sum := Summary{}
	features, err := s.layers.Features("user_blocked_areas")
	if err != nil {
		return sum, err
	}
	frag := gpkg.NewFragment(`INSERT INTO blocked_cells (grid_fid, area_fid, arf, wrf1, wrf2, wrf3, wrf4, wrf5, wrf6, wrf7, wrf8, geom) VALUES`, 12)
	for _, f := range features {
		o, err := geometry.InitOverlay(f.Geometry)
		if err != nil {
			sum.skip("arf", err, zap.Int("area", f.Fid))
			continue
		}
		calcArf := f.FloatOr("calc_arf", 1) != 0
		calcWrf := f.FloatOr("calc_wrf", 1) != 0
		hits := s.index.Search(o.Bound())
		sort.Ints(hits)
		for _, fid := range hits {
			center := s.centers[fid]
			r, err := Reduce(o, center, s.size, calcArf, calcWrf)
			if err != nil {
				if !recoverable(err) {
					return sum, err
				}
				sum.skip("arf", err, zap.Int("cell", fid))
				continue
			}
			if r.empty() {
				continue
			}
			geom, err := s.c.Encode(center)
			if err != nil {
				return sum, err
			}
			w := r.Wrf
			if err := frag.Add(fid, f.Fid, r.Arf, w[0], w[1], w[2], w[3], w[4], w[5], w[6], w[7], geom); err != nil {
				return sum, err
			}
		}
	}
	if err := s.replace("arf", []string{"blocked_cells"}, start, []*gpkg.Fragment{frag}, foldBlockedCells); err != nil {
		return sum, err
	}
	sum.Rows, err = s.c.Count("blocked_cells")
	return sum, err
}
