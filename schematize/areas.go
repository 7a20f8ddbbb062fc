package schematize

import (
	"sort"
	"time"

	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/sampler"
)

// area links a user polygon layer to the cell table it schematizes into.
type area struct {
	layer   string
	table   string
	columns []string
}

var areas = []area{
	{"user_rain_arf", "rain_arf_cells", []string{"arf"}},
	{"user_froude", "fpfroude_cells", []string{"froude"}},
	{"user_tolerance_areas", "tolspatial_cells", []string{"tol"}},
	{"user_shallow_n", "spatialshallow_cells", []string{"shallow_n"}},
	{"user_gutter_polygons", "gutter_cells", []string{"width", "height", "n_value", "direction"}},
}

// cellsInside assigns every cell whose centroid lies in a polygon to the
// owning feature. Later features win where polygons overlap.
func (s *Schematizer) cellsInside(features []layers.Feature) map[int]layers.Feature {
	polys, owners := layers.Polygons(features)
	index := make([]float64, len(polys))
	for i := range index {
		index[i] = float64(i)
	}
	// without a tick the lookup cannot fail
	hits, _ := sampler.FromPolygonCentroids(s.cells, polys, index, nil)
	out := make(map[int]layers.Feature, len(hits))
	for fid, i := range hits {
		out[fid] = owners[int(i)]
	}
	return out
}

func (s *Schematizer) schematizeArea(a area) (int, error) {
	start := time.Now()
	features, err := s.layers.Features(a.layer)
	if err != nil {
		return 0, err
	}
	head := "INSERT INTO " + a.table + " (grid_fid"
	for _, col := range a.columns {
		head += ", " + col
	}
	head += ", geom) VALUES"
	frag := gpkg.NewFragment(head, len(a.columns)+2)
	inside := s.cellsInside(features)
	fids := make([]int, 0, len(inside))
	for fid := range inside {
		fids = append(fids, fid)
	}
	sort.Ints(fids)
	for _, fid := range fids {
		f := inside[fid]
		geom, err := s.c.Encode(s.centers[fid])
		if err != nil {
			return 0, err
		}
		row := []any{fid}
		for _, col := range a.columns {
			row = append(row, f.FloatOr(col, 0))
		}
		row = append(row, geom)
		if err := frag.Add(row...); err != nil {
			return 0, err
		}
	}
	if err := s.replace(a.table, []string{a.table}, start, []*gpkg.Fragment{frag}); err != nil {
		return 0, err
	}
	return frag.Len(), nil
}

// RainArf rebuilds rain_arf_cells from user_rain_arf.
func (s *Schematizer) RainArf() (Summary, error) {
	n, err := s.schematizeArea(areas[0])
	return Summary{Rows: n}, err
}

// Areas rebuilds the Froude, tolerance, shallow n and gutter cells from
// their user polygons.
func (s *Schematizer) Areas() (Summary, error) {
	sum := Summary{}
	for _, a := range areas[1:] {
		n, err := s.schematizeArea(a)
		if err != nil {
			return sum, err
		}
		sum.Rows += n
	}
	return sum, nil
}
