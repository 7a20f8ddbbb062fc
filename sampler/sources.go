package sampler

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/layers"
)

// FromPoints groups samples by the cell they fall in and aggregates each
// group. Cells without samples are absent from the result.
func FromPoints(cells []grid.Cell, snap geometry.Snapper, samples []Sample, agg Aggregator, tick grid.Tick) (map[int]float64, error) {
	lookup := grid.NewLookup(snap, cells)
	groups := make(map[int][]Sample)
	for i, s := range samples {
		if err := tick.At(i, len(samples)); err != nil {
			return nil, err
		}
		if fid := lookup.Fid(s.At); fid != 0 {
			groups[fid] = append(groups[fid], s)
		}
	}
	at := make(map[int]orb.Point, len(cells))
	for _, c := range cells {
		at[c.Fid] = c.Center
	}
	out := make(map[int]float64, len(groups))
	for fid, g := range groups {
		out[fid] = agg(at[fid], g)
	}
	return out, nil
}

func polygonIndex(polys []orb.Polygon) *layers.RTreeIndex {
	ix := layers.NewRTreeIndex()
	for i, p := range polys {
		ix.Insert(i, p.Bound())
	}
	return ix
}

// FromPolygonCentroids gives each cell the value of the polygon holding its
// centroid. Where polygons overlap the last one listed wins.
func FromPolygonCentroids(cells []grid.Cell, polys []orb.Polygon, vals []float64, tick grid.Tick) (map[int]float64, error) {
	ix := polygonIndex(polys)
	out := make(map[int]float64)
	for n, c := range cells {
		if err := tick.At(n, len(cells)); err != nil {
			return nil, err
		}
		hit := -1
		for _, i := range ix.Search(orb.Bound{Min: c.Center, Max: c.Center}) {
			if i > hit && planar.PolygonContains(polys[i], c.Center) {
				hit = i
			}
		}
		if hit >= 0 {
			out[c.Fid] = vals[hit]
		}
	}
	return out, nil
}

// FromPolygonAreas weights every polygon touching a cell by the share of the
// cell it covers. The uncovered share keeps the value in base, or counts as
// zero when base has none.
func FromPolygonAreas(cells []grid.Cell, size float64, polys []orb.Polygon, vals []float64, base map[int]float64, tick grid.Tick) (map[int]float64, error) {
	ix := polygonIndex(polys)
	overlays := make(map[int]geometry.Overlay)
	cellArea := size * size
	out := make(map[int]float64)
	for n, c := range cells {
		if err := tick.At(n, len(cells)); err != nil {
			return nil, err
		}
		sq := geometry.Square(c.Center, size)
		hits := ix.Search(sq.Bound())
		if len(hits) == 0 {
			continue
		}
		covered, sum := 0.0, 0.0
		for _, i := range hits {
			o, ok := overlays[i]
			if !ok {
				var err error
				if o, err = geometry.InitOverlay(polys[i]); err != nil {
					return nil, err
				}
				overlays[i] = o
			}
			a, err := o.Area(sq)
			if err != nil {
				return nil, err
			}
			share := a / cellArea
			covered += share
			sum += share * vals[i]
		}
		if covered <= 0 {
			continue
		}
		if covered < 1 {
			sum += (1 - covered) * base[c.Fid]
		}
		out[c.Fid] = sum
	}
	return out, nil
}
