package layers

import (
	"path/filepath"

	"github.com/go-errors/errors"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// ShapefileProvider reads <Dir>/<layer>.shp. Attributes arrive as text.
type ShapefileProvider struct {
	Dir string
}

func (p ShapefileProvider) Features(layer string) ([]Feature, error) {
	r, err := shp.Open(filepath.Join(p.Dir, layer+".shp"))
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	defer r.Close()
	fields := r.Fields()
	out := make([]Feature, 0)
	for r.Next() {
		idx, shape := r.Shape()
		g := fromShape(shape)
		if g == nil {
			continue
		}
		attrs := make(map[string]any, len(fields))
		for i, f := range fields {
			attrs[f.String()] = r.ReadAttribute(idx, i)
		}
		out = append(out, Feature{Fid: idx + 1, Geometry: g, Attributes: attrs})
	}
	return out, nil
}

// parts splits the flat point list of a multi part shape.
func parts(offsets []int32, points []shp.Point) [][]orb.Point {
	out := make([][]orb.Point, 0, len(offsets))
	for i, start := range offsets {
		end := int32(len(points))
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		part := make([]orb.Point, 0, end-start)
		for _, pt := range points[start:end] {
			part = append(part, orb.Point{pt.X, pt.Y})
		}
		out = append(out, part)
	}
	return out
}

func fromShape(s shp.Shape) orb.Geometry {
	switch v := s.(type) {
	case *shp.Point:
		return orb.Point{v.X, v.Y}
	case *shp.PointZ:
		return orb.Point{v.X, v.Y}
	case *shp.PolyLine:
		ps := parts(v.Parts, v.Points)
		if len(ps) == 1 {
			return orb.LineString(ps[0])
		}
		mls := make(orb.MultiLineString, len(ps))
		for i, p := range ps {
			mls[i] = p
		}
		return mls
	case *shp.Polygon:
		// rings are kept in file order; the first one is the shell
		poly := orb.Polygon{}
		for _, p := range parts(v.Parts, v.Points) {
			poly = append(poly, orb.Ring(p))
		}
		return poly
	}
	return nil
}
