package geometry

import (
	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
)

// Overlay holds a blocking or attribute geometry in GEOS form so it can be
// intersected with many cells.
type Overlay struct {
	geom  *geos.Geom
	bound orb.Bound
}

func toGeos(g orb.Geometry) (*geos.Geom, error) {
	b, err := ToWKB(g)
	if err != nil {
		return nil, GeometryError{Kind: InvalidGeometry, Detail: err.Error()}
	}
	gg, err := geos.NewGeomFromWKB(b)
	if err != nil {
		return nil, GeometryError{Kind: InvalidGeometry, Detail: err.Error()}
	}
	return gg, nil
}

func fromGeos(g *geos.Geom) (orb.Geometry, error) {
	return FromWKB(g.ToWKB())
}

// InitOverlay validates g. Self intersecting polygons are rejected.
func InitOverlay(g orb.Geometry) (Overlay, error) {
	gg, err := toGeos(g)
	if err != nil {
		return Overlay{}, err
	}
	if gg.IsEmpty() {
		return Overlay{}, GeometryError{Kind: EmptyGeometry}
	}
	if !gg.IsValid() {
		return Overlay{}, GeometryError{Kind: InvalidGeometry, Detail: "self intersecting or malformed"}
	}
	return Overlay{geom: gg, bound: g.Bound()}, nil
}

func (o Overlay) Bound() orb.Bound {
	return o.bound
}

// Area of the part of poly covered by the overlay.
func (o Overlay) Area(poly orb.Polygon) (float64, error) {
	pg, err := toGeos(poly)
	if err != nil {
		return 0, err
	}
	if !o.geom.Intersects(pg) {
		return 0, nil
	}
	return o.geom.Intersection(pg).Area(), nil
}

// Length of the part of ls inside the overlay.
func (o Overlay) Length(ls orb.LineString) (float64, error) {
	lg, err := toGeos(ls)
	if err != nil {
		return 0, err
	}
	if !o.geom.Intersects(lg) {
		return 0, nil
	}
	return o.geom.Intersection(lg).Length(), nil
}

// Clip returns the pieces of the overlay geometry (expected to be a line) that
// fall inside poly.
func (o Overlay) Clip(poly orb.Polygon) ([]orb.LineString, error) {
	pg, err := toGeos(poly)
	if err != nil {
		return nil, err
	}
	if !o.geom.Intersects(pg) {
		return nil, nil
	}
	g, err := fromGeos(o.geom.Intersection(pg))
	if err != nil {
		return nil, err
	}
	return lines(g), nil
}

// Contains reports whether the point lies inside the overlay.
func (o Overlay) Contains(p orb.Point) bool {
	pg := geos.NewPoint([]float64{p[0], p[1]})
	return o.geom.Contains(pg)
}

func lines(g orb.Geometry) []orb.LineString {
	switch v := g.(type) {
	case orb.LineString:
		if len(v) > 1 {
			return []orb.LineString{v}
		}
	case orb.MultiLineString:
		out := make([]orb.LineString, 0, len(v))
		for _, ls := range v {
			if len(ls) > 1 {
				out = append(out, ls)
			}
		}
		return out
	case orb.Collection:
		out := make([]orb.LineString, 0)
		for _, c := range v {
			out = append(out, lines(c)...)
		}
		return out
	}
	return nil
}
