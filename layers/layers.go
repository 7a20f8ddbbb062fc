// Package layers gives the schematizers and the sampler read access to user
// vector data without caring where it lives.
package layers

import (
	"strconv"

	"github.com/paulmach/orb"
)

// Feature is one vector record: its id, geometry and attribute values.
type Feature struct {
	Fid        int
	Geometry   orb.Geometry
	Attributes map[string]any
}

// Float reads a numeric attribute. Strings holding numbers are accepted since
// shapefile and OGR sources hand every field over as text.
func (f Feature) Float(name string) (float64, bool) {
	switch v := f.Attributes[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		x, err := strconv.ParseFloat(v, 64)
		return x, err == nil
	}
	return 0, false
}

// FloatOr is Float with a fallback for missing or null values.
func (f Feature) FloatOr(name string, fallback float64) float64 {
	if v, ok := f.Float(name); ok {
		return v
	}
	return fallback
}

func (f Feature) Int(name string) (int, bool) {
	v, ok := f.Float(name)
	return int(v), ok
}

func (f Feature) String(name string) string {
	switch v := f.Attributes[name].(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// LayerProvider lists the features of a named layer in a stable order.
type LayerProvider interface {
	Features(layer string) ([]Feature, error)
}

// SpatialIndex finds ids by bounding box.
type SpatialIndex interface {
	Insert(id int, b orb.Bound)
	Search(b orb.Bound) []int
}

// CrsResolver turns an srs id into the WKT definition a new container needs.
type CrsResolver interface {
	Definition(srsID int) (string, error)
}

// Polygons keeps the polygonal part of every feature, flattening
// multipolygons. The returned owners slice maps each polygon to its feature.
func Polygons(features []Feature) ([]orb.Polygon, []Feature) {
	polys := make([]orb.Polygon, 0, len(features))
	owners := make([]Feature, 0, len(features))
	for _, f := range features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polys = append(polys, g)
			owners = append(owners, f)
		case orb.MultiPolygon:
			for _, p := range g {
				polys = append(polys, p)
				owners = append(owners, f)
			}
		}
	}
	return polys, owners
}

// Lines keeps the linear part of every feature, flattening multilinestrings.
func Lines(features []Feature) ([]orb.LineString, []Feature) {
	lines := make([]orb.LineString, 0, len(features))
	owners := make([]Feature, 0, len(features))
	for _, f := range features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, g)
			owners = append(owners, f)
		case orb.MultiLineString:
			for _, l := range g {
				lines = append(lines, l)
				owners = append(owners, f)
			}
		}
	}
	return lines, owners
}
