package layers

import (
	"strconv"

	"github.com/dewberry/gdal"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
)

// OGRProvider reads layers from any vector datasource gdal can open.
type OGRProvider struct {
	Path string
}

func (p OGRProvider) Features(layer string) ([]Feature, error) {
	ds := gdal.OpenDataSource(p.Path, 0)
	defer ds.Destroy()
	found := -1
	for i := 0; i < ds.LayerCount(); i++ {
		if ds.LayerByIndex(i).Name() == layer {
			found = i
			break
		}
	}
	if found < 0 {
		return nil, gpkg.ContainerError{Reason: "no layer " + layer + " in " + p.Path}
	}
	l := ds.LayerByIndex(found)
	def := l.Definition()
	names := make([]string, def.FieldCount())
	for i := range names {
		names[i] = def.FieldDefinition(i).Name()
	}
	out := make([]Feature, 0)
	l.ResetReading()
	for f := l.NextFeature(); f != nil; f = l.NextFeature() {
		wkb, err := f.Geometry().ToWKB()
		if err != nil {
			f.Destroy()
			return nil, geometry.GeometryError{Kind: geometry.InvalidGeometry, Detail: err.Error()}
		}
		g, err := geometry.FromWKB(wkb)
		if err != nil {
			f.Destroy()
			return nil, err
		}
		attrs := make(map[string]any, len(names))
		for i, n := range names {
			attrs[n] = f.FieldAsString(i)
		}
		out = append(out, Feature{Fid: int(f.FID()), Geometry: g, Attributes: attrs})
		f.Destroy()
	}
	return out, nil
}

// GdalResolver looks srs ids up in the EPSG database bundled with gdal.
type GdalResolver struct{}

func (GdalResolver) Definition(srsID int) (string, error) {
	sr := gdal.CreateSpatialReference("")
	defer sr.Destroy()
	if err := sr.FromEPSG(srsID); err != nil {
		return "", gpkg.ContainerError{Reason: "unknown srs id", Err: err}
	}
	return sr.ToWKT()
}

// StaticResolver serves definitions from a fixed table.
type StaticResolver map[int]string

func (s StaticResolver) Definition(srsID int) (string, error) {
	d, ok := s[srsID]
	if !ok {
		return "", gpkg.ContainerError{Reason: "unknown srs id"}
	}
	return d, nil
}

// GdalCrsResolver looks srs ids up in the EPSG database gdal ships with.
type GdalCrsResolver struct{}

func (GdalCrsResolver) Definition(srsID int) (string, error) {
	sr := gdal.CreateSpatialReference("")
	defer sr.Destroy()
	if err := sr.FromEPSG(srsID); err != nil {
		return "", gpkg.ContainerError{Reason: "unknown srs " + strconv.Itoa(srsID), Err: err}
	}
	wkt, err := sr.ToWKT()
	if err != nil {
		return "", gpkg.ContainerError{Reason: "srs " + strconv.Itoa(srsID) + " has no wkt", Err: err}
	}
	return wkt, nil
}
