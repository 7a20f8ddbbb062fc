package layers

import (
	"path/filepath"

	"github.com/go-errors/errors"
	"github.com/paulmach/orb/geojson"
	"github.com/usace/flo2d-mutator/utils"
)

// GeoJSONProvider reads <Dir>/<layer>.geojson feature collections.
type GeoJSONProvider struct {
	Dir string
}

func (p GeoJSONProvider) Features(layer string) ([]Feature, error) {
	b, err := utils.ReadLocalBytes(filepath.Join(p.Dir, layer+".geojson"))
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	out := make([]Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		if gf.Geometry == nil {
			continue
		}
		f := Feature{Fid: i + 1, Geometry: gf.Geometry, Attributes: map[string]any(gf.Properties)}
		if id, ok := gf.ID.(float64); ok && id > 0 {
			f.Fid = int(id)
		}
		if f.Attributes == nil {
			f.Attributes = map[string]any{}
		}
		out = append(out, f)
	}
	return out, nil
}
