package layers

import (
	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/gpkg"
)

// ContainerProvider reads user layers straight from the model container.
type ContainerProvider struct {
	c *gpkg.Container
}

func NewContainerProvider(c *gpkg.Container) ContainerProvider {
	return ContainerProvider{c: c}
}

func (p ContainerProvider) Features(layer string) ([]Feature, error) {
	if _, ok := gpkg.GeometryTables[layer]; !ok {
		return nil, gpkg.ContainerError{Reason: "no geometry table named " + layer}
	}
	rows, err := p.c.Query("SELECT * FROM " + layer + " ORDER BY fid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	out := make([]Feature, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, 0)
		}
		f := Feature{Attributes: make(map[string]any, len(cols))}
		for i, col := range cols {
			switch col {
			case "fid":
				if id, ok := vals[i].(int64); ok {
					f.Fid = int(id)
				}
			case "geom":
				blob, ok := vals[i].([]byte)
				if !ok || len(blob) == 0 {
					continue
				}
				g, err := gpkg.DecodeGeometry(blob)
				if err != nil {
					return nil, err
				}
				f.Geometry = g
			default:
				f.Attributes[col] = vals[i]
			}
		}
		if f.Geometry != nil {
			out = append(out, f)
		}
	}
	return out, rows.Err()
}
