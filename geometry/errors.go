package geometry

import "fmt"

const (
	InvalidGeometry  = "invalid"
	EmptyGeometry    = "empty"
	ZeroLengthLine   = "zero-length"
	UnsupportedShape = "unsupported"
)

// GeometryError is raised for geometry that cannot be schematized. Callers in
// the schematizer treat it as a per-cell problem and skip the cell.
type GeometryError struct {
	Kind   string
	Detail string
}

func (e GeometryError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("geometry error: %v", e.Kind)
	}
	return fmt.Sprintf("geometry error: %v: %v", e.Kind, e.Detail)
}
