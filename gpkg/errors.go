package gpkg

import "fmt"

// ContainerError is fatal to a run: the file is not a GeoPackage, the schema
// could not be applied or the connection failed.
type ContainerError struct {
	Reason string
	Err    error
}

func (e ContainerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("container error: %v: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("container error: %v", e.Reason)
}

func (e ContainerError) Unwrap() error {
	return e.Err
}

// ReferenceError is returned when a row points at a fid that does not exist.
type ReferenceError struct {
	Table string
	Fid   int
}

func (e ReferenceError) Error() string {
	return fmt.Sprintf("reference error: %v has no fid %v", e.Table, e.Fid)
}
