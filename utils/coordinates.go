package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/paulmach/orb"
)

// CoordinateList is a point cloud, typically an xyz survey export.
type CoordinateList struct {
	Coordinates []Coordinate
}

// Coordinate is one survey point with its value.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

func (c Coordinate) Point() orb.Point {
	return orb.Point{c.X, c.Y}
}

func (c Coordinate) ToString() string {
	return fmt.Sprintf("%v,%v,%v\r\n", c.X, c.Y, c.Z)
}

func (cl CoordinateList) Write(root string, path string) error {
	return WriteLocalBytes(cl.ToBytes(), root, path)
}

func (cl CoordinateList) ToBytes() []byte {
	b := make([]byte, 0)
	b = append(b, "x,y,z\r\n"...)
	for _, c := range cl.Coordinates {
		b = append(b, c.ToString()...)
	}
	return b
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
}

// BytesToCoordinateList reads comma or whitespace separated x y z rows. A
// leading header line is skipped when its first field is not a number.
func BytesToCoordinateList(bytes []byte) (CoordinateList, error) {
	list := CoordinateList{Coordinates: make([]Coordinate, 0)}
	lines := strings.Split(strings.ReplaceAll(string(bytes), "\r\n", "\n"), "\n")
	for i, line := range lines {
		fields := splitFields(line)
		if len(fields) == 0 {
			continue
		}
		if i == 0 {
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				continue
			}
		}
		if len(fields) < 3 {
			return list, errors.Errorf("line %v: expected x y z, got %q", i+1, line)
		}
		var v [3]float64
		for k := range v {
			f, err := strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return list, errors.Errorf("line %v: %v", i+1, err)
			}
			v[k] = f
		}
		list.Coordinates = append(list.Coordinates, Coordinate{X: v[0], Y: v[1], Z: v[2]})
	}
	return list, nil
}

// ReadCoordinateList loads a local xyz file.
func ReadCoordinateList(path string) (CoordinateList, error) {
	b, err := ReadLocalBytes(path)
	if err != nil {
		return CoordinateList{}, err
	}
	return BytesToCoordinateList(b)
}
