package geometry

import (
	"encoding/binary"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// compass direction codes, in the order the model expects them
const (
	North     = 1
	East      = 2
	South     = 3
	West      = 4
	NorthEast = 5
	SouthEast = 6
	SouthWest = 7
	NorthWest = 8
)

// Directions lists every direction code in ascending order.
var Directions = []int{North, East, South, West, NorthEast, SouthEast, SouthWest, NorthWest}

var unitVectors = map[int][2]float64{
	North:     {0, 1},
	East:      {1, 0},
	South:     {0, -1},
	West:      {-1, 0},
	NorthEast: {1, 1},
	SouthEast: {1, -1},
	SouthWest: {-1, -1},
	NorthWest: {-1, 1},
}

// DirectionOf returns the direction code for a step of (dx, dy) cells. Only the
// signs are used. A zero step has no direction and returns 0.
func DirectionOf(dx, dy int) int {
	sx, sy := sign(dx), sign(dy)
	for d, v := range unitVectors {
		if int(v[0]) == sx && int(v[1]) == sy {
			return d
		}
	}
	return 0
}

// Opposite returns the direction pointing back along d.
func Opposite(d int) int {
	v, ok := unitVectors[d]
	if !ok {
		return 0
	}
	return DirectionOf(-int(v[0]), -int(v[1]))
}

// IsCardinal reports whether d is one of N, E, S, W.
func IsCardinal(d int) bool {
	return d >= North && d <= West
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Square builds the closed 5 vertex ring of a cell centered on center.
func Square(center orb.Point, size float64) orb.Polygon {
	h := size / 2
	ring := orb.Ring{
		{center[0] - h, center[1] - h},
		{center[0] + h, center[1] - h},
		{center[0] + h, center[1] + h},
		{center[0] - h, center[1] + h},
		{center[0] - h, center[1] - h},
	}
	return orb.Polygon{ring}
}

// Buffer approximates a circle with 4*segments vertices.
func Buffer(center orb.Point, radius float64, segments int) orb.Polygon {
	if segments < 1 {
		segments = 3
	}
	n := 4 * segments
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, orb.Point{center[0] + radius*math.Cos(a), center[1] + radius*math.Sin(a)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// Spoke is the segment from a cell centroid to the midpoint of its side (or
// its corner, for diagonal directions).
func Spoke(center orb.Point, direction int, size float64) (orb.LineString, error) {
	v, ok := unitVectors[direction]
	if !ok {
		return nil, GeometryError{Kind: UnsupportedShape, Detail: "direction out of range"}
	}
	h := size / 2
	return orb.LineString{center, {center[0] + v[0]*h, center[1] + v[1]*h}}, nil
}

// Spokes collects a spoke for each requested direction.
func Spokes(center orb.Point, directions []int, size float64) (orb.MultiLineString, error) {
	mls := make(orb.MultiLineString, 0, len(directions))
	for _, d := range directions {
		s, err := Spoke(center, d, size)
		if err != nil {
			return nil, err
		}
		mls = append(mls, s)
	}
	return mls, nil
}

// ToWKB encodes a geometry as little endian WKB.
func ToWKB(g orb.Geometry) ([]byte, error) {
	return wkb.Marshal(g, binary.LittleEndian)
}

// FromWKB decodes WKB produced by ToWKB or by any OGC writer.
func FromWKB(b []byte) (orb.Geometry, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, GeometryError{Kind: InvalidGeometry, Detail: err.Error()}
	}
	return g, nil
}

func BuildSquare(center orb.Point, size float64) ([]byte, error) {
	return ToWKB(Square(center, size))
}

func BuildBuffer(center orb.Point, radius float64, segments int) ([]byte, error) {
	return ToWKB(Buffer(center, radius, segments))
}

// BuildLinestring joins the points in order. A single point is not a line.
func BuildLinestring(points []orb.Point) ([]byte, error) {
	if len(points) < 2 {
		return nil, GeometryError{Kind: ZeroLengthLine, Detail: "fewer than two vertices"}
	}
	return ToWKB(orb.LineString(points))
}

func BuildMultilinestring(center orb.Point, directions []int, size float64) ([]byte, error) {
	mls, err := Spokes(center, directions, size)
	if err != nil {
		return nil, err
	}
	return ToWKB(mls)
}

func BuildLevee(center orb.Point, direction int, size float64) ([]byte, error) {
	side, err := OctagonSide(center, direction, size)
	if err != nil {
		return nil, err
	}
	return ToWKB(side)
}
