package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// OctagonRatio relates a cell size to the side of the regular octagon that
// fits inside it.
const OctagonRatio = 2.414

// OctagonSideLength is the length of one side of the octagon in a cell.
func OctagonSideLength(size float64) float64 {
	return size / OctagonRatio
}

// OctagonSide returns the octagon side facing direction.
func OctagonSide(center orb.Point, direction int, size float64) (orb.LineString, error) {
	h := size / 2
	q := OctagonSideLength(size) / 2
	var a, b [2]float64
	switch direction {
	case North:
		a, b = [2]float64{-q, h}, [2]float64{q, h}
	case NorthEast:
		a, b = [2]float64{q, h}, [2]float64{h, q}
	case East:
		a, b = [2]float64{h, q}, [2]float64{h, -q}
	case SouthEast:
		a, b = [2]float64{h, -q}, [2]float64{q, -h}
	case South:
		a, b = [2]float64{q, -h}, [2]float64{-q, -h}
	case SouthWest:
		a, b = [2]float64{-q, -h}, [2]float64{-h, -q}
	case West:
		a, b = [2]float64{-h, -q}, [2]float64{-h, q}
	case NorthWest:
		a, b = [2]float64{-h, q}, [2]float64{-q, h}
	default:
		return nil, GeometryError{Kind: UnsupportedShape, Detail: "direction out of range"}
	}
	return orb.LineString{
		{center[0] + a[0], center[1] + a[1]},
		{center[0] + b[0], center[1] + b[1]},
	}, nil
}

// OctagonSides returns all eight sides keyed by direction.
func OctagonSides(center orb.Point, size float64) map[int]orb.LineString {
	sides := make(map[int]orb.LineString, 8)
	for _, d := range Directions {
		s, _ := OctagonSide(center, d, size)
		sides[d] = s
	}
	return sides
}

// nodes sit at 22.5 + 45k degrees; the side between node k and k+1 faces 45(k+1)
var sideAfterNode = [8]int{NorthEast, North, NorthWest, West, SouthWest, South, SouthEast, East}

// OctagonNode classifies a point on the cell boundary into the nearest of the
// eight octagon vertices, numbered counter clockwise from 22.5 degrees. A
// point at the middle of a side is equally near two vertices; it goes to the
// one left of heading, the direction the line crossing the cell travels.
func OctagonNode(center, p, heading orb.Point) int {
	deg := math.Atan2(p[1]-center[1], p[0]-center[0]) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	x := (deg - 22.5) / 45
	k := int(math.Floor(x + 0.5))
	if frac := x - math.Floor(x); math.Abs(frac-0.5) < 1e-9 {
		lo := int(math.Floor(x))
		if leftOf(heading, nodeDirection(lo)) {
			k = lo
		} else {
			k = lo + 1
		}
	}
	return ((k % 8) + 8) % 8
}

func nodeDirection(k int) orb.Point {
	rad := (22.5 + 45*float64(k)) * math.Pi / 180
	return orb.Point{math.Cos(rad), math.Sin(rad)}
}

// leftOf reports whether v points to the left of heading.
func leftOf(heading, v orb.Point) bool {
	return heading[0]*v[1]-heading[1]*v[0] > 0
}

// SidesBetween returns the octagon sides swept going from node a to node b
// along the shorter way round. Equal nodes return nil; a half turn sweeps
// clockwise.
func SidesBetween(a, b int) []int {
	if a == b {
		return nil
	}
	steps := ((b - a) % 8 + 8) % 8
	start := a
	if steps >= 4 {
		start = b
		steps = 8 - steps
	}
	sides := make([]int, 0, steps)
	for i := 0; i < steps; i++ {
		sides = append(sides, sideAfterNode[(start+i)%8])
	}
	return sides
}
