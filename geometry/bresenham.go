package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Snapper maps world coordinates onto integer cell indices. Origin is any cell
// centroid of the grid, so index (0,0) lands on that centroid.
type Snapper struct {
	Origin orb.Point
	Size   float64
}

func InitSnapper(anyCentroid orb.Point, size float64) (Snapper, error) {
	if size <= 0 {
		return Snapper{}, GeometryError{Kind: InvalidGeometry, Detail: "cell size must be positive"}
	}
	return Snapper{Origin: anyCentroid, Size: size}, nil
}

func (s Snapper) Index(p orb.Point) (int, int) {
	i := int(math.Round((p[0] - s.Origin[0]) / s.Size))
	j := int(math.Round((p[1] - s.Origin[1]) / s.Size))
	return i, j
}

func (s Snapper) Center(i, j int) orb.Point {
	return orb.Point{s.Origin[0] + float64(i)*s.Size, s.Origin[1] + float64(j)*s.Size}
}

// Snap moves p onto the centroid of the cell it falls in.
func (s Snapper) Snap(p orb.Point) orb.Point {
	return s.Center(s.Index(p))
}

// Bresenham rasterizes the segment p1-p2 into the centroids of the cells it
// passes through. Coincident endpoints give a single cell.
func (s Snapper) Bresenham(p1, p2 orb.Point) []orb.Point {
	x0, y0 := s.Index(p1)
	x1, y1 := s.Index(p2)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	cells := make([]orb.Point, 0, max(dx, -dy)+1)
	for {
		cells = append(cells, s.Center(x0, y0))
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
	return cells
}

// Rasterize runs Bresenham over consecutive vertices and drops the repeated
// cell where two segments meet.
func (s Snapper) Rasterize(ls orb.LineString) []orb.Point {
	if len(ls) == 0 {
		return nil
	}
	if len(ls) == 1 {
		return []orb.Point{s.Snap(ls[0])}
	}
	cells := make([]orb.Point, 0, len(ls))
	for i := 0; i < len(ls)-1; i++ {
		for _, c := range s.Bresenham(ls[i], ls[i+1]) {
			if len(cells) > 0 && cells[len(cells)-1].Equal(c) {
				continue
			}
			cells = append(cells, c)
		}
	}
	return cells
}

// Step returns the direction code of moving from cell a to cell b.
func (s Snapper) Step(a, b orb.Point) int {
	ai, aj := s.Index(a)
	bi, bj := s.Index(b)
	return DirectionOf(bi-ai, bj-aj)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
