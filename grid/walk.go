package grid

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Frame is the snapped extent a grid is walked over. Cell (1,1) is the top
// left cell; columns grow east and rows grow south.
type Frame struct {
	MinX float64
	MaxY float64
	Cols int
	Rows int
	Size float64
}

// InitFrame snaps the bound of the domain outward to multiples of size
// measured from anchor. A nil anchor snaps to the coordinate origin.
func InitFrame(b orb.Bound, size float64, anchor *orb.Point) Frame {
	ax, ay := 0.0, 0.0
	if anchor != nil {
		ax, ay = anchor[0], anchor[1]
	}
	minX := ax + math.Floor((b.Min[0]-ax)/size)*size
	maxX := ax + math.Ceil((b.Max[0]-ax)/size)*size
	minY := ay + math.Floor((b.Min[1]-ay)/size)*size
	maxY := ay + math.Ceil((b.Max[1]-ay)/size)*size
	return Frame{
		MinX: minX,
		MaxY: maxY,
		Cols: int(math.Round((maxX - minX) / size)),
		Rows: int(math.Round((maxY - minY) / size)),
		Size: size,
	}
}

// Center is the centroid of cell (col,row).
func (f Frame) Center(col, row int) orb.Point {
	return orb.Point{
		f.MinX + (float64(col)-0.5)*f.Size,
		f.MaxY - (float64(row)-0.5)*f.Size,
	}
}

// ColRow locates the cell holding p.
func (f Frame) ColRow(p orb.Point) (int, int) {
	col := int(math.Floor((p[0]-f.MinX)/f.Size)) + 1
	row := int(math.Floor((f.MaxY-p[1])/f.Size)) + 1
	return col, row
}

// Site is one cell produced by a walk.
type Site struct {
	Col    int
	Row    int
	Center orb.Point
}

// Walk visits the frame column by column from the top left and keeps every
// cell whose centroid falls inside the domain.
func (f Frame) Walk(domain orb.Polygon) []Site {
	sites := make([]Site, 0)
	x := 0
	for x < f.Cols { //iterate across all columns
		x++
		y := 0
		for y < f.Rows { // down the column
			y++
			c := f.Center(x, y)
			if planar.PolygonContains(domain, c) {
				sites = append(sites, Site{Col: x, Row: y, Center: c})
			}
		}
	}
	return sites
}

// FrameOf rebuilds the frame of an existing set of centroids.
func FrameOf(centers []orb.Point, size float64) Frame {
	b := orb.MultiPoint(centers).Bound()
	half := size / 2
	return Frame{
		MinX: b.Min[0] - half,
		MaxY: b.Max[1] + half,
		Cols: int(math.Round((b.Max[0]-b.Min[0])/size)) + 1,
		Rows: int(math.Round((b.Max[1]-b.Min[1])/size)) + 1,
		Size: size,
	}
}
