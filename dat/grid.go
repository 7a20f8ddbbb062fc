package dat

import (
	"math"
)

// FplainCell is one FPLAIN.DAT row: the cell, its four cardinal neighbours,
// roughness and elevation.
type FplainCell struct {
	Fid        int
	N, E, S, W int
	NValue     float64
	Elevation  float64
}

type Fplain struct {
	Cells []FplainCell
}

type CadPoint struct {
	Fid  int
	X, Y float64
}

type Cadpts struct {
	Points []CadPoint
}

type TopoPoint struct {
	X, Y, Elevation float64
}

type Topo struct {
	Points []TopoPoint
}

type ManningsCell struct {
	Fid int
	N   float64
}

type Mannings struct {
	Cells []ManningsCell
}

func ReadFplain(path string) (Fplain, error) {
	c, err := newCursor(path)
	if err != nil {
		return Fplain{}, err
	}
	fp := Fplain{}
	err = c.eachRow(func(r *row) {
		r.count(7, 7)
		fp.Cells = append(fp.Cells, FplainCell{
			Fid: r.asInt(0), N: r.asInt(1), E: r.asInt(2), S: r.asInt(3), W: r.asInt(4),
			NValue: r.asFloat(5), Elevation: r.asFloat(6),
		})
	})
	return fp, err
}

func (fp Fplain) ToBytes() []byte {
	t := text{}
	for _, c := range fp.Cells {
		t.line(cell(c.Fid), cell(c.N), cell(c.E), cell(c.S), cell(c.W), f3(c.NValue), f2(c.Elevation))
	}
	return t.bytes()
}

func ReadCadpts(path string) (Cadpts, error) {
	c, err := newCursor(path)
	if err != nil {
		return Cadpts{}, err
	}
	cp := Cadpts{}
	err = c.eachRow(func(r *row) {
		r.count(3, 3)
		cp.Points = append(cp.Points, CadPoint{Fid: r.asInt(0), X: r.asFloat(1), Y: r.asFloat(2)})
	})
	return cp, err
}

func (cp Cadpts) ToBytes() []byte {
	t := text{}
	for _, p := range cp.Points {
		t.line(cell(p.Fid), f3(p.X), f3(p.Y))
	}
	return t.bytes()
}

func ReadTopo(path string) (Topo, error) {
	c, err := newCursor(path)
	if err != nil {
		return Topo{}, err
	}
	tp := Topo{}
	err = c.eachRow(func(r *row) {
		r.count(3, 3)
		tp.Points = append(tp.Points, TopoPoint{X: r.asFloat(0), Y: r.asFloat(1), Elevation: r.asFloat(2)})
	})
	return tp, err
}

func (tp Topo) ToBytes() []byte {
	t := text{}
	for _, p := range tp.Points {
		t.line(f3(p.X), f3(p.Y), f2(p.Elevation))
	}
	return t.bytes()
}

func ReadMannings(path string) (Mannings, error) {
	c, err := newCursor(path)
	if err != nil {
		return Mannings{}, err
	}
	m := Mannings{}
	err = c.eachRow(func(r *row) {
		r.count(2, 2)
		m.Cells = append(m.Cells, ManningsCell{Fid: r.asInt(0), N: r.asFloat(1)})
	})
	return m, err
}

func (m Mannings) ToBytes() []byte {
	t := text{}
	for _, c := range m.Cells {
		t.line(cell(c.Fid), f3(c.N))
	}
	return t.bytes()
}

// CellSize derives the grid spacing from the first FPLAIN.DAT row: the first
// non zero neighbour points at a CADPTS.DAT row, and the distance to it along
// the neighbour's axis is the cell size. When the slot's axis shows no offset
// but the other axis does, the side is taken from the coordinates instead.
func CellSize(fplainPath, cadptsPath string) (float64, string, error) {
	fc, err := newCursor(fplainPath)
	if err != nil {
		return 0, "", err
	}
	first, err := fc.require("first cell")
	if err != nil {
		return 0, "", err
	}
	if first.count(5, -1); first.err != nil {
		return 0, "", first.err
	}
	slot, neighbour := -1, 0
	for i := 1; i <= 4; i++ {
		if n := first.asInt(i); n != 0 {
			slot, neighbour = i-1, n
			break
		}
	}
	if first.err != nil {
		return 0, "", first.err
	}
	if slot < 0 {
		return 0, "", ParseError{File: fc.file, Line: first.n, Reason: "first cell has no neighbours"}
	}
	cp, err := ReadCadpts(cadptsPath)
	if err != nil {
		return 0, "", err
	}
	if len(cp.Points) == 0 || neighbour > len(cp.Points) || neighbour < 1 {
		return 0, "", ParseError{File: "CADPTS.DAT", Reason: "neighbour row is missing"}
	}
	p0, p1 := cp.Points[0], cp.Points[neighbour-1]
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	vertical := slot == 0 || slot == 2
	if vertical && dy == 0 && dx != 0 {
		vertical = false
	} else if !vertical && dx == 0 && dy != 0 {
		vertical = true
	}
	var side string
	size := math.Abs(dx)
	if vertical {
		size = math.Abs(dy)
		if dy < 0 {
			side = "south"
		} else {
			side = "north"
		}
	} else if dx < 0 {
		side = "west"
	} else {
		side = "east"
	}
	if size == 0 {
		return 0, "", ParseError{File: fc.file, Line: first.n, Reason: "zero distance to neighbour"}
	}
	return size, side, nil
}

// TopoCellSize estimates the spacing of a TOPO.DAT point grid as the smallest
// axis aligned offset from the first point.
func TopoCellSize(tp Topo) (float64, error) {
	if len(tp.Points) < 2 {
		return 0, ParseError{File: string(TopoFamily), Reason: "need at least two points"}
	}
	const eps = 1e-6
	p0 := tp.Points[0]
	size := math.Inf(1)
	for _, p := range tp.Points[1:] {
		dx, dy := math.Abs(p.X-p0.X), math.Abs(p.Y-p0.Y)
		if dx < eps && dy > eps {
			size = math.Min(size, dy)
		}
		if dy < eps && dx > eps {
			size = math.Min(size, dx)
		}
	}
	if math.IsInf(size, 1) {
		return 0, ParseError{File: string(TopoFamily), Reason: "no axis aligned neighbours"}
	}
	return size, nil
}
