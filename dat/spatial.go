package dat

var NxprtPrefix string = "P"
var FpxsecPrefix string = "X"
var GutterCellPrefix string = "G"
var FroudePrefix string = "F"
var SwmmInletPrefix string = "D"

type FloodplainSection struct {
	IFlo  int
	Cells []int
}

// Fpxsec is FPXSEC.DAT.
type Fpxsec struct {
	Nxprt    int
	Sections []FloodplainSection
}

func ReadFpxsec(path string) (Fpxsec, error) {
	c, err := newCursor(path)
	if err != nil {
		return Fpxsec{}, err
	}
	fx := Fpxsec{}
	head, err := c.require("P NXPRT")
	if err != nil {
		return fx, err
	}
	if head.prefix() != NxprtPrefix {
		return fx, c.errorf(head.line, "expected P NXPRT header")
	}
	head.count(2, 2)
	fx.Nxprt = head.asInt(1)
	if head.err != nil {
		return fx, head.err
	}
	err = c.eachRow(func(r *row) {
		if r.prefix() != FpxsecPrefix {
			r.fail("unknown prefix %q", r.prefix())
			return
		}
		if !r.count(4, -1) {
			return
		}
		n := r.asInt(2)
		if n != len(r.fields)-3 {
			r.fail("declared %d cells, found %d", n, len(r.fields)-3)
			return
		}
		s := FloodplainSection{IFlo: r.asInt(1)}
		for i := 3; i < len(r.fields); i++ {
			s.Cells = append(s.Cells, r.asInt(i))
		}
		fx.Sections = append(fx.Sections, s)
	})
	return fx, err
}

func (fx Fpxsec) ToBytes() []byte {
	t := text{}
	t.line(NxprtPrefix, itoa(fx.Nxprt))
	for _, s := range fx.Sections {
		f := []string{FpxsecPrefix, itoa(s.IFlo), itoa(len(s.Cells))}
		for _, id := range s.Cells {
			f = append(f, itoa(id))
		}
		t.line(f...)
	}
	return t.bytes()
}

type GutterCell struct {
	Cell      int
	Width     float64
	Height    float64
	NValue    float64
	Direction int
}

// Gutter is GUTTER.DAT.
type Gutter struct {
	StrWidth   float64
	CurbHeight float64
	StreetN    float64
	Cells      []GutterCell
}

func ReadGutter(path string) (Gutter, error) {
	c, err := newCursor(path)
	if err != nil {
		return Gutter{}, err
	}
	g := Gutter{}
	head, err := c.require("STRWIDTH CURBHEIGHT STREET_N")
	if err != nil {
		return g, err
	}
	head.count(3, 3)
	g.StrWidth, g.CurbHeight, g.StreetN = head.asFloat(0), head.asFloat(1), head.asFloat(2)
	if head.err != nil {
		return g, head.err
	}
	err = c.eachRow(func(r *row) {
		if r.prefix() != GutterCellPrefix {
			r.fail("unknown prefix %q", r.prefix())
			return
		}
		r.count(6, 6)
		g.Cells = append(g.Cells, GutterCell{
			Cell: r.asInt(1), Width: r.asFloat(2), Height: r.asFloat(3), NValue: r.asFloat(4), Direction: r.asInt(5),
		})
	})
	return g, err
}

func (g Gutter) ToBytes() []byte {
	t := text{}
	t.line(num(g.StrWidth), num(g.CurbHeight), num(g.StreetN))
	for _, gc := range g.Cells {
		t.line(GutterCellPrefix, cell(gc.Cell), num(gc.Width), num(gc.Height), f3(gc.NValue), itoa(gc.Direction))
	}
	return t.bytes()
}

// CellAttribute is a file of one value per cell, optionally behind a
// fixed prefix. FPFROUDE.DAT, SHALLOWN_SPATIAL.DAT and TOLSPATIAL.DAT
// share this layout.
type CellAttribute struct {
	Prefix string
	Values []CellValue
}

func ReadCellAttribute(path, prefix string) (CellAttribute, error) {
	c, err := newCursor(path)
	if err != nil {
		return CellAttribute{}, err
	}
	ca := CellAttribute{Prefix: prefix}
	off := 0
	if prefix != "" {
		off = 1
	}
	err = c.eachRow(func(r *row) {
		if prefix != "" && r.prefix() != prefix {
			r.fail("unknown prefix %q", r.prefix())
			return
		}
		r.count(2+off, 2+off)
		ca.Values = append(ca.Values, CellValue{Cell: r.asInt(off), Value: r.asFloat(off + 1)})
	})
	return ca, err
}

func ReadFpfroude(path string) (CellAttribute, error) {
	return ReadCellAttribute(path, FroudePrefix)
}

func ReadShallown(path string) (CellAttribute, error) {
	return ReadCellAttribute(path, "")
}

func ReadTolspatial(path string) (CellAttribute, error) {
	return ReadCellAttribute(path, "")
}

func (ca CellAttribute) ToBytes() []byte {
	t := text{}
	for _, v := range ca.Values {
		if ca.Prefix != "" {
			t.line(ca.Prefix, cell(v.Cell), num(v.Value))
		} else {
			t.line(cell(v.Cell), num(v.Value))
		}
	}
	return t.bytes()
}

type SwmmInlet struct {
	Cell       int
	Name       string
	InType     int
	Length     float64
	Width      float64
	Height     float64
	Coeff      float64
	Feature    int
	CurbHeight float64
}

// Swmmflo is SWMMFLO.DAT: storm drain inlets.
type Swmmflo struct {
	Inlets []SwmmInlet
}

func ReadSwmmflo(path string) (Swmmflo, error) {
	c, err := newCursor(path)
	if err != nil {
		return Swmmflo{}, err
	}
	sf := Swmmflo{}
	err = c.eachRow(func(r *row) {
		if r.prefix() != SwmmInletPrefix {
			r.fail("unknown prefix %q", r.prefix())
			return
		}
		r.count(10, 10)
		sf.Inlets = append(sf.Inlets, SwmmInlet{
			Cell: r.asInt(1), Name: r.asStr(2), InType: r.asInt(3), Length: r.asFloat(4), Width: r.asFloat(5),
			Height: r.asFloat(6), Coeff: r.asFloat(7), Feature: r.asInt(8), CurbHeight: r.asFloat(9),
		})
	})
	return sf, err
}

func (sf Swmmflo) ToBytes() []byte {
	t := text{}
	for _, in := range sf.Inlets {
		t.line(SwmmInletPrefix, cell(in.Cell), in.Name, itoa(in.InType), num(in.Length), num(in.Width),
			num(in.Height), num(in.Coeff), itoa(in.Feature), num(in.CurbHeight))
	}
	return t.bytes()
}

type SwmmOutfall struct {
	Name    string
	Cell    int
	OutfFlo int
}

// Swmmoutf is SWMMOUTF.DAT: storm drain outfalls.
type Swmmoutf struct {
	Outfalls []SwmmOutfall
}

func ReadSwmmoutf(path string) (Swmmoutf, error) {
	c, err := newCursor(path)
	if err != nil {
		return Swmmoutf{}, err
	}
	so := Swmmoutf{}
	err = c.eachRow(func(r *row) {
		r.count(3, 3)
		so.Outfalls = append(so.Outfalls, SwmmOutfall{Name: r.asStr(0), Cell: r.asInt(1), OutfFlo: r.asInt(2)})
	})
	return so, err
}

func (so Swmmoutf) ToBytes() []byte {
	t := text{}
	for _, o := range so.Outfalls {
		t.line(o.Name, cell(o.Cell), itoa(o.OutfFlo))
	}
	return t.bytes()
}

type WaterSurface struct {
	Cell int
	Elev float64
	Time Optional
}

// Wsurf is WSURF.DAT or WSTIME.DAT. Timed marks the WSTIME layout where
// each row carries a time after the elevation.
type Wsurf struct {
	Timed  bool
	Points []WaterSurface
}

func readWsurf(path string, timed bool) (Wsurf, error) {
	c, err := newCursor(path)
	if err != nil {
		return Wsurf{}, err
	}
	ws := Wsurf{Timed: timed}
	head, err := c.require("count")
	if err != nil {
		return ws, err
	}
	head.count(1, 1)
	n := head.asInt(0)
	if head.err != nil {
		return ws, head.err
	}
	width := 2
	if timed {
		width = 3
	}
	err = c.eachRow(func(r *row) {
		r.count(width, width)
		p := WaterSurface{Cell: r.asInt(0), Elev: r.asFloat(1)}
		if timed {
			p.Time = Some(r.asFloat(2))
		}
		ws.Points = append(ws.Points, p)
	})
	if err != nil {
		return ws, err
	}
	if n != len(ws.Points) {
		return ws, c.errorf(head.line, "declared %d rows, found %d", n, len(ws.Points))
	}
	return ws, nil
}

func ReadWsurf(path string) (Wsurf, error) {
	return readWsurf(path, false)
}

func ReadWstime(path string) (Wsurf, error) {
	return readWsurf(path, true)
}

func (ws Wsurf) ToBytes() []byte {
	t := text{}
	t.line(itoa(len(ws.Points)))
	for _, p := range ws.Points {
		if ws.Timed {
			t.line(cell(p.Cell), f2(p.Elev), num(p.Time.Value))
		} else {
			t.line(cell(p.Cell), f2(p.Elev))
		}
	}
	return t.bytes()
}
