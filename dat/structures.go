package dat

var StructurePrefix string = "S"
var RatingCurvePrefix string = "C"
var RatingTablePrefix string = "T"
var CulvertPrefix string = "F"

type RatingCurve struct {
	HDepExc float64
	CoefQ   float64
	ExpQ    float64
	CoefA   float64
	ExpA    float64
	RepDep  float64
	RqCoef  float64
	RqExp   float64
	RqCoefA float64
	RqExpA  float64
}

type RatingRow struct {
	HDepth float64
	QTable float64
	ATable float64
}

type Culvert struct {
	TypeC    int
	TypeEn   int
	CulvertN float64
	Ke       float64
	CuBase   float64
}

// Structure is one hydraulic structure with its rating records.
type Structure struct {
	Name       string
	IfPorChan  int
	ICurvTable int
	InfloNode  int
	OutfloNode int
	InOutCont  int
	HeadRefEl  float64
	CLength    float64
	CDiameter  float64
	Curves     []RatingCurve
	Table      []RatingRow
	Culverts   []Culvert
}

type Hystruc struct {
	Structures []Structure
}

func ReadHystruc(path string) (Hystruc, error) {
	c, err := newCursor(path)
	if err != nil {
		return Hystruc{}, err
	}
	hs := Hystruc{}
	var current *Structure
	err = c.eachRow(func(r *row) {
		p := r.prefix()
		if p != StructurePrefix && current == nil {
			r.fail("%v row before any structure", p)
			return
		}
		switch p {
		case StructurePrefix:
			r.count(10, 10)
			hs.Structures = append(hs.Structures, Structure{
				Name: r.asStr(1), IfPorChan: r.asInt(2), ICurvTable: r.asInt(3),
				InfloNode: r.asInt(4), OutfloNode: r.asInt(5), InOutCont: r.asInt(6),
				HeadRefEl: r.asFloat(7), CLength: r.asFloat(8), CDiameter: r.asFloat(9),
			})
			current = &hs.Structures[len(hs.Structures)-1]
		case RatingCurvePrefix:
			r.count(11, 11)
			v := r.floats(1)
			if len(v) == 10 {
				current.Curves = append(current.Curves, RatingCurve{
					HDepExc: v[0], CoefQ: v[1], ExpQ: v[2], CoefA: v[3], ExpA: v[4],
					RepDep: v[5], RqCoef: v[6], RqExp: v[7], RqCoefA: v[8], RqExpA: v[9],
				})
			}
		case RatingTablePrefix:
			r.count(4, 4)
			current.Table = append(current.Table, RatingRow{HDepth: r.asFloat(1), QTable: r.asFloat(2), ATable: r.asFloat(3)})
		case CulvertPrefix:
			r.count(6, 6)
			current.Culverts = append(current.Culverts, Culvert{
				TypeC: r.asInt(1), TypeEn: r.asInt(2), CulvertN: r.asFloat(3), Ke: r.asFloat(4), CuBase: r.asFloat(5),
			})
		default:
			r.fail("unknown prefix %q", p)
		}
	})
	return hs, err
}

func (hs Hystruc) ToBytes() []byte {
	t := text{}
	for _, s := range hs.Structures {
		t.line(StructurePrefix, s.Name, itoa(s.IfPorChan), itoa(s.ICurvTable), cell(s.InfloNode), cell(s.OutfloNode),
			itoa(s.InOutCont), num(s.HeadRefEl), num(s.CLength), num(s.CDiameter))
		for _, rc := range s.Curves {
			t.line(RatingCurvePrefix, num(rc.HDepExc), num(rc.CoefQ), num(rc.ExpQ), num(rc.CoefA), num(rc.ExpA),
				num(rc.RepDep), num(rc.RqCoef), num(rc.RqExp), num(rc.RqCoefA), num(rc.RqExpA))
		}
		for _, rr := range s.Table {
			t.line(RatingTablePrefix, num(rr.HDepth), num(rr.QTable), num(rr.ATable))
		}
		for _, cv := range s.Culverts {
			t.line(CulvertPrefix, itoa(cv.TypeC), itoa(cv.TypeEn), num(cv.CulvertN), num(cv.Ke), num(cv.CuBase))
		}
	}
	return t.bytes()
}

var StreetNamePrefix string = "N"
var StreetCellPrefix string = "S"
var StreetWidthPrefix string = "W"

type StreetElem struct {
	IStrDir int
	WidR    float64
}

type StreetSeg struct {
	Cell  int
	DepEx float64
	StMan float64
	ElStr float64
	Elems []StreetElem
}

type Street struct {
	Name     string
	Segments []StreetSeg
}

// Streets is STREET.DAT.
type Streets struct {
	StrMan  float64
	IStrFlo int
	StrFno  float64
	DepX    float64
	WidSt   float64
	Streets []Street
}

func ReadStreets(path string) (Streets, error) {
	c, err := newCursor(path)
	if err != nil {
		return Streets{}, err
	}
	st := Streets{}
	head, err := c.require("STRMAN ISTRFLO STRFNO DEPX WIDST")
	if err != nil {
		return st, err
	}
	head.count(5, 5)
	st.StrMan, st.IStrFlo, st.StrFno, st.DepX, st.WidSt = head.asFloat(0), head.asInt(1), head.asFloat(2), head.asFloat(3), head.asFloat(4)
	if head.err != nil {
		return st, head.err
	}
	var street *Street
	var seg *StreetSeg
	err = c.eachRow(func(r *row) {
		switch r.prefix() {
		case StreetNamePrefix:
			r.count(2, -1)
			st.Streets = append(st.Streets, Street{Name: r.asStr(1)})
			street = &st.Streets[len(st.Streets)-1]
			seg = nil
		case StreetCellPrefix:
			if street == nil {
				r.fail("street cell before any street name")
				return
			}
			r.count(5, 5)
			street.Segments = append(street.Segments, StreetSeg{Cell: r.asInt(1), DepEx: r.asFloat(2), StMan: r.asFloat(3), ElStr: r.asFloat(4)})
			seg = &street.Segments[len(street.Segments)-1]
		case StreetWidthPrefix:
			if seg == nil {
				r.fail("street width before any street cell")
				return
			}
			r.count(3, 3)
			seg.Elems = append(seg.Elems, StreetElem{IStrDir: r.asInt(1), WidR: r.asFloat(2)})
		default:
			r.fail("unknown prefix %q", r.prefix())
		}
	})
	return st, err
}

func (st Streets) ToBytes() []byte {
	t := text{}
	t.line(num(st.StrMan), itoa(st.IStrFlo), num(st.StrFno), num(st.DepX), num(st.WidSt))
	for _, s := range st.Streets {
		t.line(StreetNamePrefix, s.Name)
		for _, sg := range s.Segments {
			t.line(StreetCellPrefix, cell(sg.Cell), num(sg.DepEx), f3(sg.StMan), f2(sg.ElStr))
			for _, e := range sg.Elems {
				t.line(StreetWidthPrefix, itoa(e.IStrDir), num(e.WidR))
			}
		}
	}
	return t.bytes()
}

var ArfBlockModPrefix string = "S"
var TotalBlockPrefix string = "T"

// BlockedCell carries the area reduction factor and the eight width
// reduction factors in direction order N E S W NE SE SW NW.
type BlockedCell struct {
	Cell int
	Arf  float64
	Wrf  [8]float64
}

// Arf is ARF.DAT. Fully blocked cells are listed apart from partial ones.
type Arf struct {
	ArfBlockMod Optional
	Total       []int
	Partial     []BlockedCell
}

func ReadArf(path string) (Arf, error) {
	c, err := newCursor(path)
	if err != nil {
		return Arf{}, err
	}
	a := Arf{}
	err = c.eachRow(func(r *row) {
		switch r.prefix() {
		case ArfBlockModPrefix:
			r.count(2, 2)
			a.ArfBlockMod = Some(r.asFloat(1))
		case TotalBlockPrefix:
			r.count(2, 2)
			a.Total = append(a.Total, r.asInt(1))
		default:
			if !r.count(10, 10) {
				return
			}
			b := BlockedCell{Cell: r.asInt(0), Arf: r.asFloat(1)}
			copy(b.Wrf[:], r.floats(2))
			a.Partial = append(a.Partial, b)
		}
	})
	return a, err
}

func (a Arf) ToBytes() []byte {
	t := text{}
	if a.ArfBlockMod.Valid {
		t.line(ArfBlockModPrefix, num(a.ArfBlockMod.Value))
	}
	for _, id := range a.Total {
		t.line(TotalBlockPrefix, cell(id))
	}
	for _, b := range a.Partial {
		f := []string{cell(b.Cell), f2(b.Arf)}
		for _, w := range b.Wrf {
			f = append(f, f2(w))
		}
		t.line(f...)
	}
	return t.bytes()
}

type MultCell struct {
	Cell    int
	Wdr     float64
	Dm      float64
	NodChns int
	XnMult  float64
}

// Mult is MULT.DAT: global multiple channel parameters and per cell
// overrides.
type Mult struct {
	Wmc        float64
	WdrAll     float64
	DmAll      float64
	NodChnsAll int
	XnMultAll  float64
	SSlopeMin  float64
	SSlopeMax  float64
	AvuPort    float64
	Cells      []MultCell
}

func ReadMult(path string) (Mult, error) {
	c, err := newCursor(path)
	if err != nil {
		return Mult{}, err
	}
	m := Mult{}
	head, err := c.require("WMC WDRALL DMALL NODCHANSALL XNMULTALL SSLOPEMIN SSLOPEMAX AVUPORT")
	if err != nil {
		return m, err
	}
	head.count(8, 8)
	m.Wmc, m.WdrAll, m.DmAll, m.NodChnsAll = head.asFloat(0), head.asFloat(1), head.asFloat(2), head.asInt(3)
	m.XnMultAll, m.SSlopeMin, m.SSlopeMax, m.AvuPort = head.asFloat(4), head.asFloat(5), head.asFloat(6), head.asFloat(7)
	if head.err != nil {
		return m, head.err
	}
	err = c.eachRow(func(r *row) {
		r.count(5, 5)
		m.Cells = append(m.Cells, MultCell{Cell: r.asInt(0), Wdr: r.asFloat(1), Dm: r.asFloat(2), NodChns: r.asInt(3), XnMult: r.asFloat(4)})
	})
	return m, err
}

func (m Mult) ToBytes() []byte {
	t := text{}
	t.line(num(m.Wmc), num(m.WdrAll), num(m.DmAll), itoa(m.NodChnsAll), num(m.XnMultAll), num(m.SSlopeMin), num(m.SSlopeMax), num(m.AvuPort))
	for _, mc := range m.Cells {
		t.line(cell(mc.Cell), num(mc.Wdr), num(mc.Dm), itoa(mc.NodChns), num(mc.XnMult))
	}
	return t.bytes()
}
