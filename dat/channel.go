package dat

import (
	"strconv"
)

var RectangularPrefix string = "R"
var VariablePrefix string = "V"
var TrapezoidalPrefix string = "T"
var NaturalPrefix string = "N"
var ConfluencePrefix string = "C"
var NoExchangePrefix string = "E"
var XsecPrefix string = "X"

// Shape is the cross section variant of a channel element.
type Shape interface {
	Kind() string
}

type Rectangular struct {
	BankEll float64
	BankElr float64
	Fcw     float64
	Fcd     float64
}

// Variable is a variable area section described by two sets of
// depth power law coefficients.
type Variable struct {
	BankEll float64
	BankElr float64
	Fcd     float64
	Lower   [6]float64
	ExcDep  float64
	Upper   [6]float64
}

type Trapezoidal struct {
	BankEll float64
	BankElr float64
	Fcw     float64
	Fcd     float64
	Zl      float64
	Zr      float64
}

// Natural refers to a surveyed station/elevation table in XSEC.DAT.
type Natural struct {
	NxsecNum int
}

func (Rectangular) Kind() string { return RectangularPrefix }
func (Variable) Kind() string    { return VariablePrefix }
func (Trapezoidal) Kind() string { return TrapezoidalPrefix }
func (Natural) Kind() string     { return NaturalPrefix }

type ChanElement struct {
	Cell  int
	Fcn   float64
	Xlen  float64
	Shape Shape
}

type Segment struct {
	DepInitial float64
	FroudC     float64
	RoughAdj   float64
	Isedn      int
	Elements   []ChanElement
}

type Confluence struct {
	Type int
	Cell int
}

// Chan is CHAN.DAT: channel segments followed by confluence and
// no-exchange records.
type Chan struct {
	Segments    []Segment
	Confluences []Confluence
	NoExchange  []int
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func ReadChan(path string) (Chan, error) {
	c, err := newCursor(path)
	if err != nil {
		return Chan{}, err
	}
	ch := Chan{}
	var seg *Segment
	element := func(r *row) *ChanElement {
		if seg == nil {
			r.fail("element before any segment header")
			return nil
		}
		seg.Elements = append(seg.Elements, ChanElement{Cell: r.asInt(1)})
		return &seg.Elements[len(seg.Elements)-1]
	}
	err = c.eachRow(func(r *row) {
		p := r.prefix()
		switch {
		case isNumber(p):
			r.count(4, 4)
			ch.Segments = append(ch.Segments, Segment{
				DepInitial: r.asFloat(0), FroudC: r.asFloat(1), RoughAdj: r.asFloat(2), Isedn: r.asInt(3),
			})
			seg = &ch.Segments[len(ch.Segments)-1]
		case p == RectangularPrefix:
			if !r.count(8, 8) {
				return
			}
			if e := element(r); e != nil {
				e.Fcn, e.Xlen = r.asFloat(4), r.asFloat(7)
				e.Shape = Rectangular{BankEll: r.asFloat(2), BankElr: r.asFloat(3), Fcw: r.asFloat(5), Fcd: r.asFloat(6)}
			}
		case p == VariablePrefix:
			if !r.count(20, 20) {
				return
			}
			if e := element(r); e != nil {
				e.Fcn, e.Xlen = r.asFloat(4), r.asFloat(6)
				v := Variable{BankEll: r.asFloat(2), BankElr: r.asFloat(3), Fcd: r.asFloat(5), ExcDep: r.asFloat(13)}
				copy(v.Lower[:], r.floats(7)[:6])
				copy(v.Upper[:], r.floats(14))
				e.Shape = v
			}
		case p == TrapezoidalPrefix:
			if !r.count(10, 10) {
				return
			}
			if e := element(r); e != nil {
				e.Fcn, e.Xlen = r.asFloat(4), r.asFloat(7)
				e.Shape = Trapezoidal{
					BankEll: r.asFloat(2), BankElr: r.asFloat(3), Fcw: r.asFloat(5), Fcd: r.asFloat(6),
					Zl: r.asFloat(8), Zr: r.asFloat(9),
				}
			}
		case p == NaturalPrefix:
			if !r.count(5, 5) {
				return
			}
			if e := element(r); e != nil {
				e.Fcn, e.Xlen = r.asFloat(2), r.asFloat(3)
				e.Shape = Natural{NxsecNum: r.asInt(4)}
			}
		case p == ConfluencePrefix:
			r.count(3, 3)
			ch.Confluences = append(ch.Confluences, Confluence{Type: r.asInt(1), Cell: r.asInt(2)})
		case p == NoExchangePrefix:
			r.count(2, 2)
			ch.NoExchange = append(ch.NoExchange, r.asInt(1))
		default:
			r.fail("unknown prefix %q", p)
		}
	})
	if err != nil {
		return ch, err
	}
	for i, s := range ch.Segments {
		if len(s.Elements) == 0 {
			return ch, ParseError{File: c.file, Reason: "segment " + itoa(i+1) + " has no elements"}
		}
	}
	return ch, nil
}

func (ch Chan) ToBytes() []byte {
	t := text{}
	for _, s := range ch.Segments {
		t.line(num(s.DepInitial), num(s.FroudC), num(s.RoughAdj), itoa(s.Isedn))
		for _, e := range s.Elements {
			switch sh := e.Shape.(type) {
			case Rectangular:
				t.line(RectangularPrefix, cell(e.Cell), f2(sh.BankEll), f2(sh.BankElr), f3(e.Fcn), num(sh.Fcw), num(sh.Fcd), num(e.Xlen))
			case Variable:
				f := []string{VariablePrefix, cell(e.Cell), f2(sh.BankEll), f2(sh.BankElr), f3(e.Fcn), num(sh.Fcd), num(e.Xlen)}
				f = append(f, nums(sh.Lower[:])...)
				f = append(f, num(sh.ExcDep))
				f = append(f, nums(sh.Upper[:])...)
				t.line(f...)
			case Trapezoidal:
				t.line(TrapezoidalPrefix, cell(e.Cell), f2(sh.BankEll), f2(sh.BankElr), f3(e.Fcn), num(sh.Fcw), num(sh.Fcd), num(e.Xlen), num(sh.Zl), num(sh.Zr))
			case Natural:
				t.line(NaturalPrefix, cell(e.Cell), f3(e.Fcn), num(e.Xlen), itoa(sh.NxsecNum))
			}
		}
	}
	for _, cf := range ch.Confluences {
		t.line(ConfluencePrefix, itoa(cf.Type), cell(cf.Cell))
	}
	for _, id := range ch.NoExchange {
		t.line(NoExchangePrefix, cell(id))
	}
	return t.bytes()
}

type BankPair struct {
	Left  int
	Right int
}

// Chanbank is CHANBANK.DAT, one row per channel element whose right bank
// lies in a different cell.
type Chanbank struct {
	Pairs []BankPair
}

func ReadChanbank(path string) (Chanbank, error) {
	c, err := newCursor(path)
	if err != nil {
		return Chanbank{}, err
	}
	cb := Chanbank{}
	err = c.eachRow(func(r *row) {
		r.count(2, 2)
		cb.Pairs = append(cb.Pairs, BankPair{Left: r.asInt(0), Right: r.asInt(1)})
	})
	return cb, err
}

func (cb Chanbank) ToBytes() []byte {
	t := text{}
	for _, p := range cb.Pairs {
		t.line(cell(p.Left), cell(p.Right))
	}
	return t.bytes()
}

type Station struct {
	X float64
	Y float64
}

type CrossSection struct {
	NxsecNum int
	Name     string
	Stations []Station
}

type Xsec struct {
	Sections []CrossSection
}

func ReadXsec(path string) (Xsec, error) {
	c, err := newCursor(path)
	if err != nil {
		return Xsec{}, err
	}
	xs := Xsec{}
	err = c.eachRow(func(r *row) {
		if r.prefix() == XsecPrefix {
			r.count(3, 3)
			xs.Sections = append(xs.Sections, CrossSection{NxsecNum: r.asInt(1), Name: r.asStr(2)})
			return
		}
		if len(xs.Sections) == 0 {
			r.fail("station before any cross section header")
			return
		}
		r.count(2, 2)
		s := &xs.Sections[len(xs.Sections)-1]
		s.Stations = append(s.Stations, Station{X: r.asFloat(0), Y: r.asFloat(1)})
	})
	return xs, err
}

func (xs Xsec) ToBytes() []byte {
	t := text{}
	for _, s := range xs.Sections {
		t.line(XsecPrefix, itoa(s.NxsecNum), s.Name)
		for _, st := range s.Stations {
			t.line(f2(st.X), f2(st.Y))
		}
	}
	return t.bytes()
}
