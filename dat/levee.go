package dat

var FragilityGlobalPrefix string = "C"
var LeveeCellPrefix string = "L"
var LeveeDirectionPrefix string = "D"
var FailureCellPrefix string = "F"
var FailureDirectionPrefix string = "W"
var FragilityCellPrefix string = "P"

type LeveeDirection struct {
	Dir      int
	LevCrest float64
}

type LeveeCell struct {
	Cell       int
	Directions []LeveeDirection
}

type LeveeFailure struct {
	Dir          int
	FailElev     float64
	FailTime     float64
	LevBase      float64
	FailWidthMax float64
	FailRate     float64
	FailWidRate  float64
}

type FailureCell struct {
	Cell     int
	Failures []LeveeFailure
}

type Fragility struct {
	Cell int
	Char string
	Prob float64
}

// Levee is LEVEE.DAT.
type Levee struct {
	RaiseLev  float64
	ILevFail  int
	GFragChar string
	GFragProb Optional
	Cells     []LeveeCell
	Failures  []FailureCell
	Fragility []Fragility
}

func ReadLevee(path string) (Levee, error) {
	c, err := newCursor(path)
	if err != nil {
		return Levee{}, err
	}
	lv := Levee{}
	head, err := c.require("RAISELEV ILEVFAIL")
	if err != nil {
		return lv, err
	}
	head.count(2, 2)
	lv.RaiseLev, lv.ILevFail = head.asFloat(0), head.asInt(1)
	if head.err != nil {
		return lv, head.err
	}
	err = c.eachRow(func(r *row) {
		switch r.prefix() {
		case FragilityGlobalPrefix:
			r.count(3, 3)
			lv.GFragChar, lv.GFragProb = r.asStr(1), Some(r.asFloat(2))
		case LeveeCellPrefix:
			r.count(2, 2)
			lv.Cells = append(lv.Cells, LeveeCell{Cell: r.asInt(1)})
		case LeveeDirectionPrefix:
			if len(lv.Cells) == 0 {
				r.fail("levee direction before any levee cell")
				return
			}
			r.count(3, 3)
			lc := &lv.Cells[len(lv.Cells)-1]
			lc.Directions = append(lc.Directions, LeveeDirection{Dir: r.asInt(1), LevCrest: r.asFloat(2)})
		case FailureCellPrefix:
			r.count(2, 2)
			lv.Failures = append(lv.Failures, FailureCell{Cell: r.asInt(1)})
		case FailureDirectionPrefix:
			if len(lv.Failures) == 0 {
				r.fail("failure direction before any failure cell")
				return
			}
			r.count(8, 8)
			fc := &lv.Failures[len(lv.Failures)-1]
			fc.Failures = append(fc.Failures, LeveeFailure{
				Dir: r.asInt(1), FailElev: r.asFloat(2), FailTime: r.asFloat(3), LevBase: r.asFloat(4),
				FailWidthMax: r.asFloat(5), FailRate: r.asFloat(6), FailWidRate: r.asFloat(7),
			})
		case FragilityCellPrefix:
			r.count(4, 4)
			lv.Fragility = append(lv.Fragility, Fragility{Cell: r.asInt(1), Char: r.asStr(2), Prob: r.asFloat(3)})
		default:
			r.fail("unknown prefix %q", r.prefix())
		}
	})
	return lv, err
}

func (lv Levee) ToBytes() []byte {
	t := text{}
	t.line(num(lv.RaiseLev), itoa(lv.ILevFail))
	if lv.GFragProb.Valid {
		t.line(FragilityGlobalPrefix, lv.GFragChar, num(lv.GFragProb.Value))
	}
	for _, lc := range lv.Cells {
		t.line(LeveeCellPrefix, cell(lc.Cell))
		for _, d := range lc.Directions {
			t.line(LeveeDirectionPrefix, itoa(d.Dir), f2(d.LevCrest))
		}
	}
	for _, fc := range lv.Failures {
		t.line(FailureCellPrefix, cell(fc.Cell))
		for _, f := range fc.Failures {
			t.line(FailureDirectionPrefix, itoa(f.Dir), num(f.FailElev), num(f.FailTime), num(f.LevBase),
				num(f.FailWidthMax), num(f.FailRate), num(f.FailWidRate))
		}
	}
	for _, fr := range lv.Fragility {
		t.line(FragilityCellPrefix, cell(fr.Cell), fr.Char, num(fr.Prob))
	}
	return t.bytes()
}

var BreachGlobalPrefix string = "G"
var BreachCellPrefix string = "D"
var BreachFragilityPrefix string = "F"

// BreachGlobal holds the global breach parameters, IBreachSedEqn first.
type BreachGlobal struct {
	IBreachSedEqn int
	Values        [11]float64
}

type BreachCell struct {
	Cell       int
	IBreachDir int
	Values     [9]float64
}

type BreachFragility struct {
	FragChar string
	PrFail   float64
	PrDepth  float64
}

// Breach is BREACH.DAT.
type Breach struct {
	Global    *BreachGlobal
	Cells     []BreachCell
	Fragility []BreachFragility
}

func ReadBreach(path string) (Breach, error) {
	c, err := newCursor(path)
	if err != nil {
		return Breach{}, err
	}
	b := Breach{}
	err = c.eachRow(func(r *row) {
		switch r.prefix() {
		case BreachGlobalPrefix:
			if !r.count(13, 13) {
				return
			}
			g := &BreachGlobal{IBreachSedEqn: r.asInt(1)}
			copy(g.Values[:], r.floats(2))
			b.Global = g
		case BreachCellPrefix:
			if !r.count(12, 12) {
				return
			}
			bc := BreachCell{Cell: r.asInt(1), IBreachDir: r.asInt(2)}
			copy(bc.Values[:], r.floats(3))
			b.Cells = append(b.Cells, bc)
		case BreachFragilityPrefix:
			r.count(4, 4)
			b.Fragility = append(b.Fragility, BreachFragility{FragChar: r.asStr(1), PrFail: r.asFloat(2), PrDepth: r.asFloat(3)})
		default:
			r.fail("unknown prefix %q", r.prefix())
		}
	})
	return b, err
}

func (b Breach) ToBytes() []byte {
	t := text{}
	if g := b.Global; g != nil {
		t.line(append([]string{BreachGlobalPrefix, itoa(g.IBreachSedEqn)}, nums(g.Values[:])...)...)
	}
	for _, bc := range b.Cells {
		t.line(append([]string{BreachCellPrefix, cell(bc.Cell), itoa(bc.IBreachDir)}, nums(bc.Values[:])...)...)
	}
	for _, f := range b.Fragility {
		t.line(BreachFragilityPrefix, f.FragChar, num(f.PrFail), num(f.PrDepth))
	}
	return t.bytes()
}
