package dat

var MudPrefix string = "M"
var SedimentPrefix string = "C"
var SizeGroupPrefix string = "Z"
var SizeFractionPrefix string = "P"
var MudAreaPrefix string = "D"
var RigidBedPrefix string = "R"
var GroupCellPrefix string = "G"

type Mud struct {
	Va   float64
	Vb   float64
	Ysa  float64
	Ysb  float64
	Sgsm float64
	Tau  float64
}

type SedimentGlobal struct {
	IsedEqg      int
	IsedSizeFrac int
	DFifty       float64
	SGrad        float64
	SGst         float64
	DrySpWt      float64
	Cvfg         float64
	IsedSupply   int
	IsedIsplay   int
	ScourDep     float64
}

type SizeFraction struct {
	SeDiam     float64
	SedPercent float64
}

type SizeGroup struct {
	IsedEqi   int
	BedThick  float64
	Cvfi      float64
	Fractions []SizeFraction
}

type GroupCell struct {
	Cell  int
	Group int
}

// Sed is SED.DAT, holding either mudflow or sediment transport data.
type Sed struct {
	Mud        *Mud
	Sediment   *SedimentGlobal
	Groups     []SizeGroup
	MudCells   []int
	RigidCells []int
	GroupCells []GroupCell
}

func ReadSed(path string) (Sed, error) {
	c, err := newCursor(path)
	if err != nil {
		return Sed{}, err
	}
	s := Sed{}
	err = c.eachRow(func(r *row) {
		switch r.prefix() {
		case MudPrefix:
			if !r.count(7, 7) {
				return
			}
			v := r.floats(1)
			s.Mud = &Mud{Va: v[0], Vb: v[1], Ysa: v[2], Ysb: v[3], Sgsm: v[4], Tau: v[5]}
		case SedimentPrefix:
			r.count(11, 11)
			s.Sediment = &SedimentGlobal{
				IsedEqg: r.asInt(1), IsedSizeFrac: r.asInt(2), DFifty: r.asFloat(3), SGrad: r.asFloat(4),
				SGst: r.asFloat(5), DrySpWt: r.asFloat(6), Cvfg: r.asFloat(7), IsedSupply: r.asInt(8),
				IsedIsplay: r.asInt(9), ScourDep: r.asFloat(10),
			}
		case SizeGroupPrefix:
			r.count(4, 4)
			s.Groups = append(s.Groups, SizeGroup{IsedEqi: r.asInt(1), BedThick: r.asFloat(2), Cvfi: r.asFloat(3)})
		case SizeFractionPrefix:
			if len(s.Groups) == 0 {
				r.fail("size fraction before any sediment group")
				return
			}
			r.count(3, 3)
			g := &s.Groups[len(s.Groups)-1]
			g.Fractions = append(g.Fractions, SizeFraction{SeDiam: r.asFloat(1), SedPercent: r.asFloat(2)})
		case MudAreaPrefix:
			r.count(2, 2)
			s.MudCells = append(s.MudCells, r.asInt(1))
		case RigidBedPrefix:
			r.count(2, 2)
			s.RigidCells = append(s.RigidCells, r.asInt(1))
		case GroupCellPrefix:
			r.count(3, 3)
			s.GroupCells = append(s.GroupCells, GroupCell{Cell: r.asInt(1), Group: r.asInt(2)})
		default:
			r.fail("unknown prefix %q", r.prefix())
		}
	})
	return s, err
}

func (s Sed) ToBytes() []byte {
	t := text{}
	if m := s.Mud; m != nil {
		t.line(MudPrefix, num(m.Va), num(m.Vb), num(m.Ysa), num(m.Ysb), num(m.Sgsm), num(m.Tau))
	}
	if g := s.Sediment; g != nil {
		t.line(SedimentPrefix, itoa(g.IsedEqg), itoa(g.IsedSizeFrac), num(g.DFifty), num(g.SGrad), num(g.SGst),
			num(g.DrySpWt), num(g.Cvfg), itoa(g.IsedSupply), itoa(g.IsedIsplay), num(g.ScourDep))
	}
	for _, g := range s.Groups {
		t.line(SizeGroupPrefix, itoa(g.IsedEqi), num(g.BedThick), num(g.Cvfi))
		for _, f := range g.Fractions {
			t.line(SizeFractionPrefix, num(f.SeDiam), num(f.SedPercent))
		}
	}
	for _, id := range s.MudCells {
		t.line(MudAreaPrefix, cell(id))
	}
	for _, id := range s.RigidCells {
		t.line(RigidBedPrefix, cell(id))
	}
	for _, gc := range s.GroupCells {
		t.line(GroupCellPrefix, cell(gc.Cell), itoa(gc.Group))
	}
	return t.bytes()
}
