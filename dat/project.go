package dat

import (
	"os"
	"path/filepath"
	"strings"
)

// Family names one .DAT file by its canonical upper case name.
type Family string

const (
	ContFamily        Family = "CONT.DAT"
	TolerFamily       Family = "TOLER.DAT"
	FplainFamily      Family = "FPLAIN.DAT"
	CadptsFamily      Family = "CADPTS.DAT"
	ManningsFamily    Family = "MANNINGS_N.DAT"
	TopoFamily        Family = "TOPO.DAT"
	InflowFamily      Family = "INFLOW.DAT"
	OutflowFamily     Family = "OUTFLOW.DAT"
	RainFamily        Family = "RAIN.DAT"
	RaincellFamily    Family = "RAINCELL.DAT"
	InfilFamily       Family = "INFIL.DAT"
	EvaporFamily      Family = "EVAPOR.DAT"
	ChanFamily        Family = "CHAN.DAT"
	ChanbankFamily    Family = "CHANBANK.DAT"
	XsecFamily        Family = "XSEC.DAT"
	HystrucFamily     Family = "HYSTRUC.DAT"
	StreetFamily      Family = "STREET.DAT"
	ArfFamily         Family = "ARF.DAT"
	MultFamily        Family = "MULT.DAT"
	SedFamily         Family = "SED.DAT"
	LeveeFamily       Family = "LEVEE.DAT"
	FpxsecFamily      Family = "FPXSEC.DAT"
	BreachFamily      Family = "BREACH.DAT"
	GutterFamily      Family = "GUTTER.DAT"
	FpfroudeFamily    Family = "FPFROUDE.DAT"
	ShallownFamily    Family = "SHALLOWN_SPATIAL.DAT"
	TolspatialFamily  Family = "TOLSPATIAL.DAT"
	SwmmfloFamily     Family = "SWMMFLO.DAT"
	SwmmoutfFamily    Family = "SWMMOUTF.DAT"
	WsurfFamily       Family = "WSURF.DAT"
	WstimeFamily      Family = "WSTIME.DAT"
)

// Families is every known file in import order: topology first so later
// families can resolve their cell references.
var Families = []Family{
	ContFamily, TolerFamily, FplainFamily, CadptsFamily, ManningsFamily, TopoFamily,
	InflowFamily, OutflowFamily, RainFamily, RaincellFamily, InfilFamily, EvaporFamily,
	ChanFamily, ChanbankFamily, XsecFamily, HystrucFamily, StreetFamily, ArfFamily,
	MultFamily, SedFamily, LeveeFamily, FpxsecFamily, BreachFamily, GutterFamily,
	FpfroudeFamily, ShallownFamily, TolspatialFamily, SwmmfloFamily, SwmmoutfFamily,
	WsurfFamily, WstimeFamily,
}

// Project is the set of .DAT files found in one directory.
type Project struct {
	Dir   string
	files map[Family]string
}

// Scan discovers the known files in dir regardless of the case of their
// names. Missing files are simply absent.
func Scan(dir string) (Project, error) {
	p := Project{Dir: dir, files: make(map[Family]string)}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return p, ParseError{File: dir, Reason: err.Error()}
	}
	known := make(map[string]Family, len(Families))
	for _, f := range Families {
		known[string(f)] = f
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if f, ok := known[strings.ToUpper(e.Name())]; ok {
			p.files[f] = filepath.Join(dir, e.Name())
		}
	}
	return p, nil
}

func (p Project) Has(f Family) bool {
	_, ok := p.files[f]
	return ok
}

func (p Project) Path(f Family) string {
	return p.files[f]
}

// Present lists the families found, in import order.
func (p Project) Present() []Family {
	out := make([]Family, 0, len(p.files))
	for _, f := range Families {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
