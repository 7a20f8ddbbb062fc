package dat

import (
	"strconv"
	"strings"
)

var RainSeriesPrefix string = "R"

type CellValue struct {
	Cell  int
	Value float64
}

// Rain is RAIN.DAT. Speed and Direction are written only for moving
// storms.
type Rain struct {
	IRainReal     int
	IRainBuilding int
	TotalRainfall float64
	RainAbs       float64
	IRainArf      int
	MovingStorm   int
	Speed         float64
	Direction     int
	Series        []TimeValue
	Arf           []CellValue
}

func ReadRain(path string) (Rain, error) {
	c, err := newCursor(path)
	if err != nil {
		return Rain{}, err
	}
	return parseRain(c)
}

func parseRain(c *cursor) (Rain, error) {
	rn := Rain{}
	r1, err := c.require("IRAINREAL IRAINBUILDING")
	if err != nil {
		return rn, err
	}
	r1.count(2, 2)
	rn.IRainReal = r1.asInt(0)
	rn.IRainBuilding = r1.asInt(1)
	if r1.err != nil {
		return rn, r1.err
	}
	r2, err := c.require("RTT RAINABS IRAINARF MOVINGSTORM")
	if err != nil {
		return rn, err
	}
	r2.count(4, 4)
	rn.TotalRainfall = r2.asFloat(0)
	rn.RainAbs = r2.asFloat(1)
	rn.IRainArf = r2.asInt(2)
	rn.MovingStorm = r2.asInt(3)
	if r2.err != nil {
		return rn, r2.err
	}
	for {
		l, ok := c.peek()
		if !ok || l.prefix() != RainSeriesPrefix {
			break
		}
		r, _ := c.next()
		r.count(3, 3)
		tv := TimeValue{Time: r.asFloat(1), Value: r.asFloat(2)}
		if n := len(rn.Series); n > 0 {
			r.notBefore(tv.Time, rn.Series[n-1].Time)
		}
		rn.Series = append(rn.Series, tv)
		if r.err != nil {
			return rn, r.err
		}
	}
	if rn.MovingStorm != 0 {
		r, err := c.require("RAINSPEED IRAINDIR")
		if err != nil {
			return rn, err
		}
		r.count(2, 2)
		rn.Speed = r.asFloat(0)
		rn.Direction = r.asInt(1)
		if r.err != nil {
			return rn, r.err
		}
	}
	err = c.eachRow(func(r *row) {
		r.count(2, 2)
		rn.Arf = append(rn.Arf, CellValue{Cell: r.asInt(0), Value: r.asFloat(1)})
	})
	return rn, err
}

func (rn Rain) ToBytes() []byte {
	t := text{}
	t.line(itoa(rn.IRainReal), itoa(rn.IRainBuilding))
	t.line(num(rn.TotalRainfall), num(rn.RainAbs), itoa(rn.IRainArf), itoa(rn.MovingStorm))
	for _, s := range rn.Series {
		t.line(RainSeriesPrefix, f3(s.Time), f3(s.Value))
	}
	if rn.MovingStorm != 0 {
		t.line(num(rn.Speed), itoa(rn.Direction))
	}
	for _, a := range rn.Arf {
		t.line(cell(a.Cell), f3(a.Value))
	}
	return t.bytes()
}

type RaincellValue struct {
	Interval int
	Cell     int
	Value    float64
}

// Raincell is RAINCELL.DAT. Intervals are numbered from 1 and advance each
// time the cell sequence starts over.
type Raincell struct {
	Interval  float64
	IRInters  int
	Timestamp string
	Values    []RaincellValue
}

func ReadRaincell(path string) (Raincell, error) {
	c, err := newCursor(path)
	if err != nil {
		return Raincell{}, err
	}
	rc := Raincell{}
	head, err := c.require("RAINTIMEINTERVAL IRINTERS TIMESTAMP")
	if err != nil {
		return rc, err
	}
	head.count(2, -1)
	rc.Interval = head.asFloat(0)
	rc.IRInters = head.asInt(1)
	if len(head.fields) > 2 {
		rc.Timestamp = strings.Join(head.fields[2:], " ")
	}
	if head.err != nil {
		return rc, head.err
	}
	interval, last := 1, 0
	err = c.eachRow(func(r *row) {
		r.count(2, 2)
		id := r.asInt(0)
		if last != 0 && id <= last {
			interval++
		}
		last = id
		rc.Values = append(rc.Values, RaincellValue{Interval: interval, Cell: id, Value: r.asFloat(1)})
	})
	return rc, err
}

func (rc Raincell) ToBytes() []byte {
	t := text{}
	head := []string{num(rc.Interval), itoa(rc.IRInters)}
	if rc.Timestamp != "" {
		head = append(head, rc.Timestamp)
	}
	t.line(head...)
	for _, v := range rc.Values {
		t.line(cell(v.Cell), num(v.Value))
	}
	return t.bytes()
}

var GreenAmptPrefix string = "F"
var ScsPrefix string = "S"
var HortonPrefix string = "H"
var ChannelInfilPrefix string = "C"

const (
	GreenAmpt   int = 1
	ScsCurve    int = 2
	GreenAndScs int = 3
	Horton      int = 4
)

type GreenAmptCell struct {
	Cell      int
	Hydc      float64
	Soils     float64
	Dtheta    float64
	AbstrInf  float64
	RtImpF    float64
	SoilDepth float64
}

type HortonCell struct {
	Cell   int
	FHorti float64
	FHortf float64
	Deca   float64
}

// Infil is INFIL.DAT. The global lines present depend on Method.
type Infil struct {
	Method   int
	Abstr    float64
	Sati     float64
	Satf     float64
	Poros    float64
	SoilD    float64
	InfChan  int
	HydcAll  float64
	SoilAll  float64
	HydcAdj  float64
	HydcXX   Optional
	ScsnAll  float64
	Abstr1   float64
	FHortonI float64
	FHortonF float64
	DecayA   float64
	Green    []GreenAmptCell
	Scs      []CellValue
	Horton   []HortonCell
	Channel  []CellValue
}

func (in Infil) usesGreenAmpt() bool {
	return in.Method == GreenAmpt || in.Method == GreenAndScs
}

func (in Infil) usesScs() bool {
	return in.Method == ScsCurve || in.Method == GreenAndScs
}

func ReadInfil(path string) (Infil, error) {
	c, err := newCursor(path)
	if err != nil {
		return Infil{}, err
	}
	in := Infil{}
	head, err := c.require("INFMETHOD")
	if err != nil {
		return in, err
	}
	head.count(1, 1)
	in.Method = head.asInt(0)
	if head.err != nil {
		return in, head.err
	}
	if in.Method < GreenAmpt || in.Method > Horton {
		return in, c.errorf(head.line, "unknown infiltration method %v", in.Method)
	}
	if in.usesGreenAmpt() {
		r, err := c.require("ABSTR SATI SATF POROS SOILD INFCHAN")
		if err != nil {
			return in, err
		}
		r.count(6, 6)
		in.Abstr, in.Sati, in.Satf = r.asFloat(0), r.asFloat(1), r.asFloat(2)
		in.Poros, in.SoilD, in.InfChan = r.asFloat(3), r.asFloat(4), r.asInt(5)
		if r.err != nil {
			return in, r.err
		}
		r, err = c.require("HYDCALL SOILALL HYDCADJ")
		if err != nil {
			return in, err
		}
		r.count(3, 3)
		in.HydcAll, in.SoilAll, in.HydcAdj = r.asFloat(0), r.asFloat(1), r.asFloat(2)
		if r.err != nil {
			return in, r.err
		}
		if in.InfChan == 1 {
			r, err = c.require("HYDCXX")
			if err != nil {
				return in, err
			}
			r.count(1, 1)
			in.HydcXX = Some(r.asFloat(0))
			if r.err != nil {
				return in, r.err
			}
		}
	}
	if in.usesScs() {
		r, err := c.require("SCSNALL ABSTR1")
		if err != nil {
			return in, err
		}
		r.count(2, 2)
		in.ScsnAll, in.Abstr1 = r.asFloat(0), r.asFloat(1)
		if r.err != nil {
			return in, r.err
		}
	}
	if in.Method == Horton {
		r, err := c.require("FHORTONI FHORTONF DECAYA")
		if err != nil {
			return in, err
		}
		r.count(3, 3)
		in.FHortonI, in.FHortonF, in.DecayA = r.asFloat(0), r.asFloat(1), r.asFloat(2)
		if r.err != nil {
			return in, r.err
		}
	}
	err = c.eachRow(func(r *row) {
		switch r.prefix() {
		case GreenAmptPrefix:
			r.count(8, 8)
			in.Green = append(in.Green, GreenAmptCell{
				Cell: r.asInt(1), Hydc: r.asFloat(2), Soils: r.asFloat(3), Dtheta: r.asFloat(4),
				AbstrInf: r.asFloat(5), RtImpF: r.asFloat(6), SoilDepth: r.asFloat(7),
			})
		case ScsPrefix:
			r.count(3, 3)
			in.Scs = append(in.Scs, CellValue{Cell: r.asInt(1), Value: r.asFloat(2)})
		case HortonPrefix:
			r.count(5, 5)
			in.Horton = append(in.Horton, HortonCell{Cell: r.asInt(1), FHorti: r.asFloat(2), FHortf: r.asFloat(3), Deca: r.asFloat(4)})
		case ChannelInfilPrefix:
			r.count(3, 3)
			in.Channel = append(in.Channel, CellValue{Cell: r.asInt(1), Value: r.asFloat(2)})
		default:
			r.fail("unknown prefix %q", r.prefix())
		}
	})
	return in, err
}

func (in Infil) ToBytes() []byte {
	t := text{}
	t.line(itoa(in.Method))
	if in.usesGreenAmpt() {
		t.line(num(in.Abstr), num(in.Sati), num(in.Satf), num(in.Poros), num(in.SoilD), itoa(in.InfChan))
		t.line(num(in.HydcAll), num(in.SoilAll), num(in.HydcAdj))
		if in.InfChan == 1 {
			t.line(num(in.HydcXX.Value))
		}
	}
	if in.usesScs() {
		t.line(num(in.ScsnAll), num(in.Abstr1))
	}
	if in.Method == Horton {
		t.line(num(in.FHortonI), num(in.FHortonF), num(in.DecayA))
	}
	for _, g := range in.Green {
		t.line(GreenAmptPrefix, cell(g.Cell), num(g.Hydc), num(g.Soils), num(g.Dtheta), num(g.AbstrInf), num(g.RtImpF), num(g.SoilDepth))
	}
	for _, s := range in.Scs {
		t.line(ScsPrefix, cell(s.Cell), num(s.Value))
	}
	for _, h := range in.Horton {
		t.line(HortonPrefix, cell(h.Cell), num(h.FHorti), num(h.FHortf), num(h.Deca))
	}
	for _, ch := range in.Channel {
		t.line(ChannelInfilPrefix, cell(ch.Cell), num(ch.Value))
	}
	return t.bytes()
}

type EvaporMonth struct {
	Name   string
	Evap   float64
	Hourly []float64
}

// Evapor is EVAPOR.DAT: twelve months each followed by hourly fractions.
type Evapor struct {
	IEvapMonth int
	IDay       int
	ClockTime  float64
	Months     []EvaporMonth
}

func ReadEvapor(path string) (Evapor, error) {
	c, err := newCursor(path)
	if err != nil {
		return Evapor{}, err
	}
	ev := Evapor{}
	head, err := c.require("IEVAPMONTH IDAY CLOCKTIME")
	if err != nil {
		return ev, err
	}
	head.count(3, 3)
	ev.IEvapMonth, ev.IDay, ev.ClockTime = head.asInt(0), head.asInt(1), head.asFloat(2)
	if head.err != nil {
		return ev, head.err
	}
	err = c.eachRow(func(r *row) {
		switch len(r.fields) {
		case 2:
			if _, perr := strconv.ParseFloat(r.fields[0], 64); perr == nil {
				r.fail("expected a month name, found %q", r.fields[0])
				return
			}
			ev.Months = append(ev.Months, EvaporMonth{Name: strings.ToLower(r.fields[0]), Evap: r.asFloat(1)})
		case 1:
			if len(ev.Months) == 0 {
				r.fail("hourly fraction before any month")
				return
			}
			m := &ev.Months[len(ev.Months)-1]
			m.Hourly = append(m.Hourly, r.asFloat(0))
		default:
			r.fail("expected 1 or 2 fields, found %d", len(r.fields))
		}
	})
	return ev, err
}

func (ev Evapor) ToBytes() []byte {
	t := text{}
	t.line(itoa(ev.IEvapMonth), itoa(ev.IDay), num(ev.ClockTime))
	for _, m := range ev.Months {
		t.line(m.Name, num(m.Evap))
		for _, h := range m.Hourly {
			t.line(num(h))
		}
	}
	return t.bytes()
}
