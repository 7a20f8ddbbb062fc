package dat

import (
	"strconv"
	"strings"
)

var FloodplainInflowPrefix string = "F"
var ChannelInflowPrefix string = "C"
var HydrographPrefix string = "H"
var ReservoirPrefix string = "R"

// TimeValue is one sample of a time series.
type TimeValue struct {
	Time  float64
	Value float64
}

// HydrographPoint is an inflow sample with an optional second value
// (sediment concentration for mudflow runs).
type HydrographPoint struct {
	Time   float64
	Value  float64
	Value2 Optional
}

type InflowEntry struct {
	Ident   string
	InOutFc int
	Cell    int
	Series  []HydrographPoint
}

type Reservoir struct {
	Cell   int
	Wsel   float64
	NValue Optional
}

// Inflow is INFLOW.DAT: a header, inflow hydrographs and reservoirs.
type Inflow struct {
	IHourDaily int
	IDePlt     Optional
	Entries    []InflowEntry
	Reservoirs []Reservoir
}

func ReadInflow(path string) (Inflow, error) {
	c, err := newCursor(path)
	if err != nil {
		return Inflow{}, err
	}
	in := Inflow{}
	head, err := c.require("IHOURDAILY")
	if err != nil {
		return in, err
	}
	head.count(1, 2)
	in.IHourDaily = head.asInt(0)
	in.IDePlt = head.asOpt(1)
	if head.err != nil {
		return in, head.err
	}
	var current *InflowEntry
	err = c.eachRow(func(r *row) {
		switch r.prefix() {
		case FloodplainInflowPrefix, ChannelInflowPrefix:
			r.count(3, 3)
			in.Entries = append(in.Entries, InflowEntry{Ident: r.prefix(), InOutFc: r.asInt(1), Cell: r.asInt(2)})
			current = &in.Entries[len(in.Entries)-1]
		case HydrographPrefix:
			if current == nil {
				r.fail("hydrograph row before any inflow")
				return
			}
			r.count(3, 4)
			h := HydrographPoint{Time: r.asFloat(1), Value: r.asFloat(2), Value2: r.asOpt(3)}
			if n := len(current.Series); n > 0 {
				r.notBefore(h.Time, current.Series[n-1].Time)
			}
			current.Series = append(current.Series, h)
		case ReservoirPrefix:
			r.count(3, 4)
			in.Reservoirs = append(in.Reservoirs, Reservoir{Cell: r.asInt(1), Wsel: r.asFloat(2), NValue: r.asOpt(3)})
		default:
			r.fail("unknown prefix %q", r.prefix())
		}
	})
	return in, err
}

func (in Inflow) ToBytes() []byte {
	t := text{}
	t.line(append([]string{itoa(in.IHourDaily)}, opt(in.IDePlt, func(v float64) string { return itoa(int(v)) })...)...)
	for _, e := range in.Entries {
		t.line(e.Ident, itoa(e.InOutFc), itoa(e.Cell))
		for _, h := range e.Series {
			t.line(append([]string{HydrographPrefix, f3(h.Time), f3(h.Value)}, opt(h.Value2, f3)...)...)
		}
	}
	for _, r := range in.Reservoirs {
		t.line(append([]string{ReservoirPrefix, itoa(r.Cell), f2(r.Wsel)}, opt(r.NValue, f3)...)...)
	}
	return t.bytes()
}

var ChannelOutflowPrefix string = "K"
var QhParamsPrefix string = "H"
var QhTablePrefix string = "T"
var StageTimePrefix string = "N"
var StagePrefix string = "S"
var FloodplainOutflowPrefix string = "O"

type QhParam struct {
	Hmax     float64
	Coef     float64
	Exponent float64
}

type QhRow struct {
	Depth float64
	Q     float64
}

// OutflowEntry is one outflow header with the detail rows that followed it.
// Kind is the header prefix: K, O, O1..O9 or N.
type OutflowEntry struct {
	Kind     string
	Cell     int
	NoStacFp int
	QhParams []QhParam
	QhTable  []QhRow
	Series   []TimeValue
}

// HydroOut returns n for an On header, 0 otherwise.
func (e OutflowEntry) HydroOut() int {
	if len(e.Kind) == 2 && e.Kind[0] == 'O' {
		n, _ := strconv.Atoi(e.Kind[1:])
		return n
	}
	return 0
}

type Outflow struct {
	Entries []OutflowEntry
}

func ReadOutflow(path string) (Outflow, error) {
	c, err := newCursor(path)
	if err != nil {
		return Outflow{}, err
	}
	out := Outflow{}
	var current *OutflowEntry
	err = c.eachRow(func(r *row) {
		p := r.prefix()
		switch {
		case p == ChannelOutflowPrefix:
			r.count(2, 2)
			out.Entries = append(out.Entries, OutflowEntry{Kind: p, Cell: r.asInt(1)})
			current = &out.Entries[len(out.Entries)-1]
		case p == QhParamsPrefix, p == QhTablePrefix:
			if current == nil || current.Kind != ChannelOutflowPrefix {
				r.fail("%v row must follow a channel outflow", p)
				return
			}
			if p == QhParamsPrefix {
				r.count(4, 4)
				current.QhParams = append(current.QhParams, QhParam{Hmax: r.asFloat(1), Coef: r.asFloat(2), Exponent: r.asFloat(3)})
			} else {
				r.count(3, 3)
				current.QhTable = append(current.QhTable, QhRow{Depth: r.asFloat(1), Q: r.asFloat(2)})
			}
		case p == StageTimePrefix:
			r.count(3, 3)
			out.Entries = append(out.Entries, OutflowEntry{Kind: p, Cell: r.asInt(1), NoStacFp: r.asInt(2)})
			current = &out.Entries[len(out.Entries)-1]
		case p == StagePrefix:
			if current == nil || current.Kind != StageTimePrefix {
				r.fail("stage row must follow a stage-time outflow")
				return
			}
			r.count(3, 3)
			tv := TimeValue{Time: r.asFloat(1), Value: r.asFloat(2)}
			if n := len(current.Series); n > 0 {
				r.notBefore(tv.Time, current.Series[n-1].Time)
			}
			current.Series = append(current.Series, tv)
		case strings.HasPrefix(p, FloodplainOutflowPrefix):
			if len(p) > 2 || (len(p) == 2 && (p[1] < '1' || p[1] > '9')) {
				r.fail("unknown outflow prefix %q", p)
				return
			}
			r.count(2, 2)
			out.Entries = append(out.Entries, OutflowEntry{Kind: p, Cell: r.asInt(1)})
			current = &out.Entries[len(out.Entries)-1]
		default:
			r.fail("unknown prefix %q", p)
		}
	})
	return out, err
}

func (o Outflow) ToBytes() []byte {
	t := text{}
	for _, e := range o.Entries {
		switch e.Kind {
		case StageTimePrefix:
			t.line(e.Kind, itoa(e.Cell), itoa(e.NoStacFp))
			for _, s := range e.Series {
				t.line(StagePrefix, f3(s.Time), f3(s.Value))
			}
		default:
			t.line(e.Kind, itoa(e.Cell))
		}
		for _, q := range e.QhParams {
			t.line(QhParamsPrefix, num(q.Hmax), num(q.Coef), num(q.Exponent))
		}
		for _, q := range e.QhTable {
			t.line(QhTablePrefix, num(q.Depth), num(q.Q))
		}
	}
	return t.bytes()
}
