package dat

import "io"

// Entry is one named control value, kept as text.
type Entry struct {
	Name  string
	Value string
}

// contRows is the positional layout of CONT.DAT. Rows flagged optional are
// only present when their guard holds.
var contRows = [][]string{
	{"SIMUL", "TOUT", "LGPLOT", "METRIC", "IBACKUP", "BUILD"},
	{"ICHANNEL", "MSTREET", "LEVEE", "IWRFS", "IMULTC"},
	{"IRAIN", "INFIL", "IEVAP", "MUD", "ISED", "IMODFLOW", "SWMM"},
	{"IHYDRSTRUCT", "IFLOODWAY", "IDEBRV"},
	{"AMANN", "DEPTHDUR", "XCONC", "XARF", "FROUDL", "SHALLOWN", "ENCROACH"},
	{"NOPRTFP", "DEPRESSDEPTH"},
	{"NOPRTC"},
	{"ITIMTEP", "TIMTEP", "STARTIMTEP", "ENDTIMTEP"},
	{"GRAPTIM"},
}

// minimum fields per row; trailing names beyond the minimum are optional
var contMinFields = []int{5, 5, 7, 3, 7, 2, 1, 2, 1}

// Cont holds the control values in file order.
type Cont struct {
	Entries []Entry
}

func (c Cont) Get(name string) (string, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

func truthy(s string) bool {
	return s != "" && s != "0" && s != "0.0" && s != "0.00"
}

// contRowPresent decides whether optional rows 7 (NOPRTC) and 9 (GRAPTIM)
// belong in the file given the values read so far.
func contRowPresent(idx int, get func(string) (string, bool)) bool {
	switch idx {
	case 6:
		v, _ := get("ICHANNEL")
		return truthy(v)
	case 8:
		v, _ := get("LGPLOT")
		return v == "2"
	}
	return true
}

func ReadCont(path string) (Cont, error) {
	c, err := newCursor(path)
	if err != nil {
		return Cont{}, err
	}
	return parseCont(c)
}

func ParseCont(name string, r io.Reader) (Cont, error) {
	c, err := cursorFrom(name, r)
	if err != nil {
		return Cont{}, err
	}
	return parseCont(c)
}

func parseCont(c *cursor) (Cont, error) {
	cont := Cont{}
	for idx, names := range contRows {
		if !contRowPresent(idx, cont.Get) {
			continue
		}
		r, err := c.require(names[0])
		if err != nil {
			return cont, err
		}
		r.count(contMinFields[idx], len(names))
		if r.err != nil {
			return cont, r.err
		}
		for i, f := range r.fields {
			cont.Entries = append(cont.Entries, Entry{Name: names[i], Value: f})
		}
	}
	if l, ok := c.peek(); ok {
		return cont, c.errorf(l, "unexpected trailing record")
	}
	return cont, nil
}

// ToBytes lays the values out in the row order of the file. Optional
// trailing fields are written only when set.
func (c Cont) ToBytes() []byte {
	t := text{}
	for idx, names := range contRows {
		if !contRowPresent(idx, c.Get) {
			continue
		}
		fields := make([]string, 0, len(names))
		for i, n := range names {
			v, ok := c.Get(n)
			if !ok {
				if i < contMinFields[idx] {
					v = "0"
				} else {
					break
				}
			}
			fields = append(fields, v)
		}
		t.line(fields...)
	}
	return t.bytes()
}

// ContNames lists every key CONT.DAT can carry.
func ContNames() []string {
	out := make([]string, 0)
	for _, r := range contRows {
		out = append(out, r...)
	}
	return out
}

var CourantPrefix string = "C"
var TimeAccelPrefix string = "T"

// Toler is the numerical tolerance file. Values stay textual like Cont.
type Toler struct {
	Entries []Entry
}

func (t Toler) Get(name string) (string, bool) {
	return Cont{Entries: t.Entries}.Get(name)
}

func (t Toler) getOr(name, fallback string) string {
	if v, ok := t.Get(name); ok {
		return v
	}
	return fallback
}

func TolerNames() []string {
	return []string{"TOLGLOBAL", "DEPTOL", "WAVEMAX", "COURANTFP", "COURANTC", "COURANTST", "TIME_ACCEL"}
}

func ReadToler(path string) (Toler, error) {
	c, err := newCursor(path)
	if err != nil {
		return Toler{}, err
	}
	tol := Toler{}
	r, err := c.require("TOLGLOBAL")
	if err != nil {
		return tol, err
	}
	if r.count(2, 3); r.err != nil {
		return tol, r.err
	}
	for i, n := range []string{"TOLGLOBAL", "DEPTOL", "WAVEMAX"}[:len(r.fields)] {
		tol.Entries = append(tol.Entries, Entry{Name: n, Value: r.fields[i]})
	}
	for {
		r, ok := c.next()
		if !ok {
			break
		}
		switch r.prefix() {
		case CourantPrefix:
			r.count(4, 4)
			for i, n := range []string{"COURANTFP", "COURANTC", "COURANTST"} {
				tol.Entries = append(tol.Entries, Entry{Name: n, Value: r.asStr(i + 1)})
			}
		case TimeAccelPrefix:
			r.count(2, 2)
			tol.Entries = append(tol.Entries, Entry{Name: "TIME_ACCEL", Value: r.asStr(1)})
		default:
			r.fail("unknown prefix %q", r.prefix())
		}
		if r.err != nil {
			return tol, r.err
		}
	}
	return tol, nil
}

func (t Toler) ToBytes() []byte {
	out := text{}
	head := make([]string, 0, 3)
	for _, n := range []string{"TOLGLOBAL", "DEPTOL", "WAVEMAX"} {
		if v, ok := t.Get(n); ok {
			head = append(head, v)
		}
	}
	out.line(head...)
	if fp, ok := t.Get("COURANTFP"); ok {
		out.line(CourantPrefix, fp, t.getOr("COURANTC", "0"), t.getOr("COURANTST", "0"))
	}
	if v, ok := t.Get("TIME_ACCEL"); ok {
		out.line(TimeAccelPrefix, v)
	}
	return out.bytes()
}
