package control

import "math"

// Key describes one recognised control parameter.
type Key struct {
	Name    string
	Kind    Kind
	Default string
	Min     float64
	Max     float64
	Choices []int
	Note    string
}

func (k Key) check(v Value) bool {
	switch k.Kind {
	case Int, Real:
		x := v.r
		if k.Kind == Int {
			x = float64(v.i)
		}
		return x >= k.Min && x <= k.Max
	case Enum:
		for _, c := range k.Choices {
			if c == v.i {
				return true
			}
		}
		return false
	}
	return true
}

var inf = math.Inf(1)

func flag(name, note string) Key {
	return Key{Name: name, Kind: Bool, Default: "0", Note: note}
}

func number(name, def string, lo, hi float64, note string) Key {
	return Key{Name: name, Kind: Real, Default: def, Min: lo, Max: hi, Note: note}
}

func enum(name, def string, note string, choices ...int) Key {
	return Key{Name: name, Kind: Enum, Default: def, Choices: choices, Note: note}
}

// Schema lists every key the model understands. Keys absent from the schema
// pass through untouched as opaque strings.
var Schema = []Key{
	number("SIMUL", "0", 0, inf, "simulation time (hr)"),
	number("TOUT", "0", 0, inf, "output interval (hr)"),
	enum("LGPLOT", "0", "graphics mode", 0, 1, 2, 3),
	flag("METRIC", "metric units"),
	enum("IBACKUP", "0", "backup file option", 0, 1, 2),
	{Name: "BUILD", Kind: Opaque, Note: "engine build tag"},
	flag("ICHANNEL", "channels"),
	flag("MSTREET", "streets"),
	flag("LEVEE", "levees"),
	flag("IWRFS", "area reduction factors"),
	flag("IMULTC", "multiple channels"),
	flag("IRAIN", "rainfall"),
	flag("INFIL", "infiltration"),
	flag("IEVAP", "evaporation"),
	enum("MUD", "0", "mudflow", 0, 1, 2),
	flag("ISED", "sediment transport"),
	flag("IMODFLOW", "groundwater coupling"),
	flag("SWMM", "storm drain"),
	flag("IHYDRSTRUCT", "hydraulic structures"),
	flag("IFLOODWAY", "floodway"),
	flag("IDEBRV", "debris basin"),
	number("AMANN", "0", -inf, inf, "Manning increment"),
	number("DEPTHDUR", "0", 0, inf, "depth duration"),
	number("XCONC", "0", 0, 1, "sediment concentration"),
	number("XARF", "0", 0, 1, "global area reduction"),
	number("FROUDL", "0", 0, inf, "limiting Froude number"),
	number("SHALLOWN", "0", 0, inf, "shallow flow n"),
	number("ENCROACH", "0", 0, inf, "encroachment"),
	enum("NOPRTFP", "0", "floodplain output", 0, 1, 2, 3),
	number("DEPRESSDEPTH", "0", 0, inf, "depression storage"),
	enum("NOPRTC", "0", "channel output", 0, 1, 2),
	enum("ITIMTEP", "0", "time series output", 0, 1, 2, 3, 4, 5),
	number("TIMTEP", "0", 0, inf, "time series interval"),
	number("STARTIMTEP", "0", 0, inf, "time series start"),
	number("ENDTIMTEP", "0", 0, inf, "time series end"),
	number("GRAPTIM", "0", 0, inf, "graphics interval"),
	number("TOLGLOBAL", "0", 0, inf, "global depth tolerance"),
	number("DEPTOL", "0", 0, inf, "depth tolerance"),
	number("WAVEMAX", "0", 0, inf, "wave celerity limit"),
	number("COURANTFP", "0", 0, 1, "floodplain Courant"),
	number("COURANTC", "0", 0, 1, "channel Courant"),
	number("COURANTST", "0", 0, 1, "street Courant"),
	number("TIME_ACCEL", "0", 0, inf, "time step acceleration"),
	flag("IHOURDAILY", "daily inflow hydrographs"),
	{Name: "IDEPLT", Kind: Int, Default: "0", Min: 0, Max: inf, Note: "inflow plot cell"},
	number("ARFBLOCKMOD", "0", 0, 1, "area reduction blocking factor"),
	{Name: "NXPRT", Kind: Int, Default: "0", Min: 0, Max: 2, Note: "floodplain cross section output"},
	number("CELLSIZE", "0", 0, inf, "grid cell size"),
	number("MANNING", "0.04", 0, inf, "default Manning n"),
	{Name: "PROJ", Kind: Opaque, Note: "projection definition"},
}

var schemaIndex = func() map[string]Key {
	m := make(map[string]Key, len(Schema))
	for _, k := range Schema {
		m[k.Name] = k
	}
	return m
}()

// Lookup returns the schema entry for name, if any.
func Lookup(name string) (Key, bool) {
	k, ok := schemaIndex[name]
	return k, ok
}
