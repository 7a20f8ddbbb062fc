package exporter

import (
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
)

// entries picks the named keys that are stored, in the given order.
func (ex *Exporter) entries(names []string) ([]dat.Entry, error) {
	cfg, err := control.Load(ex.c)
	if err != nil {
		return nil, err
	}
	out := make([]dat.Entry, 0, len(names))
	for _, n := range names {
		if cfg.Has(n) {
			out = append(out, dat.Entry{Name: n, Value: cfg.Raw(n)})
		}
	}
	return out, nil
}

// exportCont needs at least SIMUL; a container that only holds CELLSIZE has
// no control file to write.
func (ex *Exporter) exportCont() ([]byte, error) {
	entries, err := ex.entries(dat.ContNames())
	if err != nil {
		return nil, err
	}
	cont := dat.Cont{Entries: entries}
	if _, ok := cont.Get("SIMUL"); !ok {
		return nil, nil
	}
	return cont.ToBytes(), nil
}

func (ex *Exporter) exportToler() ([]byte, error) {
	entries, err := ex.entries(dat.TolerNames())
	if err != nil {
		return nil, err
	}
	toler := dat.Toler{Entries: entries}
	if _, ok := toler.Get("TOLGLOBAL"); !ok {
		return nil, nil
	}
	return toler.ToBytes(), nil
}
