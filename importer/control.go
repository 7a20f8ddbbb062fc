package importer

import (
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
)

// CONT and TOLER share the cont table, so neither clears it; every key is
// upserted.
func (im *Importer) importCont() (int, error) {
	cont, err := dat.ReadCont(im.path(dat.ContFamily))
	if err != nil {
		return 0, err
	}
	return im.storeEntries(cont.Entries)
}

func (im *Importer) importToler() (int, error) {
	toler, err := dat.ReadToler(im.path(dat.TolerFamily))
	if err != nil {
		return 0, err
	}
	return im.storeEntries(toler.Entries)
}

func (im *Importer) storeEntries(entries []dat.Entry) (int, error) {
	cfg := control.NewConfig()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		cfg.Set(e.Name, e.Value)
		names = append(names, e.Name)
	}
	if err := cfg.Save(im.c, names...); err != nil {
		return 0, err
	}
	return len(entries), nil
}
