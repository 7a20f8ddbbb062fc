package importer

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
)

var chanTables = []string{
	"chan", "chan_elems", "chan_r", "chan_v", "chan_t", "chan_n", "xsec_n_data",
	"chan_confluences", "noexchange_chan_cells",
}

// importChan loads CHAN.DAT together with CHANBANK.DAT (right bank cells)
// and XSEC.DAT (natural cross-section stations) when they are present.
func (im *Importer) importChan() (int, error) {
	ch, err := dat.ReadChan(im.path(dat.ChanFamily))
	if err != nil {
		return 0, err
	}
	rbank := make(map[int]int)
	if im.project.Has(dat.ChanbankFamily) {
		cb, err := dat.ReadChanbank(im.path(dat.ChanbankFamily))
		if err != nil {
			return 0, err
		}
		for _, p := range cb.Pairs {
			rbank[p.Left] = p.Right
		}
	}
	xsecNames := make(map[int]string)
	stations := gpkg.NewFragment("INSERT INTO xsec_n_data (chan_n_nxsecnum, xi, yi) VALUES", 3)
	if im.project.Has(dat.XsecFamily) {
		xs, err := dat.ReadXsec(im.path(dat.XsecFamily))
		if err != nil {
			return 0, err
		}
		for _, s := range xs.Sections {
			xsecNames[s.NxsecNum] = s.Name
			for _, st := range s.Stations {
				if err := stations.Add(s.NxsecNum, st.X, st.Y); err != nil {
					return 0, err
				}
			}
		}
	}

	ids := make([]int, 0)
	for _, s := range ch.Segments {
		for _, e := range s.Elements {
			ids = append(ids, e.Cell)
			if r, ok := rbank[e.Cell]; ok && r != 0 {
				ids = append(ids, r)
			}
		}
	}
	ids = append(ids, cellIds(ch.Confluences, func(c dat.Confluence) int { return c.Cell })...)
	ids = append(ids, ch.NoExchange...)
	pts, err := im.centroids(ids)
	if err != nil {
		return 0, err
	}

	chans := gpkg.NewFragment("INSERT INTO chan (fid, name, depinitial, froudc, roughadj, isedn, geom) VALUES", 7)
	elems := gpkg.NewFragment("INSERT INTO chan_elems (fid, grid_fid, seg_fid, nr_in_seg, rbankgrid, fcn, xlen, type, geom) VALUES", 9)
	rect := gpkg.NewFragment("INSERT INTO chan_r (elem_fid, bankell, bankelr, fcw, fcd) VALUES", 5)
	variable := gpkg.NewFragment(`INSERT INTO chan_v (elem_fid, bankell, bankelr, fcd, a1, a2, b1, b2, c1, c2,
		excdep, a11, a22, b11, b22, c11, c22) VALUES`, 17)
	trap := gpkg.NewFragment("INSERT INTO chan_t (elem_fid, bankell, bankelr, fcw, fcd, zl, zr) VALUES", 7)
	natural := gpkg.NewFragment("INSERT INTO chan_n (elem_fid, nxsecnum, xsecname) VALUES", 3)
	confluences := gpkg.NewFragment("INSERT INTO chan_confluences (conf_type, chan_elem_fid, geom) VALUES", 3)
	noexchange := gpkg.NewFragment("INSERT INTO noexchange_chan_cells (grid_fid, geom) VALUES", 2)

	elemOf := make(map[int]int)
	elemFid := 0
	for i, s := range ch.Segments {
		segFid := i + 1
		left := make([]orb.Point, 0, len(s.Elements))
		for j, e := range s.Elements {
			elemFid++
			elemOf[e.Cell] = elemFid
			left = append(left, pts[e.Cell])
			right := rbank[e.Cell]
			bank := line(pts[e.Cell])
			if right != 0 {
				bank = line(pts[e.Cell], pts[right])
			}
			blob, err := im.encode(bank)
			if err != nil {
				return 0, err
			}
			if err := elems.Add(elemFid, e.Cell, segFid, j+1, right, e.Fcn, e.Xlen, e.Shape.Kind(), blob); err != nil {
				return 0, err
			}
			switch sh := e.Shape.(type) {
			case dat.Rectangular:
				err = rect.Add(elemFid, sh.BankEll, sh.BankElr, sh.Fcw, sh.Fcd)
			case dat.Variable:
				err = variable.Add(elemFid, sh.BankEll, sh.BankElr, sh.Fcd,
					sh.Lower[0], sh.Lower[1], sh.Lower[2], sh.Lower[3], sh.Lower[4], sh.Lower[5],
					sh.ExcDep,
					sh.Upper[0], sh.Upper[1], sh.Upper[2], sh.Upper[3], sh.Upper[4], sh.Upper[5])
			case dat.Trapezoidal:
				err = trap.Add(elemFid, sh.BankEll, sh.BankElr, sh.Fcw, sh.Fcd, sh.Zl, sh.Zr)
			case dat.Natural:
				err = natural.Add(elemFid, sh.NxsecNum, xsecNames[sh.NxsecNum])
			}
			if err != nil {
				return 0, err
			}
		}
		blob, err := im.encode(line(left...))
		if err != nil {
			return 0, err
		}
		if err := chans.Add(segFid, fmt.Sprintf("Channel %v", segFid), s.DepInitial, s.FroudC, s.RoughAdj, s.Isedn, blob); err != nil {
			return 0, err
		}
	}
	for _, c := range ch.Confluences {
		ef, ok := elemOf[c.Cell]
		if !ok {
			return 0, gpkg.ReferenceError{Table: "chan_elems", Fid: c.Cell}
		}
		blob, err := im.encode(pts[c.Cell])
		if err != nil {
			return 0, err
		}
		if err := confluences.Add(c.Type, ef, blob); err != nil {
			return 0, err
		}
	}
	for _, cell := range ch.NoExchange {
		blob, err := im.encode(pts[cell])
		if err != nil {
			return 0, err
		}
		if err := noexchange.Add(cell, blob); err != nil {
			return 0, err
		}
	}
	frags := []*gpkg.Fragment{chans, elems, rect, variable, trap, natural, stations, confluences, noexchange}
	return im.load(chanTables, frags)
}
