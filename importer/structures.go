package importer

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
)

var hystrucTables = []string{"hystruc", "rat_curves", "rat_table", "culvert_equations"}

func (im *Importer) importHystruc() (int, error) {
	hs, err := dat.ReadHystruc(im.path(dat.HystrucFamily))
	if err != nil {
		return 0, err
	}
	ids := make([]int, 0, 2*len(hs.Structures))
	for _, s := range hs.Structures {
		ids = append(ids, s.InfloNode, s.OutfloNode)
	}
	pts, err := im.centroids(ids)
	if err != nil {
		return 0, err
	}
	head := gpkg.NewFragment(`INSERT INTO hystruc (fid, name, ifporchan, icurvtable, inflonode, outflonode, inoutcont,
		headrefel, clength, cdiameter, geom) VALUES`, 11)
	curves := gpkg.NewFragment(`INSERT INTO rat_curves (struct_fid, hdepexc, coefq, expq, coefa, expa,
		repdep, rqcoef, rqexp, rqcoefa, rqexpa) VALUES`, 11)
	table := gpkg.NewFragment("INSERT INTO rat_table (struct_fid, hdepth, qtable, atable) VALUES", 4)
	culverts := gpkg.NewFragment("INSERT INTO culvert_equations (struct_fid, typec, typeen, culvertn, ke, cubase) VALUES", 6)
	for i, s := range hs.Structures {
		fid := i + 1
		blob, err := im.encode(line(pts[s.InfloNode], pts[s.OutfloNode]))
		if err != nil {
			return 0, err
		}
		err = head.Add(fid, s.Name, s.IfPorChan, s.ICurvTable, s.InfloNode, s.OutfloNode, s.InOutCont,
			s.HeadRefEl, s.CLength, s.CDiameter, blob)
		if err != nil {
			return 0, err
		}
		for _, c := range s.Curves {
			err := curves.Add(fid, c.HDepExc, c.CoefQ, c.ExpQ, c.CoefA, c.ExpA, c.RepDep, c.RqCoef, c.RqExp, c.RqCoefA, c.RqExpA)
			if err != nil {
				return 0, err
			}
		}
		for _, r := range s.Table {
			if err := table.Add(fid, r.HDepth, r.QTable, r.ATable); err != nil {
				return 0, err
			}
		}
		for _, c := range s.Culverts {
			if err := culverts.Add(fid, c.TypeC, c.TypeEn, c.CulvertN, c.Ke, c.CuBase); err != nil {
				return 0, err
			}
		}
	}
	return im.load(hystrucTables, []*gpkg.Fragment{head, curves, table, culverts})
}

var streetTables = []string{"street_general", "streets", "street_seg", "street_elems"}

// importStreets rebuilds the spokes of every street cell from its W rows.
func (im *Importer) importStreets() (int, error) {
	st, err := dat.ReadStreets(im.path(dat.StreetFamily))
	if err != nil {
		return 0, err
	}
	size, err := im.cellSize()
	if err != nil {
		return 0, err
	}
	ids := make([]int, 0)
	for _, s := range st.Streets {
		ids = append(ids, cellIds(s.Segments, func(g dat.StreetSeg) int { return g.Cell })...)
	}
	pts, err := im.centroids(ids)
	if err != nil {
		return 0, err
	}
	general := gpkg.NewFragment("INSERT INTO street_general (fid, strman, istrflo, strfno, depx, widst) VALUES", 6)
	streets := gpkg.NewFragment("INSERT INTO streets (fid, stname, geom) VALUES", 3)
	segs := gpkg.NewFragment("INSERT INTO street_seg (fid, str_fid, igridn, depex, stman, elstr, geom) VALUES", 7)
	elems := gpkg.NewFragment("INSERT INTO street_elems (seg_fid, istrdir, widr) VALUES", 3)
	if err := general.Add(1, st.StrMan, st.IStrFlo, st.StrFno, st.DepX, st.WidSt); err != nil {
		return 0, err
	}
	segFid := 0
	for i, s := range st.Streets {
		strFid := i + 1
		all := orb.MultiLineString{}
		for _, g := range s.Segments {
			segFid++
			dirs := make([]int, 0, len(g.Elems))
			for _, e := range g.Elems {
				dirs = append(dirs, e.IStrDir)
				if err := elems.Add(segFid, e.IStrDir, e.WidR); err != nil {
					return 0, err
				}
			}
			spokes, err := geometry.Spokes(pts[g.Cell], dirs, size)
			if err != nil {
				return 0, err
			}
			all = append(all, spokes...)
			blob, err := im.encode(spokes)
			if err != nil {
				return 0, err
			}
			if err := segs.Add(segFid, strFid, g.Cell, g.DepEx, g.StMan, g.ElStr, blob); err != nil {
				return 0, err
			}
		}
		blob, err := im.encode(all)
		if err != nil {
			return 0, err
		}
		if err := streets.Add(strFid, s.Name, blob); err != nil {
			return 0, err
		}
	}
	return im.load(streetTables, []*gpkg.Fragment{general, streets, segs, elems})
}

// importArf stores totally blocked cells as arf 1 with every side blocked;
// the exporter writes any such cell back as a T row.
func (im *Importer) importArf() (int, error) {
	a, err := dat.ReadArf(im.path(dat.ArfFamily))
	if err != nil {
		return 0, err
	}
	ids := append([]int{}, a.Total...)
	ids = append(ids, cellIds(a.Partial, func(b dat.BlockedCell) int { return b.Cell })...)
	pts, err := im.centroids(ids)
	if err != nil {
		return 0, err
	}
	blocked := gpkg.NewFragment(`INSERT INTO blocked_cells (grid_fid, arf, wrf1, wrf2, wrf3, wrf4, wrf5, wrf6, wrf7, wrf8, geom) VALUES`, 11)
	for _, cell := range a.Total {
		if err := im.pointRows(blocked, pts, cell, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0); err != nil {
			return 0, err
		}
	}
	for _, b := range a.Partial {
		w := b.Wrf
		if err := im.pointRows(blocked, pts, b.Cell, b.Arf, w[0], w[1], w[2], w[3], w[4], w[5], w[6], w[7]); err != nil {
			return 0, err
		}
	}
	mod := func(tx *gpkg.Container) error {
		if !a.ArfBlockMod.Valid {
			return nil
		}
		return control.Store(tx, "ARFBLOCKMOD", strconv.FormatFloat(a.ArfBlockMod.Value, 'f', -1, 64))
	}
	return im.load([]string{"blocked_cells"}, []*gpkg.Fragment{blocked}, mod)
}

func (im *Importer) importMult() (int, error) {
	m, err := dat.ReadMult(im.path(dat.MultFamily))
	if err != nil {
		return 0, err
	}
	if err := im.check(cellIds(m.Cells, func(c dat.MultCell) int { return c.Cell })); err != nil {
		return 0, err
	}
	head := gpkg.NewFragment(`INSERT INTO mult (fid, wmc, wdrall, dmall, nodchansall, xnmultall,
		sslopemin, sslopemax, avuport) VALUES`, 9)
	cells := gpkg.NewFragment("INSERT INTO mult_cells (grid_fid, wdr, dm, nodchns, xnmult) VALUES", 5)
	if err := head.Add(1, m.Wmc, m.WdrAll, m.DmAll, m.NodChnsAll, m.XnMultAll, m.SSlopeMin, m.SSlopeMax, m.AvuPort); err != nil {
		return 0, err
	}
	for _, c := range m.Cells {
		if err := cells.Add(c.Cell, c.Wdr, c.Dm, c.NodChns, c.XnMult); err != nil {
			return 0, err
		}
	}
	return im.load([]string{"mult", "mult_cells"}, []*gpkg.Fragment{head, cells})
}
