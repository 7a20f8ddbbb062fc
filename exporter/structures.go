package exporter

import (
	"database/sql"
	"strconv"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
)

func (ex *Exporter) exportHystruc() ([]byte, error) {
	curves := make(map[int][]dat.RatingCurve)
	err := ex.each(`SELECT struct_fid, hdepexc, coefq, expq, coefa, expa, repdep, rqcoef, rqexp, rqcoefa, rqexpa
		FROM rat_curves ORDER BY fid`, func(rows *sql.Rows) error {
		var fid int
		var c dat.RatingCurve
		err := rows.Scan(&fid, &c.HDepExc, &c.CoefQ, &c.ExpQ, &c.CoefA, &c.ExpA, &c.RepDep, &c.RqCoef, &c.RqExp, &c.RqCoefA, &c.RqExpA)
		if err != nil {
			return err
		}
		curves[fid] = append(curves[fid], c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	table := make(map[int][]dat.RatingRow)
	err = ex.each("SELECT struct_fid, hdepth, qtable, atable FROM rat_table ORDER BY fid", func(rows *sql.Rows) error {
		var fid int
		var r dat.RatingRow
		if err := rows.Scan(&fid, &r.HDepth, &r.QTable, &r.ATable); err != nil {
			return err
		}
		table[fid] = append(table[fid], r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	culverts := make(map[int][]dat.Culvert)
	err = ex.each("SELECT struct_fid, typec, typeen, culvertn, ke, cubase FROM culvert_equations ORDER BY fid", func(rows *sql.Rows) error {
		var fid int
		var c dat.Culvert
		if err := rows.Scan(&fid, &c.TypeC, &c.TypeEn, &c.CulvertN, &c.Ke, &c.CuBase); err != nil {
			return err
		}
		culverts[fid] = append(culverts[fid], c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	hs := dat.Hystruc{}
	err = ex.each(`SELECT fid, name, ifporchan, icurvtable, inflonode, outflonode, inoutcont, headrefel, clength, cdiameter
		FROM hystruc ORDER BY fid`, func(rows *sql.Rows) error {
		var fid int
		var s dat.Structure
		err := rows.Scan(&fid, &s.Name, &s.IfPorChan, &s.ICurvTable, &s.InfloNode, &s.OutfloNode, &s.InOutCont,
			&s.HeadRefEl, &s.CLength, &s.CDiameter)
		if err != nil {
			return err
		}
		s.Curves, s.Table, s.Culverts = curves[fid], table[fid], culverts[fid]
		hs.Structures = append(hs.Structures, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hs.ToBytes(), nil
}

func (ex *Exporter) exportStreets() ([]byte, error) {
	st := dat.Streets{}
	err := ex.c.QueryRow("SELECT strman, istrflo, strfno, depx, widst FROM street_general ORDER BY fid LIMIT 1").
		Scan(&st.StrMan, &st.IStrFlo, &st.StrFno, &st.DepX, &st.WidSt)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	elems := make(map[int][]dat.StreetElem)
	err = ex.each("SELECT seg_fid, istrdir, widr FROM street_elems ORDER BY fid", func(rows *sql.Rows) error {
		var fid int
		var e dat.StreetElem
		if err := rows.Scan(&fid, &e.IStrDir, &e.WidR); err != nil {
			return err
		}
		elems[fid] = append(elems[fid], e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	segs := make(map[int][]dat.StreetSeg)
	err = ex.each("SELECT fid, str_fid, igridn, depex, stman, elstr FROM street_seg ORDER BY fid", func(rows *sql.Rows) error {
		var fid, str int
		var g dat.StreetSeg
		if err := rows.Scan(&fid, &str, &g.Cell, &g.DepEx, &g.StMan, &g.ElStr); err != nil {
			return err
		}
		g.Elems = elems[fid]
		segs[str] = append(segs[str], g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT fid, stname FROM streets ORDER BY fid", func(rows *sql.Rows) error {
		var fid int
		var name sql.NullString
		if err := rows.Scan(&fid, &name); err != nil {
			return err
		}
		s := dat.Street{Name: name.String, Segments: segs[fid]}
		if s.Name == "" {
			s.Name = "STREET" + strconv.Itoa(fid)
		}
		st.Streets = append(st.Streets, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st.ToBytes(), nil
}

// exportArf folds any per blocker rows into one row per cell: side factors
// add up to at most 1 and the largest area factor wins. A fully blocked cell
// is written as a T row.
func (ex *Exporter) exportArf() ([]byte, error) {
	a := dat.Arf{}
	cfg, err := control.Load(ex.c)
	if err != nil {
		return nil, err
	}
	if cfg.Has("ARFBLOCKMOD") {
		v, err := strconv.ParseFloat(cfg.Raw("ARFBLOCKMOD"), 64)
		if err != nil {
			return nil, control.ConfigError{Name: "ARFBLOCKMOD", Reason: err.Error()}
		}
		a.ArfBlockMod = dat.Some(v)
	}
	err = ex.each(`SELECT grid_fid, MAX(arf),
		MIN(SUM(wrf1), 1), MIN(SUM(wrf2), 1), MIN(SUM(wrf3), 1), MIN(SUM(wrf4), 1),
		MIN(SUM(wrf5), 1), MIN(SUM(wrf6), 1), MIN(SUM(wrf7), 1), MIN(SUM(wrf8), 1)
		FROM blocked_cells GROUP BY grid_fid ORDER BY MIN(fid)`, func(rows *sql.Rows) error {
		var b dat.BlockedCell
		w := &b.Wrf
		if err := rows.Scan(&b.Cell, &b.Arf, &w[0], &w[1], &w[2], &w[3], &w[4], &w[5], &w[6], &w[7]); err != nil {
			return err
		}
		if b.Arf >= 1 {
			a.Total = append(a.Total, b.Cell)
			return nil
		}
		a.Partial = append(a.Partial, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a.ToBytes(), nil
}

func (ex *Exporter) exportMult() ([]byte, error) {
	m := dat.Mult{}
	err := ex.c.QueryRow("SELECT wmc, wdrall, dmall, nodchansall, xnmultall, sslopemin, sslopemax, avuport FROM mult ORDER BY fid LIMIT 1").
		Scan(&m.Wmc, &m.WdrAll, &m.DmAll, &m.NodChnsAll, &m.XnMultAll, &m.SSlopeMin, &m.SSlopeMax, &m.AvuPort)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	err = ex.each("SELECT grid_fid, wdr, dm, nodchns, xnmult FROM mult_cells ORDER BY fid", func(rows *sql.Rows) error {
		var c dat.MultCell
		if err := rows.Scan(&c.Cell, &c.Wdr, &c.Dm, &c.NodChns, &c.XnMult); err != nil {
			return err
		}
		m.Cells = append(m.Cells, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.ToBytes(), nil
}
