package exporter

import (
	"database/sql"
	"strconv"

	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
)

// shapes reads the type specific rows keyed by element fid.
func (ex *Exporter) shapes() (map[int]dat.Shape, error) {
	out := make(map[int]dat.Shape)
	err := ex.each("SELECT elem_fid, bankell, bankelr, fcw, fcd FROM chan_r", func(rows *sql.Rows) error {
		var fid int
		var s dat.Rectangular
		if err := rows.Scan(&fid, &s.BankEll, &s.BankElr, &s.Fcw, &s.Fcd); err != nil {
			return err
		}
		out[fid] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each(`SELECT elem_fid, bankell, bankelr, fcd, a1, a2, b1, b2, c1, c2, excdep,
		a11, a22, b11, b22, c11, c22 FROM chan_v`, func(rows *sql.Rows) error {
		var fid int
		var s dat.Variable
		l, u := &s.Lower, &s.Upper
		err := rows.Scan(&fid, &s.BankEll, &s.BankElr, &s.Fcd, &l[0], &l[1], &l[2], &l[3], &l[4], &l[5],
			&s.ExcDep, &u[0], &u[1], &u[2], &u[3], &u[4], &u[5])
		if err != nil {
			return err
		}
		out[fid] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT elem_fid, bankell, bankelr, fcw, fcd, zl, zr FROM chan_t", func(rows *sql.Rows) error {
		var fid int
		var s dat.Trapezoidal
		if err := rows.Scan(&fid, &s.BankEll, &s.BankElr, &s.Fcw, &s.Fcd, &s.Zl, &s.Zr); err != nil {
			return err
		}
		out[fid] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT elem_fid, nxsecnum FROM chan_n", func(rows *sql.Rows) error {
		var fid int
		var s dat.Natural
		if err := rows.Scan(&fid, &s.NxsecNum); err != nil {
			return err
		}
		out[fid] = s
		return nil
	})
	return out, err
}

func (ex *Exporter) exportChan() ([]byte, error) {
	shapes, err := ex.shapes()
	if err != nil {
		return nil, err
	}
	ch := dat.Chan{}
	segOf := make(map[int]int)
	err = ex.each("SELECT fid, depinitial, froudc, roughadj, isedn FROM chan ORDER BY fid", func(rows *sql.Rows) error {
		var fid int
		var dep, fr, rough sql.NullFloat64
		var isedn sql.NullInt64
		if err := rows.Scan(&fid, &dep, &fr, &rough, &isedn); err != nil {
			return err
		}
		segOf[fid] = len(ch.Segments)
		ch.Segments = append(ch.Segments, dat.Segment{
			DepInitial: dep.Float64, FroudC: fr.Float64, RoughAdj: rough.Float64, Isedn: int(isedn.Int64),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT fid, grid_fid, seg_fid, fcn, xlen FROM chan_elems ORDER BY seg_fid, nr_in_seg", func(rows *sql.Rows) error {
		var fid, seg int
		var e dat.ChanElement
		if err := rows.Scan(&fid, &e.Cell, &seg, &e.Fcn, &e.Xlen); err != nil {
			return err
		}
		i, ok := segOf[seg]
		if !ok {
			return gpkg.ReferenceError{Table: "chan", Fid: seg}
		}
		if e.Shape, ok = shapes[fid]; !ok {
			return gpkg.ReferenceError{Table: "chan_r/v/t/n", Fid: fid}
		}
		ch.Segments[i].Elements = append(ch.Segments[i].Elements, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each(`SELECT c.conf_type, e.grid_fid FROM chan_confluences c
		JOIN chan_elems e ON e.fid = c.chan_elem_fid ORDER BY c.fid`, func(rows *sql.Rows) error {
		var cf dat.Confluence
		if err := rows.Scan(&cf.Type, &cf.Cell); err != nil {
			return err
		}
		ch.Confluences = append(ch.Confluences, cf)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT grid_fid FROM noexchange_chan_cells ORDER BY fid", func(rows *sql.Rows) error {
		var cell int
		if err := rows.Scan(&cell); err != nil {
			return err
		}
		ch.NoExchange = append(ch.NoExchange, cell)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ch.ToBytes(), nil
}

func (ex *Exporter) exportChanbank() ([]byte, error) {
	cb := dat.Chanbank{}
	err := ex.each("SELECT grid_fid, rbankgrid FROM chan_elems WHERE rbankgrid > 0 ORDER BY seg_fid, nr_in_seg", func(rows *sql.Rows) error {
		var p dat.BankPair
		if err := rows.Scan(&p.Left, &p.Right); err != nil {
			return err
		}
		cb.Pairs = append(cb.Pairs, p)
		return nil
	})
	if err != nil || len(cb.Pairs) == 0 {
		return nil, err
	}
	return cb.ToBytes(), nil
}

func (ex *Exporter) exportXsec() ([]byte, error) {
	names := make(map[int]string)
	err := ex.each("SELECT nxsecnum, xsecname FROM chan_n ORDER BY fid", func(rows *sql.Rows) error {
		var n int
		var name sql.NullString
		if err := rows.Scan(&n, &name); err != nil {
			return err
		}
		if name.String != "" {
			names[n] = name.String
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	xs := dat.Xsec{}
	index := make(map[int]int)
	err = ex.each("SELECT chan_n_nxsecnum, xi, yi FROM xsec_n_data ORDER BY chan_n_nxsecnum, fid", func(rows *sql.Rows) error {
		var n int
		var st dat.Station
		if err := rows.Scan(&n, &st.X, &st.Y); err != nil {
			return err
		}
		i, ok := index[n]
		if !ok {
			name, ok := names[n]
			if !ok {
				name = "XS" + strconv.Itoa(n)
			}
			i = len(xs.Sections)
			index[n] = i
			xs.Sections = append(xs.Sections, dat.CrossSection{NxsecNum: n, Name: name})
		}
		xs.Sections[i].Stations = append(xs.Sections[i].Stations, st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return xs.ToBytes(), nil
}
