package exporter

import (
	"database/sql"
	"strconv"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
)

func (ex *Exporter) exportFpxsec() ([]byte, error) {
	fx := dat.Fpxsec{}
	cfg, err := control.Load(ex.c)
	if err != nil {
		return nil, err
	}
	if cfg.Has("NXPRT") {
		if fx.Nxprt, err = strconv.Atoi(cfg.Raw("NXPRT")); err != nil {
			return nil, control.ConfigError{Name: "NXPRT", Reason: err.Error()}
		}
	}
	cells := make(map[int][]int)
	err = ex.each("SELECT fpxsec_fid, grid_fid FROM fpxsec_cells ORDER BY fid", func(rows *sql.Rows) error {
		var fid, cell int
		if err := rows.Scan(&fid, &cell); err != nil {
			return err
		}
		cells[fid] = append(cells[fid], cell)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT fid, iflo FROM fpxsec ORDER BY fid", func(rows *sql.Rows) error {
		var fid int
		var s dat.FloodplainSection
		if err := rows.Scan(&fid, &s.IFlo); err != nil {
			return err
		}
		s.Cells = cells[fid]
		fx.Sections = append(fx.Sections, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fx.ToBytes(), nil
}

func (ex *Exporter) exportGutter() ([]byte, error) {
	g := dat.Gutter{}
	err := ex.c.QueryRow("SELECT strwidth, curbheight, street_n FROM gutter_globals ORDER BY fid LIMIT 1").
		Scan(&g.StrWidth, &g.CurbHeight, &g.StreetN)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	err = ex.each("SELECT grid_fid, width, height, n_value, direction FROM gutter_cells ORDER BY fid", func(rows *sql.Rows) error {
		var c dat.GutterCell
		if err := rows.Scan(&c.Cell, &c.Width, &c.Height, &c.NValue, &c.Direction); err != nil {
			return err
		}
		g.Cells = append(g.Cells, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g.ToBytes(), nil
}

// attribute reads a grid_fid plus value table into a cell attribute file.
func (ex *Exporter) attribute(table, column, prefix string) ([]byte, error) {
	ca := dat.CellAttribute{Prefix: prefix}
	err := ex.each("SELECT grid_fid, "+column+" FROM "+table+" ORDER BY fid", func(rows *sql.Rows) error {
		var v dat.CellValue
		if err := rows.Scan(&v.Cell, &v.Value); err != nil {
			return err
		}
		ca.Values = append(ca.Values, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ca.ToBytes(), nil
}

func (ex *Exporter) exportFpfroude() ([]byte, error) {
	return ex.attribute("fpfroude_cells", "froude", dat.FroudePrefix)
}

func (ex *Exporter) exportShallown() ([]byte, error) {
	return ex.attribute("spatialshallow_cells", "shallow_n", "")
}

func (ex *Exporter) exportTolspatial() ([]byte, error) {
	return ex.attribute("tolspatial_cells", "tol", "")
}

func (ex *Exporter) exportSwmmflo() ([]byte, error) {
	sf := dat.Swmmflo{}
	err := ex.each(`SELECT swmm_jt, swmm_iden, intype, swmm_length, swmm_width, swmm_height, swmm_coeff, swmm_feature, curbheight
		FROM swmmflo ORDER BY fid`, func(rows *sql.Rows) error {
		var in dat.SwmmInlet
		err := rows.Scan(&in.Cell, &in.Name, &in.InType, &in.Length, &in.Width, &in.Height, &in.Coeff, &in.Feature, &in.CurbHeight)
		if err != nil {
			return err
		}
		sf.Inlets = append(sf.Inlets, in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sf.ToBytes(), nil
}

func (ex *Exporter) exportSwmmoutf() ([]byte, error) {
	so := dat.Swmmoutf{}
	err := ex.each("SELECT name, grid_fid, outf_flo FROM swmmoutf ORDER BY fid", func(rows *sql.Rows) error {
		var o dat.SwmmOutfall
		if err := rows.Scan(&o.Name, &o.Cell, &o.OutfFlo); err != nil {
			return err
		}
		so.Outfalls = append(so.Outfalls, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return so.ToBytes(), nil
}

func (ex *Exporter) waterSurface(query string, timed bool) ([]byte, error) {
	ws := dat.Wsurf{Timed: timed}
	err := ex.each(query, func(rows *sql.Rows) error {
		var w dat.WaterSurface
		var t sql.NullFloat64
		dest := []any{&w.Cell, &w.Elev}
		if timed {
			dest = append(dest, &t)
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		w.Time = optional(t)
		ws.Points = append(ws.Points, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ws.ToBytes(), nil
}

func (ex *Exporter) exportWsurf() ([]byte, error) {
	return ex.waterSurface("SELECT grid_fid, wselev FROM wsurf ORDER BY fid", false)
}

func (ex *Exporter) exportWstime() ([]byte, error) {
	return ex.waterSurface("SELECT grid_fid, wselev, wstime FROM wstime ORDER BY fid", true)
}
