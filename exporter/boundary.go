package exporter

import (
	"database/sql"
	"strconv"

	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
)

func (ex *Exporter) exportInflow() ([]byte, error) {
	cfg, err := control.Load(ex.c)
	if err != nil {
		return nil, err
	}
	in := dat.Inflow{}
	if v := cfg.Raw("IHOURDAILY"); v != "" {
		if in.IHourDaily, err = strconv.Atoi(v); err != nil {
			return nil, control.ConfigError{Name: "IHOURDAILY", Reason: err.Error()}
		}
	}
	if cfg.Has("IDEPLT") {
		v, err := strconv.Atoi(cfg.Raw("IDEPLT"))
		if err != nil {
			return nil, control.ConfigError{Name: "IDEPLT", Reason: err.Error()}
		}
		in.IDePlt = dat.Some(float64(v))
	}
	series := make(map[int][]dat.HydrographPoint)
	err = ex.each("SELECT series_fid, time, value, value2 FROM inflow_time_series_data ORDER BY series_fid, fid", func(rows *sql.Rows) error {
		var fid int
		var p dat.HydrographPoint
		var v2 sql.NullFloat64
		if err := rows.Scan(&fid, &p.Time, &p.Value, &v2); err != nil {
			return err
		}
		p.Value2 = optional(v2)
		series[fid] = append(series[fid], p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each(`SELECT i.ident, i.inoutfc, c.grid_fid, i.time_series_fid
		FROM inflow i JOIN inflow_cells c ON c.inflow_fid = i.fid
		ORDER BY i.fid, c.fid`, func(rows *sql.Rows) error {
		var e dat.InflowEntry
		var ts sql.NullInt64
		if err := rows.Scan(&e.Ident, &e.InOutFc, &e.Cell, &ts); err != nil {
			return err
		}
		e.Series = series[int(ts.Int64)]
		in.Entries = append(in.Entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT grid_fid, wsel, n_value FROM reservoirs ORDER BY fid", func(rows *sql.Rows) error {
		var r dat.Reservoir
		var n sql.NullFloat64
		if err := rows.Scan(&r.Cell, &r.Wsel, &n); err != nil {
			return err
		}
		r.NValue = optional(n)
		in.Reservoirs = append(in.Reservoirs, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return in.ToBytes(), nil
}

func (ex *Exporter) exportOutflow() ([]byte, error) {
	series := make(map[int][]dat.TimeValue)
	err := ex.each("SELECT series_fid, time, value FROM outflow_time_series_data ORDER BY series_fid, fid", func(rows *sql.Rows) error {
		var fid int
		var tv dat.TimeValue
		if err := rows.Scan(&fid, &tv.Time, &tv.Value); err != nil {
			return err
		}
		series[fid] = append(series[fid], tv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	params := make(map[int][]dat.QhParam)
	err = ex.each("SELECT params_fid, hmax, coef, exponent FROM qh_params_data ORDER BY params_fid, fid", func(rows *sql.Rows) error {
		var fid int
		var q dat.QhParam
		if err := rows.Scan(&fid, &q.Hmax, &q.Coef, &q.Exponent); err != nil {
			return err
		}
		params[fid] = append(params[fid], q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tables := make(map[int][]dat.QhRow)
	err = ex.each("SELECT table_fid, depth, q FROM qh_table_data ORDER BY table_fid, fid", func(rows *sql.Rows) error {
		var fid int
		var q dat.QhRow
		if err := rows.Scan(&fid, &q.Depth, &q.Q); err != nil {
			return err
		}
		tables[fid] = append(tables[fid], q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := dat.Outflow{}
	err = ex.each(`SELECT o.chan_out, o.fp_out, o.hydro_out, o.chan_tser_fid, o.chan_qhpar_fid, o.chan_qhtab_fid, o.fp_tser_fid, c.grid_fid
		FROM outflow o JOIN outflow_cells c ON c.outflow_fid = o.fid
		ORDER BY o.fid, c.fid`, func(rows *sql.Rows) error {
		var chanOut, fpOut, hydroOut, chanTser, qhpar, qhtab, fpTser, cell int
		if err := rows.Scan(&chanOut, &fpOut, &hydroOut, &chanTser, &qhpar, &qhtab, &fpTser, &cell); err != nil {
			return err
		}
		if chanOut > 0 {
			out.Entries = append(out.Entries, dat.OutflowEntry{
				Kind: dat.ChannelOutflowPrefix, Cell: cell, QhParams: params[qhpar], QhTable: tables[qhtab],
			})
		}
		if fpOut > 0 {
			out.Entries = append(out.Entries, dat.OutflowEntry{Kind: dat.FloodplainOutflowPrefix, Cell: cell})
		}
		if hydroOut > 0 {
			out.Entries = append(out.Entries, dat.OutflowEntry{
				Kind: dat.FloodplainOutflowPrefix + strconv.Itoa(hydroOut), Cell: cell,
			})
		}
		if fpTser > 0 {
			out.Entries = append(out.Entries, dat.OutflowEntry{Kind: dat.StageTimePrefix, Cell: cell, NoStacFp: 0, Series: series[fpTser]})
		}
		if chanTser > 0 {
			out.Entries = append(out.Entries, dat.OutflowEntry{Kind: dat.StageTimePrefix, Cell: cell, NoStacFp: 1, Series: series[chanTser]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out.ToBytes(), nil
}
