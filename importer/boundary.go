package importer

import (
	"fmt"
	"strconv"

	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
)

var inflowTables = []string{"inflow", "inflow_cells", "inflow_time_series", "inflow_time_series_data", "reservoirs"}

func (im *Importer) importInflow() (int, error) {
	in, err := dat.ReadInflow(im.path(dat.InflowFamily))
	if err != nil {
		return 0, err
	}
	ids := cellIds(in.Entries, func(e dat.InflowEntry) int { return e.Cell })
	ids = append(ids, cellIds(in.Reservoirs, func(r dat.Reservoir) int { return r.Cell })...)
	pts, err := im.centroids(ids)
	if err != nil {
		return 0, err
	}
	inflow := gpkg.NewFragment("INSERT INTO inflow (fid, name, time_series_fid, ident, inoutfc) VALUES", 5)
	cells := gpkg.NewFragment("INSERT INTO inflow_cells (inflow_fid, grid_fid, geom) VALUES", 3)
	series := gpkg.NewFragment("INSERT INTO inflow_time_series (fid, name) VALUES", 2)
	data := gpkg.NewFragment("INSERT INTO inflow_time_series_data (series_fid, time, value, value2) VALUES", 4)
	reservoirs := gpkg.NewFragment("INSERT INTO reservoirs (grid_fid, wsel, n_value, geom) VALUES", 4)
	for i, e := range in.Entries {
		fid := i + 1
		if err := inflow.Add(fid, fmt.Sprintf("Inflow %v", fid), fid, e.Ident, e.InOutFc); err != nil {
			return 0, err
		}
		if err := series.Add(fid, fmt.Sprintf("Time series %v", fid)); err != nil {
			return 0, err
		}
		blob, err := im.encode(pts[e.Cell])
		if err != nil {
			return 0, err
		}
		if err := cells.Add(fid, e.Cell, blob); err != nil {
			return 0, err
		}
		for _, h := range e.Series {
			if err := data.Add(fid, h.Time, h.Value, h.Value2.Any()); err != nil {
				return 0, err
			}
		}
	}
	for _, r := range in.Reservoirs {
		blob, err := im.encode(pts[r.Cell])
		if err != nil {
			return 0, err
		}
		if err := reservoirs.Add(r.Cell, r.Wsel, r.NValue.Any(), blob); err != nil {
			return 0, err
		}
	}
	header := func(tx *gpkg.Container) error {
		cfg := control.NewConfig()
		cfg.Set("IHOURDAILY", strconv.Itoa(in.IHourDaily))
		names := []string{"IHOURDAILY"}
		if in.IDePlt.Valid {
			cfg.Set("IDEPLT", strconv.Itoa(int(in.IDePlt.Value)))
			names = append(names, "IDEPLT")
		}
		return cfg.Save(tx, names...)
	}
	return im.load(inflowTables, []*gpkg.Fragment{inflow, cells, series, data, reservoirs}, header)
}

var outflowTables = []string{
	"outflow", "outflow_cells", "outflow_time_series", "outflow_time_series_data",
	"qh_params", "qh_params_data", "qh_table", "qh_table_data",
}

// OutflowTypeSQL derives outflow.type from the populated columns. The first
// matching branch wins.
const OutflowTypeSQL = `UPDATE outflow SET type = CASE
	WHEN fp_out > 0 AND chan_out = 0 AND fp_tser_fid = 0 THEN 1
	WHEN fp_out = 0 AND chan_out > 0 AND chan_tser_fid = 0 AND chan_qhpar_fid = 0 AND chan_qhtab_fid = 0 THEN 2
	WHEN fp_out > 0 AND chan_out > 0 THEN 3
	WHEN hydro_out > 0 THEN 4
	WHEN fp_out = 0 AND fp_tser_fid > 0 THEN 5
	WHEN chan_out = 0 AND chan_tser_fid > 0 THEN 6
	WHEN fp_out > 0 AND fp_tser_fid > 0 THEN 7
	WHEN chan_out > 0 AND chan_tser_fid > 0 THEN 8
	WHEN chan_out = 0 AND chan_qhpar_fid > 0 THEN 9
	WHEN chan_out > 0 AND chan_qhpar_fid > 0 THEN 10
	WHEN chan_qhtab_fid > 0 THEN 11
	ELSE 0 END`

// outflowRow gathers the outflow flags of one cell.
type outflowRow struct {
	cell                           int
	chanOut, fpOut, hydroOut       int
	chanTser, qhpar, qhtab, fpTser int
}

func (im *Importer) importOutflow() (int, error) {
	out, err := dat.ReadOutflow(im.path(dat.OutflowFamily))
	if err != nil {
		return 0, err
	}
	pts, err := im.centroids(cellIds(out.Entries, func(e dat.OutflowEntry) int { return e.Cell }))
	if err != nil {
		return 0, err
	}
	outflow := gpkg.NewFragment("INSERT INTO outflow (fid, name, chan_out, fp_out, hydro_out, chan_tser_fid, chan_qhpar_fid, chan_qhtab_fid, fp_tser_fid) VALUES", 9)
	cells := gpkg.NewFragment("INSERT INTO outflow_cells (outflow_fid, grid_fid, geom) VALUES", 3)
	series := gpkg.NewFragment("INSERT INTO outflow_time_series (fid, name) VALUES", 2)
	data := gpkg.NewFragment("INSERT INTO outflow_time_series_data (series_fid, time, value) VALUES", 3)
	params := gpkg.NewFragment("INSERT INTO qh_params (fid, name) VALUES", 2)
	paramsData := gpkg.NewFragment("INSERT INTO qh_params_data (params_fid, hmax, coef, exponent) VALUES", 4)
	table := gpkg.NewFragment("INSERT INTO qh_table (fid, name) VALUES", 2)
	tableData := gpkg.NewFragment("INSERT INTO qh_table_data (table_fid, depth, q) VALUES", 3)
	nSeries, nParams, nTables := 0, 0, 0
	// entries naming the same cell share one outflow row
	merged := make([]*outflowRow, 0, len(out.Entries))
	byCell := make(map[int]*outflowRow)
	for _, e := range out.Entries {
		r, ok := byCell[e.Cell]
		if !ok {
			r = &outflowRow{cell: e.Cell}
			byCell[e.Cell] = r
			merged = append(merged, r)
		}
		if h := e.HydroOut(); h > 0 {
			r.hydroOut = h
		}
		switch e.Kind {
		case dat.ChannelOutflowPrefix:
			r.chanOut = 1
		case dat.FloodplainOutflowPrefix:
			r.fpOut = 1
		case dat.StageTimePrefix:
			nSeries++
			if err := series.Add(nSeries, fmt.Sprintf("Time series %v", nSeries)); err != nil {
				return 0, err
			}
			for _, s := range e.Series {
				if err := data.Add(nSeries, s.Time, s.Value); err != nil {
					return 0, err
				}
			}
			if e.NoStacFp == 0 {
				r.fpTser = nSeries
			} else {
				r.chanTser = nSeries
			}
		}
		if len(e.QhParams) > 0 {
			nParams++
			r.qhpar = nParams
			if err := params.Add(nParams, fmt.Sprintf("Q(h) parameters %v", nParams)); err != nil {
				return 0, err
			}
			for _, q := range e.QhParams {
				if err := paramsData.Add(nParams, q.Hmax, q.Coef, q.Exponent); err != nil {
					return 0, err
				}
			}
		}
		if len(e.QhTable) > 0 {
			nTables++
			r.qhtab = nTables
			if err := table.Add(nTables, fmt.Sprintf("Q(h) table %v", nTables)); err != nil {
				return 0, err
			}
			for _, q := range e.QhTable {
				if err := tableData.Add(nTables, q.Depth, q.Q); err != nil {
					return 0, err
				}
			}
		}
	}
	for i, r := range merged {
		fid := i + 1
		if err := outflow.Add(fid, fmt.Sprintf("Outflow %v", fid), r.chanOut, r.fpOut, r.hydroOut, r.chanTser, r.qhpar, r.qhtab, r.fpTser); err != nil {
			return 0, err
		}
		blob, err := im.encode(pts[r.cell])
		if err != nil {
			return 0, err
		}
		if err := cells.Add(fid, r.cell, blob); err != nil {
			return 0, err
		}
	}
	classify := func(tx *gpkg.Container) error {
		_, err := tx.Exec(OutflowTypeSQL)
		return err
	}
	return im.load(outflowTables, []*gpkg.Fragment{outflow, cells, series, data, params, paramsData, table, tableData}, classify)
}
