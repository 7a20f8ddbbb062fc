package exporter

import (
	"database/sql"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/dat"
)

func (ex *Exporter) exportRain() ([]byte, error) {
	rn := dat.Rain{}
	var ts sql.NullInt64
	var speed sql.NullFloat64
	var dir sql.NullInt64
	err := ex.c.QueryRow(`SELECT irainreal, irainbuilding, time_series_fid, tot_rainfall, rainabs, irainarf, movingstorm, rainspeed, iraindir
		FROM rain ORDER BY fid LIMIT 1`).Scan(&rn.IRainReal, &rn.IRainBuilding, &ts, &rn.TotalRainfall, &rn.RainAbs, &rn.IRainArf, &rn.MovingStorm, &speed, &dir)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	rn.Speed, rn.Direction = speed.Float64, int(dir.Int64)
	err = ex.each("SELECT time, value FROM rain_time_series_data WHERE series_fid = ? ORDER BY fid", func(rows *sql.Rows) error {
		var tv dat.TimeValue
		if err := rows.Scan(&tv.Time, &tv.Value); err != nil {
			return err
		}
		rn.Series = append(rn.Series, tv)
		return nil
	}, ts.Int64)
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT grid_fid, arf FROM rain_arf_cells ORDER BY fid", func(rows *sql.Rows) error {
		var cv dat.CellValue
		if err := rows.Scan(&cv.Cell, &cv.Value); err != nil {
			return err
		}
		rn.Arf = append(rn.Arf, cv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rn.ToBytes(), nil
}

func (ex *Exporter) exportRaincell() ([]byte, error) {
	rc := dat.Raincell{}
	var stamp sql.NullString
	err := ex.c.QueryRow("SELECT rainintime, irinters, timestamp FROM raincell ORDER BY fid LIMIT 1").Scan(&rc.Interval, &rc.IRInters, &stamp)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	rc.Timestamp = stamp.String
	err = ex.each("SELECT time_interval, rrgrid, iraindum FROM raincell_data ORDER BY fid", func(rows *sql.Rows) error {
		var v dat.RaincellValue
		if err := rows.Scan(&v.Interval, &v.Cell, &v.Value); err != nil {
			return err
		}
		rc.Values = append(rc.Values, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rc.ToBytes(), nil
}

func (ex *Exporter) exportInfil() ([]byte, error) {
	in := dat.Infil{}
	var hydcxx sql.NullFloat64
	var infchan sql.NullInt64
	var v [13]sql.NullFloat64
	err := ex.c.QueryRow(`SELECT infmethod, abstr, sati, satf, poros, soild, infchan, hydcall, soilall, hydcadj, hydcxx,
		scsnall, abstr1, fhortoni, fhortonf, decaya FROM infil ORDER BY fid LIMIT 1`).Scan(
		&in.Method, &v[0], &v[1], &v[2], &v[3], &v[4], &infchan, &v[5], &v[6], &v[7], &hydcxx,
		&v[8], &v[9], &v[10], &v[11], &v[12])
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	in.Abstr, in.Sati, in.Satf, in.Poros, in.SoilD = v[0].Float64, v[1].Float64, v[2].Float64, v[3].Float64, v[4].Float64
	in.InfChan = int(infchan.Int64)
	in.HydcAll, in.SoilAll, in.HydcAdj = v[5].Float64, v[6].Float64, v[7].Float64
	in.HydcXX = optional(hydcxx)
	in.ScsnAll, in.Abstr1 = v[8].Float64, v[9].Float64
	in.FHortonI, in.FHortonF, in.DecayA = v[10].Float64, v[11].Float64, v[12].Float64
	err = ex.each("SELECT grid_fid, hydc, soils, dtheta, abstrinf, rtimpf, soil_depth FROM infil_cells_green ORDER BY fid", func(rows *sql.Rows) error {
		var c dat.GreenAmptCell
		if err := rows.Scan(&c.Cell, &c.Hydc, &c.Soils, &c.Dtheta, &c.AbstrInf, &c.RtImpF, &c.SoilDepth); err != nil {
			return err
		}
		in.Green = append(in.Green, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT grid_fid, scsn FROM infil_cells_scs ORDER BY fid", func(rows *sql.Rows) error {
		var c dat.CellValue
		if err := rows.Scan(&c.Cell, &c.Value); err != nil {
			return err
		}
		in.Scs = append(in.Scs, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT grid_fid, fhorti, fhortf, deca FROM infil_cells_horton ORDER BY fid", func(rows *sql.Rows) error {
		var c dat.HortonCell
		if err := rows.Scan(&c.Cell, &c.FHorti, &c.FHortf, &c.Deca); err != nil {
			return err
		}
		in.Horton = append(in.Horton, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT grid_fid, hydconch FROM infil_chan_elems ORDER BY fid", func(rows *sql.Rows) error {
		var c dat.CellValue
		if err := rows.Scan(&c.Cell, &c.Value); err != nil {
			return err
		}
		in.Channel = append(in.Channel, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return in.ToBytes(), nil
}

func (ex *Exporter) exportEvapor() ([]byte, error) {
	ev := dat.Evapor{}
	err := ex.c.QueryRow("SELECT ievapmonth, iday, clocktime FROM evapor ORDER BY fid LIMIT 1").Scan(&ev.IEvapMonth, &ev.IDay, &ev.ClockTime)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	hourly := make(map[string][]float64)
	err = ex.each("SELECT month, hourly_evap FROM evapor_hourly ORDER BY fid", func(rows *sql.Rows) error {
		var month string
		var v float64
		if err := rows.Scan(&month, &v); err != nil {
			return err
		}
		hourly[month] = append(hourly[month], v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT month, monthly_evap FROM evapor_monthly ORDER BY fid", func(rows *sql.Rows) error {
		var m dat.EvaporMonth
		if err := rows.Scan(&m.Name, &m.Evap); err != nil {
			return err
		}
		m.Hourly = hourly[m.Name]
		ev.Months = append(ev.Months, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev.ToBytes(), nil
}
