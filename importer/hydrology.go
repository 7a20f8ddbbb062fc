package importer

import (
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
)

var rainTables = []string{"rain", "rain_time_series", "rain_time_series_data", "rain_arf_cells"}

func (im *Importer) importRain() (int, error) {
	rn, err := dat.ReadRain(im.path(dat.RainFamily))
	if err != nil {
		return 0, err
	}
	pts, err := im.centroids(cellIds(rn.Arf, func(c dat.CellValue) int { return c.Cell }))
	if err != nil {
		return 0, err
	}
	rain := gpkg.NewFragment("INSERT INTO rain (fid, irainreal, irainbuilding, time_series_fid, tot_rainfall, rainabs, irainarf, movingstorm, rainspeed, iraindir) VALUES", 10)
	series := gpkg.NewFragment("INSERT INTO rain_time_series (fid, name) VALUES", 2)
	data := gpkg.NewFragment("INSERT INTO rain_time_series_data (series_fid, time, value) VALUES", 3)
	arf := gpkg.NewFragment("INSERT INTO rain_arf_cells (grid_fid, arf, geom) VALUES", 3)
	if err := rain.Add(1, rn.IRainReal, rn.IRainBuilding, 1, rn.TotalRainfall, rn.RainAbs, rn.IRainArf, rn.MovingStorm, rn.Speed, rn.Direction); err != nil {
		return 0, err
	}
	if err := series.Add(1, "Rain series"); err != nil {
		return 0, err
	}
	for _, s := range rn.Series {
		if err := data.Add(1, s.Time, s.Value); err != nil {
			return 0, err
		}
	}
	for _, c := range rn.Arf {
		if err := im.pointRows(arf, pts, c.Cell, c.Value); err != nil {
			return 0, err
		}
	}
	return im.load(rainTables, []*gpkg.Fragment{rain, series, data, arf})
}

func (im *Importer) importRaincell() (int, error) {
	rc, err := dat.ReadRaincell(im.path(dat.RaincellFamily))
	if err != nil {
		return 0, err
	}
	if err := im.check(cellIds(rc.Values, func(v dat.RaincellValue) int { return v.Cell })); err != nil {
		return 0, err
	}
	head := gpkg.NewFragment("INSERT INTO raincell (fid, rainintime, irinters, timestamp) VALUES", 4)
	data := gpkg.NewFragment("INSERT INTO raincell_data (time_interval, rrgrid, iraindum) VALUES", 3)
	if err := head.Add(1, rc.Interval, rc.IRInters, rc.Timestamp); err != nil {
		return 0, err
	}
	for _, v := range rc.Values {
		if err := data.Add(v.Interval, v.Cell, v.Value); err != nil {
			return 0, err
		}
	}
	return im.load([]string{"raincell", "raincell_data"}, []*gpkg.Fragment{head, data})
}

var infilTables = []string{"infil", "infil_cells_green", "infil_cells_scs", "infil_cells_horton", "infil_chan_elems"}

func (im *Importer) importInfil() (int, error) {
	in, err := dat.ReadInfil(im.path(dat.InfilFamily))
	if err != nil {
		return 0, err
	}
	ids := cellIds(in.Green, func(c dat.GreenAmptCell) int { return c.Cell })
	ids = append(ids, cellIds(in.Scs, func(c dat.CellValue) int { return c.Cell })...)
	ids = append(ids, cellIds(in.Horton, func(c dat.HortonCell) int { return c.Cell })...)
	ids = append(ids, cellIds(in.Channel, func(c dat.CellValue) int { return c.Cell })...)
	if err := im.check(ids); err != nil {
		return 0, err
	}
	head := gpkg.NewFragment(`INSERT INTO infil (fid, infmethod, abstr, sati, satf, poros, soild, infchan,
		hydcall, soilall, hydcadj, hydcxx, scsnall, abstr1, fhortoni, fhortonf, decaya) VALUES`, 17)
	green := gpkg.NewFragment("INSERT INTO infil_cells_green (grid_fid, hydc, soils, dtheta, abstrinf, rtimpf, soil_depth) VALUES", 7)
	scs := gpkg.NewFragment("INSERT INTO infil_cells_scs (grid_fid, scsn) VALUES", 2)
	horton := gpkg.NewFragment("INSERT INTO infil_cells_horton (grid_fid, fhorti, fhortf, deca) VALUES", 4)
	channel := gpkg.NewFragment("INSERT INTO infil_chan_elems (grid_fid, hydconch) VALUES", 2)
	err = head.Add(1, in.Method, in.Abstr, in.Sati, in.Satf, in.Poros, in.SoilD, in.InfChan,
		in.HydcAll, in.SoilAll, in.HydcAdj, in.HydcXX.Any(), in.ScsnAll, in.Abstr1,
		in.FHortonI, in.FHortonF, in.DecayA)
	if err != nil {
		return 0, err
	}
	for _, c := range in.Green {
		if err := green.Add(c.Cell, c.Hydc, c.Soils, c.Dtheta, c.AbstrInf, c.RtImpF, c.SoilDepth); err != nil {
			return 0, err
		}
	}
	for _, c := range in.Scs {
		if err := scs.Add(c.Cell, c.Value); err != nil {
			return 0, err
		}
	}
	for _, c := range in.Horton {
		if err := horton.Add(c.Cell, c.FHorti, c.FHortf, c.Deca); err != nil {
			return 0, err
		}
	}
	for _, c := range in.Channel {
		if err := channel.Add(c.Cell, c.Value); err != nil {
			return 0, err
		}
	}
	return im.load(infilTables, []*gpkg.Fragment{head, green, scs, horton, channel})
}

func (im *Importer) importEvapor() (int, error) {
	ev, err := dat.ReadEvapor(im.path(dat.EvaporFamily))
	if err != nil {
		return 0, err
	}
	head := gpkg.NewFragment("INSERT INTO evapor (fid, ievapmonth, iday, clocktime) VALUES", 4)
	monthly := gpkg.NewFragment("INSERT INTO evapor_monthly (month, monthly_evap) VALUES", 2)
	hourly := gpkg.NewFragment("INSERT INTO evapor_hourly (month, hour, hourly_evap) VALUES", 3)
	if err := head.Add(1, ev.IEvapMonth, ev.IDay, ev.ClockTime); err != nil {
		return 0, err
	}
	for _, m := range ev.Months {
		if err := monthly.Add(m.Name, m.Evap); err != nil {
			return 0, err
		}
		for h, v := range m.Hourly {
			if err := hourly.Add(m.Name, h+1, v); err != nil {
				return 0, err
			}
		}
	}
	return im.load([]string{"evapor", "evapor_monthly", "evapor_hourly"}, []*gpkg.Fragment{head, monthly, hourly})
}
