package importer

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
)

// importFpxsec keeps NXPRT in cont next to the other print switches.
func (im *Importer) importFpxsec() (int, error) {
	fx, err := dat.ReadFpxsec(im.path(dat.FpxsecFamily))
	if err != nil {
		return 0, err
	}
	ids := make([]int, 0)
	for _, s := range fx.Sections {
		ids = append(ids, s.Cells...)
	}
	pts, err := im.centroids(ids)
	if err != nil {
		return 0, err
	}
	sections := gpkg.NewFragment("INSERT INTO fpxsec (fid, iflo, nnxsec, geom) VALUES", 4)
	cells := gpkg.NewFragment("INSERT INTO fpxsec_cells (fpxsec_fid, grid_fid) VALUES", 2)
	for i, s := range fx.Sections {
		fid := i + 1
		path := make([]orb.Point, 0, len(s.Cells))
		for _, c := range s.Cells {
			path = append(path, pts[c])
			if err := cells.Add(fid, c); err != nil {
				return 0, err
			}
		}
		blob, err := im.encode(line(path...))
		if err != nil {
			return 0, err
		}
		if err := sections.Add(fid, s.IFlo, len(s.Cells), blob); err != nil {
			return 0, err
		}
	}
	nxprt := func(tx *gpkg.Container) error {
		return control.Store(tx, "NXPRT", strconv.Itoa(fx.Nxprt))
	}
	return im.load([]string{"fpxsec", "fpxsec_cells"}, []*gpkg.Fragment{sections, cells}, nxprt)
}

func (im *Importer) importGutter() (int, error) {
	g, err := dat.ReadGutter(im.path(dat.GutterFamily))
	if err != nil {
		return 0, err
	}
	pts, err := im.centroids(cellIds(g.Cells, func(c dat.GutterCell) int { return c.Cell }))
	if err != nil {
		return 0, err
	}
	globals := gpkg.NewFragment("INSERT INTO gutter_globals (fid, strwidth, curbheight, street_n) VALUES", 4)
	cells := gpkg.NewFragment("INSERT INTO gutter_cells (grid_fid, width, height, n_value, direction, geom) VALUES", 6)
	if err := globals.Add(1, g.StrWidth, g.CurbHeight, g.StreetN); err != nil {
		return 0, err
	}
	for _, c := range g.Cells {
		if err := im.pointRows(cells, pts, c.Cell, c.Width, c.Height, c.NValue, c.Direction); err != nil {
			return 0, err
		}
	}
	return im.load([]string{"gutter_globals", "gutter_cells"}, []*gpkg.Fragment{globals, cells})
}

// importAttribute loads one of the single value per cell files.
func (im *Importer) importAttribute(ca dat.CellAttribute, table, column string) (int, error) {
	pts, err := im.centroids(cellIds(ca.Values, func(c dat.CellValue) int { return c.Cell }))
	if err != nil {
		return 0, err
	}
	frag := gpkg.NewFragment("INSERT INTO "+table+" (grid_fid, "+column+", geom) VALUES", 3)
	for _, v := range ca.Values {
		if err := im.pointRows(frag, pts, v.Cell, v.Value); err != nil {
			return 0, err
		}
	}
	return im.load([]string{table}, []*gpkg.Fragment{frag})
}

func (im *Importer) importFpfroude() (int, error) {
	ca, err := dat.ReadFpfroude(im.path(dat.FpfroudeFamily))
	if err != nil {
		return 0, err
	}
	return im.importAttribute(ca, "fpfroude_cells", "froude")
}

func (im *Importer) importShallown() (int, error) {
	ca, err := dat.ReadShallown(im.path(dat.ShallownFamily))
	if err != nil {
		return 0, err
	}
	return im.importAttribute(ca, "spatialshallow_cells", "shallow_n")
}

func (im *Importer) importTolspatial() (int, error) {
	ca, err := dat.ReadTolspatial(im.path(dat.TolspatialFamily))
	if err != nil {
		return 0, err
	}
	return im.importAttribute(ca, "tolspatial_cells", "tol")
}

func (im *Importer) importSwmmflo() (int, error) {
	sf, err := dat.ReadSwmmflo(im.path(dat.SwmmfloFamily))
	if err != nil {
		return 0, err
	}
	pts, err := im.centroids(cellIds(sf.Inlets, func(in dat.SwmmInlet) int { return in.Cell }))
	if err != nil {
		return 0, err
	}
	frag := gpkg.NewFragment(`INSERT INTO swmmflo (swmm_jt, swmm_iden, intype, swmm_length, swmm_width, swmm_height,
		swmm_coeff, swmm_feature, curbheight, geom) VALUES`, 10)
	for _, in := range sf.Inlets {
		err := im.pointRows(frag, pts, in.Cell, in.Name, in.InType, in.Length, in.Width, in.Height, in.Coeff, in.Feature, in.CurbHeight)
		if err != nil {
			return 0, err
		}
	}
	return im.load([]string{"swmmflo"}, []*gpkg.Fragment{frag})
}

func (im *Importer) importSwmmoutf() (int, error) {
	so, err := dat.ReadSwmmoutf(im.path(dat.SwmmoutfFamily))
	if err != nil {
		return 0, err
	}
	pts, err := im.centroids(cellIds(so.Outfalls, func(o dat.SwmmOutfall) int { return o.Cell }))
	if err != nil {
		return 0, err
	}
	frag := gpkg.NewFragment("INSERT INTO swmmoutf (grid_fid, name, outf_flo, geom) VALUES", 4)
	for _, o := range so.Outfalls {
		if err := im.pointRows(frag, pts, o.Cell, o.Name, o.OutfFlo); err != nil {
			return 0, err
		}
	}
	return im.load([]string{"swmmoutf"}, []*gpkg.Fragment{frag})
}

func (im *Importer) importWsurf() (int, error) {
	ws, err := dat.ReadWsurf(im.path(dat.WsurfFamily))
	if err != nil {
		return 0, err
	}
	if err := im.check(cellIds(ws.Points, func(w dat.WaterSurface) int { return w.Cell })); err != nil {
		return 0, err
	}
	frag := gpkg.NewFragment("INSERT INTO wsurf (grid_fid, wselev) VALUES", 2)
	for _, w := range ws.Points {
		if err := frag.Add(w.Cell, w.Elev); err != nil {
			return 0, err
		}
	}
	return im.load([]string{"wsurf"}, []*gpkg.Fragment{frag})
}

func (im *Importer) importWstime() (int, error) {
	ws, err := dat.ReadWstime(im.path(dat.WstimeFamily))
	if err != nil {
		return 0, err
	}
	if err := im.check(cellIds(ws.Points, func(w dat.WaterSurface) int { return w.Cell })); err != nil {
		return 0, err
	}
	frag := gpkg.NewFragment("INSERT INTO wstime (grid_fid, wselev, wstime) VALUES", 3)
	for _, w := range ws.Points {
		if err := frag.Add(w.Cell, w.Elev, w.Time.Any()); err != nil {
			return 0, err
		}
	}
	return im.load([]string{"wstime"}, []*gpkg.Fragment{frag})
}
