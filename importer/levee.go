package importer

import (
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
)

var leveeTables = []string{"levee_general", "levee_data", "levee_failure", "levee_fragility"}

// importLevee draws each blocked direction as the matching octagon side.
func (im *Importer) importLevee() (int, error) {
	lv, err := dat.ReadLevee(im.path(dat.LeveeFamily))
	if err != nil {
		return 0, err
	}
	size, err := im.cellSize()
	if err != nil {
		return 0, err
	}
	ids := cellIds(lv.Cells, func(c dat.LeveeCell) int { return c.Cell })
	ids = append(ids, cellIds(lv.Failures, func(c dat.FailureCell) int { return c.Cell })...)
	ids = append(ids, cellIds(lv.Fragility, func(c dat.Fragility) int { return c.Cell })...)
	pts, err := im.centroids(ids)
	if err != nil {
		return 0, err
	}
	general := gpkg.NewFragment("INSERT INTO levee_general (fid, raiselev, ilevfail, gfragchar, gfragprob) VALUES", 5)
	data := gpkg.NewFragment("INSERT INTO levee_data (grid_fid, ldir, levcrest, geom) VALUES", 4)
	failure := gpkg.NewFragment(`INSERT INTO levee_failure (grid_fid, lfaildir, failevel, failtime, levbase,
		failwidthmax, failrate, failwidrate) VALUES`, 8)
	fragility := gpkg.NewFragment("INSERT INTO levee_fragility (grid_fid, levfragchar, levfragprob) VALUES", 3)
	var fragChar any
	if lv.GFragChar != "" {
		fragChar = lv.GFragChar
	}
	if err := general.Add(1, lv.RaiseLev, lv.ILevFail, fragChar, lv.GFragProb.Any()); err != nil {
		return 0, err
	}
	for _, c := range lv.Cells {
		for _, d := range c.Directions {
			side, err := geometry.OctagonSide(pts[c.Cell], d.Dir, size)
			if err != nil {
				return 0, err
			}
			blob, err := im.encode(side)
			if err != nil {
				return 0, err
			}
			if err := data.Add(c.Cell, d.Dir, d.LevCrest, blob); err != nil {
				return 0, err
			}
		}
	}
	for _, c := range lv.Failures {
		for _, f := range c.Failures {
			err := failure.Add(c.Cell, f.Dir, f.FailElev, f.FailTime, f.LevBase, f.FailWidthMax, f.FailRate, f.FailWidRate)
			if err != nil {
				return 0, err
			}
		}
	}
	for _, f := range lv.Fragility {
		if err := fragility.Add(f.Cell, f.Char, f.Prob); err != nil {
			return 0, err
		}
	}
	return im.load(leveeTables, []*gpkg.Fragment{general, data, failure, fragility})
}

var breachTables = []string{"breach_global", "breach", "breach_fragility_curves"}

func (im *Importer) importBreach() (int, error) {
	b, err := dat.ReadBreach(im.path(dat.BreachFamily))
	if err != nil {
		return 0, err
	}
	pts, err := im.centroids(cellIds(b.Cells, func(c dat.BreachCell) int { return c.Cell }))
	if err != nil {
		return 0, err
	}
	global := gpkg.NewFragment(`INSERT INTO breach_global (fid, ibreachsedeqn, gbratio, gweircoef, gbreachtime,
		gzu, gzd, gzc, gcrestwidth, gcrestlength, gbrbotwidmax, gbrtopwidmax, gbrbottomel) VALUES`, 13)
	local := gpkg.NewFragment(`INSERT INTO breach (grid_fid, ibreachdir, zu, zd, zc, crestwidth, crestlength,
		brbotwidmax, brtopwidmax, brbottomel, weircoef, geom) VALUES`, 12)
	fragility := gpkg.NewFragment("INSERT INTO breach_fragility_curves (fragchar, prfail, prdepth) VALUES", 3)
	if g := b.Global; g != nil {
		args := []any{1, g.IBreachSedEqn}
		for _, v := range g.Values {
			args = append(args, v)
		}
		if err := global.Add(args...); err != nil {
			return 0, err
		}
	}
	for _, c := range b.Cells {
		values := []any{c.IBreachDir}
		for _, v := range c.Values {
			values = append(values, v)
		}
		if err := im.pointRows(local, pts, c.Cell, values...); err != nil {
			return 0, err
		}
	}
	for _, f := range b.Fragility {
		if err := fragility.Add(f.FragChar, f.PrFail, f.PrDepth); err != nil {
			return 0, err
		}
	}
	return im.load(breachTables, []*gpkg.Fragment{global, local, fragility})
}
