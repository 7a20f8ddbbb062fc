package exporter

import (
	"database/sql"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/dat"
)

// exportLevee groups directions under their cell in first seen order, the
// same way the L and F blocks are laid out in the file.
func (ex *Exporter) exportLevee() ([]byte, error) {
	lv := dat.Levee{}
	var char sql.NullString
	var prob sql.NullFloat64
	err := ex.c.QueryRow("SELECT raiselev, ilevfail, gfragchar, gfragprob FROM levee_general ORDER BY fid LIMIT 1").
		Scan(&lv.RaiseLev, &lv.ILevFail, &char, &prob)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	lv.GFragChar, lv.GFragProb = char.String, optional(prob)
	cells := make(map[int]int)
	err = ex.each("SELECT grid_fid, ldir, levcrest FROM levee_data ORDER BY fid", func(rows *sql.Rows) error {
		var cell int
		var d dat.LeveeDirection
		if err := rows.Scan(&cell, &d.Dir, &d.LevCrest); err != nil {
			return err
		}
		i, ok := cells[cell]
		if !ok {
			i = len(lv.Cells)
			cells[cell] = i
			lv.Cells = append(lv.Cells, dat.LeveeCell{Cell: cell})
		}
		lv.Cells[i].Directions = append(lv.Cells[i].Directions, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	failures := make(map[int]int)
	err = ex.each(`SELECT grid_fid, lfaildir, failevel, failtime, levbase, failwidthmax, failrate, failwidrate
		FROM levee_failure ORDER BY fid`, func(rows *sql.Rows) error {
		var cell int
		var f dat.LeveeFailure
		if err := rows.Scan(&cell, &f.Dir, &f.FailElev, &f.FailTime, &f.LevBase, &f.FailWidthMax, &f.FailRate, &f.FailWidRate); err != nil {
			return err
		}
		i, ok := failures[cell]
		if !ok {
			i = len(lv.Failures)
			failures[cell] = i
			lv.Failures = append(lv.Failures, dat.FailureCell{Cell: cell})
		}
		lv.Failures[i].Failures = append(lv.Failures[i].Failures, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT grid_fid, levfragchar, levfragprob FROM levee_fragility ORDER BY fid", func(rows *sql.Rows) error {
		var f dat.Fragility
		if err := rows.Scan(&f.Cell, &f.Char, &f.Prob); err != nil {
			return err
		}
		lv.Fragility = append(lv.Fragility, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lv.ToBytes(), nil
}

// exportBreach writes BREACH.DAT when any of its three blocks has rows.
func (ex *Exporter) exportBreach() ([]byte, error) {
	b := dat.Breach{}
	g := dat.BreachGlobal{}
	v := &g.Values
	err := ex.c.QueryRow(`SELECT ibreachsedeqn, gbratio, gweircoef, gbreachtime, gzu, gzd, gzc, gcrestwidth, gcrestlength,
		gbrbotwidmax, gbrtopwidmax, gbrbottomel FROM breach_global ORDER BY fid LIMIT 1`).
		Scan(&g.IBreachSedEqn, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6], &v[7], &v[8], &v[9], &v[10])
	switch {
	case err == nil:
		b.Global = &g
	case err != sql.ErrNoRows:
		return nil, errors.Wrap(err, 0)
	}
	err = ex.each(`SELECT grid_fid, ibreachdir, zu, zd, zc, crestwidth, crestlength, brbotwidmax, brtopwidmax, brbottomel, weircoef
		FROM breach ORDER BY fid`, func(rows *sql.Rows) error {
		var c dat.BreachCell
		v := &c.Values
		if err := rows.Scan(&c.Cell, &c.IBreachDir, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6], &v[7], &v[8]); err != nil {
			return err
		}
		b.Cells = append(b.Cells, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = ex.each("SELECT fragchar, prfail, prdepth FROM breach_fragility_curves ORDER BY fid", func(rows *sql.Rows) error {
		var f dat.BreachFragility
		if err := rows.Scan(&f.FragChar, &f.PrFail, &f.PrDepth); err != nil {
			return err
		}
		b.Fragility = append(b.Fragility, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if b.Global == nil && len(b.Cells) == 0 && len(b.Fragility) == 0 {
		return nil, nil
	}
	return b.ToBytes(), nil
}
