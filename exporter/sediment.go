package exporter

import (
	"database/sql"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/dat"
)

// ints reads a single integer column.
func (ex *Exporter) ints(query string) ([]int, error) {
	out := make([]int, 0)
	err := ex.each(query, func(rows *sql.Rows) error {
		var v int
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// exportSed writes SED.DAT when either the mud or the sediment globals exist.
func (ex *Exporter) exportSed() ([]byte, error) {
	s := dat.Sed{}
	m := dat.Mud{}
	err := ex.c.QueryRow("SELECT va, vb, ysa, ysb, sgsm, tau FROM mud ORDER BY fid LIMIT 1").
		Scan(&m.Va, &m.Vb, &m.Ysa, &m.Ysb, &m.Sgsm, &m.Tau)
	switch {
	case err == nil:
		s.Mud = &m
	case err != sql.ErrNoRows:
		return nil, errors.Wrap(err, 0)
	}
	g := dat.SedimentGlobal{}
	err = ex.c.QueryRow(`SELECT isedeqg, isedsizefrac, dfifty, sgrad, sgst, dryspwt, cvfg, isedsupply, isedisplay, scourdep
		FROM sed ORDER BY fid LIMIT 1`).
		Scan(&g.IsedEqg, &g.IsedSizeFrac, &g.DFifty, &g.SGrad, &g.SGst, &g.DrySpWt, &g.Cvfg, &g.IsedSupply, &g.IsedIsplay, &g.ScourDep)
	switch {
	case err == nil:
		s.Sediment = &g
	case err != sql.ErrNoRows:
		return nil, errors.Wrap(err, 0)
	}
	if s.Mud == nil && s.Sediment == nil {
		return nil, nil
	}
	fractions := make(map[int][]dat.SizeFraction)
	err = ex.each("SELECT group_fid, sediam, sedpercent FROM sed_group_frac_data ORDER BY fid", func(rows *sql.Rows) error {
		var fid int
		var f dat.SizeFraction
		if err := rows.Scan(&fid, &f.SeDiam, &f.SedPercent); err != nil {
			return err
		}
		fractions[fid] = append(fractions[fid], f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// groups are renumbered densely so G rows keep pointing at the right Z block
	groupIndex := make(map[int]int)
	err = ex.each("SELECT fid, isedeqi, bedthick, cvfi FROM sed_groups ORDER BY fid", func(rows *sql.Rows) error {
		var fid int
		var sg dat.SizeGroup
		if err := rows.Scan(&fid, &sg.IsedEqi, &sg.BedThick, &sg.Cvfi); err != nil {
			return err
		}
		sg.Fractions = fractions[fid]
		s.Groups = append(s.Groups, sg)
		groupIndex[fid] = len(s.Groups)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.MudCells, err = ex.ints("SELECT grid_fid FROM mud_cells ORDER BY fid"); err != nil {
		return nil, err
	}
	if s.RigidCells, err = ex.ints("SELECT grid_fid FROM sed_rigid_cells ORDER BY fid"); err != nil {
		return nil, err
	}
	err = ex.each("SELECT grid_fid, group_fid FROM sed_group_cells ORDER BY fid", func(rows *sql.Rows) error {
		var c dat.GroupCell
		var fid int
		if err := rows.Scan(&c.Cell, &fid); err != nil {
			return err
		}
		c.Group = groupIndex[fid]
		s.GroupCells = append(s.GroupCells, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ToBytes(), nil
}
