package importer

import (
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
)

var sedTables = []string{
	"mud", "sed", "sed_groups", "sed_group_frac_data",
	"mud_cells", "sed_rigid_cells", "sed_group_cells",
}

func (im *Importer) importSed() (int, error) {
	s, err := dat.ReadSed(im.path(dat.SedFamily))
	if err != nil {
		return 0, err
	}
	ids := append([]int{}, s.MudCells...)
	ids = append(ids, s.RigidCells...)
	ids = append(ids, cellIds(s.GroupCells, func(g dat.GroupCell) int { return g.Cell })...)
	if err := im.check(ids); err != nil {
		return 0, err
	}
	mud := gpkg.NewFragment("INSERT INTO mud (fid, va, vb, ysa, ysb, sgsm, tau) VALUES", 7)
	sed := gpkg.NewFragment(`INSERT INTO sed (fid, isedeqg, isedsizefrac, dfifty, sgrad, sgst,
		dryspwt, cvfg, isedsupply, isedisplay, scourdep) VALUES`, 11)
	groups := gpkg.NewFragment("INSERT INTO sed_groups (fid, isedeqi, bedthick, cvfi) VALUES", 4)
	fractions := gpkg.NewFragment("INSERT INTO sed_group_frac_data (group_fid, sediam, sedpercent) VALUES", 3)
	mudCells := gpkg.NewFragment("INSERT INTO mud_cells (grid_fid) VALUES", 1)
	rigid := gpkg.NewFragment("INSERT INTO sed_rigid_cells (grid_fid) VALUES", 1)
	groupCells := gpkg.NewFragment("INSERT INTO sed_group_cells (grid_fid, group_fid) VALUES", 2)
	if m := s.Mud; m != nil {
		if err := mud.Add(1, m.Va, m.Vb, m.Ysa, m.Ysb, m.Sgsm, m.Tau); err != nil {
			return 0, err
		}
	}
	if g := s.Sediment; g != nil {
		err := sed.Add(1, g.IsedEqg, g.IsedSizeFrac, g.DFifty, g.SGrad, g.SGst, g.DrySpWt, g.Cvfg, g.IsedSupply, g.IsedIsplay, g.ScourDep)
		if err != nil {
			return 0, err
		}
	}
	for i, g := range s.Groups {
		fid := i + 1
		if err := groups.Add(fid, g.IsedEqi, g.BedThick, g.Cvfi); err != nil {
			return 0, err
		}
		for _, f := range g.Fractions {
			if err := fractions.Add(fid, f.SeDiam, f.SedPercent); err != nil {
				return 0, err
			}
		}
	}
	for _, c := range s.MudCells {
		if err := mudCells.Add(c); err != nil {
			return 0, err
		}
	}
	for _, c := range s.RigidCells {
		if err := rigid.Add(c); err != nil {
			return 0, err
		}
	}
	for _, c := range s.GroupCells {
		if err := groupCells.Add(c.Cell, c.Group); err != nil {
			return 0, err
		}
	}
	return im.load(sedTables, []*gpkg.Fragment{mud, sed, groups, fractions, mudCells, rigid, groupCells})
}
