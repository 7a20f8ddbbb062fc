package schematize

import (
	"sort"
	"time"

	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

// streetCell is one cell of a rasterized street and the directions the
// street leaves it in.
type streetCell struct {
	fid  int
	dirs map[int]bool
}

// streetCells walks the rasterized street and records, for every cell, the
// step to the next cell and the step back to the previous one.
func (s *Schematizer) streetCells(fids []int) []streetCell {
	order := make([]streetCell, 0, len(fids))
	pos := map[int]int{}
	at := func(fid int) *streetCell {
		i, ok := pos[fid]
		if !ok {
			i = len(order)
			pos[fid] = i
			order = append(order, streetCell{fid: fid, dirs: map[int]bool{}})
		}
		return &order[i]
	}
	for i, fid := range fids {
		at(fid)
		if i == 0 {
			continue
		}
		prev := fids[i-1]
		d := s.snap.Step(s.centers[prev], s.centers[fid])
		if d == 0 {
			continue
		}
		at(prev).dirs[d] = true
		at(fid).dirs[geometry.Opposite(d)] = true
	}
	return order
}

// Streets rebuilds streets, street_seg and street_elems from user_streets.
func (s *Schematizer) Streets() (Summary, error) {
	start := time.Now()
	sum := Summary{}
	features, err := s.layers.Features("user_streets")
	if err != nil {
		return sum, err
	}
	lines, owners := layers.Lines(features)
	streets := gpkg.NewFragment("INSERT INTO streets (fid, stname, notes, geom) VALUES", 4)
	segs := gpkg.NewFragment("INSERT INTO street_seg (fid, str_fid, igridn, depex, stman, elstr, geom) VALUES", 7)
	elems := gpkg.NewFragment("INSERT INTO street_elems (seg_fid, istrdir, widr) VALUES", 3)
	segFid := 0
	for i, ls := range lines {
		owner := owners[i]
		fids, missed := s.fids(s.snap.Rasterize(ls))
		if missed > 0 {
			logger.Get().Warn("streets: cells off the grid", zap.Int("street", owner.Fid), zap.Int("missed", missed))
		}
		if len(fids) < 2 {
			sum.skip("streets", geometry.GeometryError{Kind: geometry.EmptyGeometry, Detail: "street covers fewer than two cells"}, zap.Int("street", owner.Fid))
			continue
		}
		strFid := streets.Len() + 1
		geom, err := s.c.Encode(ls)
		if err != nil {
			return sum, err
		}
		if err := streets.Add(strFid, owner.String("name"), "", geom); err != nil {
			return sum, err
		}
		for _, sc := range s.streetCells(fids) {
			dirs := make([]int, 0, len(sc.dirs))
			for d := range sc.dirs {
				dirs = append(dirs, d)
			}
			sort.Ints(dirs)
			spokes, err := geometry.Spokes(s.centers[sc.fid], dirs, s.size)
			if err != nil {
				return sum, err
			}
			geom, err := s.c.Encode(spokes)
			if err != nil {
				return sum, err
			}
			segFid++
			err = segs.Add(segFid, strFid, sc.fid,
				owner.FloatOr("curb_height", 0), owner.FloatOr("n_value", 0), owner.FloatOr("elevation", 0), geom)
			if err != nil {
				return sum, err
			}
			for _, d := range dirs {
				if err := elems.Add(segFid, d, owner.FloatOr("street_width", 0)); err != nil {
					return sum, err
				}
			}
		}
	}
	tables := []string{"streets", "street_seg", "street_elems"}
	if err := s.replace("streets", tables, start, []*gpkg.Fragment{streets, segs, elems}, defaultStreetGeneral); err != nil {
		return sum, err
	}
	sum.Rows = segs.Len()
	return sum, nil
}

func defaultStreetGeneral(tx *gpkg.Container) error {
	empty, err := tx.IsTableEmpty("street_general")
	if err != nil || !empty {
		return err
	}
	_, err = tx.Exec("INSERT INTO street_general (strman, istrflo, strfno, depx, widst) VALUES (0, 0, 0, 0, 0)")
	return err
}
