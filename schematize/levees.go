package schematize

import (
	"sort"
	"time"

	"github.com/go-errors/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/layers"
	"go.uber.org/zap"
)

type station struct {
	at   float64
	elev float64
}

// crestProfile holds the levee point elevations ordered along one levee line.
type crestProfile struct {
	fallback float64
	points   []station
}

func newCrestProfile(ls orb.LineString, fallback float64, points []layers.Feature, tolerance float64) crestProfile {
	cp := crestProfile{fallback: fallback}
	for _, p := range points {
		pt, ok := p.Geometry.(orb.Point)
		if !ok {
			continue
		}
		elev, ok := p.Float("elev")
		if !ok {
			continue
		}
		at, closest := geometry.Project(ls, pt)
		if planar.Distance(pt, closest) > tolerance {
			continue
		}
		cp.points = append(cp.points, station{at: at, elev: elev})
	}
	sort.Slice(cp.points, func(i, j int) bool { return cp.points[i].at < cp.points[j].at })
	return cp
}

// At interpolates linearly between the neighbouring levee points and holds
// the nearest value past either end.
func (cp crestProfile) At(d float64) float64 {
	n := len(cp.points)
	if n == 0 {
		return cp.fallback
	}
	if d <= cp.points[0].at {
		return cp.points[0].elev
	}
	if d >= cp.points[n-1].at {
		return cp.points[n-1].elev
	}
	i := sort.Search(n, func(i int) bool { return cp.points[i].at >= d })
	a, b := cp.points[i-1], cp.points[i]
	if b.at == a.at {
		return b.elev
	}
	return a.elev + (b.elev-a.elev)*(d-a.at)/(b.at-a.at)
}

type leveeSide struct {
	cell, dir int
}

type leveeCrest struct {
	crest float64
	line  int
}

// Levees rebuilds levee_data from user_levee_lines. Each cell a levee
// crosses gets the octagon sides between the nodes where the levee enters and
// leaves it. Crest elevations come from user_levee_points projected on the
// line, or the line's own elevation, plus its correction.
func (s *Schematizer) Levees() (Summary, error) {
	start := time.Now()
	sum := Summary{}
	lineFeatures, err := s.layers.Features("user_levee_lines")
	if err != nil {
		return sum, err
	}
	points, err := s.layers.Features("user_levee_points")
	if err != nil {
		return sum, err
	}
	lines, owners := layers.Lines(lineFeatures)
	crests := map[leveeSide]leveeCrest{}
	for i, ls := range lines {
		owner := owners[i]
		profile := newCrestProfile(ls, owner.FloatOr("elev", 0), points, s.size)
		correction := owner.FloatOr("correction", 0)
		o, err := geometry.InitOverlay(ls)
		if err != nil {
			sum.skip("levees", err, zap.Int("line", owner.Fid))
			continue
		}
		for _, fid := range s.index.Search(o.Bound()) {
			center := s.centers[fid]
			pieces, err := o.Clip(geometry.Square(center, s.size))
			if err != nil {
				if !recoverable(err) {
					return sum, err
				}
				sum.skip("levees", err, zap.Int("cell", fid))
				continue
			}
			for _, piece := range pieces {
				first, last := piece[0], piece[len(piece)-1]
				heading := orb.Point{last[0] - first[0], last[1] - first[1]}
				a := geometry.OctagonNode(center, first, heading)
				b := geometry.OctagonNode(center, last, heading)
				if a == b {
					sum.skip("levees", errors.Errorf("levee %d grazes cell %d", owner.Fid, fid), zap.Int("cell", fid))
					continue
				}
				at, _ := geometry.Project(ls, center)
				crest := profile.At(at) + correction
				for _, dir := range geometry.SidesBetween(a, b) {
					key := leveeSide{cell: fid, dir: dir}
					if prev, ok := crests[key]; ok && prev.crest >= crest {
						continue
					}
					crests[key] = leveeCrest{crest: crest, line: owner.Fid}
				}
			}
		}
	}

	keys := make([]leveeSide, 0, len(crests))
	for k := range crests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cell != keys[j].cell {
			return keys[i].cell < keys[j].cell
		}
		return keys[i].dir < keys[j].dir
	})
	frag := gpkg.NewFragment("INSERT INTO levee_data (grid_fid, ldir, levcrest, user_line_fid, geom) VALUES", 5)
	for _, k := range keys {
		side, err := geometry.OctagonSide(s.centers[k.cell], k.dir, s.size)
		if err != nil {
			return sum, err
		}
		geom, err := s.c.Encode(side)
		if err != nil {
			return sum, err
		}
		v := crests[k]
		if err := frag.Add(k.cell, k.dir, v.crest, v.line, geom); err != nil {
			return sum, err
		}
	}
	if err := s.replace("levees", []string{"levee_data"}, start, []*gpkg.Fragment{frag}, defaultLeveeGeneral); err != nil {
		return sum, err
	}
	sum.Rows = frag.Len()
	return sum, nil
}

func defaultLeveeGeneral(tx *gpkg.Container) error {
	empty, err := tx.IsTableEmpty("levee_general")
	if err != nil || !empty {
		return err
	}
	_, err = tx.Exec("INSERT INTO levee_general (raiselev, ilevfail) VALUES (0, 0)")
	return err
}
