package schematize

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

var channelTables = []string{"chan", "chan_elems", "chan_r", "chan_v", "chan_t", "chan_n", "xsec_n_data", "chan_confluences"}

// xsection is a user drawn cross section and the shape parameters it carries.
type xsection struct {
	fid     int
	name    string
	kind    string
	fcn     float64
	fcw     float64
	fcd     float64
	zl      float64
	zr      float64
	bankell float64
	bankelr float64
	// variable area coefficients of a V section, in chan_v column order
	vee  [13]float64
	line orb.LineString
	// station along the centerline where the section crosses it
	at float64
}

var veeColumns = []string{"a1", "a2", "b1", "b2", "c1", "c2", "excdep", "a11", "a22", "b11", "b22", "c11", "c22"}

func readXsection(f layers.Feature, ls orb.LineString) xsection {
	kind := strings.ToUpper(strings.TrimSpace(f.String("type")))
	if kind == "" {
		kind = "R"
	}
	var vee [13]float64
	for i, name := range veeColumns {
		vee[i] = f.FloatOr(name, 0)
	}
	return xsection{
		vee:     vee,
		fid:     f.Fid,
		name:    f.String("name"),
		kind:    kind,
		fcn:     f.FloatOr("fcn", 0.04),
		fcw:     f.FloatOr("fcw", 0),
		fcd:     f.FloatOr("fcd", 0),
		zl:      f.FloatOr("zl", 0),
		zr:      f.FloatOr("zr", 0),
		bankell: f.FloatOr("bankell", 0),
		bankelr: f.FloatOr("bankelr", 0),
		line:    ls,
	}
}

// segment is one user centerline with the cross sections that cross it,
// ordered downstream.
type segment struct {
	fid        int
	owner      layers.Feature
	centerline orb.LineString
	xs         []xsection
}

// governing returns the last cross section upstream of station d, or the
// first one when d lies above all of them.
func (sg segment) governing(d float64) xsection {
	i := sort.Search(len(sg.xs), func(i int) bool { return sg.xs[i].at > d })
	if i == 0 {
		return sg.xs[0]
	}
	return sg.xs[i-1]
}

func (s *Schematizer) segments(sum *Summary) ([]segment, error) {
	centerlines, err := s.layers.Features("user_centerline")
	if err != nil {
		return nil, err
	}
	xsFeatures, err := s.layers.Features("user_xsections")
	if err != nil {
		return nil, err
	}
	xsLines, xsOwners := layers.Lines(xsFeatures)
	all := make([]xsection, 0, len(xsLines))
	for i, ls := range xsLines {
		x := readXsection(xsOwners[i], ls)
		switch x.kind {
		case "R", "V", "T", "N":
			all = append(all, x)
		default:
			sum.skip("channels", errors.Errorf("cross section %d has unknown type %q", x.fid, x.kind), zap.Int("xsec", x.fid))
		}
	}

	lines, owners := layers.Lines(centerlines)
	out := make([]segment, 0, len(lines))
	for i, ls := range lines {
		sg := segment{fid: i + 1, owner: owners[i], centerline: ls}
		for _, x := range all {
			cs := geometry.Crossings(ls, x.line)
			if len(cs) == 0 {
				continue
			}
			x.at = cs[0].StationA
			sg.xs = append(sg.xs, x)
		}
		sort.SliceStable(sg.xs, func(a, b int) bool { return sg.xs[a].at < sg.xs[b].at })
		if len(sg.xs) == 0 {
			sum.skip("channels", geometry.GeometryError{Kind: geometry.EmptyGeometry, Detail: "no cross section crosses the centerline"},
				zap.Int("segment", sg.fid))
			continue
		}
		out = append(out, sg)
	}
	return out, nil
}

// bank is a pair of bank lines stored in chan_banks.
type bank struct {
	leftFid     int
	left, right orb.LineString
}

func (s *Schematizer) banks() (map[int]bank, error) {
	rows, err := s.c.Query("SELECT fid, seg_fid, side, geom FROM chan_banks ORDER BY fid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int]bank{}
	for rows.Next() {
		var fid, seg int
		var side string
		var blob []byte
		if err := rows.Scan(&fid, &seg, &side, &blob); err != nil {
			return nil, errors.Wrap(err, 0)
		}
		g, err := gpkg.DecodeGeometry(blob)
		if err != nil {
			return nil, err
		}
		ls, ok := g.(orb.LineString)
		if !ok {
			continue
		}
		b := out[seg]
		if side == "left" {
			b.leftFid = fid
			b.left = ls
		} else {
			b.right = ls
		}
		out[seg] = b
	}
	return out, rows.Err()
}

func (s *Schematizer) naturalData() (map[int][][2]float64, error) {
	rows, err := s.c.Query("SELECT user_xs_fid, xi, yi FROM user_xsec_n_data ORDER BY fid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int][][2]float64{}
	for rows.Next() {
		var fid int
		var xi, yi float64
		if err := rows.Scan(&fid, &xi, &yi); err != nil {
			return nil, errors.Wrap(err, 0)
		}
		out[fid] = append(out[fid], [2]float64{xi, yi})
	}
	return out, rows.Err()
}

type confluence struct {
	kind int
	grid int
	geom []byte
}

// confluences keeps the existing confluences keyed by cell so they survive a
// rebuild of chan_elems.
func (s *Schematizer) confluences() ([]confluence, error) {
	rows, err := s.c.Query(`SELECT c.conf_type, e.grid_fid, c.geom FROM chan_confluences c
		JOIN chan_elems e ON e.fid = c.chan_elem_fid ORDER BY c.fid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []confluence{}
	for rows.Next() {
		var cf confluence
		var kind sql.NullInt64
		if err := rows.Scan(&kind, &cf.grid, &cf.geom); err != nil {
			return nil, errors.Wrap(err, 0)
		}
		cf.kind = int(kind.Int64)
		out = append(out, cf)
	}
	return out, rows.Err()
}

// channelWriter collects the rows of every channel table.
type channelWriter struct {
	s        *Schematizer
	sum      *Summary
	natural  map[int][][2]float64
	written  map[int]bool
	elemOf   map[int]int
	elemFid  int
	chans    *gpkg.Fragment
	elems    *gpkg.Fragment
	rects    *gpkg.Fragment
	vees     *gpkg.Fragment
	traps    *gpkg.Fragment
	nats     *gpkg.Fragment
	stations *gpkg.Fragment
	confs    *gpkg.Fragment
}

func (s *Schematizer) newChannelWriter(sum *Summary) (*channelWriter, error) {
	natural, err := s.naturalData()
	if err != nil {
		return nil, err
	}
	return &channelWriter{
		s:        s,
		sum:      sum,
		natural:  natural,
		written:  map[int]bool{},
		elemOf:   map[int]int{},
		chans:    gpkg.NewFragment("INSERT INTO chan (fid, name, depinitial, froudc, roughadj, isedn, user_lbank_fid, geom) VALUES", 8),
		elems:    gpkg.NewFragment("INSERT INTO chan_elems (fid, grid_fid, seg_fid, nr_in_seg, rbankgrid, fcn, xlen, type, user_xs_fid, geom) VALUES", 10),
		rects:    gpkg.NewFragment("INSERT INTO chan_r (elem_fid, bankell, bankelr, fcw, fcd) VALUES", 5),
		vees:     gpkg.NewFragment("INSERT INTO chan_v (elem_fid, bankell, bankelr, fcd, a1, a2, b1, b2, c1, c2, excdep, a11, a22, b11, b22, c11, c22) VALUES", 17),
		traps:    gpkg.NewFragment("INSERT INTO chan_t (elem_fid, bankell, bankelr, fcw, fcd, zl, zr) VALUES", 7),
		nats:     gpkg.NewFragment("INSERT INTO chan_n (elem_fid, nxsecnum, xsecname) VALUES", 3),
		stations: gpkg.NewFragment("INSERT INTO xsec_n_data (chan_n_nxsecnum, xi, yi) VALUES", 3),
		confs:    gpkg.NewFragment("INSERT INTO chan_confluences (conf_type, chan_elem_fid, geom) VALUES", 3),
	}, nil
}

func (w *channelWriter) fragments() []*gpkg.Fragment {
	return []*gpkg.Fragment{w.chans, w.elems, w.rects, w.vees, w.traps, w.nats, w.stations, w.confs}
}

// claim drops cells already taken by this or an earlier segment; a cell
// carries at most one channel element.
func (w *channelWriter) claim(sg segment, fids []int, points []orb.Point) ([]int, []orb.Point) {
	keptF := make([]int, 0, len(fids))
	keptP := make([]orb.Point, 0, len(points))
	for i, fid := range fids {
		if _, taken := w.elemOf[fid]; taken {
			w.sum.skip("channels", errors.Errorf("cell %d already holds a channel element", fid),
				zap.Int("segment", sg.fid), zap.Int("cell", fid))
			continue
		}
		w.elemOf[fid] = 0
		keptF = append(keptF, fid)
		keptP = append(keptP, points[i])
	}
	return keptF, keptP
}

func (w *channelWriter) segment(sg segment, cells []int, leftBank int) error {
	geom, err := w.s.c.Encode(w.s.line(cells...))
	if err != nil {
		return err
	}
	var lbank any
	if leftBank > 0 {
		lbank = leftBank
	}
	o := sg.owner
	return w.chans.Add(sg.fid, o.String("name"), o.FloatOr("depinitial", 0), o.FloatOr("froudc", 0),
		o.FloatOr("roughadj", 0), o.FloatOr("isedn", 0), lbank, geom)
}

func (w *channelWriter) element(seg, nr, cell, rbank int, xlen float64, x xsection) error {
	w.elemFid++
	fid := w.elemFid
	w.elemOf[cell] = fid
	geom, err := w.s.c.Encode(w.s.line(cell, rbank))
	if err != nil {
		return err
	}
	if err := w.elems.Add(fid, cell, seg, nr, rbank, x.fcn, xlen, x.kind, x.fid, geom); err != nil {
		return err
	}
	switch x.kind {
	case "R":
		return w.rects.Add(fid, x.bankell, x.bankelr, x.fcw, x.fcd)
	case "T":
		return w.traps.Add(fid, x.bankell, x.bankelr, x.fcw, x.fcd, x.zl, x.zr)
	case "V":
		args := []any{fid, x.bankell, x.bankelr, x.fcd}
		for _, v := range x.vee {
			args = append(args, v)
		}
		return w.vees.Add(args...)
	default:
		if err := w.nats.Add(fid, x.fid, x.name); err != nil {
			return err
		}
		if w.written[x.fid] {
			return nil
		}
		w.written[x.fid] = true
		for _, st := range w.natural[x.fid] {
			if err := w.stations.Add(x.fid, st[0], st[1]); err != nil {
				return err
			}
		}
		return nil
	}
}

// keep re-attaches the saved confluences to the elements now on their cells.
func (w *channelWriter) keep(saved []confluence) error {
	for _, cf := range saved {
		fid := w.elemOf[cf.grid]
		if fid == 0 {
			w.sum.skip("channels", gpkg.ReferenceError{Table: "chan_elems", Fid: cf.grid}, zap.Int("cell", cf.grid))
			continue
		}
		if err := w.confs.Add(cf.kind, fid, cf.geom); err != nil {
			return err
		}
	}
	return nil
}

// xlen is the channel length assigned to the i-th cell of a reach.
func (s *Schematizer) xlen(points []orb.Point, i int) float64 {
	switch {
	case len(points) < 2:
		return s.size
	case i < len(points)-1:
		return planar.Distance(points[i], points[i+1])
	default:
		return planar.Distance(points[i-1], points[i])
	}
}

// centerlineReach writes one element per centerline cell, each a single cell
// wide, shaped by the cross section governing its station.
func (w *channelWriter) centerlineReach(sg segment, leftBank int) error {
	s := w.s
	fids, missed := s.fids(s.snap.Rasterize(sg.centerline))
	if missed > 0 {
		logger.Get().Warn("channels: cells off the grid", zap.Int("segment", sg.fid), zap.Int("missed", missed))
	}
	points := make([]orb.Point, len(fids))
	for i, fid := range fids {
		points[i] = s.centers[fid]
	}
	fids, points = w.claim(sg, fids, points)
	if len(fids) == 0 {
		w.sum.skip("channels", geometry.GeometryError{Kind: geometry.EmptyGeometry, Detail: "centerline covers no free cell"}, zap.Int("segment", sg.fid))
		return nil
	}
	if err := w.segment(sg, fids, leftBank); err != nil {
		return err
	}
	for i, fid := range fids {
		at, _ := geometry.Project(sg.centerline, points[i])
		if err := w.element(sg.fid, i+1, fid, fid, s.xlen(points, i), sg.governing(at)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schematizer) rebuildChannels(routine string, reach func(w *channelWriter, sg segment, b bank) error) (Summary, error) {
	start := time.Now()
	sum := Summary{}
	segments, err := s.segments(&sum)
	if err != nil {
		return sum, err
	}
	banks, err := s.banks()
	if err != nil {
		return sum, err
	}
	saved, err := s.confluences()
	if err != nil {
		return sum, err
	}
	w, err := s.newChannelWriter(&sum)
	if err != nil {
		return sum, err
	}
	for _, sg := range segments {
		if err := reach(w, sg, banks[sg.fid]); err != nil {
			if !recoverable(err) {
				return sum, err
			}
			sum.skip(routine, err, zap.Int("segment", sg.fid))
		}
	}
	if err := w.keep(saved); err != nil {
		return sum, err
	}
	if err := s.replace(routine, channelTables, start, w.fragments()); err != nil {
		return sum, err
	}
	sum.Rows = w.elems.Len()
	return sum, nil
}

// Channels rebuilds the channel tables by rasterizing each user centerline.
// Every element is one cell wide; InterpolateCrossSections widens them once
// bank lines exist.
func (s *Schematizer) Channels() (Summary, error) {
	return s.rebuildChannels("channels", func(w *channelWriter, sg segment, b bank) error {
		return w.centerlineReach(sg, b.leftFid)
	})
}

// BankLines derives left and right bank lines for every segment from the 1D
// domain polygon it lies in, cut by its first and last cross section. Both
// lines start at the first cross section.
func (s *Schematizer) BankLines() (Summary, error) {
	start := time.Now()
	sum := Summary{}
	segments, err := s.segments(&sum)
	if err != nil {
		return sum, err
	}
	domains, err := s.layers.Features("user_1d_domain")
	if err != nil {
		return sum, err
	}
	polys, _ := layers.Polygons(domains)
	frag := gpkg.NewFragment("INSERT INTO chan_banks (seg_fid, side, geom) VALUES", 3)
	for _, sg := range segments {
		left, right, err := bankLines(sg, polys)
		if err != nil {
			if !recoverable(err) {
				return sum, err
			}
			sum.skip("banks", err, zap.Int("segment", sg.fid))
			continue
		}
		for _, side := range []struct {
			name string
			ls   orb.LineString
		}{{"left", left}, {"right", right}} {
			geom, err := s.c.Encode(side.ls)
			if err != nil {
				return sum, err
			}
			if err := frag.Add(sg.fid, side.name, geom); err != nil {
				return sum, err
			}
		}
	}
	err = s.replace("banks", []string{"chan_banks"}, start, []*gpkg.Fragment{frag}, func(tx *gpkg.Container) error {
		_, err := tx.Exec(`UPDATE chan SET user_lbank_fid =
			(SELECT b.fid FROM chan_banks b WHERE b.seg_fid = chan.fid AND b.side = 'left')`)
		return err
	})
	if err != nil {
		return sum, err
	}
	sum.Rows = frag.Len()
	return sum, nil
}

func bankLines(sg segment, polys []orb.Polygon) (orb.LineString, orb.LineString, error) {
	if len(sg.xs) < 2 {
		return nil, nil, geometry.GeometryError{Kind: geometry.InvalidGeometry, Detail: "bank lines need two cross sections"}
	}
	mid := geometry.Interpolate(sg.centerline, planar.Length(sg.centerline)/2)
	var ring orb.Ring
	for _, p := range polys {
		if planar.PolygonContains(p, mid) {
			ring = p[0]
			break
		}
	}
	if ring == nil {
		return nil, nil, geometry.GeometryError{Kind: geometry.EmptyGeometry, Detail: "centerline lies outside every 1D domain"}
	}
	boundary := orb.LineString(ring)
	length := planar.Length(boundary)
	ends := func(x xsection) (float64, float64, error) {
		cs := geometry.Crossings(boundary, x.line)
		if len(cs) < 2 {
			return 0, 0, geometry.GeometryError{Kind: geometry.InvalidGeometry, Detail: "cross section does not span the 1D domain"}
		}
		// the section is drawn left to right, so its start lies on the left bank
		sort.Slice(cs, func(i, j int) bool { return cs[i].StationB < cs[j].StationB })
		return cs[0].StationA, cs[len(cs)-1].StationA, nil
	}
	lf, rf, err := ends(sg.xs[0])
	if err != nil {
		return nil, nil, err
	}
	ll, rl, err := ends(sg.xs[len(sg.xs)-1])
	if err != nil {
		return nil, nil, err
	}
	arc := func(from, to, avoidA, avoidB float64) orb.LineString {
		forward := !onArcAny(from, to, length, avoidA, avoidB)
		return geometry.RingArc(ring, from, to, forward)
	}
	return arc(lf, ll, rf, rl), arc(rf, rl, lf, ll), nil
}

// onArcAny reports whether any of the stations lies on the forward arc.
func onArcAny(from, to, length float64, stations ...float64) bool {
	for _, d := range stations {
		if geometry.OnArc(d, from, to, length) {
			return true
		}
	}
	return false
}

// anchor is a user cross section pinned to a vertex of the schematized left
// bank, with the right bank point it reaches.
type anchor struct {
	vertex int
	right  orb.Point
	xs     xsection
}

func nearestVertex(points []orb.Point, p orb.Point) int {
	best, at := -1.0, 0
	for i, q := range points {
		d := planar.DistanceSquared(p, q)
		if best < 0 || d < best {
			best, at = d, i
		}
	}
	return at
}

func (s *Schematizer) anchors(sg segment, b bank, points []orb.Point) []anchor {
	out := make([]anchor, 0, len(sg.xs))
	for _, x := range sg.xs {
		left := x.line[0]
		if cs := geometry.Crossings(x.line, b.left); len(cs) > 0 {
			left = cs[0].Point
		}
		right := x.line[len(x.line)-1]
		if cs := geometry.Crossings(x.line, b.right); len(cs) > 0 {
			right = cs[len(cs)-1].Point
		}
		v := nearestVertex(points, left)
		if len(out) > 0 && out[len(out)-1].vertex >= v {
			continue
		}
		out = append(out, anchor{vertex: v, right: right, xs: x})
	}
	return out
}

// bankReach walks the schematized left bank and writes one cross section per
// cell. Between two user sections the right end is the upstream section's
// right end moved by the same offset as the bank vertex.
func (w *channelWriter) bankReach(sg segment, b bank) error {
	s := w.s
	fids, missed := s.fids(s.snap.Rasterize(b.left))
	if missed > 0 {
		logger.Get().Warn("xsections: bank cells off the grid", zap.Int("segment", sg.fid), zap.Int("missed", missed))
	}
	points := make([]orb.Point, len(fids))
	for i, fid := range fids {
		points[i] = s.centers[fid]
	}
	fids, points = w.claim(sg, fids, points)
	if len(fids) == 0 {
		return geometry.GeometryError{Kind: geometry.EmptyGeometry, Detail: "left bank covers no free cell"}
	}
	anchors := s.anchors(sg, b, points)
	if err := w.segment(sg, fids, b.leftFid); err != nil {
		return err
	}
	index := layers.NewRTreeIndex()
	drawn := make([]orb.LineString, 0, len(fids))
	k := 0
	for i, fid := range fids {
		for k+1 < len(anchors) && anchors[k+1].vertex <= i {
			k++
		}
		a := anchors[k]
		origin := points[a.vertex]
		right := orb.Point{a.right[0] + points[i][0] - origin[0], a.right[1] + points[i][1] - origin[1]}
		right = geometry.SnapAzimuth(points[i], right)
		xs := s.clip(orb.LineString{points[i], right}, index, drawn)
		index.Insert(len(drawn), xs.Bound())
		drawn = append(drawn, xs)
		rbank := fid
		if cells, _ := s.fids(s.snap.Rasterize(xs)); len(cells) > 0 {
			rbank = cells[len(cells)-1]
		}
		if err := w.element(sg.fid, i+1, fid, rbank, s.xlen(points, i), a.xs); err != nil {
			return err
		}
	}
	return nil
}

// clip shortens a candidate section so it stops half a cell before the first
// earlier section it would cross.
func (s *Schematizer) clip(ls orb.LineString, index *layers.RTreeIndex, drawn []orb.LineString) orb.LineString {
	length := planar.Length(ls)
	cut := length
	for _, id := range index.Search(ls.Bound()) {
		for _, c := range geometry.Crossings(ls, drawn[id]) {
			if c.StationA > 0 && c.StationA < cut {
				cut = c.StationA
			}
		}
	}
	if cut >= length {
		return ls
	}
	cut -= s.size / 2
	if cut <= 0 {
		return orb.LineString{ls[0], ls[0]}
	}
	return geometry.SubLine(ls, 0, cut)
}

// InterpolateCrossSections rebuilds the channel tables from the bank lines,
// giving every left bank cell a cross section that reaches the right bank.
// Segments without bank lines fall back to the centerline.
func (s *Schematizer) InterpolateCrossSections() (Summary, error) {
	return s.rebuildChannels("xsections", func(w *channelWriter, sg segment, b bank) error {
		if b.left == nil || b.right == nil {
			logger.Get().Warn("xsections: no bank lines, using the centerline", zap.Int("segment", sg.fid))
			return w.centerlineReach(sg, b.leftFid)
		}
		return w.bankReach(sg, b)
	})
}
