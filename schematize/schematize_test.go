package schematize

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/layers"
)

func rect(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

// newSchematizer builds a 5x5 grid of 100 unit cells over (0,0)-(500,500).
// Fids run down each column, so fid = (col-1)*5 + row.
func newSchematizer(t *testing.T, user layers.MemoryProvider) (*Schematizer, *gpkg.Container) {
	t.Helper()
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	if _, err := grid.Create(c, rect(0, 0, 500, 500), grid.Options{Size: 100}); err != nil {
		t.Fatal(err)
	}
	s, err := InitSchematizer(c, user)
	if err != nil {
		t.Fatal(err)
	}
	return s, c
}

func TestReduceFullBlock(t *testing.T) {
	center := orb.Point{50, 50}
	tests := []struct {
		name    string
		width   float64
		wantArf float64
		wantE   float64
	}{
		{"partial", 97, 0.97, 0},
		{"rounded up to full", 98.5, 1, 0},
		{"whole cell", 100, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := geometry.InitOverlay(rect(0, 0, tt.width, 100))
			if err != nil {
				t.Fatal(err)
			}
			r, err := Reduce(o, center, 100, true, true)
			if err != nil {
				t.Fatal(err)
			}
			if r.Arf != tt.wantArf {
				t.Errorf("expected arf %v, got %v", tt.wantArf, r.Arf)
			}
			if r.Wrf[3] != 1 {
				t.Errorf("west side should be fully blocked, got %v", r.Wrf[3])
			}
			if r.Wrf[1] != tt.wantE {
				t.Errorf("expected east wrf %v, got %v", tt.wantE, r.Wrf[1])
			}
		})
	}
}

func TestReduceSkipsDisabledFactors(t *testing.T) {
	o, err := geometry.InitOverlay(rect(0, 0, 60, 100))
	if err != nil {
		t.Fatal(err)
	}
	r, err := Reduce(o, orb.Point{50, 50}, 100, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if r.Arf != 0 || r.Wrf[3] != 1 {
		t.Errorf("expected only width factors, got %+v", r)
	}
}

func TestEvaluateArfWrfFoldsOverlaps(t *testing.T) {
	s, c := newSchematizer(t, layers.MemoryProvider{
		"user_blocked_areas": {
			{Geometry: rect(205, 150, 265, 350)},
			{Geometry: rect(235, 150, 295, 350)},
		},
	})
	if _, err := s.EvaluateArfWrf(); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := c.QueryRow("SELECT count(*) FROM blocked_cells WHERE grid_fid = 13").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected one folded row for cell 13, got %d", n)
	}
	var arf, north, west float64
	if err := c.QueryRow("SELECT arf, wrf1, wrf4 FROM blocked_cells WHERE grid_fid = 13").Scan(&arf, &north, &west); err != nil {
		t.Fatal(err)
	}
	if arf != 0.6 {
		t.Errorf("largest arf should win, got %v", arf)
	}
	if north != 1 {
		t.Errorf("summed north wrf should clamp to 1, got %v", north)
	}
	if west != 0 {
		t.Errorf("west side is open, got %v", west)
	}

	// a rerun replaces the rows instead of adding to them
	before, _ := c.Count("blocked_cells")
	if _, err := s.EvaluateArfWrf(); err != nil {
		t.Fatal(err)
	}
	if after, _ := c.Count("blocked_cells"); after != before {
		t.Errorf("rerun changed row count from %d to %d", before, after)
	}
}

func TestStreetDirections(t *testing.T) {
	s, c := newSchematizer(t, layers.MemoryProvider{
		"user_streets": {
			{Geometry: orb.LineString{{50, 250}, {250, 250}}, Attributes: map[string]any{
				"name": "main", "street_width": 12.0, "n_value": 0.02, "curb_height": 0.5, "elevation": 100.0,
			}},
		},
	})
	sum, err := s.Streets()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Rows != 3 {
		t.Fatalf("expected 3 street cells, got %d", sum.Rows)
	}
	rows, err := c.Query(`SELECT s.igridn, e.istrdir, e.widr FROM street_seg s
		JOIN street_elems e ON e.seg_fid = s.fid ORDER BY s.fid, e.istrdir`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	type elem struct{ cell, dir int }
	got := []elem{}
	for rows.Next() {
		var e elem
		var widr float64
		if err := rows.Scan(&e.cell, &e.dir, &widr); err != nil {
			t.Fatal(err)
		}
		if widr != 12 {
			t.Errorf("expected width 12, got %v", widr)
		}
		got = append(got, e)
	}
	want := []elem{{3, geometry.East}, {8, geometry.East}, {8, geometry.West}, {13, geometry.West}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if empty, _ := c.IsTableEmpty("street_general"); empty {
		t.Errorf("street_general should get a default row")
	}
}

func TestLeveeSides(t *testing.T) {
	s, c := newSchematizer(t, layers.MemoryProvider{
		"user_levee_lines": {
			{Geometry: orb.LineString{{240, 0}, {240, 500}}, Attributes: map[string]any{"elev": 5.0, "correction": 0.5}},
		},
		"user_levee_points": {
			{Geometry: orb.Point{240, 0}, Attributes: map[string]any{"elev": 10.0}},
			{Geometry: orb.Point{240, 500}, Attributes: map[string]any{"elev": 20.0}},
		},
	})
	sum, err := s.Levees()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Rows != 15 {
		t.Errorf("expected three sides in each of five cells, got %d", sum.Rows)
	}
	rows, err := c.Query("SELECT ldir, levcrest FROM levee_data WHERE grid_fid = 13 ORDER BY ldir")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	dirs := []int{}
	for rows.Next() {
		var dir int
		var crest float64
		if err := rows.Scan(&dir, &crest); err != nil {
			t.Fatal(err)
		}
		if math.Abs(crest-15.5) > 1e-9 {
			t.Errorf("expected interpolated crest 15.5, got %v", crest)
		}
		dirs = append(dirs, dir)
	}
	want := []int{geometry.West, geometry.SouthWest, geometry.NorthWest}
	if len(dirs) != len(want) {
		t.Fatalf("expected sides %v, got %v", want, dirs)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("expected sides %v, got %v", want, dirs)
		}
	}
	if n, _ := c.Count("levee_general"); n != 1 {
		t.Errorf("expected a default levee_general row, got %d", n)
	}
}

func TestCrestProfile(t *testing.T) {
	cp := crestProfile{fallback: 3, points: []station{{at: 10, elev: 1}, {at: 20, elev: 2}}}
	tests := []struct {
		at, want float64
	}{
		{0, 1}, {15, 1.5}, {25, 2},
	}
	for _, tt := range tests {
		if got := cp.At(tt.at); got != tt.want {
			t.Errorf("At(%v): expected %v, got %v", tt.at, tt.want, got)
		}
	}
	if (crestProfile{fallback: 3}).At(5) != 3 {
		t.Errorf("no points should fall back to the line elevation")
	}
}

func channelLayers() layers.MemoryProvider {
	return layers.MemoryProvider{
		"user_centerline": {
			{Geometry: orb.LineString{{0, 250}, {500, 250}}, Attributes: map[string]any{"name": "main"}},
		},
		"user_xsections": {
			{Geometry: orb.LineString{{150, 400}, {150, 100}}, Attributes: map[string]any{"type": "R", "fcn": 0.05, "fcw": 20.0}},
			{Geometry: orb.LineString{{350, 400}, {350, 100}}, Attributes: map[string]any{"type": "T", "fcn": 0.06}},
		},
		"user_1d_domain": {
			{Geometry: rect(0, 150, 500, 350)},
		},
	}
}

func TestChannelsDenseElements(t *testing.T) {
	s, c := newSchematizer(t, channelLayers())
	sum, err := s.Channels()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Rows != 5 {
		t.Fatalf("expected 5 elements, got %d", sum.Rows)
	}
	rows, err := c.Query("SELECT grid_fid, nr_in_seg, type FROM chan_elems WHERE seg_fid = 1 ORDER BY fid")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	wantCells := []int{3, 8, 13, 18, 23}
	wantTypes := []string{"R", "R", "R", "T", "T"}
	i := 0
	for rows.Next() {
		var cell, nr int
		var kind string
		if err := rows.Scan(&cell, &nr, &kind); err != nil {
			t.Fatal(err)
		}
		if nr != i+1 {
			t.Errorf("nr_in_seg should be dense, got %d at %d", nr, i)
		}
		if cell != wantCells[i] || kind != wantTypes[i] {
			t.Errorf("element %d: expected %d %s, got %d %s", i, wantCells[i], wantTypes[i], cell, kind)
		}
		i++
	}
	if n, _ := c.Count("chan_t"); n != 2 {
		t.Errorf("expected two trapezoidal rows, got %d", n)
	}
}

func TestLeveeThroughCellCenters(t *testing.T) {
	s, c := newSchematizer(t, layers.MemoryProvider{
		"user_levee_lines": {
			{Geometry: orb.LineString{{0, 250}, {500, 250}}, Attributes: map[string]any{"elev": 5.0}},
		},
	})
	sum, err := s.Levees()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Rows != 15 {
		t.Errorf("expected three sides in each of five cells, got %d", sum.Rows)
	}
	var other int
	err = c.QueryRow("SELECT COUNT(*) FROM levee_data WHERE ldir NOT IN (?, ?, ?)", geometry.North, geometry.NorthEast, geometry.NorthWest).Scan(&other)
	if err != nil {
		t.Fatal(err)
	}
	if other != 0 {
		t.Errorf("a west to east levee should only block the north half, %d rows elsewhere", other)
	}
}

func TestVeeSectionsKeepCoefficients(t *testing.T) {
	user := channelLayers()
	user["user_xsections"] = []layers.Feature{
		{Geometry: orb.LineString{{150, 400}, {150, 100}}, Attributes: map[string]any{
			"type": "V", "fcn": 0.05, "fcd": 4.0, "a1": 1.5, "b1": 2.5, "c1": 0.7, "excdep": 3.0, "a11": 4.5, "c22": 0.9,
		}},
	}
	s, c := newSchematizer(t, user)
	if _, err := s.Channels(); err != nil {
		t.Fatal(err)
	}
	n, err := c.Count("chan_v")
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatalf("expected V rows")
	}
	var fcd, a1, b1, c1, excdep, a11, c22 float64
	err = c.QueryRow("SELECT fcd, a1, b1, c1, excdep, a11, c22 FROM chan_v ORDER BY fid LIMIT 1").Scan(&fcd, &a1, &b1, &c1, &excdep, &a11, &c22)
	if err != nil {
		t.Fatal(err)
	}
	got := []float64{fcd, a1, b1, c1, excdep, a11, c22}
	want := []float64{4, 1.5, 2.5, 0.7, 3, 4.5, 0.9}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestBankLinesAndInterpolation(t *testing.T) {
	s, c := newSchematizer(t, channelLayers())
	sum, err := s.BankLines()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Rows != 2 {
		t.Fatalf("expected a left and a right bank, got %d", sum.Rows)
	}
	left, err := c.Geometry("chan_banks", 1)
	if err != nil {
		t.Fatal(err)
	}
	ls := left.(orb.LineString)
	if !ls[0].Equal(orb.Point{150, 350}) || !ls[len(ls)-1].Equal(orb.Point{350, 350}) {
		t.Errorf("left bank should run along the north edge, got %v", ls)
	}

	if _, err := s.InterpolateCrossSections(); err != nil {
		t.Fatal(err)
	}
	rows, err := c.Query("SELECT grid_fid, rbankgrid, nr_in_seg FROM chan_elems ORDER BY nr_in_seg")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	want := [][3]int{{7, 9, 1}, {12, 14, 2}, {17, 19, 3}}
	i := 0
	for rows.Next() {
		var got [3]int
		if err := rows.Scan(&got[0], &got[1], &got[2]); err != nil {
			t.Fatal(err)
		}
		if i >= len(want) || got != want[i] {
			t.Errorf("element %d: got %v", i, got)
		}
		i++
	}
	if i != len(want) {
		t.Errorf("expected %d elements, got %d", len(want), i)
	}
}

func TestBankLinesNeedTwoSections(t *testing.T) {
	user := channelLayers()
	user["user_xsections"] = user["user_xsections"][:1]
	s, _ := newSchematizer(t, user)
	sum, err := s.BankLines()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Rows != 0 || sum.Skipped != 1 {
		t.Errorf("expected the segment to be skipped, got %+v", sum)
	}
}

func TestAreasSchematize(t *testing.T) {
	s, c := newSchematizer(t, layers.MemoryProvider{
		"user_froude":    {{Geometry: rect(0, 0, 200, 200), Attributes: map[string]any{"froude": 0.9}}},
		"user_rain_arf":  {{Geometry: rect(300, 300, 500, 500), Attributes: map[string]any{"arf": 0.5}}},
		"user_shallow_n": {{Geometry: rect(0, 400, 100, 500), Attributes: map[string]any{"shallow_n": 0.2}}},
	})
	if _, err := s.Areas(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RainArf(); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		table string
		want  int
	}{
		{"fpfroude_cells", 4},
		{"rain_arf_cells", 4},
		{"spatialshallow_cells", 1},
		{"tolspatial_cells", 0},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			if n, _ := c.Count(tt.table); n != tt.want {
				t.Errorf("expected %d rows, got %d", tt.want, n)
			}
		})
	}
}
