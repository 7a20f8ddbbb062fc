package sampler

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/HydrologicEngineeringCenter/go-statistics/statistics"
	"github.com/go-errors/errors"
	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/utils"
)

func TestAggregators(t *testing.T) {
	samples := []Sample{
		{At: orb.Point{0, 0}, Value: 3},
		{At: orb.Point{9, 9}, Value: 1},
		{At: orb.Point{1, 1}, Value: 2},
		{At: orb.Point{5, 5}, Value: 2},
		{At: orb.Point{7, 7}, Value: 5},
	}
	center := orb.Point{6, 6}
	tests := []struct {
		method string
		want   float64
	}{
		{"nearest", 2},
		{"mean", 2.6},
		{"min", 1},
		{"max", 5},
		{"median", 2},
		{"q1", 2},
		{"q3", 3},
		{"mode", 2},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			agg, err := Lookup(tt.method)
			if err != nil {
				t.Fatal(err)
			}
			if got := agg(center, samples); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
	if _, err := Lookup("bilinear"); err == nil {
		t.Errorf("unknown methods should be rejected")
	}
}

func TestModeTieGoesToSmallest(t *testing.T) {
	s := []Sample{{Value: 4}, {Value: 1}, {Value: 4}, {Value: 1}, {Value: 9}}
	if got := mode(orb.Point{}, s); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

// cells of size 100 laid column major over a cols x rows frame whose upper
// left corner is the origin
func block(cols, rows int) []grid.Cell {
	cells := make([]grid.Cell, 0, cols*rows)
	fid := 1
	for col := 1; col <= cols; col++ {
		for row := 1; row <= rows; row++ {
			center := orb.Point{float64(col)*100 - 50, -float64(row)*100 + 50}
			cells = append(cells, grid.Cell{Fid: fid, Col: col, Row: row, Center: center})
			fid++
		}
	}
	return cells
}

func TestFillClosesInteriorHole(t *testing.T) {
	cells := block(5, 5)
	values := make(map[int]float64)
	for _, c := range cells {
		if c.Col == 1 || c.Col == 5 || c.Row == 1 || c.Row == 5 {
			values[c.Fid] = 10
		}
	}
	n, err := Fill(cells, 100, values, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 9 {
		t.Fatalf("expected the 3x3 hole to be filled, got %d cells", n)
	}
	for _, c := range cells {
		if math.Abs(values[c.Fid]-10) > 1e-6 {
			t.Errorf("cell %d should be 10, got %v", c.Fid, values[c.Fid])
		}
	}
}

func TestFillInterpolatesBetweenEdges(t *testing.T) {
	cells := block(3, 1)
	values := map[int]float64{1: 10, 3: 20}
	n, err := Fill(cells, 100, values, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected one filled cell, got %d", n)
	}
	if values[2] <= 10 || values[2] >= 20 {
		t.Errorf("the middle cell should lie between its neighbours, got %v", values[2])
	}
}

func TestFillStopsWhenTickFails(t *testing.T) {
	cells := block(5, 5)
	values := map[int]float64{1: 3}
	stop := errors.New("stopped")
	_, err := Fill(cells, 100, values, func(done, total int) error { return stop })
	if err != stop {
		t.Errorf("expected the tick error, got %v", err)
	}
}

func newGrid(t *testing.T) *gpkg.Container {
	t.Helper()
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	domain := orb.Polygon{orb.Ring{{0, 0}, {500, 0}, {500, 500}, {0, 500}, {0, 0}}}
	if _, err := grid.Create(c, domain, grid.Options{Size: 100}); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestPointsCoverEveryCell(t *testing.T) {
	c := newGrid(t)
	dist := statistics.UniformDistribution{Min: 0, Max: 500}
	rng := rand.New(rand.NewSource(1234))
	samples := make([]Sample, 2000)
	for i := range samples {
		p := orb.Point{dist.InvCDF(rng.Float64()), dist.InvCDF(rng.Float64())}
		samples[i] = Sample{At: p, Value: 7}
	}
	agg, _ := Lookup("mean")
	res, err := Run(c, Elevation, Options{Fill: true, Replace: true}, func(cells []grid.Cell, size float64, _ map[int]float64, tick grid.Tick) (map[int]float64, error) {
		snap, err := grid.Snapper(c, size)
		if err != nil {
			return nil, err
		}
		return FromPoints(cells, snap, samples, agg, tick)
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Assigned != 25 || res.Missing != 0 {
		t.Errorf("every cell should get a value, got %+v", res)
	}
	var n int
	if err := c.QueryRow("SELECT COUNT(*) FROM grid WHERE abs(elevation - 7) < 1e-9").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 25 {
		t.Errorf("expected 25 cells at elevation 7, got %d", n)
	}
}

func TestPolygonMethods(t *testing.T) {
	cells := []grid.Cell{{Fid: 1, Center: orb.Point{50, 50}}, {Fid: 2, Center: orb.Point{150, 50}}}
	// covers the west 40% of cell 1
	polys := []orb.Polygon{{orb.Ring{{0, 0}, {40, 0}, {40, 100}, {0, 100}, {0, 0}}}}
	vals := []float64{0.1}
	byArea, err := FromPolygonAreas(cells, 100, polys, vals, map[int]float64{1: 0.04, 2: 0.04}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(byArea[1]-0.064) > 1e-9 {
		t.Errorf("partial cover should blend to 0.064, got %v", byArea[1])
	}
	if _, ok := byArea[2]; ok {
		t.Errorf("untouched cells should be left alone")
	}
	byCentroid, err := FromPolygonCentroids(cells, polys, vals, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(byCentroid) != 0 {
		t.Errorf("no centroid lies inside the polygon, got %v", byCentroid)
	}
	wide := []orb.Polygon{{orb.Ring{{0, 0}, {120, 0}, {120, 100}, {0, 100}, {0, 0}}}}
	if got, _ := FromPolygonCentroids(cells, wide, vals, nil); got[1] != 0.1 || len(got) != 1 {
		t.Errorf("cell 1 centroid is inside, got %v", got)
	}
}

func TestReplaceClearsUnsampledCells(t *testing.T) {
	c := newGrid(t)
	if _, err := c.Exec("UPDATE grid SET elevation = 3"); err != nil {
		t.Fatal(err)
	}
	one := func(cells []grid.Cell, size float64, _ map[int]float64, _ grid.Tick) (map[int]float64, error) {
		return map[int]float64{1: 8}, nil
	}
	res, err := Run(c, Elevation, Options{}, one)
	if err != nil {
		t.Fatal(err)
	}
	if res.Missing != 24 {
		t.Errorf("expected 24 missing cells, got %d", res.Missing)
	}
	var kept int
	if err := c.QueryRow("SELECT COUNT(*) FROM grid WHERE elevation = 3").Scan(&kept); err != nil {
		t.Fatal(err)
	}
	if kept != 24 {
		t.Errorf("without replace the other cells keep their value, got %d", kept)
	}
	if _, err := Run(c, Elevation, Options{Replace: true}, one); err != nil {
		t.Fatal(err)
	}
	var empty int
	if err := c.QueryRow("SELECT COUNT(*) FROM grid WHERE elevation IS NULL").Scan(&empty); err != nil {
		t.Fatal(err)
	}
	if empty != 24 {
		t.Errorf("replace should clear 24 cells, got %d", empty)
	}
}

func TestRunRejectsEmptyGrid(t *testing.T) {
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := control.Store(c, "CELLSIZE", "100"); err != nil {
		t.Fatal(err)
	}
	called := false
	_, err = Run(c, Elevation, Options{}, func(cells []grid.Cell, size float64, _ map[int]float64, _ grid.Tick) (map[int]float64, error) {
		called = true
		return nil, nil
	})
	var ce gpkg.ContainerError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a container error, got %v", err)
	}
	if called {
		t.Errorf("nothing should be computed on an empty grid")
	}
}

// ramp is a 4x4 raster of 50 unit pixels over 0..200 whose value is the x of
// the pixel center.
func ramp(t *testing.T) utils.Raster {
	t.Helper()
	values := make([]float64, 16)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			values[row*4+col] = float64(col)*50 + 25
		}
	}
	r, err := utils.NewMemRaster([6]float64{0, 50, 0, 200, 0, -50}, 4, 4, -9999, values)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestFromRasterResamples(t *testing.T) {
	r := ramp(t)
	cells := []grid.Cell{
		{Fid: 1, Center: orb.Point{50, 150}},
		{Fid: 2, Center: orb.Point{50, 50}},
		{Fid: 3, Center: orb.Point{150, 150}},
		{Fid: 4, Center: orb.Point{150, 50}},
	}
	tests := []struct {
		method string
		west   float64
		east   float64
	}{
		{"mean", 50, 150},
		{"average", 50, 150},
		{"min", 25, 125},
		{"max", 75, 175},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, err := FromRaster(cells, 100, &r, tt.method, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 4 {
				t.Fatalf("expected 4 values, got %v", got)
			}
			if math.Abs(got[1]-tt.west) > 1e-6 || math.Abs(got[4]-tt.east) > 1e-6 {
				t.Errorf("expected %v and %v, got %v", tt.west, tt.east, got)
			}
		})
	}
	if _, err := FromRaster(cells, 100, &r, "spline", nil); err == nil {
		t.Errorf("unknown methods should be rejected")
	}
}

func TestFromRasterSkipsCellsOffTheRaster(t *testing.T) {
	r := ramp(t)
	cells := []grid.Cell{
		{Fid: 1, Center: orb.Point{50, 150}},
		{Fid: 2, Center: orb.Point{350, 150}},
	}
	got, err := FromRaster(cells, 100, &r, "bilinear", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got[2]; ok {
		t.Errorf("a cell off the raster should have no value, got %v", got[2])
	}
	if _, ok := got[1]; !ok {
		t.Errorf("the covered cell should have a value")
	}
}

func TestCheckRasterMethod(t *testing.T) {
	for _, m := range []string{"lanczos", "average", "q3", "nearest", "cubic-spline"} {
		if err := CheckRasterMethod(m); err != nil {
			t.Errorf("%v should be accepted: %v", m, err)
		}
	}
	if err := CheckRasterMethod("spline"); err == nil {
		t.Errorf("unknown method accepted")
	}
}
