package grid

import (
	"path/filepath"
	"testing"

	"github.com/go-errors/errors"
	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
)

func newContainer(t *testing.T) *gpkg.Container {
	t.Helper()
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func TestCreateSquareDomain(t *testing.T) {
	c := newContainer(t)
	n, err := Create(c, square(0, 0, 500, 500), Options{Size: 100, Prune: true})
	if err != nil {
		t.Fatal(err)
	}
	if n != 25 {
		t.Fatalf("expected 25 cells, got %d", n)
	}
	cells, err := Cells(c)
	if err != nil {
		t.Fatal(err)
	}
	first, last := cells[0], cells[len(cells)-1]
	if first.Fid != 1 || !first.Center.Equal(orb.Point{50, 450}) {
		t.Errorf("fid 1 should sit at (50,450), got %v at %v", first.Fid, first.Center)
	}
	if first.Col != 1 || first.Row != 1 {
		t.Errorf("fid 1 should be (1,1), got (%v,%v)", first.Col, first.Row)
	}
	if last.Fid != 25 || last.Col != 5 || last.Row != 5 {
		t.Errorf("fid 25 should be (5,5), got fid %v (%v,%v)", last.Fid, last.Col, last.Row)
	}
	cfg, err := control.Load(c)
	if err != nil {
		t.Fatal(err)
	}
	if size, err := cfg.CellSize(); err != nil || size != 100 {
		t.Errorf("CELLSIZE should be stored, got %v %v", size, err)
	}
}

func TestCreateRejectsBadSize(t *testing.T) {
	c := newContainer(t)
	if _, err := Create(c, square(0, 0, 500, 500), Options{Size: 0}); err == nil {
		t.Errorf("zero cell size should fail")
	}
}

func TestFrameAnchor(t *testing.T) {
	anchor := orb.Point{5, 5}
	f := InitFrame(orb.Bound{Min: orb.Point{12, 12}, Max: orb.Point{38, 38}}, 10, &anchor)
	if f.MinX != 5 || f.MaxY != 45 || f.Cols != 4 || f.Rows != 4 {
		t.Errorf("unexpected frame %+v", f)
	}
	if c := f.Center(1, 1); !c.Equal(orb.Point{10, 40}) {
		t.Errorf("unexpected first centre %v", c)
	}
	col, row := f.ColRow(orb.Point{31, 19})
	if col != 3 || row != 3 {
		t.Errorf("expected (3,3), got (%v,%v)", col, row)
	}
}

func TestIsDangling(t *testing.T) {
	tests := []struct {
		name       string
		neighbours [8]int
		dangling   bool
	}{
		{"north and east", [8]int{1, 2, 0, 0, 0, 0, 0, 0}, false},
		{"north only", [8]int{1, 0, 0, 0, 0, 0, 0, 0}, true},
		{"interior", [8]int{1, 2, 3, 4, 5, 6, 7, 8}, false},
		{"isolated", [8]int{}, true},
		{"diagonals only", [8]int{0, 0, 0, 0, 5, 6, 7, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDangling(tt.neighbours); got != tt.dangling {
				t.Errorf("IsDangling(%v) = %v", tt.neighbours, got)
			}
		})
	}
}

func TestPruneAndRenumber(t *testing.T) {
	c := newContainer(t)
	f := Frame{MinX: 0, MaxY: 300, Cols: 3, Rows: 4, Size: 100}
	frag := gpkg.NewFragment("INSERT INTO grid (fid, col, row, geom) VALUES", 4)
	fid := 0
	add := func(col, row int) {
		fid++
		geom, err := c.Encode(geometry.Square(f.Center(col, row), 100))
		if err != nil {
			t.Fatal(err)
		}
		if err := frag.Add(fid, col, row, geom); err != nil {
			t.Fatal(err)
		}
	}
	add(1, 1)
	add(1, 2)
	add(1, 3)
	// hangs below the block with only a north neighbour
	add(2, 4)
	for col := 2; col <= 3; col++ {
		for row := 1; row <= 3; row++ {
			add(col, row)
		}
	}
	if err := c.BatchExecute(frag); err != nil {
		t.Fatal(err)
	}
	removed, err := Prune(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("expected one dangling cell, removed %d", removed)
	}
	if err := Renumber(c); err != nil {
		t.Fatal(err)
	}
	cells, err := Cells(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 9 {
		t.Fatalf("expected 9 cells, got %d", len(cells))
	}
	for i, cell := range cells {
		if cell.Fid != i+1 {
			t.Errorf("fids should be dense, position %d has %d", i, cell.Fid)
		}
	}
	if cells[3].Col != 2 || cells[3].Row != 1 {
		t.Errorf("fid 4 should now be (2,1), got (%v,%v)", cells[3].Col, cells[3].Row)
	}
}

func TestAssignIndices(t *testing.T) {
	c := newContainer(t)
	frag := gpkg.NewFragment("INSERT INTO grid (fid, geom) VALUES", 2)
	for i, p := range []orb.Point{{1050, 1050}, {1050, 950}, {1150, 1050}} {
		geom, err := c.Encode(geometry.Square(p, 100))
		if err != nil {
			t.Fatal(err)
		}
		frag.Add(i+1, geom)
	}
	if err := c.BatchExecute(frag); err != nil {
		t.Fatal(err)
	}
	if err := AssignIndices(c, 100); err != nil {
		t.Fatal(err)
	}
	cells, _ := Cells(c)
	ix := NewIndex(cells)
	if ix[[2]int{1, 1}] != 1 || ix[[2]int{1, 2}] != 2 || ix[[2]int{2, 1}] != 3 {
		t.Errorf("unexpected index %v", ix)
	}
	n := ix.Neighbours(cells[0])
	if n[geometry.East-1] != 3 || n[geometry.South-1] != 2 {
		t.Errorf("unexpected neighbours %v", n)
	}
}

func TestCreateStopsWhenTickFails(t *testing.T) {
	c := newContainer(t)
	if _, err := Create(c, square(0, 0, 500, 500), Options{Size: 100}); err != nil {
		t.Fatal(err)
	}
	stop := errors.New("stopped")
	calls := 0
	tick := func(done, total int) error {
		calls++
		if total != 100 {
			t.Errorf("expected 100 cells to write, got %d", total)
		}
		return stop
	}
	_, err := Create(c, square(0, 0, 1000, 1000), Options{Size: 100, Tick: tick})
	if err != stop {
		t.Fatalf("expected the tick error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the first tick to stop the walk, got %d calls", calls)
	}
	n, err := c.Count("grid")
	if err != nil {
		t.Fatal(err)
	}
	if n != 25 {
		t.Errorf("a stopped grid should roll back to the previous 25 cells, got %d", n)
	}
}

func TestTickPolling(t *testing.T) {
	seen := make([]int, 0)
	tick := Tick(func(done, total int) error {
		seen = append(seen, done)
		return nil
	})
	for i := 0; i < 600; i++ {
		tick.At(i, 600)
	}
	if len(seen) != 3 || seen[0] != 0 || seen[1] != tickEvery || seen[2] != 2*tickEvery {
		t.Errorf("unexpected polls %v", seen)
	}
	var none Tick
	if err := none.At(0, 1); err != nil {
		t.Errorf("a nil tick should never fail, got %v", err)
	}
}
