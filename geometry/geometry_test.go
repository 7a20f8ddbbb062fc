package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestSquareRing(t *testing.T) {
	sq := Square(orb.Point{50, 450}, 100)
	if len(sq[0]) != 5 {
		t.Fatalf("expected 5 vertices, got %d", len(sq[0]))
	}
	if !sq[0][0].Equal(sq[0][4]) {
		t.Errorf("ring is not closed")
	}
	b := sq.Bound()
	if b.Min != (orb.Point{0, 400}) || b.Max != (orb.Point{100, 500}) {
		t.Errorf("unexpected bound %v", b)
	}
}

func TestWKBRoundTrip(t *testing.T) {
	b, err := BuildSquare(orb.Point{0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	g, err := FromWKB(b)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(orb.Polygon); !ok {
		t.Errorf("expected polygon, got %T", g)
	}
	if _, err := BuildLinestring([]orb.Point{{0, 0}}); err == nil {
		t.Errorf("single vertex line should fail")
	}
}

func TestBresenham(t *testing.T) {
	s, _ := InitSnapper(orb.Point{50, 50}, 100)
	tests := []struct {
		name  string
		a, b  orb.Point
		cells int
	}{
		{"same cell", orb.Point{40, 60}, orb.Point{60, 40}, 1},
		{"horizontal", orb.Point{50, 50}, orb.Point{450, 50}, 5},
		{"diagonal", orb.Point{50, 50}, orb.Point{350, 350}, 4},
		{"steep", orb.Point{50, 50}, orb.Point{150, 450}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Bresenham(tt.a, tt.b)
			if len(got) != tt.cells {
				t.Errorf("expected %d cells, got %d (%v)", tt.cells, len(got), got)
			}
			if !got[0].Equal(s.Snap(tt.a)) || !got[len(got)-1].Equal(s.Snap(tt.b)) {
				t.Errorf("endpoints not preserved: %v", got)
			}
		})
	}
}

func TestRasterizeDropsRepeats(t *testing.T) {
	s, _ := InitSnapper(orb.Point{50, 50}, 100)
	cells := s.Rasterize(orb.LineString{{50, 50}, {250, 50}, {250, 250}})
	if len(cells) != 5 {
		t.Fatalf("expected 5 cells, got %d", len(cells))
	}
	for i := 1; i < len(cells); i++ {
		if cells[i].Equal(cells[i-1]) {
			t.Errorf("repeated cell at %d", i)
		}
	}
}

func TestDirections(t *testing.T) {
	if DirectionOf(0, 1) != North || DirectionOf(1, -1) != SouthEast || DirectionOf(-1, 1) != NorthWest {
		t.Errorf("direction lookup is wrong")
	}
	if Opposite(NorthEast) != SouthWest || Opposite(West) != East {
		t.Errorf("opposite lookup is wrong")
	}
	if DirectionOf(0, 0) != 0 {
		t.Errorf("zero step should have no direction")
	}
}

func TestOctagonSides(t *testing.T) {
	size := 100.0
	side := OctagonSideLength(size)
	for d, ls := range OctagonSides(orb.Point{0, 0}, size) {
		l := math.Hypot(ls[1][0]-ls[0][0], ls[1][1]-ls[0][1])
		if math.Abs(l-side) > 0.05 {
			t.Errorf("side %d has length %v, expected %v", d, l, side)
		}
	}
	n, _ := OctagonSide(orb.Point{0, 0}, North, size)
	if n[0][1] != 50 || n[1][1] != 50 {
		t.Errorf("north side should lie on the top edge: %v", n)
	}
}

func TestSidesBetween(t *testing.T) {
	c := orb.Point{0, 0}
	west := OctagonNode(c, orb.Point{-50, 10}, orb.Point{1, -1})
	north := OctagonNode(c, orb.Point{10, 50}, orb.Point{1, -1})
	got := SidesBetween(north, west)
	if len(got) != 2 || got[0] != North || got[1] != NorthWest {
		t.Errorf("expected [N NW], got %v", got)
	}
	if SidesBetween(3, 3) != nil {
		t.Errorf("grazing pair should produce no sides")
	}
	if len(SidesBetween(0, 5)) != 3 {
		t.Errorf("long sweep should go the short way round")
	}
}

func TestAxisAlignedLineTakesItsLeftHalf(t *testing.T) {
	c := orb.Point{0, 0}
	tests := []struct {
		name     string
		from, to orb.Point
		want     []int
	}{
		{"west to east", orb.Point{-50, 0}, orb.Point{50, 0}, []int{NorthEast, North, NorthWest}},
		{"east to west", orb.Point{50, 0}, orb.Point{-50, 0}, []int{SouthWest, South, SouthEast}},
		{"north to south", orb.Point{0, 50}, orb.Point{0, -50}, []int{SouthEast, East, NorthEast}},
		{"south to north", orb.Point{0, -50}, orb.Point{0, 50}, []int{NorthWest, West, SouthWest}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heading := orb.Point{tt.to[0] - tt.from[0], tt.to[1] - tt.from[1]}
			got := SidesBetween(OctagonNode(c, tt.from, heading), OctagonNode(c, tt.to, heading))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestProjectAndSubLine(t *testing.T) {
	ls := orb.LineString{{0, 0}, {100, 0}, {100, 100}}
	d, p := Project(ls, orb.Point{50, 10})
	if d != 50 || !p.Equal(orb.Point{50, 0}) {
		t.Errorf("unexpected projection %v %v", d, p)
	}
	sub := SubLine(ls, 50, 150)
	if len(sub) != 3 || !sub[2].Equal(orb.Point{100, 50}) {
		t.Errorf("unexpected sub line %v", sub)
	}
	back := SubLine(ls, 150, 50)
	if !back[0].Equal(orb.Point{100, 50}) {
		t.Errorf("reverse sub line should start at the far end: %v", back)
	}
}

func TestCrossings(t *testing.T) {
	a := orb.LineString{{0, 0}, {100, 0}}
	b := orb.LineString{{25, -10}, {25, 10}, {75, 10}, {75, -10}}
	cs := Crossings(a, b)
	if len(cs) != 2 {
		t.Fatalf("expected 2 crossings, got %d", len(cs))
	}
	if cs[0].StationA != 25 || cs[1].StationA != 75 {
		t.Errorf("unexpected stations %v", cs)
	}
}

func TestSnapAzimuth(t *testing.T) {
	p := SnapAzimuth(orb.Point{0, 0}, orb.Point{100, 10})
	if math.Abs(p[1]) > 1e-9 || math.Abs(p[0]-math.Hypot(100, 10)) > 1e-9 {
		t.Errorf("expected snap to east, got %v", p)
	}
}

func TestOverlayArea(t *testing.T) {
	blocker := orb.Polygon{{{0, 0}, {97, 0}, {97, 100}, {0, 100}, {0, 0}}}
	o, err := InitOverlay(blocker)
	if err != nil {
		t.Fatal(err)
	}
	a, err := o.Area(Square(orb.Point{50, 50}, 100))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a-9700) > 1e-6 {
		t.Errorf("expected 9700, got %v", a)
	}
	bow := orb.Polygon{{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}}
	if _, err := InitOverlay(bow); err == nil {
		t.Errorf("bow tie polygon should be rejected")
	}
}
