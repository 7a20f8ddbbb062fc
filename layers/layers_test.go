package layers

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/gpkg"
)

func TestRTreeIndexSearch(t *testing.T) {
	ix := NewRTreeIndex()
	ix.Insert(1, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}})
	ix.Insert(2, orb.Bound{Min: orb.Point{20, 20}, Max: orb.Point{30, 30}})
	ix.Insert(3, orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{5, 5}})
	tests := []struct {
		name  string
		query orb.Bound
		want  []int
	}{
		{"overlap", orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{6, 6}}, []int{1, 3}},
		{"far", orb.Bound{Min: orb.Point{25, 25}, Max: orb.Point{40, 40}}, []int{2}},
		{"empty", orb.Bound{Min: orb.Point{12, 12}, Max: orb.Point{18, 18}}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ix.Search(tt.query)
			sort.Ints(got)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestFeatureAttributes(t *testing.T) {
	f := Feature{Attributes: map[string]any{"n": "0.045", "elev": 101.5, "name": "main", "gone": nil}}
	if v, ok := f.Float("n"); !ok || v != 0.045 {
		t.Errorf("text numbers should parse, got %v %v", v, ok)
	}
	if f.FloatOr("gone", 7) != 7 {
		t.Errorf("null should fall back")
	}
	if f.String("name") != "main" || f.String("elev") != "101.5" {
		t.Errorf("unexpected strings %q %q", f.String("name"), f.String("elev"))
	}
}

func TestContainerProvider(t *testing.T) {
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ring := orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	blob, err := c.Encode(ring)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Exec("INSERT INTO user_roughness (n, geom) VALUES (?, ?)", 0.06, blob); err != nil {
		t.Fatal(err)
	}
	fs, err := NewContainerProvider(c).Features("user_roughness")
	if err != nil {
		t.Fatal(err)
	}
	if len(fs) != 1 || fs[0].Fid != 1 || fs[0].FloatOr("n", 0) != 0.06 {
		t.Fatalf("unexpected features %+v", fs)
	}
	if _, ok := fs[0].Geometry.(orb.Polygon); !ok {
		t.Errorf("expected a polygon, got %T", fs[0].Geometry)
	}
	if _, err := NewContainerProvider(c).Features("cont"); err == nil {
		t.Errorf("tables without geometry should be refused")
	}
}

func TestGeoJSONProvider(t *testing.T) {
	dir := t.TempDir()
	body := `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"elev":12.5},"geometry":{"type":"LineString","coordinates":[[0,0],[10,0]]}},
{"type":"Feature","properties":{"elev":13},"geometry":{"type":"MultiLineString","coordinates":[[[0,5],[5,5]],[[6,5],[9,5]]]}}]}`
	if err := os.WriteFile(filepath.Join(dir, "levees.geojson"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	fs, err := GeoJSONProvider{Dir: dir}.Features("levees")
	if err != nil {
		t.Fatal(err)
	}
	lines, owners := Lines(fs)
	if len(lines) != 3 || owners[2].FloatOr("elev", 0) != 13 {
		t.Errorf("expected three lines, got %v", lines)
	}
}

func TestMemoryProviderNumbers(t *testing.T) {
	m := MemoryProvider{"areas": {{Geometry: orb.Polygon{}}, {Fid: 9, Geometry: orb.Polygon{}}}}
	fs, _ := m.Features("areas")
	if fs[0].Fid != 1 || fs[1].Fid != 9 {
		t.Errorf("unexpected fids %v %v", fs[0].Fid, fs[1].Fid)
	}
	if fs, _ := m.Features("missing"); len(fs) != 0 {
		t.Errorf("missing layers are empty")
	}
}
