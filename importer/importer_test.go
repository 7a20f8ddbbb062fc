package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
)

// a 2x2 grid of 100 ft cells; cell 1 is the top left one
const fplain = `1 0 2 3 0 0.040 100.00
2 0 0 4 1 0.040 101.00
3 1 4 0 0 0.045 99.00
4 2 0 0 3 0.045 98.50
`

const cadpts = `1 50.000 150.000
2 150.000 150.000
3 50.000 50.000
4 150.000 50.000
`

func newContainer(t *testing.T) *gpkg.Container {
	t.Helper()
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func writeProject(t *testing.T, files map[string]string) dat.Project {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	p, err := dat.Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// importAll runs every routine whose file is present, in order.
func importAll(t *testing.T, c *gpkg.Container, files map[string]string) {
	t.Helper()
	files["FPLAIN.DAT"] = fplain
	files["CADPTS.DAT"] = cadpts
	im := InitImporter(c, writeProject(t, files))
	for _, f := range Families() {
		if !im.project.Has(f) {
			continue
		}
		if _, err := im.Import(f); err != nil {
			t.Fatalf("%v: %v", f, err)
		}
	}
}

func count(t *testing.T, c *gpkg.Container, table string) int {
	t.Helper()
	n, err := c.Count(table)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestImportGrid(t *testing.T) {
	c := newContainer(t)
	importAll(t, c, map[string]string{})
	if n := count(t, c, "grid"); n != 4 {
		t.Fatalf("expected 4 cells, got %d", n)
	}
	cfg, err := control.Load(c)
	if err != nil {
		t.Fatal(err)
	}
	if size, err := cfg.CellSize(); err != nil || size != 100 {
		t.Errorf("expected CELLSIZE 100, got %v %v", size, err)
	}
	var col, row int
	var elev float64
	if err := c.QueryRow("SELECT col, row, elevation FROM grid WHERE fid = 4").Scan(&col, &row, &elev); err != nil {
		t.Fatal(err)
	}
	if col != 2 || row != 2 || elev != 98.5 {
		t.Errorf("fid 4 should be (2,2) at 98.5, got (%v,%v) at %v", col, row, elev)
	}
}

func TestOutflowTypeCascade(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   []int
		stages int
	}{
		{
			name:   "one entry per cell",
			body:   "O 1\nK 2\nH 10.0 1.5 0.5\nO2 3\nN 4 0\nS 0.0 1.0\nS 1.0 2.0\n",
			want:   []int{1, 10, 4, 5},
			stages: 2,
		},
		{
			name:   "entries merged by cell",
			body:   "O 1\nK 1\nT 1.0 10.0\nK 2\nN 2 1\nS 0.0 3.0\nN 3 1\nS 0.0 1.0\nK 4\nT 2.0 5.0\n",
			want:   []int{3, 8, 6, 11},
			stages: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContainer(t)
			importAll(t, c, map[string]string{"OUTFLOW.DAT": tt.body})
			rows, err := c.Query("SELECT type FROM outflow ORDER BY fid")
			if err != nil {
				t.Fatal(err)
			}
			got := []int{}
			for rows.Next() {
				var v int
				if err := rows.Scan(&v); err != nil {
					t.Fatal(err)
				}
				got = append(got, v)
			}
			rows.Close()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("outflow %d: expected type %d, got %d", i+1, tt.want[i], got[i])
				}
			}
			if n := count(t, c, "outflow_cells"); n != len(tt.want) {
				t.Errorf("expected one cell per outflow, got %d", n)
			}
			if n := count(t, c, "outflow_time_series_data"); n != tt.stages {
				t.Errorf("expected %d stage rows, got %d", tt.stages, n)
			}
		})
	}
}

func TestImportChanWithBanks(t *testing.T) {
	c := newContainer(t)
	importAll(t, c, map[string]string{
		"CHAN.DAT": `0.0 0.0 0.0 0
R 1 10.0 10.0 0.035 20.0 3.0 100.0
R 2 9.5 9.5 0.035 20.0 3.0 100.0
0.5 0.9 0.0 0
N 3 0.040 100.0 1
C 1 1
E 4
`,
		"CHANBANK.DAT": "1 3\n",
		"XSEC.DAT":     "X 1 upstream\n0.0 10.0\n5.0 8.0\n10.0 10.0\n",
	})
	if n := count(t, c, "chan"); n != 2 {
		t.Errorf("expected 2 segments, got %d", n)
	}
	var seg, nr, rbank int
	var kind string
	if err := c.QueryRow("SELECT seg_fid, nr_in_seg, rbankgrid, type FROM chan_elems WHERE grid_fid = 2").Scan(&seg, &nr, &rbank, &kind); err != nil {
		t.Fatal(err)
	}
	if seg != 1 || nr != 2 || rbank != 0 || kind != "R" {
		t.Errorf("cell 2 should be element 2 of segment 1, got seg %v nr %v rbank %v %v", seg, nr, rbank, kind)
	}
	if err := c.QueryRow("SELECT rbankgrid FROM chan_elems WHERE grid_fid = 1").Scan(&rbank); err != nil {
		t.Fatal(err)
	}
	if rbank != 3 {
		t.Errorf("cell 1 should bank on cell 3, got %v", rbank)
	}
	var name string
	if err := c.QueryRow("SELECT xsecname FROM chan_n").Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "upstream" {
		t.Errorf("natural element should carry the XSEC name, got %q", name)
	}
	if n := count(t, c, "xsec_n_data"); n != 3 {
		t.Errorf("expected 3 stations, got %d", n)
	}
	var elem int
	if err := c.QueryRow("SELECT chan_elem_fid FROM chan_confluences").Scan(&elem); err != nil {
		t.Fatal(err)
	}
	if elem != 1 {
		t.Errorf("confluence should point at element 1, got %v", elem)
	}
}

func TestImportRollsBackOnUnknownCell(t *testing.T) {
	c := newContainer(t)
	importAll(t, c, map[string]string{})
	im := InitImporter(c, writeProject(t, map[string]string{"INFLOW.DAT": "0 0\nF 0 9\nH 0.0 0.0\nH 1.0 5.0\n"}))
	_, err := im.Import(dat.InflowFamily)
	var ref gpkg.ReferenceError
	if !errors.As(err, &ref) || ref.Fid != 9 {
		t.Fatalf("expected a reference error for cell 9, got %v", err)
	}
	if n := count(t, c, "inflow"); n != 0 {
		t.Errorf("nothing should be written, got %d inflows", n)
	}
}

func TestImportLeveeSides(t *testing.T) {
	c := newContainer(t)
	importAll(t, c, map[string]string{"LEVEE.DAT": "0.0 0\nL 1\nD 2 101.50\nD 3 101.00\n"})
	if n := count(t, c, "levee_data"); n != 2 {
		t.Fatalf("expected 2 levee sides, got %d", n)
	}
	g, err := c.Geometry("levee_data", 1)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := geometry.OctagonSide(orb.Point{50, 150}, geometry.East, 100)
	if !orb.Equal(g, want) {
		t.Errorf("expected east octagon side %v, got %v", want, g)
	}
}

func TestInflowHeaderInCont(t *testing.T) {
	c := newContainer(t)
	importAll(t, c, map[string]string{"INFLOW.DAT": "1 2\nF 0 1\nH 0.0 0.0\nH 1.0 5.0 0.5\nR 4 101.00\n"})
	cfg, err := control.Load(c)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Raw("IHOURDAILY") != "1" || cfg.Raw("IDEPLT") != "2" {
		t.Errorf("header should land in cont, got %q %q", cfg.Raw("IHOURDAILY"), cfg.Raw("IDEPLT"))
	}
	var v2 *float64
	if err := c.QueryRow("SELECT value2 FROM inflow_time_series_data ORDER BY fid LIMIT 1").Scan(&v2); err != nil {
		t.Fatal(err)
	}
	if v2 != nil {
		t.Errorf("absent value2 should stay NULL, got %v", *v2)
	}
	if n := count(t, c, "reservoirs"); n != 1 {
		t.Errorf("expected 1 reservoir, got %d", n)
	}
}
