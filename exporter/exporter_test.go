package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/importer"
)

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

// roundTrip imports files on top of the 2x2 grid and exports every family
// into a fresh directory, which it returns.
func roundTrip(t *testing.T, files map[string]string) (*gpkg.Container, string) {
	t.Helper()
	c, err := gpkg.CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	in := t.TempDir()
	files["FPLAIN.DAT"] = fplain
	files["CADPTS.DAT"] = cadpts
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(in, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	project, err := dat.Scan(in)
	if err != nil {
		t.Fatal(err)
	}
	im := importer.InitImporter(c, project)
	for _, f := range importer.Families() {
		if !project.Has(f) {
			continue
		}
		if _, err := im.Import(f); err != nil {
			t.Fatalf("import %v: %v", f, err)
		}
	}
	out := t.TempDir()
	ex := InitExporter(c, out)
	for _, f := range Families() {
		if _, err := ex.Export(f); err != nil {
			t.Fatalf("export %v: %v", f, err)
		}
	}
	return c, out
}

func exported(dir string, f dat.Family) string {
	return filepath.Join(dir, string(f))
}

func TestExportGrid(t *testing.T) {
	_, out := roundTrip(t, map[string]string{})
	fp, err := dat.ReadFplain(exported(out, dat.FplainFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(fp.Cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(fp.Cells))
	}
	first := fp.Cells[0]
	if first.Fid != 1 || first.N != 0 || first.E != 2 || first.S != 3 || first.W != 0 {
		t.Errorf("cell 1 neighbours changed: %+v", first)
	}
	if fp.Cells[3].Elevation != 98.5 || fp.Cells[3].NValue != 0.045 {
		t.Errorf("cell 4 attributes changed: %+v", fp.Cells[3])
	}
	cp, err := dat.ReadCadpts(exported(out, dat.CadptsFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(cp.Points) != 4 || cp.Points[3].X != 150 || cp.Points[3].Y != 50 {
		t.Errorf("unexpected centroids %+v", cp.Points)
	}
}

func TestExportSkipsEmptyFamilies(t *testing.T) {
	_, out := roundTrip(t, map[string]string{})
	for _, f := range []dat.Family{dat.RainFamily, dat.ChanFamily, dat.SedFamily, dat.BreachFamily, dat.WstimeFamily} {
		if _, err := os.Stat(exported(out, f)); !os.IsNotExist(err) {
			t.Errorf("%v should not be written for an empty container", f)
		}
	}
}

func TestExportRain(t *testing.T) {
	body := strings.Join([]string{
		"0 0",
		"3.5 0.1 1 0",
		"R 0.000 0.000",
		"R 1.000 0.100",
		"R 2.000 0.400",
		"R 3.000 0.800",
		"R 4.000 1.000",
		"1 1.000",
		"2 0.950",
		"3 0.900",
		"4 0.850",
	}, "\n") + "\n"
	_, out := roundTrip(t, map[string]string{"RAIN.DAT": body})
	rn, err := dat.ReadRain(exported(out, dat.RainFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(rn.Series) != 5 || len(rn.Arf) != 4 {
		t.Fatalf("unexpected shape: %d series rows, %d arf cells", len(rn.Series), len(rn.Arf))
	}
	if rn.TotalRainfall != 3.5 || rn.Arf[1].Cell != 2 || rn.Arf[1].Value != 0.95 {
		t.Errorf("rain changed on the way through: %+v", rn)
	}
}

func TestExportOutflow(t *testing.T) {
	_, out := roundTrip(t, map[string]string{"OUTFLOW.DAT": "K 2\nH 10.0 1.5 0.5\nO 1\nO2 3\nN 4 0\nS 0.0 1.0\nS 1.0 2.0\n"})
	of, err := dat.ReadOutflow(exported(out, dat.OutflowFamily))
	if err != nil {
		t.Fatal(err)
	}
	kinds := map[string]dat.OutflowEntry{}
	for _, e := range of.Entries {
		kinds[e.Kind] = e
	}
	if k, ok := kinds["K"]; !ok || k.Cell != 2 || len(k.QhParams) != 1 || k.QhParams[0].Coef != 1.5 {
		t.Errorf("channel outflow lost its qh parameters: %+v", of.Entries)
	}
	if o, ok := kinds["O2"]; !ok || o.Cell != 3 {
		t.Errorf("hydrograph outflow missing: %+v", of.Entries)
	}
	if n, ok := kinds["N"]; !ok || n.Cell != 4 || n.NoStacFp != 0 || len(n.Series) != 2 {
		t.Errorf("stage outflow missing: %+v", of.Entries)
	}
}

func TestExportChannel(t *testing.T) {
	_, out := roundTrip(t, map[string]string{
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
	ch, err := dat.ReadChan(exported(out, dat.ChanFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Segments) != 2 || len(ch.Segments[0].Elements) != 2 {
		t.Fatalf("unexpected segments %+v", ch.Segments)
	}
	if ch.Segments[1].FroudC != 0.9 {
		t.Errorf("segment 2 header changed: %+v", ch.Segments[1])
	}
	if len(ch.Confluences) != 1 || ch.Confluences[0].Cell != 1 || len(ch.NoExchange) != 1 || ch.NoExchange[0] != 4 {
		t.Errorf("confluences or no-exchange cells changed: %+v %+v", ch.Confluences, ch.NoExchange)
	}
	cb, err := dat.ReadChanbank(exported(out, dat.ChanbankFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(cb.Pairs) != 1 || cb.Pairs[0] != (dat.BankPair{Left: 1, Right: 3}) {
		t.Errorf("unexpected bank pairs %+v", cb.Pairs)
	}
	xs, err := dat.ReadXsec(exported(out, dat.XsecFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(xs.Sections) != 1 || xs.Sections[0].Name != "upstream" || len(xs.Sections[0].Stations) != 3 {
		t.Errorf("unexpected cross sections %+v", xs.Sections)
	}
}

func TestExportArfFoldsBlockers(t *testing.T) {
	c, out := roundTrip(t, map[string]string{"ARF.DAT": "S 1\nT 4\n2 0.50 0 0 1 0 0 0 0 0.25\n"})
	// a second blocker on cell 2 as the schematizer would write it
	if _, err := c.Exec(`INSERT INTO blocked_cells (grid_fid, arf, wrf1, wrf2, wrf3, wrf4, wrf5, wrf6, wrf7, wrf8)
		VALUES (2, 0.70, 0, 0, 0.5, 0, 0, 0, 0, 0)`); err != nil {
		t.Fatal(err)
	}
	if _, err := InitExporter(c, out).Export(dat.ArfFamily); err != nil {
		t.Fatal(err)
	}
	a, err := dat.ReadArf(exported(out, dat.ArfFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Total) != 1 || a.Total[0] != 4 {
		t.Errorf("cell 4 should stay fully blocked, got %v", a.Total)
	}
	if len(a.Partial) != 1 {
		t.Fatalf("expected one partial cell, got %+v", a.Partial)
	}
	p := a.Partial[0]
	if p.Cell != 2 || p.Arf != 0.7 || p.Wrf[2] != 1 || p.Wrf[7] != 0.25 {
		t.Errorf("blockers on cell 2 should fold to max arf and clamped wrf, got %+v", p)
	}
	if !a.ArfBlockMod.Valid || a.ArfBlockMod.Value != 1 {
		t.Errorf("ARFBLOCKMOD should survive, got %+v", a.ArfBlockMod)
	}
}

func TestExportWaterSurfaces(t *testing.T) {
	_, out := roundTrip(t, map[string]string{
		"WSTIME.DAT":   "2\n1 100.5 0.5\n2 100.7 1.0\n",
		"FPFROUDE.DAT": "F 3 0.80\n",
	})
	ws, err := dat.ReadWstime(exported(out, dat.WstimeFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(ws.Points) != 2 || !ws.Points[1].Time.Valid || ws.Points[1].Time.Value != 1 {
		t.Errorf("unexpected wstime %+v", ws)
	}
	fr, err := dat.ReadFpfroude(exported(out, dat.FpfroudeFamily))
	if err != nil {
		t.Fatal(err)
	}
	if len(fr.Values) != 1 || fr.Values[0].Cell != 3 || fr.Values[0].Value != 0.8 {
		t.Errorf("unexpected froude values %+v", fr.Values)
	}
}

// sameFields compares two files line by line and field by field. Numbers
// compare by value so 1.0 and 1.000 agree; anything else ignores case.
func sameFields(t *testing.T, name, want, got string) {
	t.Helper()
	wl := strings.Split(strings.TrimSpace(want), "\n")
	gl := strings.Split(strings.TrimSpace(got), "\n")
	if len(wl) != len(gl) {
		t.Errorf("%s: expected %d lines, got %d\n%s", name, len(wl), len(gl), got)
		return
	}
	for i := range wl {
		wf, gf := strings.Fields(wl[i]), strings.Fields(gl[i])
		if len(wf) != len(gf) {
			t.Errorf("%s line %d: expected %q, got %q", name, i+1, wl[i], gl[i])
			continue
		}
		for j := range wf {
			a, aerr := strconv.ParseFloat(wf[j], 64)
			b, berr := strconv.ParseFloat(gf[j], 64)
			if aerr == nil && berr == nil {
				if math.Abs(a-b) > 1e-6 {
					t.Errorf("%s line %d field %d: expected %v, got %v", name, i+1, j+1, a, b)
				}
				continue
			}
			if !strings.EqualFold(wf[j], gf[j]) {
				t.Errorf("%s line %d field %d: expected %q, got %q", name, i+1, j+1, wf[j], gf[j])
			}
		}
	}
}

func TestRoundTripEveryFamily(t *testing.T) {
	files := map[dat.Family]string{
		dat.ContFamily:       "1.0 0.1 2 1 0 0\n1 0 0 0 0\n0 0 0 0 0 0 0\n0 0 0\n0 0 0 0 0.9 0 0\n1 0\n2\n0 0 0 0\n0.5\n",
		dat.TolerFamily:      "0.004 0.1 3\nC 0.6 0.6 0.6\nT 0.1\n",
		dat.InflowFamily:     "0 1\nF 0 1\nH 0.0 0.0\nH 1.0 10.0\nR 4 100.00\n",
		dat.InfilFamily:      "1\n0.1 0.2 0.4 0.4 1.0 0\n0.5 1.0 1.0\nF 1 0.5 1.0 0.3 0.1 0.0 1.0\n",
		dat.EvaporFamily:     "1 1 0.0\njanuary 5.0\n0.1\n0.2\nfebruary 6.0\n0.3\n",
		dat.HystrucFamily:    "S culvert1 0 0 1 4 0 0.0 10.0 1.0\nC 0.0 1.0 2.0 0.0 0.0 0.0 0.0 0.0 0.0 0.0\nF 1 1 0.02 0.5 1.0\n",
		dat.StreetFamily:     "0.02 1 0.9 0.5 10.0\nN main\nS 1 0.5 0.020 100.00\nW 2 5.0\n",
		dat.MultFamily:       "0.5 10.0 1.0 2 0.04 0.01 0.1 1.0\n1 10.0 1.0 2 0.04\n",
		dat.SedFamily:        "M 1.0 2.0 3.0 4.0 2.65 0.1\nC 1 1 0.5 1.2 2.65 90.0 0.01 0 0 1.0\nZ 1 1.0 0.02\nP 0.1 0.5\nP 1.0 1.0\nD 1\nR 2\nG 3 1\n",
		dat.LeveeFamily:      "0.5 1\nC a 0.5\nL 1\nD 2 101.50\nF 1\nW 2 100.0 1.0 99.0 10.0 1.0 1.0\nP 1 a 0.5\n",
		dat.FpxsecFamily:     "P 5\nX 1 2 1 2\n",
		dat.BreachFamily:     "G 1 0.5 1.0 1.0 100.0 90.0 95.0 10.0 20.0 5.0 10.0 90.0\nD 1 2 100.0 90.0 95.0 10.0 20.0 5.0 10.0 90.0 3.0\nF a 0.5 1.0\n",
		dat.GutterFamily:     "10.0 0.5 0.02\nG 1 2.0 0.5 0.020 2\n",
		dat.FpfroudeFamily:   "F 1 0.9\n",
		dat.ShallownFamily:   "1 0.2\n",
		dat.TolspatialFamily: "2 0.1\n",
		dat.SwmmfloFamily:    "D 1 I1 1 2.0 1.0 0.5 3.0 0 0.5\n",
		dat.SwmmoutfFamily:   "O1 4 1\n",
	}
	in := make(map[string]string)
	for f, body := range files {
		in[string(f)] = body
	}
	_, out := roundTrip(t, in)
	for f, want := range files {
		t.Run(string(f), func(t *testing.T) {
			b, err := os.ReadFile(exported(out, f))
			if err != nil {
				t.Fatal(err)
			}
			sameFields(t, string(f), want, string(b))
		})
	}
}
