package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/logger"
	"github.com/usace/flo2d-mutator/task"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
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

func newOrchestrator(t *testing.T) (*Orchestrator, control.MemorySettings) {
	t.Helper()
	settings := control.MemorySettings{}
	c, err := CreateContainer(filepath.Join(t.TempDir(), "model.gpkg"), 4326, nil, settings)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return InitOrchestrator(c, settings), settings
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func TestImportContinuesPastBrokenFamily(t *testing.T) {
	o, settings := newOrchestrator(t)
	dir := writeProject(t, map[string]string{
		"FPLAIN.DAT": fplain,
		"CADPTS.DAT": cadpts,
		"TOLER.DAT":  "x\n",
	})
	rep, err := o.ImportDat(dir, ImportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.RunID == uuid.Nil {
		t.Errorf("report should carry a run id")
	}
	if rep.Counts[string(dat.FplainFamily)] == 0 {
		t.Errorf("grid should be imported, got %v", rep.Counts)
	}
	if len(rep.Warnings) != 1 {
		t.Errorf("expected one warning for TOLER.DAT, got %v", rep.Warnings)
	}
	if settings.Get(control.LastDatDir) != dir {
		t.Errorf("last dat dir should be remembered")
	}
	if n, _ := o.Container().Count("grid"); n != 4 {
		t.Errorf("expected 4 cells, got %d", n)
	}
}

func TestBrokenContainerStopsLenientRuns(t *testing.T) {
	o, _ := newOrchestrator(t)
	dir := writeProject(t, map[string]string{
		"FPLAIN.DAT": fplain,
		"CADPTS.DAT": cadpts,
		"RAIN.DAT":   "0 0\n1 0 0 0\nR 0.000 0.000\nR 1.000 0.500\n",
		"MULT.DAT":   "0 0 0 0 0 0 0 0\n",
	})
	if _, err := o.Container().Exec("DROP TABLE rain"); err != nil {
		t.Fatal(err)
	}
	rep, err := o.ImportDat(dir, ImportOptions{})
	var ce gpkg.ContainerError
	if !errors.As(err, &ce) {
		t.Fatalf("a missing table should end the import, got %v", err)
	}
	if _, ok := rep.Counts[string(dat.MultFamily)]; ok {
		t.Errorf("families after the failure should not run, got %v", rep.Counts)
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("a container failure is not a warning, got %v", rep.Warnings)
	}

	_, err = o.ExportDat(t.TempDir(), ExportOptions{})
	if !errors.As(err, &ce) {
		t.Errorf("a missing table should end the export, got %v", err)
	}
}

func TestImportTimesEachFamily(t *testing.T) {
	o, _ := newOrchestrator(t)
	dir := writeProject(t, map[string]string{"FPLAIN.DAT": fplain, "CADPTS.DAT": cadpts, "TOLER.DAT": "x\n"})
	rep, err := o.ImportDat(dir, ImportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []dat.Family{dat.FplainFamily, dat.TolerFamily} {
		if _, ok := rep.Timings[string(f)]; !ok {
			t.Errorf("%v should be timed, got %v", f, rep.Timings)
		}
	}
	if _, ok := rep.Timings[string(dat.RainFamily)]; ok {
		t.Errorf("missing families should not be timed")
	}
	out := filepath.Join(t.TempDir(), "export")
	exp, err := o.ExportDat(out, ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := exp.Timings[string(dat.CadptsFamily)]; !ok {
		t.Errorf("export should time each family, got %v", exp.Timings)
	}
}

func TestSampleEmptyGrid(t *testing.T) {
	o, _ := newOrchestrator(t)
	if err := control.Store(o.Container(), "CELLSIZE", "100"); err != nil {
		t.Fatal(err)
	}
	xyz := filepath.Join(t.TempDir(), "survey.csv")
	if err := os.WriteFile(xyz, []byte("x,y,z\n50,50,7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := o.SampleElevation(context.Background(), SampleOptions{Source: "points", Path: xyz, Method: "mean"})
	var ce gpkg.ContainerError
	if !errors.As(err, &ce) {
		t.Errorf("sampling an empty grid should be a container error, got %v", err)
	}
}

func TestImportStrictStops(t *testing.T) {
	o, _ := newOrchestrator(t)
	dir := writeProject(t, map[string]string{
		"FPLAIN.DAT": fplain,
		"CADPTS.DAT": cadpts,
		"TOLER.DAT":  "x\n",
	})
	_, err := o.ImportDat(dir, ImportOptions{Strict: true})
	var pe dat.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected a ParseError, got %v", err)
	}
}

func TestImportConfirmDeclined(t *testing.T) {
	o, _ := newOrchestrator(t)
	dir := writeProject(t, map[string]string{"FPLAIN.DAT": fplain, "CADPTS.DAT": cadpts})
	if _, err := o.ImportDat(dir, ImportOptions{}); err != nil {
		t.Fatal(err)
	}
	asked := false
	_, err := o.ImportDat(dir, ImportOptions{Confirm: func(string) bool {
		asked = true
		return false
	}})
	var ce gpkg.ContainerError
	if !asked || !errors.As(err, &ce) {
		t.Errorf("expected the overwrite to be declined, asked=%v err=%v", asked, err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	o, _ := newOrchestrator(t)
	dir := writeProject(t, map[string]string{"FPLAIN.DAT": fplain, "CADPTS.DAT": cadpts})
	if _, err := o.ImportDat(dir, ImportOptions{Families: []dat.Family{dat.FplainFamily}}); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "export")
	rep, err := o.ExportDat(out, ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []dat.Family{dat.FplainFamily, dat.CadptsFamily} {
		if rep.Counts[string(f)] != 1 {
			t.Errorf("%v should be written", f)
		}
		if _, err := os.Stat(filepath.Join(out, string(f))); err != nil {
			t.Errorf("%v missing: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, string(dat.RainFamily))); err == nil {
		t.Errorf("empty families should not be written")
	}
}

func TestCreateGridAndSample(t *testing.T) {
	o, _ := newOrchestrator(t)
	o.Layers = layers.MemoryProvider{
		"user_model_boundary": {
			{Geometry: square(0, 0, 300, 300), Attributes: map[string]any{"cell_size": 100.0}},
		},
		"user_elevation_polygons": {
			{Geometry: square(0, 0, 300, 100), Attributes: map[string]any{"elev": 5.0}},
		},
	}
	reports := 0
	o.Progress = func(task.Progress) { reports++ }
	rep, err := o.CreateGrid(context.Background(), GridOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Counts["grid"] != 9 {
		t.Fatalf("expected 9 cells, got %v", rep.Counts)
	}
	if reports == 0 {
		t.Errorf("expected progress reports")
	}

	xyz := filepath.Join(t.TempDir(), "survey.csv")
	body := "x,y,z\n"
	for _, p := range []string{"50,50", "150,50", "250,50", "50,150", "150,150", "250,150", "50,250", "150,250", "250,250"} {
		body += p + ",7\n"
	}
	if err := os.WriteFile(xyz, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	rep, err = o.SampleElevation(context.Background(), SampleOptions{Source: "points", Path: xyz, Method: "mean"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Counts["assigned"] != 9 {
		t.Errorf("every cell should get a point, got %v", rep.Counts)
	}

	rep, err = o.SampleElevation(context.Background(), SampleOptions{Source: "polygons", Method: "centroid"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Counts["assigned"] != 3 {
		t.Errorf("the bottom row should be assigned, got %v", rep.Counts)
	}
	var low float64
	if err := o.Container().QueryRow("SELECT min(elevation) FROM grid").Scan(&low); err != nil {
		t.Fatal(err)
	}
	if low != 5 {
		t.Errorf("expected polygon elevation 5, got %v", low)
	}
}

func TestCreateGridCancelled(t *testing.T) {
	o, _ := newOrchestrator(t)
	o.Layers = layers.MemoryProvider{
		"user_model_boundary": {{Geometry: square(0, 0, 300, 300)}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.CreateGrid(ctx, GridOptions{Size: 100})
	var cancelled task.CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("expected CancelledError, got %v", err)
	}
	if n, _ := o.Container().Count("grid"); n != 0 {
		t.Errorf("cancelled grid should roll back, got %d cells", n)
	}
}

func TestUnknownSampleSource(t *testing.T) {
	o, _ := newOrchestrator(t)
	o.Layers = layers.MemoryProvider{
		"user_model_boundary": {{Geometry: square(0, 0, 200, 200)}},
	}
	if _, err := o.CreateGrid(context.Background(), GridOptions{Size: 100}); err != nil {
		t.Fatal(err)
	}
	_, err := o.SampleElevation(context.Background(), SampleOptions{Source: "lidar"})
	if err == nil {
		t.Errorf("unknown source should fail")
	}
}

func TestReadPlan(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		ok   bool
	}{
		{"empty", "", true},
		{"full", "srs: 32617\ngrid: {size: 50}\nsample:\n  - {column: manning, source: polygons}\nschematize: [levees, arf]\n", true},
		{"bad column", "sample:\n  - {column: depth}\n", false},
		{"bad routine", "schematize: [bridges]\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ReadPlan([]byte(tc.doc))
			if (err == nil) != tc.ok {
				t.Fatalf("ok=%v, got %v", tc.ok, err)
			}
			if tc.ok && p.Srs == 0 {
				t.Errorf("srs should default")
			}
		})
	}
}

func TestExecutePlan(t *testing.T) {
	o, _ := newOrchestrator(t)
	o.Layers = layers.MemoryProvider{
		"user_model_boundary": {{Geometry: square(0, 0, 200, 200)}},
		"user_roughness": {
			{Geometry: square(0, 0, 200, 200), Attributes: map[string]any{"n": 0.08}},
		},
	}
	p, err := ReadPlan([]byte("grid: {size: 100}\nsample:\n  - {column: manning}\nschematize: [arf]\n"))
	if err != nil {
		t.Fatal(err)
	}
	reports, err := o.Execute(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if reports[1].Counts["assigned"] != 4 {
		t.Errorf("every cell should get a roughness, got %v", reports[1].Counts)
	}
}

func TestFailLogsWrappedStack(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })
	wrapped := gpkg.ContainerError{Reason: "statement failed", Err: goerrors.Wrap(errors.New("disk I/O error"), 0)}
	fail("import", "RAIN.DAT", wrapped)
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["stack"]; !ok {
		t.Errorf("the stack of a wrapped error should be logged, got %v", entries[0].ContextMap())
	}
}
