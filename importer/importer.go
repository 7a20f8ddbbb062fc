package importer

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/logger"
	"go.uber.org/zap"
)

// Importer loads the .DAT files of one project directory into a container.
type Importer struct {
	c       *gpkg.Container
	project dat.Project
	size    float64
}

func InitImporter(c *gpkg.Container, project dat.Project) *Importer {
	return &Importer{c: c, project: project}
}

// routine loads one family and returns the number of rows written.
type routine func(im *Importer) (int, error)

type step struct {
	family dat.Family
	run    routine
	// companions are read by the same routine and have no routine of their own
	companions []dat.Family
}

var steps = []step{
	{family: dat.ContFamily, run: (*Importer).importCont},
	{family: dat.TolerFamily, run: (*Importer).importToler},
	{family: dat.FplainFamily, run: (*Importer).importFplain, companions: []dat.Family{dat.CadptsFamily}},
	{family: dat.TopoFamily, run: (*Importer).importTopo, companions: []dat.Family{dat.ManningsFamily}},
	{family: dat.InflowFamily, run: (*Importer).importInflow},
	{family: dat.OutflowFamily, run: (*Importer).importOutflow},
	{family: dat.RainFamily, run: (*Importer).importRain},
	{family: dat.RaincellFamily, run: (*Importer).importRaincell},
	{family: dat.InfilFamily, run: (*Importer).importInfil},
	{family: dat.EvaporFamily, run: (*Importer).importEvapor},
	{family: dat.ChanFamily, run: (*Importer).importChan, companions: []dat.Family{dat.ChanbankFamily, dat.XsecFamily}},
	{family: dat.HystrucFamily, run: (*Importer).importHystruc},
	{family: dat.StreetFamily, run: (*Importer).importStreets},
	{family: dat.ArfFamily, run: (*Importer).importArf},
	{family: dat.MultFamily, run: (*Importer).importMult},
	{family: dat.SedFamily, run: (*Importer).importSed},
	{family: dat.LeveeFamily, run: (*Importer).importLevee},
	{family: dat.FpxsecFamily, run: (*Importer).importFpxsec},
	{family: dat.BreachFamily, run: (*Importer).importBreach},
	{family: dat.GutterFamily, run: (*Importer).importGutter},
	{family: dat.FpfroudeFamily, run: (*Importer).importFpfroude},
	{family: dat.ShallownFamily, run: (*Importer).importShallown},
	{family: dat.TolspatialFamily, run: (*Importer).importTolspatial},
	{family: dat.SwmmfloFamily, run: (*Importer).importSwmmflo},
	{family: dat.SwmmoutfFamily, run: (*Importer).importSwmmoutf},
	{family: dat.WsurfFamily, run: (*Importer).importWsurf},
	{family: dat.WstimeFamily, run: (*Importer).importWstime},
}

// Families lists the families that have an import routine, in import order.
func Families() []dat.Family {
	out := make([]dat.Family, len(steps))
	for i, s := range steps {
		out[i] = s.family
	}
	return out
}

// Companions returns the files read together with f.
func Companions(f dat.Family) []dat.Family {
	for _, s := range steps {
		if s.family == f {
			return s.companions
		}
	}
	return nil
}

// Import runs the routine for one family. The caller checks that the file is
// present.
func (im *Importer) Import(f dat.Family) (int, error) {
	for _, s := range steps {
		if s.family != f {
			continue
		}
		start := time.Now()
		n, err := s.run(im)
		if err != nil {
			return n, err
		}
		logger.Get().Info("imported",
			zap.String("family", string(f)),
			zap.Int("rows", n),
			zap.Duration("elapsed", time.Since(start)))
		return n, nil
	}
	return 0, dat.ParseError{File: string(f), Reason: "no import routine"}
}

func (im *Importer) path(f dat.Family) string {
	return im.project.Path(f)
}

// load empties the owned tables, inserts the fragments and runs any post
// insert steps in one transaction.
func (im *Importer) load(tables []string, frags []*gpkg.Fragment, after ...func(tx *gpkg.Container) error) (int, error) {
	n := 0
	for _, f := range frags {
		if f != nil {
			n += f.Len()
		}
	}
	err := im.c.InTx(func(tx *gpkg.Container) error {
		if err := tx.ClearTables(tables...); err != nil {
			return err
		}
		if err := tx.BatchExecute(frags...); err != nil {
			return err
		}
		for _, fn := range after {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// cellSize reads CELLSIZE once per importer; spokes and octagon sides need it.
func (im *Importer) cellSize() (float64, error) {
	if im.size > 0 {
		return im.size, nil
	}
	cfg, err := control.Load(im.c)
	if err != nil {
		return 0, err
	}
	size, err := cfg.CellSize()
	if err != nil {
		return 0, err
	}
	im.size = size
	return size, nil
}

// centroids resolves grid ids, failing on any unknown id.
func (im *Importer) centroids(ids []int) (map[int]orb.Point, error) {
	return im.c.GridCentroids(ids)
}

// line joins centroids in order; a single cell gives a degenerate two point
// line so the row still carries a geometry.
func line(pts ...orb.Point) orb.LineString {
	ls := orb.LineString(pts)
	if len(ls) == 1 {
		ls = append(ls, ls[0])
	}
	return ls
}

func (im *Importer) encode(g orb.Geometry) ([]byte, error) {
	return im.c.Encode(g)
}

func cellIds[T any](items []T, id func(T) int) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

// pointRows is the common shape of the cell attribute tables: one point per
// cell and a list of scalar columns.
func (im *Importer) pointRows(frag *gpkg.Fragment, pts map[int]orb.Point, cell int, values ...any) error {
	blob, err := im.encode(pts[cell])
	if err != nil {
		return err
	}
	args := append([]any{cell}, values...)
	return frag.Add(append(args, blob)...)
}

// check verifies cell references for tables that carry no geometry.
func (im *Importer) check(ids []int) error {
	_, err := im.centroids(ids)
	return err
}
