package exporter

import (
	"database/sql"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/logger"
	"github.com/usace/flo2d-mutator/utils"
	"go.uber.org/zap"
)

// Exporter writes .DAT files from a container into one directory.
type Exporter struct {
	c   *gpkg.Container
	dir string
}

func InitExporter(c *gpkg.Container, dir string) *Exporter {
	return &Exporter{c: c, dir: dir}
}

// routine renders one family. A nil result means there is nothing to write.
type routine func(ex *Exporter) ([]byte, error)

type step struct {
	family dat.Family
	// source is the table whose emptiness skips the family
	source string
	run    routine
}

var steps = []step{
	{dat.ContFamily, "cont", (*Exporter).exportCont},
	{dat.TolerFamily, "cont", (*Exporter).exportToler},
	{dat.FplainFamily, "grid", (*Exporter).exportFplain},
	{dat.CadptsFamily, "grid", (*Exporter).exportCadpts},
	{dat.TopoFamily, "grid", (*Exporter).exportTopo},
	{dat.ManningsFamily, "grid", (*Exporter).exportMannings},
	{dat.InflowFamily, "inflow", (*Exporter).exportInflow},
	{dat.OutflowFamily, "outflow", (*Exporter).exportOutflow},
	{dat.RainFamily, "rain", (*Exporter).exportRain},
	{dat.RaincellFamily, "raincell", (*Exporter).exportRaincell},
	{dat.InfilFamily, "infil", (*Exporter).exportInfil},
	{dat.EvaporFamily, "evapor", (*Exporter).exportEvapor},
	{dat.ChanFamily, "chan", (*Exporter).exportChan},
	{dat.ChanbankFamily, "chan_elems", (*Exporter).exportChanbank},
	{dat.XsecFamily, "xsec_n_data", (*Exporter).exportXsec},
	{dat.HystrucFamily, "hystruc", (*Exporter).exportHystruc},
	{dat.StreetFamily, "street_general", (*Exporter).exportStreets},
	{dat.ArfFamily, "blocked_cells", (*Exporter).exportArf},
	{dat.MultFamily, "mult", (*Exporter).exportMult},
	{dat.SedFamily, "", (*Exporter).exportSed},
	{dat.LeveeFamily, "levee_general", (*Exporter).exportLevee},
	{dat.FpxsecFamily, "fpxsec", (*Exporter).exportFpxsec},
	{dat.BreachFamily, "", (*Exporter).exportBreach},
	{dat.GutterFamily, "gutter_globals", (*Exporter).exportGutter},
	{dat.FpfroudeFamily, "fpfroude_cells", (*Exporter).exportFpfroude},
	{dat.ShallownFamily, "spatialshallow_cells", (*Exporter).exportShallown},
	{dat.TolspatialFamily, "tolspatial_cells", (*Exporter).exportTolspatial},
	{dat.SwmmfloFamily, "swmmflo", (*Exporter).exportSwmmflo},
	{dat.SwmmoutfFamily, "swmmoutf", (*Exporter).exportSwmmoutf},
	{dat.WsurfFamily, "wsurf", (*Exporter).exportWsurf},
	{dat.WstimeFamily, "wstime", (*Exporter).exportWstime},
}

// Families lists the families that have an export routine, in export order.
func Families() []dat.Family {
	out := make([]dat.Family, len(steps))
	for i, s := range steps {
		out[i] = s.family
	}
	return out
}

// Export renders one family and writes it. It reports false, with no error,
// when the container holds nothing for the family.
func (ex *Exporter) Export(f dat.Family) (bool, error) {
	for _, s := range steps {
		if s.family != f {
			continue
		}
		start := time.Now()
		if s.source != "" {
			empty, err := ex.c.IsTableEmpty(s.source)
			if err != nil {
				return false, err
			}
			if empty {
				logger.Get().Debug("nothing to export", zap.String("family", string(f)))
				return false, nil
			}
		}
		b, err := s.run(ex)
		if err != nil {
			return false, err
		}
		if b == nil {
			logger.Get().Debug("nothing to export", zap.String("family", string(f)))
			return false, nil
		}
		if err := utils.WriteLocalBytes(b, ex.dir, filepath.Join(ex.dir, string(f))); err != nil {
			return false, err
		}
		logger.Get().Info("exported",
			zap.String("family", string(f)),
			zap.Int("bytes", len(b)),
			zap.Duration("elapsed", time.Since(start)))
		return true, nil
	}
	return false, dat.ParseError{File: string(f), Reason: "no export routine"}
}

// each runs query and hands every row to scan.
func (ex *Exporter) each(query string, scan func(rows *sql.Rows) error, args ...any) error {
	rows, err := ex.c.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return errors.Wrap(err, 0)
		}
	}
	return rows.Err()
}

func optional(n sql.NullFloat64) dat.Optional {
	if !n.Valid {
		return dat.Optional{}
	}
	return dat.Some(n.Float64)
}
