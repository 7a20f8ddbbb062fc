package exporter

import (
	"database/sql"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/control"
	"github.com/usace/flo2d-mutator/dat"
	"github.com/usace/flo2d-mutator/grid"
)

type gridRow struct {
	cell      grid.Cell
	nValue    float64
	elevation float64
}

// gridRows reads the cells with their attributes. Cells without indices get
// them from their centroids, without touching the container.
func (ex *Exporter) gridRows() ([]gridRow, error) {
	cells, err := grid.Cells(ex.c)
	if err != nil {
		return nil, err
	}
	missing := false
	for _, c := range cells {
		if c.Col == 0 || c.Row == 0 {
			missing = true
			break
		}
	}
	if missing {
		cfg, err := control.Load(ex.c)
		if err != nil {
			return nil, err
		}
		size, err := cfg.CellSize()
		if err != nil {
			return nil, err
		}
		centers := make([]orb.Point, len(cells))
		for i, c := range cells {
			centers[i] = c.Center
		}
		frame := grid.FrameOf(centers, size)
		for i := range cells {
			cells[i].Col, cells[i].Row = frame.ColRow(cells[i].Center)
		}
	}
	attrs := make(map[int][2]float64, len(cells))
	err = ex.each("SELECT fid, n_value, elevation FROM grid", func(rows *sql.Rows) error {
		var fid int
		var n, elev sql.NullFloat64
		if err := rows.Scan(&fid, &n, &elev); err != nil {
			return err
		}
		attrs[fid] = [2]float64{n.Float64, elev.Float64}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]gridRow, len(cells))
	for i, c := range cells {
		a := attrs[c.Fid]
		out[i] = gridRow{cell: c, nValue: a[0], elevation: a[1]}
	}
	return out, nil
}

func (ex *Exporter) exportFplain() ([]byte, error) {
	rows, err := ex.gridRows()
	if err != nil {
		return nil, err
	}
	cells := make([]grid.Cell, len(rows))
	for i, r := range rows {
		cells[i] = r.cell
	}
	ix := grid.NewIndex(cells)
	fp := dat.Fplain{Cells: make([]dat.FplainCell, 0, len(rows))}
	for _, r := range rows {
		n := ix.Neighbours(r.cell)
		fp.Cells = append(fp.Cells, dat.FplainCell{
			Fid: r.cell.Fid, N: n[0], E: n[1], S: n[2], W: n[3],
			NValue: r.nValue, Elevation: r.elevation,
		})
	}
	return fp.ToBytes(), nil
}

func (ex *Exporter) exportCadpts() ([]byte, error) {
	cells, err := grid.Cells(ex.c)
	if err != nil {
		return nil, err
	}
	cp := dat.Cadpts{Points: make([]dat.CadPoint, 0, len(cells))}
	for _, c := range cells {
		cp.Points = append(cp.Points, dat.CadPoint{Fid: c.Fid, X: c.Center[0], Y: c.Center[1]})
	}
	return cp.ToBytes(), nil
}

func (ex *Exporter) exportTopo() ([]byte, error) {
	rows, err := ex.gridRows()
	if err != nil {
		return nil, err
	}
	tp := dat.Topo{Points: make([]dat.TopoPoint, 0, len(rows))}
	for _, r := range rows {
		tp.Points = append(tp.Points, dat.TopoPoint{X: r.cell.Center[0], Y: r.cell.Center[1], Elevation: r.elevation})
	}
	return tp.ToBytes(), nil
}

func (ex *Exporter) exportMannings() ([]byte, error) {
	rows, err := ex.gridRows()
	if err != nil {
		return nil, err
	}
	mn := dat.Mannings{Cells: make([]dat.ManningsCell, 0, len(rows))}
	for _, r := range rows {
		mn.Cells = append(mn.Cells, dat.ManningsCell{Fid: r.cell.Fid, N: r.nValue})
	}
	return mn.ToBytes(), nil
}
