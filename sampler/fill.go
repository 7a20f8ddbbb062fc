package sampler

import (
	"math"

	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/utils"
)

const fillNoData = -9999.0

// Fill rasterizes values on the grid frame, lets gdal interpolate the empty
// pixels from their valid surroundings and copies the result back to the
// cells that had no value. It returns how many cells were filled. Cells out
// of reach of any value stay empty.
func Fill(cells []grid.Cell, size float64, values map[int]float64, tick grid.Tick) (int, error) {
	if len(cells) == 0 || len(values) == 0 || len(values) == len(cells) {
		return 0, nil
	}
	frame := grid.FrameOf(centers(cells), size)
	pixels := make([]float64, frame.Cols*frame.Rows)
	for i := range pixels {
		pixels[i] = fillNoData
	}
	at := func(c grid.Cell) int {
		col, row := frame.ColRow(c.Center)
		return (row-1)*frame.Cols + col - 1
	}
	for _, c := range cells {
		if v, ok := values[c.Fid]; ok {
			pixels[at(c)] = v
		}
	}
	gt := [6]float64{frame.MinX, size, 0, frame.MaxY, 0, -size}
	r, err := utils.NewMemRaster(gt, frame.Cols, frame.Rows, fillNoData, pixels)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	var stopped error
	progress := func(complete float64) bool {
		stopped = tick(int(complete*float64(len(cells))), len(cells))
		return stopped == nil
	}
	if tick == nil {
		progress = nil
	}
	distance := float64(max(frame.Cols, frame.Rows))
	if err := r.FillNoData(distance, progress); err != nil {
		if stopped != nil {
			return 0, stopped
		}
		return 0, err
	}
	filled, err := r.Values()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range cells {
		if _, ok := values[c.Fid]; ok {
			continue
		}
		v := filled[at(c)]
		if v == fillNoData || math.IsNaN(v) {
			continue
		}
		values[c.Fid] = v
		n++
	}
	return n, nil
}
