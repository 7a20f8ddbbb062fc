package sampler

import (
	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/utils"
)

// CheckRasterMethod accepts the names gdalwarp can resample with.
func CheckRasterMethod(method string) error {
	if _, ok := utils.Resampling[method]; !ok {
		return MethodError{Method: method}
	}
	return nil
}

func centers(cells []grid.Cell) []orb.Point {
	out := make([]orb.Point, len(cells))
	for i, c := range cells {
		out[i] = c.Center
	}
	return out
}

// FromRaster warps r once onto the grid frame with the chosen resampling
// and reads the pixel under every cell center.
func FromRaster(cells []grid.Cell, size float64, r *utils.Raster, method string, tick grid.Tick) (map[int]float64, error) {
	if err := CheckRasterMethod(method); err != nil {
		return nil, err
	}
	out := make(map[int]float64)
	if len(cells) == 0 {
		return out, nil
	}
	frame := grid.FrameOf(centers(cells), size)
	warped, err := r.Warp(grid.Extent(frame), size, method)
	if err != nil {
		return nil, err
	}
	defer warped.Close()
	for i, c := range cells {
		if err := tick.At(i, len(cells)); err != nil {
			return nil, err
		}
		v, err := warped.Query(c.Center)
		if err == utils.ErrNoData {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[c.Fid] = v
	}
	return out, nil
}
