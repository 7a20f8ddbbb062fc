package utils

import (
	"math"
	"strconv"

	"github.com/dewberry/gdal"
	"github.com/go-errors/errors"
	"github.com/paulmach/orb"
)

// ErrNoData is returned by Query for nodata pixels and points off the raster.
var ErrNoData = errors.Errorf("no data at point")

// Raster is a read only single band raster opened through gdal.
type Raster struct {
	FilePath  string
	ds        *gdal.Dataset
	gt        [6]float64
	nodata    float64
	hasNodata bool
}

func InitRaster(fp string) (Raster, error) {
	ds, err := gdal.Open(fp, gdal.ReadOnly)
	if err != nil {
		return Raster{}, errors.Errorf("cannot open raster at %v: %v", fp, err)
	}
	r := Raster{FilePath: fp, ds: &ds, gt: ds.GeoTransform()}
	if r.gt[2] != 0 || r.gt[4] != 0 {
		ds.Close()
		return Raster{}, errors.Errorf("raster %v is rotated", fp)
	}
	r.nodata, r.hasNodata = ds.RasterBand(1).NoDataValue()
	return r, nil
}

func (r *Raster) Close() {
	r.ds.Close()
}

// PixelSize returns the pixel width and the (positive) pixel height.
func (r *Raster) PixelSize() (float64, float64) {
	return r.gt[1], math.Abs(r.gt[5])
}

func (r *Raster) Size() (int, int) {
	return r.ds.RasterXSize(), r.ds.RasterYSize()
}

// Pixel returns the column and row of the pixel containing p. They may lie
// outside the raster.
func (r *Raster) Pixel(p orb.Point) (int, int) {
	px := int(math.Floor((p[0] - r.gt[0]) / r.gt[1]))
	py := int(math.Floor((p[1] - r.gt[3]) / r.gt[5]))
	return px, py
}

// Center is the world position of a pixel center.
func (r *Raster) Center(px, py int) orb.Point {
	return orb.Point{
		r.gt[0] + (float64(px)+0.5)*r.gt[1],
		r.gt[3] + (float64(py)+0.5)*r.gt[5],
	}
}

// UpperLeft returns the upper left corner of the pixel containing p. Grids
// anchored there put their centroids on pixel centers when the cell size is
// a multiple of the pixel size.
func (r *Raster) UpperLeft(p orb.Point) orb.Point {
	px, py := r.Pixel(p)
	return orb.Point{r.gt[0] + float64(px)*r.gt[1], r.gt[3] + float64(py)*r.gt[5]}
}

func (r *Raster) valid(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	return !r.hasNodata || v != r.nodata
}

// Query samples the pixel under p.
func (r *Raster) Query(p orb.Point) (float64, error) {
	px, py := r.Pixel(p)
	w, h := r.Size()
	if px < 0 || px >= w || py < 0 || py >= h {
		return r.nodata, ErrNoData
	}
	buffer := make([]float64, 1)
	if err := r.ds.RasterBand(1).IO(gdal.Read, px, py, 1, 1, buffer, 1, 1, 0, 0); err != nil {
		return r.nodata, errors.Wrap(err, 0)
	}
	d := buffer[0]
	if !r.valid(d) {
		return r.nodata, ErrNoData
	}
	return d, nil
}

// Resampling maps the sampling method names onto gdalwarp -r algorithms.
var Resampling = map[string]string{
	"nearest":      "near",
	"bilinear":     "bilinear",
	"cubic":        "cubic",
	"cubic-spline": "cubicspline",
	"lanczos":      "lanczos",
	"mean":         "average",
	"average":      "average",
	"mode":         "mode",
	"min":          "min",
	"max":          "max",
	"median":       "med",
	"q1":           "q1",
	"q3":           "q3",
}

// emptyValue marks pixels without data in rasters built here.
const emptyValue = -3.4028234663852886e+38

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Warp resamples r onto square pixels of size covering b. The result lives
// in memory and must be closed.
func (r *Raster) Warp(b orb.Bound, size float64, method string) (Raster, error) {
	alg, ok := Resampling[method]
	if !ok {
		return Raster{}, errors.Errorf("no resampling algorithm named %q", method)
	}
	nodata := emptyValue
	if r.hasNodata {
		nodata = r.nodata
	}
	opts := []string{
		"-r", alg,
		"-te", ftoa(b.Min[0]), ftoa(b.Min[1]), ftoa(b.Max[0]), ftoa(b.Max[1]),
		"-tr", ftoa(size), ftoa(size),
		"-dstnodata", ftoa(nodata),
		"-ot", "Float64",
	}
	ds, err := gdal.Warp("", nil, []gdal.Dataset{*r.ds}, opts)
	if err != nil {
		return Raster{}, errors.Errorf("cannot warp %v: %v", r.FilePath, err)
	}
	w := Raster{FilePath: r.FilePath, ds: &ds, gt: ds.GeoTransform()}
	w.nodata, w.hasNodata = ds.RasterBand(1).NoDataValue()
	return w, nil
}

// NewMemRaster builds an in-memory raster from row major values. Pixels
// holding nodata are empty.
func NewMemRaster(gt [6]float64, cols, rows int, nodata float64, values []float64) (Raster, error) {
	if len(values) != cols*rows {
		return Raster{}, errors.Errorf("expected %d values for a %dx%d raster, got %d", cols*rows, cols, rows, len(values))
	}
	driver, err := gdal.GetDriverByName("MEM")
	if err != nil {
		return Raster{}, errors.Wrap(err, 0)
	}
	ds := driver.Create("", cols, rows, 1, gdal.Float64, nil)
	if err := ds.SetGeoTransform(gt); err != nil {
		ds.Close()
		return Raster{}, errors.Wrap(err, 0)
	}
	band := ds.RasterBand(1)
	if err := band.SetNoDataValue(nodata); err != nil {
		ds.Close()
		return Raster{}, errors.Wrap(err, 0)
	}
	if err := band.IO(gdal.Write, 0, 0, cols, rows, values, cols, rows, 0, 0); err != nil {
		ds.Close()
		return Raster{}, errors.Wrap(err, 0)
	}
	return Raster{FilePath: "MEM", ds: &ds, gt: gt, nodata: nodata, hasNodata: true}, nil
}

// FillNoData interpolates the empty pixels from the valid ones within
// distance pixels. The progress callback may return false to abort.
func (r *Raster) FillNoData(distance float64, progress func(complete float64) bool) error {
	band := r.ds.RasterBand(1)
	report := func(complete float64, message string, data interface{}) int {
		if progress != nil && !progress(complete) {
			return 0
		}
		return 1
	}
	if err := band.FillNoData(band.GetMaskBand(), distance, 0, nil, report, nil); err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}

// Values reads the whole band row major. Empty pixels hold the nodata value.
func (r *Raster) Values() ([]float64, error) {
	w, h := r.Size()
	buffer := make([]float64, w*h)
	if err := r.ds.RasterBand(1).IO(gdal.Read, 0, 0, w, h, buffer, w, h, 0, 0); err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return buffer, nil
}

// NoData reports the nodata value and whether the raster has one.
func (r *Raster) NoData() (float64, bool) {
	return r.nodata, r.hasNodata
}
