package actions

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/usace/flo2d-mutator/geometry"
	"github.com/usace/flo2d-mutator/gpkg"
	"github.com/usace/flo2d-mutator/grid"
	"github.com/usace/flo2d-mutator/layers"
	"github.com/usace/flo2d-mutator/sampler"
	"github.com/usace/flo2d-mutator/task"
	"github.com/usace/flo2d-mutator/utils"
)

// GridOptions tune CreateGrid.
type GridOptions struct {
	// Size of a cell; zero takes cell_size from the model boundary.
	Size float64
	// AnchorRaster aligns the cells to the pixels of this raster.
	AnchorRaster string
	Prune        bool
}

// run hands step to a task on the orchestrator's container and waits for it,
// relaying progress.
func (o *Orchestrator) run(ctx context.Context, name string, step task.Step) error {
	t, err := task.Run(ctx, o.c, name, step)
	if err != nil {
		return err
	}
	for p := range t.Progress() {
		if o.Progress != nil {
			o.Progress(p)
		}
	}
	return t.Wait()
}

// domain picks the model boundary polygon.
func domain(provider layers.LayerProvider) (orb.Polygon, layers.Feature, error) {
	features, err := provider.Features("user_model_boundary")
	if err != nil {
		return nil, layers.Feature{}, err
	}
	polys, owners := layers.Polygons(features)
	if len(polys) == 0 {
		return nil, layers.Feature{}, geometry.GeometryError{Kind: geometry.EmptyGeometry, Detail: "user_model_boundary holds no polygon"}
	}
	return polys[0], owners[0], nil
}

// ticker reports progress through r and stops the loop once the task is
// cancelled.
func ticker(r *task.Reporter, msg string) grid.Tick {
	return func(done, total int) error {
		r.Report(done, total, msg)
		return r.Check()
	}
}

// CreateGrid tessellates the model boundary. It runs as a task; cancelling
// ctx rolls the grid back.
func (o *Orchestrator) CreateGrid(ctx context.Context, opts GridOptions) (Report, error) {
	rep := newReport("grid")
	defer rep.finish()
	err := o.run(ctx, "grid", func(r *task.Reporter, tx *gpkg.Container) error {
		r.Report(0, 1, "reading model boundary")
		poly, owner, err := domain(o.provider(tx))
		if err != nil {
			return err
		}
		size := opts.Size
		if size <= 0 {
			size = owner.FloatOr("cell_size", 0)
		}
		gopts := grid.Options{Size: size, Prune: opts.Prune, Tick: ticker(r, "building cells")}
		if opts.AnchorRaster != "" {
			raster, err := utils.InitRaster(opts.AnchorRaster)
			if err != nil {
				return err
			}
			b := poly.Bound()
			anchor := raster.UpperLeft(orb.Point{b.Min[0], b.Max[1]})
			raster.Close()
			gopts.Anchor = &anchor
		}
		if err := r.Check(); err != nil {
			return err
		}
		n, err := grid.Create(tx, poly, gopts)
		if err != nil {
			return err
		}
		rep.Counts["grid"] = n
		r.Report(n, n, "grid created")
		return nil
	})
	return rep, err
}

// SampleOptions tune SampleElevation and SampleManning.
type SampleOptions struct {
	// Source is "raster", "points" or "polygons".
	Source string
	// Path is the raster, an xyz file or a shapefile. Points and polygons
	// fall back to the container layer when it is empty.
	Path string
	// Layer and Field name the features and their value attribute.
	Layer string
	Field string
	// Method is an aggregator name, or "centroid" / "area" for polygons.
	Method string
	Fill   bool
}

func (o *Orchestrator) sample(ctx context.Context, column sampler.Column, opts SampleOptions, layer, field string) (Report, error) {
	rep := newReport("sample " + string(column))
	defer rep.finish()
	if opts.Layer == "" {
		opts.Layer = layer
	}
	if opts.Field == "" {
		opts.Field = field
	}
	err := o.run(ctx, "sample", func(r *task.Reporter, tx *gpkg.Container) error {
		compute, err := o.compute(tx, opts)
		if err != nil {
			return err
		}
		r.Report(0, 1, "sampling "+string(column))
		// points and rasters describe the whole surface, polygons patch it
		sopts := sampler.Options{
			Fill:    opts.Fill,
			Replace: opts.Source != "polygons",
			Tick:    ticker(r, "sampling "+string(column)),
		}
		res, err := sampler.Run(tx, column, sopts, compute)
		if err != nil {
			return err
		}
		rep.Counts["assigned"] = res.Assigned
		rep.Counts["filled"] = res.Filled
		rep.Counts["missing"] = res.Missing
		r.Report(res.Assigned+res.Missing, res.Assigned+res.Missing, "sampled "+string(column))
		return nil
	})
	return rep, err
}

// SampleElevation fills grid elevations from a raster, a point cloud or the
// elevation polygons.
func (o *Orchestrator) SampleElevation(ctx context.Context, opts SampleOptions) (Report, error) {
	layer := "user_elevation_points"
	if opts.Source == "polygons" {
		layer = "user_elevation_polygons"
	}
	return o.sample(ctx, sampler.Elevation, opts, layer, "elev")
}

// SampleManning fills grid roughness, normally from the roughness polygons.
func (o *Orchestrator) SampleManning(ctx context.Context, opts SampleOptions) (Report, error) {
	if opts.Source == "" {
		opts.Source = "polygons"
	}
	return o.sample(ctx, sampler.Roughness, opts, "user_roughness", "n")
}

// features reads the source layer, from a shapefile when Path names one.
func (o *Orchestrator) features(tx *gpkg.Container, opts SampleOptions) ([]layers.Feature, error) {
	if strings.EqualFold(filepath.Ext(opts.Path), ".shp") {
		name := strings.TrimSuffix(filepath.Base(opts.Path), filepath.Ext(opts.Path))
		return layers.ShapefileProvider{Dir: filepath.Dir(opts.Path)}.Features(name)
	}
	return o.provider(tx).Features(opts.Layer)
}

func (o *Orchestrator) compute(tx *gpkg.Container, opts SampleOptions) (sampler.Compute, error) {
	switch opts.Source {
	case "raster":
		if err := sampler.CheckRasterMethod(opts.Method); err != nil {
			return nil, err
		}
		return func(cells []grid.Cell, size float64, base map[int]float64, tick grid.Tick) (map[int]float64, error) {
			raster, err := utils.InitRaster(opts.Path)
			if err != nil {
				return nil, err
			}
			defer raster.Close()
			return sampler.FromRaster(cells, size, &raster, opts.Method, tick)
		}, nil
	case "points":
		agg, err := sampler.Lookup(opts.Method)
		if err != nil {
			return nil, err
		}
		samples, err := o.points(tx, opts)
		if err != nil {
			return nil, err
		}
		return func(cells []grid.Cell, size float64, base map[int]float64, tick grid.Tick) (map[int]float64, error) {
			if len(cells) == 0 {
				return nil, gpkg.ContainerError{Reason: "grid is empty"}
			}
			snap, err := geometry.InitSnapper(cells[0].Center, size)
			if err != nil {
				return nil, err
			}
			return sampler.FromPoints(cells, snap, samples, agg, tick)
		}, nil
	case "polygons":
		features, err := o.features(tx, opts)
		if err != nil {
			return nil, err
		}
		polys, owners := layers.Polygons(features)
		vals := make([]float64, len(owners))
		for i, f := range owners {
			vals[i] = f.FloatOr(opts.Field, 0)
		}
		switch opts.Method {
		case "", "centroid":
			return func(cells []grid.Cell, size float64, base map[int]float64, tick grid.Tick) (map[int]float64, error) {
				return sampler.FromPolygonCentroids(cells, polys, vals, tick)
			}, nil
		case "area":
			return func(cells []grid.Cell, size float64, base map[int]float64, tick grid.Tick) (map[int]float64, error) {
				return sampler.FromPolygonAreas(cells, size, polys, vals, base, tick)
			}, nil
		}
		return nil, sampler.MethodError{Method: opts.Method}
	}
	return nil, sampler.MethodError{Method: opts.Source}
}

// points reads an xyz file, a point shapefile or a point layer.
func (o *Orchestrator) points(tx *gpkg.Container, opts SampleOptions) ([]sampler.Sample, error) {
	switch strings.ToLower(filepath.Ext(opts.Path)) {
	case ".csv", ".xyz", ".txt", ".pts":
		cl, err := utils.ReadCoordinateList(opts.Path)
		if err != nil {
			return nil, err
		}
		out := make([]sampler.Sample, len(cl.Coordinates))
		for i, c := range cl.Coordinates {
			out[i] = sampler.Sample{At: c.Point(), Value: c.Z}
		}
		return out, nil
	}
	features, err := o.features(tx, opts)
	if err != nil {
		return nil, err
	}
	out := make([]sampler.Sample, 0, len(features))
	for _, f := range features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		v, ok := f.Float(opts.Field)
		if !ok {
			continue
		}
		out = append(out, sampler.Sample{At: p, Value: v})
	}
	return out, nil
}
