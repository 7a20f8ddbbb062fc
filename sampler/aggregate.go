// Package sampler assigns elevation and roughness values to grid cells from
// point clouds, polygons and rasters.
package sampler

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample is one observation at a location.
type Sample struct {
	At    orb.Point
	Value float64
}

// Aggregator reduces the samples of one cell to a value. It is never called
// with an empty slice.
type Aggregator func(center orb.Point, samples []Sample) float64

var aggregators = map[string]Aggregator{
	"nearest": nearest,
	"mean":    func(_ orb.Point, s []Sample) float64 { return stat.Mean(values(s), nil) },
	"min":     func(_ orb.Point, s []Sample) float64 { return floats.Min(values(s)) },
	"max":     func(_ orb.Point, s []Sample) float64 { return floats.Max(values(s)) },
	"median":  quantile(0.5),
	"q1":      quantile(0.25),
	"q3":      quantile(0.75),
	"mode":    mode,
	"average": func(_ orb.Point, s []Sample) float64 { return stat.Mean(values(s), nil) },
}

// Methods lists the aggregator names accepted by Lookup.
var Methods = []string{"nearest", "mean", "average", "min", "max", "median", "q1", "q3", "mode"}

func Lookup(method string) (Aggregator, error) {
	a, ok := aggregators[method]
	if !ok {
		return nil, MethodError{Method: method}
	}
	return a, nil
}

type MethodError struct {
	Method string
}

func (e MethodError) Error() string {
	return "unknown sampling method " + e.Method
}

func values(s []Sample) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v.Value
	}
	return out
}

func sorted(s []Sample) []float64 {
	v := values(s)
	sort.Float64s(v)
	return v
}

func nearest(center orb.Point, s []Sample) float64 {
	best, at := math.Inf(1), 0
	for i, v := range s {
		if d := planar.DistanceSquared(center, v.At); d < best {
			best, at = d, i
		}
	}
	return s[at].Value
}

func quantile(p float64) Aggregator {
	return func(_ orb.Point, s []Sample) float64 {
		return stat.Quantile(p, stat.Empirical, sorted(s), nil)
	}
}

// mode picks the most frequent value; ties go to the smallest value.
func mode(_ orb.Point, s []Sample) float64 {
	v := sorted(s)
	best, bestRun := v[0], 0
	for i := 0; i < len(v); {
		j := i
		for j < len(v) && v[j] == v[i] {
			j++
		}
		if j-i > bestRun {
			best, bestRun = v[i], j-i
		}
		i = j
	}
	return best
}
