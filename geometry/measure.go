package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Crossing is an intersection between two lines, with the distance along each.
type Crossing struct {
	Point    orb.Point
	StationA float64
	StationB float64
}

// Project finds the point on ls closest to p and its distance from the start.
func Project(ls orb.LineString, p orb.Point) (float64, orb.Point) {
	best := math.Inf(1)
	var station float64
	var closest orb.Point
	run := 0.0
	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		seg := planar.Distance(a, b)
		t := 0.0
		if seg > 0 {
			t = ((p[0]-a[0])*(b[0]-a[0]) + (p[1]-a[1])*(b[1]-a[1])) / (seg * seg)
			t = math.Max(0, math.Min(1, t))
		}
		c := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
		d := planar.Distance(c, p)
		if d < best {
			best = d
			station = run + t*seg
			closest = c
		}
		run += seg
	}
	if len(ls) == 1 {
		return 0, ls[0]
	}
	return station, closest
}

// Interpolate returns the point at distance d along ls, clamped to its ends.
func Interpolate(ls orb.LineString, d float64) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if d <= 0 {
		return ls[0]
	}
	run := 0.0
	for i := 0; i < len(ls)-1; i++ {
		seg := planar.Distance(ls[i], ls[i+1])
		if run+seg >= d && seg > 0 {
			t := (d - run) / seg
			return orb.Point{ls[i][0] + t*(ls[i+1][0]-ls[i][0]), ls[i][1] + t*(ls[i+1][1]-ls[i][1])}
		}
		run += seg
	}
	return ls[len(ls)-1]
}

// SubLine cuts the part of ls between distances d0 and d1. When d1 < d0 the
// result runs backwards.
func SubLine(ls orb.LineString, d0, d1 float64) orb.LineString {
	if d1 < d0 {
		out := SubLine(ls, d1, d0)
		out.Reverse()
		return out
	}
	out := orb.LineString{Interpolate(ls, d0)}
	run := 0.0
	for i := 0; i < len(ls)-1; i++ {
		run += planar.Distance(ls[i], ls[i+1])
		if run > d0 && run < d1 {
			out = append(out, ls[i+1])
		}
	}
	end := Interpolate(ls, d1)
	if !out[len(out)-1].Equal(end) {
		out = append(out, end)
	}
	return out
}

func segmentIntersection(a1, a2, b1, b2 orb.Point) (float64, float64, bool) {
	r := orb.Point{a2[0] - a1[0], a2[1] - a1[1]}
	s := orb.Point{b2[0] - b1[0], b2[1] - b1[1]}
	den := r[0]*s[1] - r[1]*s[0]
	if den == 0 {
		return 0, 0, false
	}
	qp := orb.Point{b1[0] - a1[0], b1[1] - a1[1]}
	t := (qp[0]*s[1] - qp[1]*s[0]) / den
	u := (qp[0]*r[1] - qp[1]*r[0]) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, 0, false
	}
	return t, u, true
}

// Crossings lists every proper intersection of a and b ordered along a.
func Crossings(a, b orb.LineString) []Crossing {
	out := make([]Crossing, 0)
	runA := 0.0
	for i := 0; i < len(a)-1; i++ {
		segA := planar.Distance(a[i], a[i+1])
		runB := 0.0
		for j := 0; j < len(b)-1; j++ {
			segB := planar.Distance(b[j], b[j+1])
			t, u, ok := segmentIntersection(a[i], a[i+1], b[j], b[j+1])
			if ok {
				p := orb.Point{a[i][0] + t*(a[i+1][0]-a[i][0]), a[i][1] + t*(a[i+1][1]-a[i][1])}
				c := Crossing{Point: p, StationA: runA + t*segA, StationB: runB + u*segB}
				if len(out) == 0 || !out[len(out)-1].Point.Equal(p) {
					out = append(out, c)
				}
			}
			runB += segB
		}
		runA += segA
	}
	sortCrossings(out)
	return out
}

func sortCrossings(cs []Crossing) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].StationA < cs[j-1].StationA; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// RingArc walks the ring from distance from to distance to. Forward follows the
// vertex order and wraps past the closing vertex; backward walks the other way.
func RingArc(r orb.Ring, from, to float64, forward bool) orb.LineString {
	ls := orb.LineString(r)
	length := planar.Length(ls)
	if !forward {
		rev := make(orb.LineString, len(ls))
		copy(rev, ls)
		rev.Reverse()
		return RingArc(orb.Ring(rev), length-from, length-to, true)
	}
	if to >= from {
		return SubLine(ls, from, to)
	}
	head := SubLine(ls, from, length)
	tail := SubLine(ls, 0, to)
	return append(head, tail[1:]...)
}

// OnArc reports whether station d on a ring of the given length lies strictly
// inside the forward arc from..to.
func OnArc(d, from, to, length float64) bool {
	span := math.Mod(to-from+length, length)
	off := math.Mod(d-from+length, length)
	return off > 0 && off < span
}

// Azimuth is measured counter clockwise from east, in radians.
func Azimuth(a, b orb.Point) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

// SnapAzimuth rotates b about a so the segment points along the nearest
// multiple of 45 degrees, keeping its length.
func SnapAzimuth(a, b orb.Point) orb.Point {
	d := planar.Distance(a, b)
	step := math.Pi / 4
	az := math.Round(Azimuth(a, b)/step) * step
	return orb.Point{a[0] + d*math.Cos(az), a[1] + d*math.Sin(az)}
}
