package geo

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Simplify reduces points with Douglas-Peucker so that no removed vertex
// lies further than maxDeviation from the segment of the result that
// replaced it. Distances are measured to the segment, not the line through
// it, so a path that doubles back keeps its turning point. Units are those
// of the coordinates. maxDeviation <= 0 returns an unchanged copy.
//
// The result is a fixed point: Simplify(Simplify(s, d), d) equals
// Simplify(s, d).
func Simplify(points []Point, maxDeviation float64) []Point {
	if maxDeviation <= 0 || len(points) < 3 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}

	out := make([]Point, 0, len(points))
	var split func(a, b int)
	split = func(a, b int) {
		far, farDist := -1, maxDeviation
		for k := a + 1; k < b; k++ {
			if d := segmentDistance(points[k].XY(), points[a].XY(), points[b].XY()); d > farDist {
				far, farDist = k, d
			}
		}
		if far < 0 {
			return
		}
		split(a, far)
		out = append(out, points[far])
		split(far, b)
	}

	out = append(out, points[0])
	split(0, len(points)-1)
	out = append(out, points[len(points)-1])
	return dedupe(out)
}

// segmentDistance is the planar distance from p to the segment ab.
func segmentDistance(p, a, b geom.XY) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	t := 0.0
	if l2 := ab.Dot(ab); l2 > 0 {
		t = math.Max(0, math.Min(1, ap.Dot(ab)/l2))
	}
	return ap.Sub(ab.Scale(t)).Length()
}

// dedupe drops consecutive repeats, keeping a single point when all coincide.
func dedupe(points []Point) []Point {
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
