package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/StefanSchroeder/Golang-Ellipsoid/ellipsoid"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrEmptyPath is returned when a path is built from no points.
var ErrEmptyPath = errors.New("path must have at least one point")

var wgs84Ellipsoid = ellipsoid.Init(
	"WGS84",
	ellipsoid.Degrees,
	ellipsoid.Meter,
	ellipsoid.LongitudeIsSymmetric,
	ellipsoid.BearingNotSymmetric,
)

// Path is an immutable route. The cumulative distance to every vertex is
// computed once at construction.
type Path struct {
	sr     SpatialReference
	points []Point
	cum    []float64
}

// NewPath builds a path from points in the given spatial reference.
func NewPath(sr SpatialReference, points ...Point) (*Path, error) {
	if !sr.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSpatialReference, sr)
	}
	if len(points) == 0 {
		return nil, ErrEmptyPath
	}
	for i, p := range points {
		if !p.valid() {
			return nil, fmt.Errorf("%w: point %d", ErrInvalidCoordinates, i)
		}
	}

	p := &Path{
		sr:     sr,
		points: make([]Point, len(points)),
		cum:    make([]float64, len(points)),
	}
	copy(p.points, points)
	for i := 1; i < len(p.points); i++ {
		p.cum[i] = p.cum[i-1] + segmentLength(sr, p.points[i-1], p.points[i])
	}
	return p, nil
}

// MustPath is NewPath that panics on error. Intended for static route tables and tests.
func MustPath(sr SpatialReference, points ...Point) *Path {
	p, err := NewPath(sr, points...)
	if err != nil {
		panic(err)
	}
	return p
}

// Distance returns the distance in meters between two points, measured with
// the convention of sr.
func Distance(sr SpatialReference, a, b Point) float64 {
	return segmentLength(sr, a, b)
}

func segmentLength(sr SpatialReference, a, b Point) float64 {
	if a.X == b.X && a.Y == b.Y {
		return 0
	}
	if sr.Geographic() {
		d, _ := wgs84Ellipsoid.To(a.Y, a.X, b.Y, b.X)
		return d
	}
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// SpatialReference returns the reference the path coordinates are in.
func (p *Path) SpatialReference() SpatialReference {
	return p.sr
}

// Len returns the number of vertices.
func (p *Path) Len() int {
	return len(p.points)
}

// Points returns a copy of the vertices.
func (p *Path) Points() []Point {
	out := make([]Point, len(p.points))
	copy(out, p.points)
	return out
}

// First returns the departure point.
func (p *Path) First() Point {
	return p.points[0]
}

// Last returns the arrival point.
func (p *Path) Last() Point {
	return p.points[len(p.points)-1]
}

// Length returns the total length in meters: geodesic for WGS84 paths,
// planar for projected ones.
func (p *Path) Length() float64 {
	return p.cum[len(p.cum)-1]
}

// PointAtDistance returns the point d meters along the path. Distances
// outside [0, Length] clamp to the end points. ok is false only when d is NaN.
func (p *Path) PointAtDistance(d float64) (Point, bool) {
	if math.IsNaN(d) {
		return Point{}, false
	}
	if d <= 0 {
		return p.First(), true
	}
	if d >= p.Length() {
		return p.Last(), true
	}

	// first vertex at or beyond d; i >= 1 since d > 0 == cum[0]
	lo, hi := 1, len(p.cum)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if p.cum[mid] < d {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	i := lo
	a, b := p.points[i-1], p.points[i]
	seg := p.cum[i] - p.cum[i-1]
	if seg == 0 {
		return b, true
	}
	along := d - p.cum[i-1]
	t := along / seg
	z := a.Z + (b.Z-a.Z)*t

	if p.sr.Geographic() {
		_, bearing := wgs84Ellipsoid.To(a.Y, a.X, b.Y, b.X)
		lat, lon := wgs84Ellipsoid.At(a.Y, a.X, along, bearing)
		return Point{X: lon, Y: lat, Z: z}, true
	}

	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t, Z: z}, true
}

// Project returns the path converted to another spatial reference. The
// length is re-measured with the target's convention.
func (p *Path) Project(to SpatialReference) (*Path, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSpatialReference, to)
	}
	if to == p.sr {
		return p, nil
	}
	return NewPath(to, projectAll(p.points, p.sr, to)...)
}

// Simplify generalizes points given in this path's spatial reference.
// maxDeviation is in meters; geographic points are simplified in web
// mercator and the retained original vertices are returned.
func (p *Path) Simplify(points []Point, maxDeviation float64) []Point {
	if !p.sr.Geographic() || maxDeviation <= 0 || len(points) < 3 {
		return Simplify(points, maxDeviation)
	}
	projected := projectAll(points, p.sr, WebMercator)
	kept := Simplify(projected, maxDeviation)

	out := make([]Point, 0, len(kept))
	j := 0
	for i := range projected {
		if j < len(kept) && projected[i] == kept[j] {
			out = append(out, points[i])
			j++
		}
	}
	return out
}

// LineString converts the path to a simplefeatures XYZ line string. A single
// point path becomes an empty line string.
func (p *Path) LineString() geom.LineString {
	return lineString(p.points)
}

func lineString(points []Point) geom.LineString {
	if len(points) < 2 {
		return geom.LineString{}
	}
	flat := make([]float64, 0, len(points)*3)
	for _, pt := range points {
		flat = append(flat, pt.X, pt.Y, pt.Z)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ))
}
