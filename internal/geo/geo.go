package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Paths are stored in the spatial reference they were built in. Geographic
// (4326) paths are measured on the WGS84 ellipsoid, projected (3857) paths
// are measured in the plane. Both give distances in meters.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ErrUnsupportedSpatialReference is returned for EPSG codes other than 4326 and 3857.
var ErrUnsupportedSpatialReference = errors.New("unsupported spatial reference")

// SpatialReference is an EPSG code.
type SpatialReference int

const (
	WGS84       SpatialReference = 4326
	WebMercator SpatialReference = 3857
)

func (sr SpatialReference) String() string {
	switch sr {
	case WGS84:
		return "EPSG:4326"
	case WebMercator:
		return "EPSG:3857"
	default:
		return fmt.Sprintf("EPSG:%d", int(sr))
	}
}

// Valid reports whether sr is one of the supported references.
func (sr SpatialReference) Valid() bool {
	return sr == WGS84 || sr == WebMercator
}

// Geographic reports whether coordinates are longitude/latitude degrees.
func (sr SpatialReference) Geographic() bool {
	return sr == WGS84
}

// Point is a location with optional elevation. X is longitude or easting,
// Y is latitude or northing.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY returns the planar part of p.
func (p Point) XY() geom.XY {
	return geom.XY{X: p.X, Y: p.Y}
}

func (p Point) valid() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AsGeom converts p to a simplefeatures XYZ point.
func (p Point) AsGeom() geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   p.XY(),
		Z:    p.Z,
		Type: geom.DimXYZ,
	})
}

var epsg = wgs84.EPSG()

// Project converts a single point between spatial references.
func Project(p Point, from, to SpatialReference) (Point, error) {
	if !from.Valid() || !to.Valid() {
		return Point{}, fmt.Errorf("%w: %s -> %s", ErrUnsupportedSpatialReference, from, to)
	}
	if from == to {
		return p, nil
	}
	f := epsg.Transform(int(from), int(to))
	x, y, _ := f(p.X, p.Y, 0)
	return Point{X: x, Y: y, Z: p.Z}, nil
}

// projectAll converts points in bulk, reusing one transform.
func projectAll(points []Point, from, to SpatialReference) []Point {
	out := make([]Point, len(points))
	if from == to {
		copy(out, points)
		return out
	}
	f := epsg.Transform(int(from), int(to))
	for i, p := range points {
		x, y, _ := f(p.X, p.Y, 0)
		out[i] = Point{X: x, Y: y, Z: p.Z}
	}
	return out
}
