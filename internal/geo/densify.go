package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// DefaultMaxSegment is the longest segment Densify leaves in place, in meters.
const DefaultMaxSegment = 100_000.0

// Densify inserts points along the great circle between consecutive WGS84
// vertices so that no segment is longer than maxSegment meters. Elevation is
// interpolated linearly. maxSegment <= 0 uses DefaultMaxSegment.
func Densify(points []Point, maxSegment float64) []Point {
	if maxSegment <= 0 {
		maxSegment = DefaultMaxSegment
	}
	if len(points) < 2 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}

	out := make([]Point, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		d := segmentLength(WGS84, a, b)
		n := int(math.Ceil(d / maxSegment))
		if n > 1 {
			pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Y, a.X))
			pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Y, b.X))
			for k := 1; k < n; k++ {
				t := float64(k) / float64(n)
				ll := s2.LatLngFromPoint(s2.Interpolate(t, pa, pb))
				out = append(out, Point{
					X: ll.Lng.Degrees(),
					Y: ll.Lat.Degrees(),
					Z: a.Z + (b.Z-a.Z)*t,
				})
			}
		}
		out = append(out, b)
	}
	return out
}
