package geo

import "math"

// Heading returns the great-circle azimuth from p1 to p2 in degrees, in
// [0, 360), measured clockwise from north. Web Mercator points are
// unprojected first. ok is false when the points coincide or a coordinate
// is not finite.
func Heading(sr SpatialReference, p1, p2 Point) (float64, bool) {
	if !p1.valid() || !p2.valid() {
		return 0, false
	}
	if p1.X == p2.X && p1.Y == p2.Y {
		return 0, false
	}
	if !sr.Geographic() {
		var err error
		if p1, err = Project(p1, sr, WGS84); err != nil {
			return 0, false
		}
		if p2, err = Project(p2, sr, WGS84); err != nil {
			return 0, false
		}
	}

	_, bearing := wgs84Ellipsoid.To(p1.Y, p1.X, p2.Y, p2.X)
	if math.IsNaN(bearing) {
		return 0, false
	}
	return normalizeDegrees(bearing), true
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}
