package flight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixta/mapanimations/internal/geo"
)

func mustLookup(t *testing.T, code string) Airport {
	t.Helper()
	a, err := Lookup(code)
	require.NoError(t, err)
	return a
}

func TestAirports_Table(t *testing.T) {
	all := Airports()
	require.Len(t, all, 35)
	assert.Equal(t, "atl", all[0].Code)
	assert.Equal(t, "yyz", all[len(all)-1].Code)

	seen := map[string]bool{}
	for _, a := range all {
		assert.False(t, seen[a.Code], "duplicate %s", a.Code)
		seen[a.Code] = true
		assert.LessOrEqual(t, math.Abs(a.Location.X), 180.0)
		assert.LessOrEqual(t, math.Abs(a.Location.Y), 90.0)
	}

	all[0].Code = "zzz"
	assert.Equal(t, "atl", Airports()[0].Code)
}

func TestLookup(t *testing.T) {
	lhr := mustLookup(t, "LHR")
	assert.Equal(t, "lhr", lhr.Code)
	assert.Equal(t, geo.Point{X: -0.461389, Y: 51.4775}, lhr.Location)

	_, err := Lookup("xxx")
	assert.ErrorIs(t, err, ErrUnknownAirport)
}

func TestPathBetween_DirectWGS84(t *testing.T) {
	lhr, jfk := mustLookup(t, "lhr"), mustLookup(t, "jfk")

	p, err := PathBetween(lhr, jfk, PathOptions{SpatialReference: geo.WGS84})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, lhr.Location, p.First())
	assert.Equal(t, jfk.Location, p.Last())
	// about 5555 km
	assert.InDelta(t, 5_555_000, p.Length(), 15_000)
}

func TestPathBetween_GeodesicDensified(t *testing.T) {
	lhr, jfk := mustLookup(t, "lhr"), mustLookup(t, "jfk")

	p, err := PathBetween(lhr, jfk, PathOptions{Geodesic: true, SpatialReference: geo.WGS84})
	require.NoError(t, err)
	assert.Equal(t, 57, p.Len())

	direct, err := PathBetween(lhr, jfk, PathOptions{SpatialReference: geo.WGS84})
	require.NoError(t, err)
	assert.InDelta(t, direct.Length(), p.Length(), 5_000)
}

func TestPathBetween_DefaultsToWebMercator(t *testing.T) {
	lhr, jfk := mustLookup(t, "lhr"), mustLookup(t, "jfk")

	p, err := PathBetween(lhr, jfk, DefaultPathOptions())
	require.NoError(t, err)
	assert.Equal(t, geo.WebMercator, p.SpatialReference())

	zero, err := PathBetween(lhr, jfk, PathOptions{})
	require.NoError(t, err)
	assert.Equal(t, geo.WebMercator, zero.SpatialReference())

	want, err := geo.Project(lhr.Location, geo.WGS84, geo.WebMercator)
	require.NoError(t, err)
	assert.InDelta(t, want.X, p.First().X, 1e-6)
	assert.InDelta(t, want.Y, p.First().Y, 1e-6)
}

func TestPathBetween_AltitudeArc(t *testing.T) {
	lhr, jfk := mustLookup(t, "lhr"), mustLookup(t, "jfk")

	p, err := PathBetween(lhr, jfk, PathOptions{Geodesic: true, MaxAltitude: 10_000})
	require.NoError(t, err)

	pts := p.Points()
	assert.InDelta(t, 0.0, pts[0].Z, 1e-9)
	// the densified arc is slightly longer than the direct distance
	assert.InDelta(t, 0.0, pts[len(pts)-1].Z, 10)

	peak := 0.0
	for _, pt := range pts {
		assert.GreaterOrEqual(t, pt.Z, -1e-6)
		assert.LessOrEqual(t, pt.Z, 10_000.0+1e-6)
		peak = max(peak, pt.Z)
	}
	assert.InDelta(t, 10_000.0, peak, 50)
}

func TestPathBetween_SameAirport(t *testing.T) {
	lhr := mustLookup(t, "lhr")

	p, err := PathBetween(lhr, lhr, PathOptions{Geodesic: true, MaxAltitude: 10_000})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Length())
	assert.Equal(t, 0.0, p.First().Z)
}

func TestPathsFrom(t *testing.T) {
	lhr := mustLookup(t, "lhr")

	all, err := PathsFrom(lhr, 0, PathOptions{SpatialReference: geo.WGS84})
	require.NoError(t, err)
	require.Len(t, all, 34)
	for _, r := range all {
		assert.NotEqual(t, "lhr", r.To.Code)
		assert.Equal(t, "lhr", r.From.Code)
	}
	assert.Equal(t, "lhr-atl", all[0].Name())

	some, err := PathsFrom(lhr, 20, PathOptions{SpatialReference: geo.WGS84})
	require.NoError(t, err)
	require.Len(t, some, 20)
	assert.Equal(t, all[19].To, some[19].To)
}

func TestPlanner_Memoizes(t *testing.T) {
	p := NewPlanner(DefaultPathOptions())
	lhr, jfk := mustLookup(t, "lhr"), mustLookup(t, "jfk")

	first, err := p.Path(lhr, jfk)
	require.NoError(t, err)
	second, err := p.Path(lhr, jfk)
	require.NoError(t, err)
	assert.Same(t, first, second)

	routes, err := p.Routes(lhr, 5)
	require.NoError(t, err)
	assert.Len(t, routes, 5)
	assert.Equal(t, 6, p.Cache().Len())

	again, err := p.Routes(lhr, 5)
	require.NoError(t, err)
	for i := range routes {
		assert.Same(t, routes[i].Path, again[i].Path)
	}
	hits, misses := p.Cache().Stats()
	assert.Equal(t, 6, misses)
	assert.Equal(t, 6, hits)
}
