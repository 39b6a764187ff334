package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDensify_SplitsLongSegments(t *testing.T) {
	in := []Point{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 1200}}
	out := Densify(in, 0)

	// about 1113 km on the equator
	require.Len(t, out, 13)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1], out[len(out)-1])

	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, segmentLength(WGS84, out[i-1], out[i]), DefaultMaxSegment)
		assert.InDelta(t, 0.0, out[i].Y, 1e-9)
		assert.Greater(t, out[i].X, out[i-1].X)
		assert.Greater(t, out[i].Z, out[i-1].Z)
	}
}

func TestDensify_ShortSegmentsUnchanged(t *testing.T) {
	in := []Point{{X: 0, Y: 0}, {X: 0.1, Y: 0.1}, {X: 0.2, Y: 0}}
	assert.Equal(t, in, Densify(in, DefaultMaxSegment))
	assert.Equal(t, []Point{{X: 1, Y: 1}}, Densify([]Point{{X: 1, Y: 1}}, 10))
}

func TestDensify_FollowsGreatCircle(t *testing.T) {
	// the great circle from Los Angeles to London bends north of both endpoints
	lax := Point{X: -118.408075, Y: 33.942536}
	lhr := Point{X: -0.461389, Y: 51.4775}
	out := Densify([]Point{lax, lhr}, 0)

	maxLat := 0.0
	for _, p := range out {
		maxLat = max(maxLat, p.Y)
	}
	assert.Greater(t, maxLat, lhr.Y)
}
