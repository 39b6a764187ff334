package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeading_Cardinal(t *testing.T) {
	origin := Point{X: 0, Y: 0}
	tests := []struct {
		name string
		to   Point
		want float64
	}{
		{"east", Point{X: 1, Y: 0}, 90},
		{"south", Point{X: 0, Y: -1}, 180},
		{"west", Point{X: -1, Y: 0}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := Heading(WGS84, origin, tt.to)
			require.True(t, ok)
			assert.InDelta(t, tt.want, h, 1e-6)
		})
	}
}

func TestHeading_North(t *testing.T) {
	h, ok := Heading(WGS84, Point{X: 10, Y: 10}, Point{X: 10, Y: 11})
	require.True(t, ok)
	assert.True(t, h < 1e-6 || h > 360-1e-6, "heading %f", h)
	assert.Less(t, h, 360.0)
}

func TestHeading_Range(t *testing.T) {
	points := []Point{{X: 3, Y: 4}, {X: -120, Y: 33}, {X: 0.5, Y: -60}, {X: 170, Y: 10}, {X: -170, Y: -10}}
	for _, a := range points {
		for _, b := range points {
			if a == b {
				continue
			}
			h, ok := Heading(WGS84, a, b)
			require.True(t, ok)
			assert.GreaterOrEqual(t, h, 0.0)
			assert.Less(t, h, 360.0)
		}
	}
}

func TestHeading_WebMercator(t *testing.T) {
	h, ok := Heading(WebMercator, Point{X: 0, Y: 0}, Point{X: 1000, Y: 0})
	require.True(t, ok)
	assert.InDelta(t, 90.0, h, 1e-6)
}

func TestHeading_Coincident(t *testing.T) {
	_, ok := Heading(WGS84, Point{X: 1, Y: 1}, Point{X: 1, Y: 1, Z: 100})
	assert.False(t, ok)

	_, ok = Heading(WGS84, Point{X: math.NaN(), Y: 1}, Point{X: 1, Y: 1})
	assert.False(t, ok)
}

func TestNormalizeDegrees(t *testing.T) {
	assert.Equal(t, 0.0, normalizeDegrees(360))
	assert.Equal(t, 270.0, normalizeDegrees(-90))
	assert.Equal(t, 10.0, normalizeDegrees(730))
}
