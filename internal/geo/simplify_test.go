package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zigzag(n int, amplitude float64) []Point {
	pts := make([]Point, n)
	for i := range pts {
		y := 0.0
		if i%2 == 1 {
			y = amplitude
		}
		pts[i] = Point{X: float64(i) * 10, Y: y}
	}
	return pts
}

func TestSimplify_ZeroToleranceCopies(t *testing.T) {
	in := zigzag(7, 1)
	out := Simplify(in, 0)
	assert.Equal(t, in, out)

	out[0].X = 99
	assert.Equal(t, 0.0, in[0].X)
}

func TestSimplify_RemovesSmallDeviations(t *testing.T) {
	in := zigzag(9, 1)
	out := Simplify(in, 5)
	assert.Equal(t, []Point{in[0], in[len(in)-1]}, out)
}

func TestSimplify_KeepsLargeDeviations(t *testing.T) {
	in := []Point{{X: 0, Y: 0}, {X: 50, Y: 100}, {X: 100, Y: 0}}
	out := Simplify(in, 5)
	assert.Equal(t, in, out)
}

func TestSimplify_Idempotent(t *testing.T) {
	in := make([]Point, 200)
	for i := range in {
		x := float64(i) * 25
		in[i] = Point{X: x, Y: 400*math.Sin(x/700) + 30*math.Cos(x/45)}
	}

	for _, tol := range []float64{1, 10, 50, 500} {
		once := Simplify(in, tol)
		twice := Simplify(once, tol)
		assert.Equal(t, once, twice, "tolerance %f", tol)
		assert.LessOrEqual(t, len(once), len(in))
		assert.Equal(t, in[0], once[0])
		assert.Equal(t, in[len(in)-1], once[len(once)-1])
	}
}

func TestSimplify_Degenerate(t *testing.T) {
	same := []Point{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	assert.Equal(t, []Point{{X: 1, Y: 1}}, Simplify(same, 10))

	dups := []Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 0}}
	out := Simplify(dups, 1)
	require.Len(t, out, 2)
	assert.Equal(t, Point{X: 0, Y: 0}, out[0])
	assert.Equal(t, Point{X: 5, Y: 0}, out[1])

	assert.Empty(t, Simplify(nil, 10))
	assert.Equal(t, []Point{{X: 3, Y: 3}}, Simplify([]Point{{X: 3, Y: 3}}, 10))
}

func TestPath_SimplifyGeographic(t *testing.T) {
	p := MustPath(WGS84, Point{X: 0, Y: 0}, Point{X: 1, Y: 0})
	// 0.0001 degrees is about 11 m off the line
	revealed := []Point{{X: 0, Y: 0}, {X: 0.3, Y: 0.0001}, {X: 0.6, Y: -0.0001}, {X: 0.9, Y: 0}}

	out := p.Simplify(revealed, 500)
	assert.Equal(t, []Point{revealed[0], revealed[3]}, out)

	kept := p.Simplify(revealed, 1)
	assert.Equal(t, revealed, kept)
}

func TestSimplify_KeepsCollinearBacktrack(t *testing.T) {
	in := []Point{{X: 0, Y: 0}, {X: 5000, Y: 0}, {X: 1, Y: 0}}
	assert.Equal(t, in, Simplify(in, 500))

	// out and back along the same line, with small wobbles on the way
	outAndBack := []Point{
		{X: 0, Y: 0}, {X: 1000, Y: 3}, {X: 2000, Y: 0}, {X: 3000, Y: -2},
		{X: 4000, Y: 0}, {X: 2500, Y: 1}, {X: 1000, Y: 0}, {X: 10, Y: 0},
	}
	out := Simplify(outAndBack, 50)
	assert.Equal(t, []Point{{X: 0, Y: 0}, {X: 4000, Y: 0}, {X: 10, Y: 0}}, out)
	assert.Equal(t, out, Simplify(out, 50))
}

func TestSimplify_RemovedVerticesWithinBound(t *testing.T) {
	in := make([]Point, 120)
	for i := range in {
		a := float64(i) / 119 * 2 * math.Pi
		// a loop that returns close to its start
		in[i] = Point{X: 1000 * math.Sin(a), Y: 1000 - 1000*math.Cos(a) + 5*math.Sin(7*a)}
	}

	for _, tol := range []float64{5, 50, 300} {
		out := Simplify(in, tol)
		j := 0
		for _, p := range in {
			if j+1 < len(out) && p == out[j+1] {
				j++
				continue
			}
			if p == out[j] {
				continue
			}
			require.Less(t, j+1, len(out))
			assert.LessOrEqual(t, segmentDistance(p.XY(), out[j].XY(), out[j+1].XY()), tol, "tolerance %f", tol)
		}
	}
}
