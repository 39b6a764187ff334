package convert

import (
	"testing"
	"time"

	"github.com/nixta/mapanimations/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphicRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := core.Graphic{
		ID:         7,
		Overlay:    "flights",
		Name:       "LHR-JFK",
		Kind:       core.KindMarker,
		CreatedAt:  now,
		Attributes: map[string]any{"HEADING": 45.0},
	}

	m := CoreToGraphic(g)
	assert.Equal(t, uint32(7), m.ObjectID)
	assert.Equal(t, "marker", m.Kind)
	assert.JSONEq(t, `{"HEADING":45}`, string(m.Attributes))

	back := GraphicToCore(m)
	assert.Equal(t, g, back)
}

func TestCoreToGraphic_NoAttributes(t *testing.T) {
	m := CoreToGraphic(core.Graphic{ID: 1, Kind: core.KindLine})
	assert.Equal(t, "{}", string(m.Attributes))
	assert.Nil(t, GraphicToCore(m).Attributes)
}

func TestMarkerStateRoundTrip(t *testing.T) {
	s := core.MarkerState{
		GraphicID: 3,
		Time:      time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC),
		Frame:     60,
		Position:  core.Position3D{X: -13, Y: 51.5, Z: 10000},
		Heading:   270,
		Visible:   true,
	}

	m := CoreToMarkerState(s)
	c, ok := m.Position.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 10000.0, c.Z)
	assert.Equal(t, uint(60), m.CaptureFrame)

	assert.Equal(t, s, MarkerStateToCore(m))
}

func TestLineStateRoundTrip(t *testing.T) {
	s := core.LineState{
		GraphicID: 4,
		Frame:     2,
		Points: []core.Position3D{
			{X: 0, Y: 0, Z: 0},
			{X: 100, Y: 0, Z: 5},
			{X: 200, Y: 50, Z: 10},
		},
		Visible: true,
	}

	m := CoreToLineState(s)
	assert.Equal(t, 3, m.PointCount)
	assert.Equal(t, 3, m.Geometry.Coordinates().Length())

	assert.Equal(t, s, LineStateToCore(m))
}

func TestCoreToLineState_SinglePoint(t *testing.T) {
	m := CoreToLineState(core.LineState{Points: []core.Position3D{{X: 1, Y: 2}}})
	assert.True(t, m.Geometry.IsEmpty())
	assert.Equal(t, 1, m.PointCount)
	assert.Empty(t, LineStateToCore(m).Points)
}

func TestSessionRoundTrip(t *testing.T) {
	s := core.Session{
		ID:               9,
		Scenario:         "both",
		Origin:           "LHR",
		StartTime:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SpatialReference: 3857,
		FPS:              60,
	}
	assert.Equal(t, s, SessionToCore(CoreToSession(s)))
}
