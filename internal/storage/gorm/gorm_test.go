package gormstorage

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nixta/mapanimations/internal/model"
	"github.com/nixta/mapanimations/internal/storage"
	"github.com/nixta/mapanimations/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

// newTestBackend creates a Backend with no DB (queue-only mode for unit testing).
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := New(Dependencies{})
	require.NoError(t, b.Init())
	t.Cleanup(func() { require.NoError(t, b.Close()) })
	return b
}

// newSqliteBackend creates a Backend over a private in-memory database.
func newSqliteBackend(t *testing.T) (*Backend, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { require.NoError(t, b.Close()) })
	return b, db
}

func TestNew_Defaults(t *testing.T) {
	b := New(Dependencies{})
	assert.Equal(t, DefaultFlushInterval, b.deps.FlushInterval)
	assert.NotNil(t, b.deps.Logger)
	assert.Nil(t, b.DB())
}

func TestCloseWithoutInit(t *testing.T) {
	assert.NoError(t, New(Dependencies{}).Close())
}

func TestQueueOnly_AssignsSessionIDs(t *testing.T) {
	b := newTestBackend(t)

	s1 := &core.Session{Scenario: "planes"}
	require.NoError(t, b.StartSession(s1))
	require.NoError(t, b.EndSession())
	s2 := &core.Session{Scenario: "routes"}
	require.NoError(t, b.StartSession(s2))

	assert.Equal(t, uint(1), s1.ID)
	assert.Equal(t, uint(2), s2.ID)
	assert.False(t, s1.EndTime.IsZero())
}

func TestQueueOnly_RecordsAreQueued(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartSession(&core.Session{}))

	require.NoError(t, b.AddGraphic(&core.Graphic{ID: 1, Kind: core.KindMarker}))
	require.NoError(t, b.RecordMarkerState(&core.MarkerState{GraphicID: 1}))
	require.NoError(t, b.RecordMarkerState(&core.MarkerState{GraphicID: 1, Frame: 1}))
	require.NoError(t, b.RecordLineState(&core.LineState{GraphicID: 2}))

	assert.Equal(t, 1, b.queues.Graphics.Len())
	assert.Equal(t, 2, b.queues.MarkerStates.Len())
	assert.Equal(t, 1, b.queues.LineStates.Len())
	assert.Equal(t, 4, b.Pending())
}

func TestEndSession_WithoutStart(t *testing.T) {
	b := newTestBackend(t)
	assert.NoError(t, b.EndSession())
}

func TestSqlite_SessionLifecycle(t *testing.T) {
	b, db := newSqliteBackend(t)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &core.Session{Scenario: "both", Origin: "LHR", StartTime: start, SpatialReference: 3857, FPS: 60}
	require.NoError(t, b.StartSession(s))
	require.NotZero(t, s.ID)

	require.NoError(t, b.AddGraphic(&core.Graphic{ID: 1, Overlay: "flights", Name: "LHR-JFK", Kind: core.KindMarker}))
	require.NoError(t, b.AddGraphic(&core.Graphic{ID: 2, Overlay: "flights", Name: "LHR-JFK", Kind: core.KindLine}))
	for i := range 3 {
		require.NoError(t, b.RecordMarkerState(&core.MarkerState{
			GraphicID: 1,
			Frame:     uint(i),
			Position:  core.Position3D{X: float64(i) * 100, Y: 0, Z: 10},
			Heading:   90,
			Visible:   true,
		}))
	}
	require.NoError(t, b.RecordLineState(&core.LineState{
		GraphicID: 2,
		Frame:     2,
		Points:    []core.Position3D{{X: 0}, {X: 200}},
		Visible:   true,
	}))

	// nothing written before the session ends (flush interval is an hour)
	var count int64
	require.NoError(t, db.Model(&model.MarkerState{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	s.EndTime = start.Add(time.Minute)
	require.NoError(t, b.EndSession())
	assert.Equal(t, 0, b.Pending())

	require.NoError(t, db.Model(&model.Graphic{}).Where("session_id = ?", s.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var states []model.MarkerState
	require.NoError(t, db.Where("session_id = ?", s.ID).Order("capture_frame").Find(&states).Error)
	require.Len(t, states, 3)
	c, ok := states[2].Position.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 200.0, c.X)
	assert.Equal(t, float32(90), states[2].Heading)

	var line model.LineState
	require.NoError(t, db.Where("session_id = ?", s.ID).First(&line).Error)
	assert.Equal(t, 2, line.PointCount)
	assert.Equal(t, 2, line.Geometry.Coordinates().Length())

	var stored model.Session
	require.NoError(t, db.First(&stored, s.ID).Error)
	assert.True(t, stored.EndTime.Equal(s.EndTime))
}

func TestSqlite_CloseDrainsQueues(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:closedrain?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartSession(&core.Session{Scenario: "planes"}))
	require.NoError(t, b.RecordMarkerState(&core.MarkerState{GraphicID: 1}))

	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "second close is a no-op")

	var count int64
	require.NoError(t, db.Model(&model.MarkerState{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSqlite_WritesInBatches(t *testing.T) {
	b, db := newSqliteBackend(t)
	s := &core.Session{Scenario: "planes"}
	require.NoError(t, b.StartSession(s))

	n := batchSize + batchSize/2
	for i := range n {
		require.NoError(t, b.RecordMarkerState(&core.MarkerState{GraphicID: 1, Frame: uint(i)}))
	}
	require.NoError(t, b.EndSession())

	var count int64
	require.NoError(t, db.Model(&model.MarkerState{}).Where("session_id = ?", s.ID).Count(&count).Error)
	assert.Equal(t, int64(n), count)
}
