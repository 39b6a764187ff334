package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixta/mapanimations/internal/animation"
	"github.com/nixta/mapanimations/internal/scene"
)

type pendingBackend struct{ n int }

func (b pendingBackend) Pending() int { return b.n }

func TestGetStatus(t *testing.T) {
	clock := animation.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	sched, err := animation.New(animation.WithClock(clock))
	require.NoError(t, err)
	_, err = sched.Register(func(time.Duration) bool { return false }, nil)
	require.NoError(t, err)

	sc := scene.New(scene.Config{Clock: clock})
	planes := sc.Overlay("planes")
	a, err := planes.AddMarker("a", nil)
	require.NoError(t, err)
	_, err = planes.AddMarker("b", nil)
	require.NoError(t, err)
	a.SetVisible(true)

	svc := NewService(Dependencies{
		Scheduler: sched,
		Scene:     func() *scene.Scene { return sc },
		Backend:   pendingBackend{n: 7},
	})
	st := svc.GetStatus()

	assert.Equal(t, "animating", st.State)
	assert.Equal(t, 1, st.ActiveJobs)
	assert.Equal(t, OverlayStatus{Graphics: 2, Visible: 1}, st.Overlays["planes"])
	assert.Equal(t, 7, st.PendingWrites)
}

func TestGetStatus_NothingToReport(t *testing.T) {
	svc := NewService(Dependencies{Scene: func() *scene.Scene { return nil }, Backend: struct{}{}})
	st := svc.GetStatus()
	assert.Empty(t, st.State)
	assert.Nil(t, st.Overlays)
	assert.Zero(t, st.PendingWrites)
}

func TestWriteStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	svc := NewService(Dependencies{StatusFile: path, Backend: pendingBackend{n: 3}})

	_, err := svc.WriteStatus()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, 3, st.PendingWrites)
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	svc := NewService(Dependencies{StatusFile: path, Interval: 10 * time.Millisecond})

	require.NoError(t, svc.Start())
	require.NoError(t, svc.Start())
	assert.True(t, svc.IsRunning())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	svc.Stop()
	assert.False(t, svc.IsRunning())
	svc.Stop()
}
