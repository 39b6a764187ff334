package scene

import (
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nixta/mapanimations/internal/animate"
	"github.com/nixta/mapanimations/internal/geo"
	"github.com/nixta/mapanimations/pkg/core"
)

var (
	_ animate.Marker = (*Graphic)(nil)
	_ animate.Line   = (*Graphic)(nil)
)

// Snapshot is the drawable state of a graphic at one moment.
type Snapshot struct {
	ID         uint32
	Name       string
	Kind       core.GraphicKind
	Position   geo.Point
	Heading    float64
	Points     []geo.Point
	Visible    bool
	Attributes map[string]any
}

// Graphic is a marker or a line in an overlay. Changes are recorded to the
// backend at most at the scene's record rate; the latest change is kept
// until the next allowed record or Flush.
type Graphic struct {
	overlay *Overlay
	id      uint32
	name    string
	kind    core.GraphicKind
	limiter *rate.Limiter

	mu         sync.Mutex
	position   geo.Point
	heading    float64
	points     []geo.Point
	visible    bool
	attributes map[string]any
	dirty      bool
	detached   bool
	recorded   int
}

func (g *Graphic) ID() uint32             { return g.id }
func (g *Graphic) Name() string           { return g.name }
func (g *Graphic) Kind() core.GraphicKind { return g.kind }

// SetPosition moves a marker.
func (g *Graphic) SetPosition(p geo.Point) {
	g.update(func() { g.position = p })
}

// SetHeading rotates a marker. The heading is also written to the scene's
// heading attribute.
func (g *Graphic) SetHeading(degrees float64) {
	attr := g.overlay.scene.headingAttr
	g.update(func() {
		g.heading = degrees
		g.attributes[attr] = degrees
	})
}

// SetGeometry replaces a line's vertices.
func (g *Graphic) SetGeometry(points []geo.Point) {
	points = slices.Clone(points)
	g.update(func() { g.points = points })
}

func (g *Graphic) SetVisible(visible bool) {
	g.update(func() { g.visible = visible })
}

// Recorded returns how many states were written to the backend.
func (g *Graphic) Recorded() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.recorded
}

// Snapshot returns a copy of the current state.
func (g *Graphic) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		ID:         g.id,
		Name:       g.name,
		Kind:       g.kind,
		Position:   g.position,
		Heading:    g.heading,
		Points:     slices.Clone(g.points),
		Visible:    g.visible,
		Attributes: maps.Clone(g.attributes),
	}
}

func (g *Graphic) update(apply func()) {
	g.mu.Lock()
	if g.detached {
		g.mu.Unlock()
		return
	}
	apply()
	g.dirty = true
	g.mu.Unlock()

	now := g.overlay.scene.clock.Now()
	if !g.limiter.AllowN(now, 1) {
		return
	}
	if err := g.record(now); err != nil {
		g.overlay.scene.logger.Warn("failed to record graphic state",
			"overlay", g.overlay.name, "graphic", g.id, "error", err)
	}
}

// record writes the current state if it changed since the last write. A
// failed write leaves the state pending.
func (g *Graphic) record(now time.Time) error {
	s := g.overlay.scene

	g.mu.Lock()
	if !g.dirty || g.detached {
		g.mu.Unlock()
		return nil
	}
	g.dirty = false
	frame := s.Frame(now)
	var marker *core.MarkerState
	var line *core.LineState
	if g.kind == core.KindMarker {
		marker = &core.MarkerState{
			GraphicID:  g.id,
			Time:       now,
			Frame:      frame,
			Position:   position3D(g.position),
			Heading:    g.heading,
			Visible:    g.visible,
			Attributes: maps.Clone(g.attributes),
		}
	} else {
		line = &core.LineState{
			GraphicID: g.id,
			Time:      now,
			Frame:     frame,
			Points:    positions3D(g.points),
			Visible:   g.visible,
		}
	}
	g.mu.Unlock()

	if s.backend == nil {
		g.countRecorded()
		return nil
	}

	var err error
	if marker != nil {
		err = s.backend.RecordMarkerState(marker)
	} else {
		err = s.backend.RecordLineState(line)
	}
	if err != nil {
		g.mu.Lock()
		g.dirty = true
		g.mu.Unlock()
		return err
	}
	g.countRecorded()
	return nil
}

func (g *Graphic) countRecorded() {
	g.mu.Lock()
	g.recorded++
	g.mu.Unlock()
}

// detach stops recording; later animator updates are dropped.
func (g *Graphic) detach() {
	g.mu.Lock()
	g.detached = true
	g.dirty = false
	g.mu.Unlock()
}

func position3D(p geo.Point) core.Position3D {
	return core.Position3D{X: p.X, Y: p.Y, Z: p.Z}
}

func positions3D(points []geo.Point) []core.Position3D {
	out := make([]core.Position3D, len(points))
	for i, p := range points {
		out[i] = position3D(p)
	}
	return out
}
