package animate

import (
	"sync"
	"time"

	"github.com/nixta/mapanimations/internal/animation"
	"github.com/nixta/mapanimations/internal/geo"
)

// Glide moves a single point along a path at constant speed.
type Glide struct {
	motion
	marker      Marker
	emitHeading bool
	logger      Logger

	mu         sync.Mutex
	position   geo.Point
	positioned bool
	heading    float64
	hasHeading bool
	visible    bool
	progress   float64
	done       bool
}

// NewGlide creates a glide over path at speed meters per second. The marker,
// if any, is hidden until the first position with a heading is known.
func NewGlide(path *geo.Path, speed float64, opts ...Option) (*Glide, error) {
	m, err := newMotion(path, speed)
	if err != nil {
		return nil, err
	}
	s := newSettings(opts)

	g := &Glide{
		motion:      m,
		marker:      s.marker,
		emitHeading: s.heading,
		logger:      s.logger,
	}
	if g.marker != nil {
		g.marker.SetVisible(false)
	}
	return g, nil
}

// Step advances the glide to elapsed and reports whether it reached the end.
func (g *Glide) Step(elapsed time.Duration) bool {
	f := g.fraction(elapsed)

	p, ok := g.path.Last(), true
	if f < 1 {
		p, ok = g.path.PointAtDistance(g.length * f)
	}
	if !ok {
		g.logger.Warn("glide position unavailable, ending animation", "elapsed", elapsed)
		g.mu.Lock()
		g.done = true
		g.mu.Unlock()
		return true
	}

	g.mu.Lock()
	if g.positioned {
		if h, ok := geo.Heading(g.path.SpatialReference(), g.position, p); ok {
			g.heading, g.hasHeading = h, true
		}
	}
	g.position, g.positioned = p, true
	heading, hasHeading := g.heading, g.hasHeading
	show := !g.visible && (hasHeading || f >= 1)
	if show {
		g.visible = true
	}
	g.progress = f
	g.done = f >= 1
	done := g.done
	g.mu.Unlock()

	if g.marker != nil {
		g.marker.SetPosition(p)
		if g.emitHeading && hasHeading {
			g.marker.SetHeading(heading)
		}
		if show {
			g.marker.SetVisible(true)
		}
	}
	return done
}

// Start registers the glide with s. onDone runs once when the end is reached.
func (g *Glide) Start(s Scheduler, onDone func()) (animation.Handle, error) {
	return s.Register(g.Step, onDone)
}

// Position returns the last computed point.
func (g *Glide) Position() (geo.Point, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position, g.positioned
}

// Heading returns the last known direction of travel in degrees.
func (g *Glide) Heading() (float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.heading, g.hasHeading
}

func (g *Glide) Visible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visible
}

// Progress returns the covered fraction of the path in [0, 1].
func (g *Glide) Progress() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.progress
}

func (g *Glide) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}
