package animate

import (
	"slices"
	"sync"
	"time"

	"github.com/nixta/mapanimations/internal/animation"
	"github.com/nixta/mapanimations/internal/geo"
)

// DefaultGeneralizeTolerance is the simplification tolerance in meters for
// generalized traces.
const DefaultGeneralizeTolerance = 500.0

// Trace progressively reveals a path as a growing line.
type Trace struct {
	motion
	name      string
	tolerance float64
	line      Line
	logger    Logger

	mu       sync.Mutex
	revealed []geo.Point
	geometry []geo.Point
	progress float64
	done     bool
	shown    bool
}

// NewTrace creates a trace over path at speed meters per second. When
// generalize is set the emitted line is simplified with the configured
// tolerance.
func NewTrace(path *geo.Path, speed float64, generalize bool, opts ...Option) (*Trace, error) {
	m, err := newMotion(path, speed)
	if err != nil {
		return nil, err
	}
	s := newSettings(opts)

	t := &Trace{
		motion:   m,
		name:     s.name,
		line:     s.line,
		logger:   s.logger,
		revealed: []geo.Point{path.First()},
	}
	if generalize {
		t.tolerance = max(s.tolerance, 0)
	}
	t.geometry = slices.Clone(t.revealed)
	if t.line != nil {
		t.line.SetVisible(false)
	}
	return t, nil
}

// Step reveals the path up to elapsed and reports whether it is complete.
func (t *Trace) Step(elapsed time.Duration) bool {
	f := t.fraction(elapsed)

	p, ok := t.path.Last(), true
	if f < 1 {
		p, ok = t.path.PointAtDistance(t.length * f)
	}
	if !ok {
		t.logger.Warn("trace point unavailable, ending animation", "name", t.name, "elapsed", elapsed)
		t.mu.Lock()
		t.done = true
		t.mu.Unlock()
		return true
	}

	t.mu.Lock()
	if t.revealed[len(t.revealed)-1] != p {
		t.revealed = append(t.revealed, p)
	}
	var geometry []geo.Point
	if t.tolerance > 0 {
		geometry = t.path.Simplify(t.revealed, t.tolerance)
	} else {
		geometry = slices.Clone(t.revealed)
	}
	show := !t.shown
	t.shown = true
	t.geometry = geometry
	t.progress = f
	t.done = f >= 1
	done := t.done
	t.mu.Unlock()

	if t.line != nil {
		t.line.SetGeometry(slices.Clone(geometry))
		if show {
			t.line.SetVisible(true)
		}
	}
	return done
}

// Start registers the trace with s. onDone runs once when the path is fully revealed.
func (t *Trace) Start(s Scheduler, onDone func()) (animation.Handle, error) {
	return s.Register(t.Step, onDone)
}

// Geometry returns the line last emitted.
func (t *Trace) Geometry() []geo.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.geometry)
}

// Revealed returns every point revealed so far, unsimplified.
func (t *Trace) Revealed() []geo.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.revealed)
}

func (t *Trace) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

func (t *Trace) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Trace) Name() string { return t.name }

// Tolerance returns the simplification tolerance in meters, 0 when disabled.
func (t *Trace) Tolerance() float64 { return t.tolerance }
