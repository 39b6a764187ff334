// Package scene is a headless map view: overlays of markers and lines that
// animators move and that record their state to a storage backend.
package scene

import (
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nixta/mapanimations/internal/animation"
	"github.com/nixta/mapanimations/internal/storage"
	"github.com/nixta/mapanimations/pkg/core"
)

// DefaultHeadingAttribute is the attribute a marker's heading is written to.
const DefaultHeadingAttribute = "HEADING"

// Logger interface for pluggable logging.
type Logger = animation.Logger

// Config holds what every overlay of a scene shares.
type Config struct {
	Backend storage.Backend
	Clock   animation.Clock
	FPS     int
	// RecordRate caps the states recorded per graphic per second. Zero or
	// less records every change.
	RecordRate       float64
	HeadingAttribute string
	Logger           Logger
}

// Scene owns the overlays of one recorded session. Graphic IDs are unique
// across all of its overlays.
type Scene struct {
	backend     storage.Backend
	clock       animation.Clock
	interval    time.Duration
	limit       rate.Limit
	headingAttr string
	logger      Logger
	start       time.Time

	mu       sync.Mutex
	nextID   uint32
	overlays []*Overlay
}

// New creates an empty scene. Frames are counted from now.
func New(cfg Config) *Scene {
	if cfg.Clock == nil {
		cfg.Clock = animation.SystemClock{}
	}
	if cfg.FPS <= 0 {
		cfg.FPS = animation.DefaultFPS
	}
	if cfg.HeadingAttribute == "" {
		cfg.HeadingAttribute = DefaultHeadingAttribute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	limit := rate.Inf
	if cfg.RecordRate > 0 {
		limit = rate.Limit(cfg.RecordRate)
	}
	return &Scene{
		backend:     cfg.Backend,
		clock:       cfg.Clock,
		interval:    time.Second / time.Duration(cfg.FPS),
		limit:       limit,
		headingAttr: cfg.HeadingAttribute,
		logger:      cfg.Logger,
		start:       cfg.Clock.Now(),
	}
}

// Overlay returns the overlay with the given name, creating it on first use.
func (s *Scene) Overlay(name string) *Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.overlays {
		if o.name == name {
			return o
		}
	}
	o := &Overlay{name: name, scene: s}
	s.overlays = append(s.overlays, o)
	return o
}

// Overlays returns the overlays in creation order.
func (s *Scene) Overlays() []*Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Overlay, len(s.overlays))
	copy(out, s.overlays)
	return out
}

// Flush records the pending state of every graphic in every overlay.
func (s *Scene) Flush() error {
	var errs []error
	for _, o := range s.Overlays() {
		errs = append(errs, o.Flush())
	}
	return errors.Join(errs...)
}

// Frame returns the frame number at t, counted from the scene's creation.
func (s *Scene) Frame(t time.Time) uint {
	d := t.Sub(s.start)
	if d < 0 {
		return 0
	}
	return uint(d / s.interval)
}

func (s *Scene) allocateID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

// Overlay is a named layer of graphics.
type Overlay struct {
	name  string
	scene *Scene

	mu       sync.Mutex
	graphics []*Graphic
}

func (o *Overlay) Name() string { return o.name }

// AddMarker adds a point graphic and registers it with the backend. It
// stays hidden until an animator shows it.
func (o *Overlay) AddMarker(name string, attributes map[string]any) (*Graphic, error) {
	return o.add(name, core.KindMarker, attributes)
}

// AddLine adds a polyline graphic and registers it with the backend.
func (o *Overlay) AddLine(name string, attributes map[string]any) (*Graphic, error) {
	return o.add(name, core.KindLine, attributes)
}

func (o *Overlay) add(name string, kind core.GraphicKind, attributes map[string]any) (*Graphic, error) {
	s := o.scene
	g := &Graphic{
		overlay:    o,
		id:         s.allocateID(),
		name:       name,
		kind:       kind,
		limiter:    rate.NewLimiter(s.limit, 1),
		attributes: maps.Clone(attributes),
	}
	if g.attributes == nil {
		g.attributes = make(map[string]any)
	}

	if s.backend != nil {
		err := s.backend.AddGraphic(&core.Graphic{
			ID:         g.id,
			Overlay:    o.name,
			Name:       name,
			Kind:       kind,
			CreatedAt:  s.clock.Now(),
			Attributes: maps.Clone(g.attributes),
		})
		if err != nil {
			return nil, err
		}
	}

	o.mu.Lock()
	o.graphics = append(o.graphics, g)
	o.mu.Unlock()
	return g, nil
}

// Graphics returns the graphics in insertion order.
func (o *Overlay) Graphics() []*Graphic {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Graphic, len(o.graphics))
	copy(out, o.graphics)
	return out
}

// Len returns the number of graphics in the overlay.
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.graphics)
}

// Capture returns what the overlay would draw right now.
func (o *Overlay) Capture() []Snapshot {
	graphics := o.Graphics()
	out := make([]Snapshot, 0, len(graphics))
	for _, g := range graphics {
		out = append(out, g.Snapshot())
	}
	return out
}

// Flush records the latest state of every graphic that changed since it
// was last recorded, ignoring the rate limit.
func (o *Overlay) Flush() error {
	now := o.scene.clock.Now()
	var errs []error
	for _, g := range o.Graphics() {
		errs = append(errs, g.record(now))
	}
	return errors.Join(errs...)
}

// Clear flushes pending states, records every visible graphic as hidden
// and removes all graphics from the overlay.
func (o *Overlay) Clear() error {
	errs := []error{o.Flush()}

	o.mu.Lock()
	graphics := o.graphics
	o.graphics = nil
	o.mu.Unlock()

	now := o.scene.clock.Now()
	for _, g := range graphics {
		g.mu.Lock()
		wasVisible := g.visible
		g.visible = false
		g.dirty = wasVisible
		g.mu.Unlock()
		if wasVisible {
			errs = append(errs, g.record(now))
		}
		g.detach()
	}
	return errors.Join(errs...)
}
