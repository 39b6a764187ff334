// Package demo runs the flight and path scenarios against a scheduler and
// records them through a storage backend.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nixta/mapanimations/internal/animate"
	"github.com/nixta/mapanimations/internal/animation"
	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/internal/flight"
	"github.com/nixta/mapanimations/internal/scene"
	"github.com/nixta/mapanimations/internal/storage"
	"github.com/nixta/mapanimations/pkg/core"
)

// ErrNotStarted is returned by Wait before Start.
var ErrNotStarted = errors.New("scenario not started")

// Logger interface for pluggable logging.
type Logger = animation.Logger

// Dependencies holds what a Runner drives.
type Dependencies struct {
	Scheduler *animation.Scheduler
	Backend   storage.Backend
	// Clock must be the scheduler's clock. Defaults to the wall clock.
	Clock  animation.Clock
	Logger Logger
	// Rand picks start delays and speeds. Defaults to a random seed.
	Rand *rand.Rand
}

// Settings are the configuration sections a Runner reads.
type Settings struct {
	Demo       config.DemoConfig
	Animation  config.AnimationConfig
	RecordRate float64
}

// Runner plays one scenario at a time.
type Runner struct {
	deps     Dependencies
	cfg      config.DemoConfig
	anim     config.AnimationConfig
	rate     float64
	scenario Scenario
	planner  *flight.Planner
	log      Logger

	mu  sync.Mutex
	run *run
}

// run is the state of one Start.
type run struct {
	session *core.Session
	scene   *scene.Scene

	mu        sync.Mutex
	pending   int
	completed int
	done      chan struct{}
	once      sync.Once
}

func (r *run) finishOne() { r.finish(true) }

// finish retires one pending animation. The run is done when none is left.
func (r *run) finish(completed bool) {
	r.mu.Lock()
	r.pending--
	if completed {
		r.completed++
	}
	left := r.pending
	r.mu.Unlock()
	if left <= 0 {
		r.once.Do(func() { close(r.done) })
	}
}

// Completed returns how many animations reached their end.
func (r *run) Completed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// New creates a runner for the configured scenario.
func New(s Settings, deps Dependencies) (*Runner, error) {
	if deps.Scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	if deps.Backend == nil {
		return nil, errors.New("storage backend is required")
	}
	scenario, err := ParseScenario(s.Demo.Scenario)
	if err != nil {
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = animation.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.Animation.FPS <= 0 {
		s.Animation.FPS = animation.DefaultFPS
	}

	r := &Runner{
		deps:     deps,
		cfg:      s.Demo,
		anim:     s.Animation,
		rate:     s.RecordRate,
		scenario: scenario,
		log:      deps.Logger,
	}
	r.planner = flight.NewPlanner(r.pathOptions())
	return r, nil
}

func (r *Runner) Scenario() Scenario { return r.scenario }

// Start resets the scheduler, opens a recording session and schedules
// every animation of the scenario.
func (r *Runner) Start() error {
	items, err := r.items()
	if err != nil {
		return err
	}

	r.deps.Scheduler.Reset()

	session := &core.Session{
		Scenario:         string(r.scenario),
		Origin:           r.cfg.Origin,
		StartTime:        r.deps.Clock.Now(),
		SpatialReference: int(r.planner.Options().SpatialReference),
		FPS:              r.anim.FPS,
	}
	if r.scenario == Path {
		session.Origin = ""
	}
	if err := r.deps.Backend.StartSession(session); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	sc := scene.New(scene.Config{
		Backend:          r.deps.Backend,
		Clock:            r.deps.Clock,
		FPS:              r.anim.FPS,
		RecordRate:       r.rate,
		HeadingAttribute: r.cfg.HeadingAttribute,
		Logger:           r.log,
	})
	// the extra pending entry keeps the run open until every item is scheduled
	current := &run{session: session, scene: sc, pending: 1, done: make(chan struct{})}

	r.mu.Lock()
	r.run = current
	r.mu.Unlock()

	for _, it := range items {
		if err := r.schedule(current, it); err != nil {
			return err
		}
	}
	current.finish(false)

	r.log.Info("scenario started", "scenario", r.scenario, "session", session.ID, "animations", len(items))
	return nil
}

// schedule creates the graphics of one item and starts its animations
// after a random delay.
func (r *Runner) schedule(current *run, it item) error {
	speed := r.speed()
	attrs := map[string]any{}
	if it.destination != "" {
		attrs[DestinationAttribute] = it.destination
	}

	var starters []func() error

	if r.scenario.traces() {
		line, err := current.scene.Overlay(RoutesOverlay).AddLine(it.name, attrs)
		if err != nil {
			return err
		}
		generalize := r.cfg.Generalize || r.scenario == ThreeD
		trace, err := animate.NewTrace(it.path, speed, generalize,
			animate.WithLine(line),
			animate.WithTolerance(r.anim.GeneralizeTolerance),
			animate.WithName("Flightpath to "+it.label()),
			animate.WithLogger(r.log),
		)
		if err != nil {
			return err
		}
		starters = append(starters, func() error {
			_, err := trace.Start(r.deps.Scheduler, current.finishOne)
			return err
		})
	}

	if r.scenario.glides() {
		markerAttrs := map[string]any{r.headingAttribute(): 0.0}
		for k, v := range attrs {
			markerAttrs[k] = v
		}
		marker, err := current.scene.Overlay(PlanesOverlay).AddMarker(it.name, markerAttrs)
		if err != nil {
			return err
		}
		glide, err := animate.NewGlide(it.path, speed,
			animate.WithMarker(marker),
			animate.WithHeading(),
			animate.WithLogger(r.log),
		)
		if err != nil {
			return err
		}
		starters = append(starters, func() error {
			_, err := glide.Start(r.deps.Scheduler, current.finishOne)
			return err
		})
	}

	current.mu.Lock()
	current.pending += len(starters)
	current.mu.Unlock()

	start := func() {
		for _, s := range starters {
			if err := s(); err != nil {
				r.log.Debug("animation not started", "name", it.name, "error", err)
				current.finish(false)
			}
		}
	}

	delay := r.startDelay()
	if delay <= 0 {
		start()
		return nil
	}
	// the delay runs on the scheduler so pausing holds it too
	_, err := r.deps.Scheduler.Register(func(elapsed time.Duration) bool {
		return elapsed >= delay
	}, start)
	return err
}

func (r *Runner) headingAttribute() string {
	if r.cfg.HeadingAttribute == "" {
		return scene.DefaultHeadingAttribute
	}
	return r.cfg.HeadingAttribute
}

// startDelay is uniform in [0, MaxStartDelay). The 3d scenario starts
// everything at once.
func (r *Runner) startDelay() time.Duration {
	if r.scenario == ThreeD || r.cfg.MaxStartDelay <= 0 {
		return 0
	}
	return time.Duration(r.deps.Rand.Int64N(int64(r.cfg.MaxStartDelay)))
}

// speed in meters per second.
func (r *Runner) speed() float64 {
	switch r.scenario {
	case ThreeD:
		return threeDMinSpeed + float64(r.deps.Rand.IntN(threeDSpeedRange))
	case Path:
		return r.cfg.RouteSpeed
	default:
		return r.cfg.SpeedStep * float64(r.deps.Rand.IntN(9)+1)
	}
}

// TogglePause pauses a running scenario or resumes a paused one, and
// reports whether it is now paused.
func (r *Runner) TogglePause() bool {
	s := r.deps.Scheduler
	if s.IsPaused() {
		s.Resume()
	} else {
		s.Pause()
	}
	paused := s.IsPaused()
	r.log.Info("scenario pause toggled", "paused", paused)
	return paused
}

// Scene returns the scene of the current run, or nil before Start.
func (r *Runner) Scene() *scene.Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run == nil {
		return nil
	}
	return r.run.scene
}

// Wait blocks until every animation of the current run completed or ctx
// is done. A cancelled or timed out run is force stopped. Either way the
// pending graphic states are flushed and the session is ended.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	current := r.run
	r.mu.Unlock()
	if current == nil {
		return ErrNotStarted
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	stopped := false
	select {
	case <-current.done:
	case <-ctx.Done():
		r.deps.Scheduler.ForceStop()
		stopped = true
	}

	errs := []error{current.scene.Flush()}
	current.session.EndTime = r.deps.Clock.Now()
	errs = append(errs, r.deps.Backend.EndSession())

	r.log.Info("scenario finished",
		"scenario", r.scenario,
		"session", current.session.ID,
		"completed", current.Completed(),
		"stopped", stopped,
	)
	if exporter, ok := r.deps.Backend.(storage.Exporter); ok && exporter.ExportPath() != "" {
		r.log.Info("session exported", "path", exporter.ExportPath())
	}
	return errors.Join(errs...)
}

// Run starts the scenario and waits for it to finish.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	return r.Wait(ctx)
}
