// Package animation drives many independent animations from a single frame
// clock, with global pause, resume, reset and force stop.
package animation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 60

var (
	// ErrNilStep is returned when registering a job without a step function.
	ErrNilStep = errors.New("step function is required")
	// ErrForceStopped is returned when registering after ForceStop and before Reset.
	ErrForceStopped = errors.New("scheduler is force stopped")
	// ErrInvalidFPS is returned for a frame rate that is not positive.
	ErrInvalidFPS = errors.New("fps must be positive")
)

// StepFunc advances one animation to elapsed time since its start and
// reports whether it is finished.
type StepFunc func(elapsed time.Duration) bool

// CompletionFunc is called once when a job's step reports done.
type CompletionFunc func()

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// State is the scheduler run state.
type State int

const (
	Unstarted State = iota
	Animating
	Paused
	ForceStopped
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Animating:
		return "animating"
	case Paused:
		return "paused"
	case ForceStopped:
		return "forceStopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type job struct {
	id         uuid.UUID
	step       StepFunc
	onComplete CompletionFunc
	start      time.Time
	completed  bool
}

// Handle identifies a registered job.
type Handle struct {
	id uuid.UUID
	s  *Scheduler
}

// ID returns the job identity.
func (h Handle) ID() uuid.UUID { return h.id }

// Cancel removes the job without calling its completion callback. It
// reports whether the job was still active.
func (h Handle) Cancel() bool {
	if h.s == nil {
		return false
	}
	return h.s.Cancel(h)
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	fps    int
	clock  Clock
	logger Logger
	meter  metric.Meter
}

// WithFPS sets the frame rate of the clock.
func WithFPS(fps int) Option {
	return func(o *options) {
		o.fps = fps
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMeter sets the OTel meter. Defaults to the global provider's meter.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// Scheduler runs registered step functions once per frame until each
// reports done. Steps and callbacks run one at a time and may call any
// Scheduler method except Tick.
type Scheduler struct {
	clock    Clock
	interval time.Duration
	logger   Logger
	metrics  *metrics

	// serializes frames
	tickMu sync.Mutex

	// guards everything below; never held while steps or callbacks run
	mu       sync.Mutex
	state    State
	active   []*job
	pausedAt time.Time
	stop     chan struct{}

	activeCount atomic.Int64
}

// New creates a Scheduler in the unstarted state.
func New(opts ...Option) (*Scheduler, error) {
	o := options{fps: DefaultFPS}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fps <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFPS, o.fps)
	}
	if o.clock == nil {
		o.clock = SystemClock{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.meter == nil {
		o.meter = meter()
	}

	s := &Scheduler{
		clock:    o.clock,
		interval: time.Second / time.Duration(o.fps),
		logger:   o.logger,
	}

	m, err := newMetrics(o.meter, s)
	if err != nil {
		return nil, err
	}
	s.metrics = m

	return s, nil
}

// Register adds a job. The step receives the time elapsed since
// registration, excluding paused intervals. Registering while paused queues
// the job so it starts at elapsed zero on Resume.
func (s *Scheduler) Register(step StepFunc, onComplete CompletionFunc) (Handle, error) {
	if step == nil {
		return Handle{}, ErrNilStep
	}

	s.mu.Lock()
	if s.state == ForceStopped {
		s.mu.Unlock()
		return Handle{}, ErrForceStopped
	}

	j := &job{
		id:         uuid.New(),
		step:       step,
		onComplete: onComplete,
	}
	if s.state == Paused {
		j.start = s.pausedAt
	} else {
		j.start = s.clock.Now()
		s.state = Animating
		s.startClockLocked()
	}
	s.active = append(s.active, j)
	s.activeCount.Store(int64(len(s.active)))
	state := s.state
	s.mu.Unlock()

	s.metrics.registered.Add(context.Background(), 1)
	s.logger.Debug("animation registered", "id", j.id, "state", state)

	return Handle{id: j.id, s: s}, nil
}

// Tick runs one frame: every job active at the start of the frame is
// stepped once, in registration order. Finished jobs are removed and their
// callbacks fired. A step that pauses, resets or stops the scheduler ends
// the frame early.
func (s *Scheduler) Tick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	if s.state != Animating {
		s.mu.Unlock()
		return
	}
	snapshot := slices.Clone(s.active)
	s.mu.Unlock()

	s.metrics.ticks.Add(context.Background(), 1)

	for _, j := range snapshot {
		s.mu.Lock()
		if s.state != Animating {
			s.mu.Unlock()
			return
		}
		if j.completed {
			s.mu.Unlock()
			s.logger.Debug("skipping completed animation", "id", j.id)
			continue
		}
		step := j.step
		elapsed := s.clock.Now().Sub(j.start)
		s.mu.Unlock()

		if !step(elapsed) {
			continue
		}

		s.mu.Lock()
		if j.completed {
			// removed by its own step
			s.mu.Unlock()
			continue
		}
		s.removeLocked(j)
		onComplete := j.onComplete
		j.step, j.onComplete = nil, nil
		s.mu.Unlock()

		s.metrics.completed.Add(context.Background(), 1)
		s.logger.Debug("animation completed", "id", j.id, "elapsed", elapsed)
		if onComplete != nil {
			onComplete()
		}
	}
}

// Cancel removes one job silently. It reports whether the job was active.
func (s *Scheduler) Cancel(h Handle) bool {
	s.mu.Lock()
	var found *job
	for _, j := range s.active {
		if j.id == h.id {
			found = j
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return false
	}
	s.removeLocked(found)
	found.step, found.onComplete = nil, nil
	s.mu.Unlock()

	s.metrics.cancelled.Add(context.Background(), 1)
	s.logger.Debug("animation cancelled", "id", h.id)
	return true
}

// Pause freezes all jobs. Ignored unless unstarted or animating.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	from := s.state
	if from != Unstarted && from != Animating {
		s.mu.Unlock()
		s.logger.Debug("pause ignored", "state", from)
		return
	}
	s.state = Paused
	s.pausedAt = s.clock.Now()
	s.stopClockLocked()
	s.mu.Unlock()

	s.logger.Debug("animations paused", "from", from)
}

// Resume continues paused jobs as if the pause never happened. Ignored
// unless paused.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	if s.state != Paused {
		state := s.state
		s.mu.Unlock()
		s.logger.Debug("resume ignored", "state", state)
		return
	}
	paused := s.clock.Now().Sub(s.pausedAt)
	for _, j := range s.active {
		j.start = j.start.Add(paused)
	}
	s.state = Animating
	if len(s.active) > 0 {
		s.startClockLocked()
	}
	s.mu.Unlock()

	s.logger.Debug("animations resumed", "paused", paused)
}

// Reset discards every job without callbacks and returns to unstarted.
func (s *Scheduler) Reset() {
	n := s.purge(Unstarted)
	s.logger.Debug("animations reset", "discarded", n)
}

// ForceStop discards every job without callbacks. Registration fails with
// ErrForceStopped until Reset.
func (s *Scheduler) ForceStop() {
	n := s.purge(ForceStopped)
	s.logger.Info("animations force stopped", "discarded", n)
}

func (s *Scheduler) purge(to State) int {
	s.mu.Lock()
	purged := s.active
	for _, j := range purged {
		j.completed = true
		j.step, j.onComplete = nil, nil
	}
	s.active = nil
	s.activeCount.Store(0)
	s.state = to
	s.stopClockLocked()
	s.mu.Unlock()

	if len(purged) > 0 {
		s.metrics.cancelled.Add(context.Background(), int64(len(purged)))
	}
	return len(purged)
}

// State returns the current run state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsPaused reports whether the scheduler is paused.
func (s *Scheduler) IsPaused() bool {
	return s.State() == Paused
}

// ActiveJobs returns the number of registered, unfinished jobs. Safe to
// call from log handlers while the scheduler is busy.
func (s *Scheduler) ActiveJobs() int {
	return int(s.activeCount.Load())
}

// Running reports whether the frame clock is running.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// removeLocked drops a live job from the active set and stops the clock
// once nothing is left.
func (s *Scheduler) removeLocked(j *job) {
	i := slices.Index(s.active, j)
	if i < 0 {
		panic(fmt.Sprintf("animation: live job %s missing from active set", j.id))
	}
	j.completed = true
	s.active = slices.Delete(s.active, i, i+1)
	s.activeCount.Store(int64(len(s.active)))
	if len(s.active) == 0 {
		s.stopClockLocked()
	}
}

func (s *Scheduler) startClockLocked() {
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	go s.clockLoop(s.clock.NewTicker(s.interval), stop)
}

func (s *Scheduler) stopClockLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

func (s *Scheduler) clockLoop(t Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			select {
			case <-stop:
				return
			default:
			}
			s.Tick()
		}
	}
}
