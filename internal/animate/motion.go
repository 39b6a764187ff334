// Package animate turns elapsed time into positions along a geo.Path.
package animate

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nixta/mapanimations/internal/animation"
	"github.com/nixta/mapanimations/internal/geo"
)

var (
	// ErrInvalidSpeed is returned for speeds that are not positive and finite.
	ErrInvalidSpeed = errors.New("speed must be positive and finite")
	// ErrNilPath is returned when no path is given.
	ErrNilPath = errors.New("path is required")
)

// Logger interface for pluggable logging.
type Logger = animation.Logger

// Scheduler runs step functions. *animation.Scheduler satisfies it.
type Scheduler interface {
	Register(step animation.StepFunc, onComplete animation.CompletionFunc) (animation.Handle, error)
}

// Marker receives the moving point of a glide.
type Marker interface {
	SetPosition(p geo.Point)
	SetHeading(degrees float64)
	SetVisible(visible bool)
}

// Line receives the revealed geometry of a trace.
type Line interface {
	SetGeometry(points []geo.Point)
	SetVisible(visible bool)
}

// Option configures a Glide or a Trace. Options that do not apply to the
// animator they are given to are ignored.
type Option func(*settings)

type settings struct {
	marker    Marker
	line      Line
	heading   bool
	logger    Logger
	tolerance float64
	name      string
}

func newSettings(opts []Option) settings {
	s := settings{tolerance: DefaultGeneralizeTolerance, logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithMarker sets the marker a glide moves.
func WithMarker(m Marker) Option {
	return func(s *settings) {
		s.marker = m
	}
}

// WithHeading makes a glide emit the direction of travel to its marker.
func WithHeading() Option {
	return func(s *settings) {
		s.heading = true
	}
}

// WithLine sets the line a trace reveals.
func WithLine(l Line) Option {
	return func(s *settings) {
		s.line = l
	}
}

// WithTolerance sets the generalization tolerance, in meters, used by
// traces created with generalize enabled.
func WithTolerance(meters float64) Option {
	return func(s *settings) {
		s.tolerance = meters
	}
}

// WithName labels a trace in logs.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// motion is the constant speed progress shared by both animators.
type motion struct {
	path     *geo.Path
	length   float64
	duration float64 // seconds
}

func newMotion(path *geo.Path, speed float64) (motion, error) {
	if path == nil {
		return motion{}, ErrNilPath
	}
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return motion{}, fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	length := path.Length()
	return motion{path: path, length: length, duration: length / speed}, nil
}

// fraction returns the share of the path covered after elapsed, clamped to 1.
func (m motion) fraction(elapsed time.Duration) float64 {
	if m.duration <= 0 {
		return 1
	}
	f := elapsed.Seconds() / m.duration
	if f < 0 {
		return 0
	}
	return min(f, 1)
}

// Duration returns the time needed to cover the whole path.
func (m motion) Duration() time.Duration {
	return time.Duration(m.duration * float64(time.Second))
}
