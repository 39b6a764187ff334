package animation

import (
	"sync"

	"go.opentelemetry.io/otel/metric/noop"
)

var defaultScheduler = sync.OnceValue(func() *Scheduler {
	s, err := New()
	if err != nil {
		// only metric registration can fail with default options
		s, _ = New(WithMeter(noop.Meter{}))
	}
	return s
})

// Default returns the process-wide scheduler, created on first use.
func Default() *Scheduler {
	return defaultScheduler()
}

// Register adds a job to the default scheduler.
func Register(step StepFunc, onComplete CompletionFunc) (Handle, error) {
	return Default().Register(step, onComplete)
}

// Pause pauses the default scheduler.
func Pause() { Default().Pause() }

// Resume resumes the default scheduler.
func Resume() { Default().Resume() }

// Reset clears the default scheduler.
func Reset() { Default().Reset() }

// ForceStop force stops the default scheduler.
func ForceStop() { Default().ForceStop() }

// IsPaused reports whether the default scheduler is paused.
func IsPaused() bool { return Default().IsPaused() }
