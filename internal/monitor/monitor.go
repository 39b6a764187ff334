// Package monitor periodically reports scheduler, scene and storage status
// to a status file and the log.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nixta/mapanimations/internal/animation"
	"github.com/nixta/mapanimations/internal/scene"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = time.Second

// Pender is implemented by backends that queue writes.
type Pender interface {
	Pending() int
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Scheduler *animation.Scheduler
	// Scene returns the scene being recorded, or nil between runs.
	Scene   func() *scene.Scene
	Backend any
	Logger  *slog.Logger
	// StatusFile is rewritten on every report when set.
	StatusFile string
	Interval   time.Duration
}

// OverlayStatus counts the graphics of one overlay.
type OverlayStatus struct {
	Graphics int `json:"graphics"`
	Visible  int `json:"visible"`
}

// Status is one report.
type Status struct {
	Time          time.Time                `json:"time"`
	State         string                   `json:"state"`
	ActiveJobs    int                      `json:"activeJobs"`
	Overlays      map[string]OverlayStatus `json:"overlays,omitempty"`
	PendingWrites int                      `json:"pendingWrites"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current program status
func (s *Service) GetStatus() Status {
	st := Status{Time: time.Now()}

	if s.deps.Scheduler != nil {
		st.State = s.deps.Scheduler.State().String()
		st.ActiveJobs = s.deps.Scheduler.ActiveJobs()
	}

	if s.deps.Scene != nil {
		if sc := s.deps.Scene(); sc != nil {
			st.Overlays = make(map[string]OverlayStatus)
			for _, o := range sc.Overlays() {
				counts := OverlayStatus{}
				for _, snap := range o.Capture() {
					counts.Graphics++
					if snap.Visible {
						counts.Visible++
					}
				}
				st.Overlays[o.Name()] = counts
			}
		}
	}

	if p, ok := s.deps.Backend.(Pender); ok {
		st.PendingWrites = p.Pending()
	}
	return st
}

// WriteStatus writes the current status to the status file.
func (s *Service) WriteStatus() (Status, error) {
	st := s.GetStatus()
	if s.deps.StatusFile == "" {
		return st, nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return st, fmt.Errorf("failed to encode status: %w", err)
	}
	if err := os.WriteFile(s.deps.StatusFile, append(data, '\n'), 0o644); err != nil {
		return st, fmt.Errorf("failed to write status file: %w", err)
	}
	return st, nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.Logger
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				st, err := s.WriteStatus()
				if err != nil {
					logger.Error("Error writing status", "error", err)
				}
				logger.Debug("Status",
					"state", st.State,
					"activeJobs", st.ActiveJobs,
					"pendingWrites", st.PendingWrites,
				)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	stop, done := s.stopChan, s.done
	s.isRunning = false
	s.mu.Unlock()

	close(stop)
	<-done
}
