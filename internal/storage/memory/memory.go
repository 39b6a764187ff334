// Package memory keeps a session's frames in memory and exports them to a
// JSON file when the session ends.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/pkg/core"
)

// ErrUnknownGraphic is returned when recording a state for a graphic that was never added.
var ErrUnknownGraphic = errors.New("unknown graphic")

// ErrNoSession is returned when recording outside a session.
var ErrNoSession = errors.New("no session started")

// GraphicRecord groups a graphic with all its recorded states
type GraphicRecord struct {
	Graphic      core.Graphic
	MarkerStates []core.MarkerState
	LineStates   []core.LineState
}

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session

	graphics map[uint32]*GraphicRecord
	order    []uint32 // graphic IDs in registration order

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		graphics: make(map[uint32]*GraphicRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session
func (b *Backend) StartSession(s *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	s.ID = b.idCounter
	b.session = s

	b.graphics = make(map[uint32]*GraphicRecord)
	b.order = nil
	return nil
}

// EndSession finalizes and exports the session data. Without an output
// directory nothing is written.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

// AddGraphic registers a new graphic
func (b *Backend) AddGraphic(g *core.Graphic) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	if _, ok := b.graphics[g.ID]; !ok {
		b.order = append(b.order, g.ID)
	}
	b.graphics[g.ID] = &GraphicRecord{Graphic: *g}
	return nil
}

// RecordMarkerState records a marker state update
func (b *Backend) RecordMarkerState(s *core.MarkerState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.graphics[s.GraphicID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownGraphic, s.GraphicID)
	}
	record.MarkerStates = append(record.MarkerStates, *s)
	return nil
}

// RecordLineState records a line geometry update
func (b *Backend) RecordLineState(s *core.LineState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.graphics[s.GraphicID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownGraphic, s.GraphicID)
	}
	state := *s
	state.Points = append([]core.Position3D(nil), s.Points...)
	record.LineStates = append(record.LineStates, state)
	return nil
}

// GetGraphic looks up a graphic record by ID
func (b *Backend) GetGraphic(id uint32) (*GraphicRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, ok := b.graphics[id]
	return record, ok
}

// Graphics returns the number of registered graphics
func (b *Backend) Graphics() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.graphics)
}

// ExportPath returns the file written by the last EndSession
func (b *Backend) ExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
