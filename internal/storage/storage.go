// Package storage defines where recorded animation frames go.
package storage

import "github.com/nixta/mapanimations/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management (StartSession assigns the session ID)
	StartSession(s *core.Session) error
	EndSession() error

	// Graphic registration
	AddGraphic(g *core.Graphic) error

	// State recording
	RecordMarkerState(s *core.MarkerState) error
	RecordLineState(s *core.LineState) error
}

// Exporter is an optional interface for backends that write a file when
// a session ends.
type Exporter interface {
	ExportPath() string
}
