// Package websocket streams recorded frames to a remote ingest server.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/pkg/core"
	"github.com/nixta/mapanimations/pkg/streaming"
)

// Backend streams session data over WebSocket. Session start and end wait
// for a server ack; frames are fire-and-forget.
type Backend struct {
	conn      *connection
	cfg       config.WebSocketConfig
	nextID    atomic.Uint64
	sessionID atomic.Uint64
}

// New creates a new WebSocket storage backend.
func New(cfg config.WebSocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	return &Backend{
		conn: newConnection(logger.With("component", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartSession assigns the session ID, sends it and waits for server ack.
func (b *Backend) StartSession(s *core.Session) error {
	s.ID = uint(b.nextID.Add(1))
	b.sessionID.Store(uint64(s.ID))

	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: s})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartSession, b.cfg.AckTimeout)
}

// EndSession sends end_session and waits for server ack.
func (b *Backend) EndSession() error {
	data, err := marshalEnvelope(streaming.TypeEndSession, streaming.EndSessionPayload{
		SessionID: uint(b.sessionID.Load()),
	})
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeEndSession, b.cfg.AckTimeout)
	}

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()
	b.sessionID.Store(0)

	return err
}

func (b *Backend) AddGraphic(g *core.Graphic) error {
	return b.sendEnvelope(streaming.TypeAddGraphic, g)
}

func (b *Backend) RecordMarkerState(s *core.MarkerState) error {
	return b.sendEnvelope(streaming.TypeMarkerState, s)
}

func (b *Backend) RecordLineState(s *core.LineState) error {
	return b.sendEnvelope(streaming.TypeLineState, s)
}
