// Package streaming defines the wire protocol of the websocket recording backend.
package streaming

import (
	"encoding/json"

	"github.com/nixta/mapanimations/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeAddGraphic   = "add_graphic"
	TypeMarkerState  = "marker_state"
	TypeLineState    = "line_state"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries the session being recorded.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// EndSessionPayload closes the current session.
type EndSessionPayload struct {
	SessionID uint `json:"sessionId"`
}
