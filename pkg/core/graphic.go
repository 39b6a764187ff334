// pkg/core/graphic.go
package core

import "time"

// GraphicKind tells markers from lines.
type GraphicKind string

const (
	KindMarker GraphicKind = "marker"
	KindLine   GraphicKind = "line"
)

// Graphic is a drawable entity in an overlay.
// ID is unique within a session.
type Graphic struct {
	ID         uint32         `json:"id"`
	Overlay    string         `json:"overlay"`
	Name       string         `json:"name"`
	Kind       GraphicKind    `json:"kind"`
	CreatedAt  time.Time      `json:"createdAt"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// MarkerState is a marker at a point in time.
// GraphicID references the Graphic's ID.
type MarkerState struct {
	GraphicID  uint32         `json:"graphicId"`
	Time       time.Time      `json:"time"`
	Frame      uint           `json:"frame"`
	Position   Position3D     `json:"position"`
	Heading    float64        `json:"heading"`
	Visible    bool           `json:"visible"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// LineState is the geometry of a line at a point in time.
type LineState struct {
	GraphicID uint32       `json:"graphicId"`
	Time      time.Time    `json:"time"`
	Frame     uint         `json:"frame"`
	Points    []Position3D `json:"points"`
	Visible   bool         `json:"visible"`
}
