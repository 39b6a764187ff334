// pkg/core/session.go
package core

import "time"

// Session is one recorded run of a scenario.
type Session struct {
	ID               uint      `json:"id"`
	Scenario         string    `json:"scenario"`
	Origin           string    `json:"origin,omitempty"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	SpatialReference int       `json:"spatialReference"` // EPSG code
	FPS              int       `json:"fps"`
	Tag              string    `json:"tag,omitempty"`
}

// Position3D is a point in the session's spatial reference.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
