package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Session{},
	&Graphic{},
	&MarkerState{},
	&LineState{},
}

// Session is one recorded scenario run
type Session struct {
	ID               uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt        time.Time `json:"createdAt"`
	Scenario         string    `json:"scenario" gorm:"size:32;index:idx_session_scenario"`
	Origin           string    `json:"origin" gorm:"size:8"` // IATA code of the departure airport
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	SpatialReference int       `json:"spatialReference"` // EPSG code of all recorded coordinates
	FPS              int       `json:"fps"`
	Tag              string    `json:"tag" gorm:"size:127"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Graphic is a marker or line drawn in an overlay
type Graphic struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID  uint           `json:"sessionId" gorm:"index:idx_graphic_session_id"`
	Session    Session        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	ObjectID   uint32         `json:"objectId" gorm:"index:idx_graphic_object_id"` // ID assigned by the overlay
	CreatedAt  time.Time      `json:"createdAt"`
	Overlay    string         `json:"overlay" gorm:"size:64"`
	Name       string         `json:"name" gorm:"size:128"`
	Kind       string         `json:"kind" gorm:"size:16"` // marker or line
	Attributes datatypes.JSON `json:"attributes" gorm:"default:'{}'"`
}

func (*Graphic) TableName() string {
	return "graphics"
}

// MarkerState is a marker position at one recorded frame
type MarkerState struct {
	ID           uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time      `json:"time"`
	SessionID    uint           `json:"sessionId" gorm:"index:idx_markerstate_session_id"`
	GraphicID    uint32         `json:"graphicId" gorm:"index:idx_markerstate_graphic_id"` // Graphic.ObjectID
	CaptureFrame uint           `json:"captureFrame" gorm:"index:idx_markerstate_capture_frame;"`
	Position     geom.Point     `json:"position"` // XYZ in the session spatial reference
	Heading      float32        `json:"heading"`  // degrees clockwise from north
	Visible      bool           `json:"visible"`
	Attributes   datatypes.JSON `json:"attributes" gorm:"default:'{}'"`
}

func (*MarkerState) TableName() string {
	return "marker_states"
}

// LineState is the revealed geometry of a line at one recorded frame
type LineState struct {
	ID           uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time       `json:"time"`
	SessionID    uint            `json:"sessionId" gorm:"index:idx_linestate_session_id"`
	GraphicID    uint32          `json:"graphicId" gorm:"index:idx_linestate_graphic_id"`
	CaptureFrame uint            `json:"captureFrame" gorm:"index:idx_linestate_capture_frame;"`
	Geometry     geom.LineString `json:"geometry"` // empty until two distinct points are revealed
	PointCount   int             `json:"pointCount"`
	Visible      bool            `json:"visible"`
}

func (*LineState) TableName() string {
	return "line_states"
}
