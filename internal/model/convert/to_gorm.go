// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/nixta/mapanimations/internal/model"
	"github.com/nixta/mapanimations/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// position3DToPoint converts a core.Position3D to an XYZ geom.Point
func position3DToPoint(p core.Position3D) geom.Point {
	coords := geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}, Z: p.Z, Type: geom.DimXYZ}
	return geom.NewPoint(coords)
}

// positionsToLineString converts positions to an XYZ geom.LineString.
// Fewer than two positions give an empty line string.
func positionsToLineString(ps []core.Position3D) geom.LineString {
	if len(ps) < 2 {
		return geom.LineString{}
	}
	coords := make([]float64, 0, len(ps)*3)
	for _, pt := range ps {
		coords = append(coords, pt.X, pt.Y, pt.Z)
	}
	return geom.NewLineString(geom.NewSequence(coords, geom.DimXYZ))
}

// attributesToJSON converts an attribute map to datatypes.JSON for DB storage.
func attributesToJSON(attrs map[string]any) datatypes.JSON {
	if len(attrs) == 0 {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToSession converts a core.Session to a GORM model.Session.
func CoreToSession(s core.Session) model.Session {
	return model.Session{
		ID:               s.ID,
		Scenario:         s.Scenario,
		Origin:           s.Origin,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		SpatialReference: s.SpatialReference,
		FPS:              s.FPS,
		Tag:              s.Tag,
	}
}

// CoreToGraphic converts a core.Graphic to a GORM model.Graphic.
// core.Graphic.ID maps to Graphic.ObjectID.
func CoreToGraphic(g core.Graphic) model.Graphic {
	return model.Graphic{
		ObjectID:   g.ID,
		CreatedAt:  g.CreatedAt,
		Overlay:    g.Overlay,
		Name:       g.Name,
		Kind:       string(g.Kind),
		Attributes: attributesToJSON(g.Attributes),
	}
}

// CoreToMarkerState converts a core.MarkerState to a GORM model.MarkerState.
func CoreToMarkerState(s core.MarkerState) model.MarkerState {
	return model.MarkerState{
		Time:         s.Time,
		GraphicID:    s.GraphicID,
		CaptureFrame: s.Frame,
		Position:     position3DToPoint(s.Position),
		Heading:      float32(s.Heading),
		Visible:      s.Visible,
		Attributes:   attributesToJSON(s.Attributes),
	}
}

// CoreToLineState converts a core.LineState to a GORM model.LineState.
func CoreToLineState(s core.LineState) model.LineState {
	return model.LineState{
		Time:         s.Time,
		GraphicID:    s.GraphicID,
		CaptureFrame: s.Frame,
		Geometry:     positionsToLineString(s.Points),
		PointCount:   len(s.Points),
		Visible:      s.Visible,
	}
}
