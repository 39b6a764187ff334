package convert

import (
	"encoding/json"

	"github.com/nixta/mapanimations/internal/model"
	"github.com/nixta/mapanimations/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// pointToPosition3D converts a geom.Point to a core.Position3D
func pointToPosition3D(p geom.Point) core.Position3D {
	c, ok := p.Coordinates()
	if !ok {
		return core.Position3D{}
	}
	return core.Position3D{X: c.X, Y: c.Y, Z: c.Z}
}

// lineStringToPositions converts a geom.LineString to positions
func lineStringToPositions(ls geom.LineString) []core.Position3D {
	seq := ls.Coordinates()
	n := seq.Length()
	if n == 0 {
		return nil
	}
	out := make([]core.Position3D, n)
	for i := range n {
		c := seq.Get(i)
		out[i] = core.Position3D{X: c.X, Y: c.Y, Z: c.Z}
	}
	return out
}

func jsonToAttributes(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil || len(attrs) == 0 {
		return nil
	}
	return attrs
}

// SessionToCore converts a GORM model.Session to a core.Session.
func SessionToCore(s model.Session) core.Session {
	return core.Session{
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

// GraphicToCore converts a GORM model.Graphic to a core.Graphic.
func GraphicToCore(g model.Graphic) core.Graphic {
	return core.Graphic{
		ID:         g.ObjectID,
		Overlay:    g.Overlay,
		Name:       g.Name,
		Kind:       core.GraphicKind(g.Kind),
		CreatedAt:  g.CreatedAt,
		Attributes: jsonToAttributes(g.Attributes),
	}
}

// MarkerStateToCore converts a GORM model.MarkerState to a core.MarkerState.
func MarkerStateToCore(s model.MarkerState) core.MarkerState {
	return core.MarkerState{
		GraphicID:  s.GraphicID,
		Time:       s.Time,
		Frame:      s.CaptureFrame,
		Position:   pointToPosition3D(s.Position),
		Heading:    float64(s.Heading),
		Visible:    s.Visible,
		Attributes: jsonToAttributes(s.Attributes),
	}
}

// LineStateToCore converts a GORM model.LineState to a core.LineState.
// A stored single point line comes back empty.
func LineStateToCore(s model.LineState) core.LineState {
	return core.LineState{
		GraphicID: s.GraphicID,
		Time:      s.Time,
		Frame:     s.CaptureFrame,
		Points:    lineStringToPositions(s.Geometry),
		Visible:   s.Visible,
	}
}
