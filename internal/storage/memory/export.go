package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nixta/mapanimations/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// SessionExport is the root JSON structure
type SessionExport struct {
	Scenario         string                        `json:"scenario"`
	Origin           string                        `json:"origin,omitempty"`
	StartTime        string                        `json:"startTime"`
	EndTime          string                        `json:"endTime,omitempty"`
	SpatialReference int                           `json:"spatialReference"`
	FPS              int                           `json:"fps"`
	Tag              string                        `json:"tag,omitempty"`
	EndFrame         uint                          `json:"endFrame"`
	Graphics         []GraphicJSON                 `json:"graphics"`
	Final            geom.GeoJSONFeatureCollection `json:"final"` // last recorded geometry of every graphic
}

// GraphicJSON represents a marker or line with its states
type GraphicJSON struct {
	ID         uint32         `json:"id"`
	Overlay    string         `json:"overlay"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Attributes map[string]any `json:"attributes,omitempty"`
	// marker: [frame, [x, y, z], heading, visible]
	// line:   [frame, pointCount, visible]
	States [][]any `json:"states"`
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// exportJSON writes the session data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	name := strings.ReplaceAll(b.session.Scenario, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	if name == "" {
		name = "session"
	}
	timestamp := b.session.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s_%d.json.gz", name, timestamp, b.session.ID)
	} else {
		filename = fmt.Sprintf("%s_%s_%d.json", name, timestamp, b.session.ID)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() SessionExport {
	s := b.session
	export := SessionExport{
		Scenario:         s.Scenario,
		Origin:           s.Origin,
		StartTime:        s.StartTime.UTC().Format(timeLayout),
		SpatialReference: s.SpatialReference,
		FPS:              s.FPS,
		Tag:              s.Tag,
		Graphics:         make([]GraphicJSON, 0, len(b.order)),
		Final:            geom.GeoJSONFeatureCollection{},
	}
	if !s.EndTime.IsZero() {
		export.EndTime = s.EndTime.UTC().Format(timeLayout)
	}

	var maxFrame uint
	for _, id := range b.order {
		record := b.graphics[id]
		g := record.Graphic
		entry := GraphicJSON{
			ID:         g.ID,
			Overlay:    g.Overlay,
			Name:       g.Name,
			Kind:       string(g.Kind),
			Attributes: g.Attributes,
			States:     make([][]any, 0, len(record.MarkerStates)+len(record.LineStates)),
		}

		for _, st := range record.MarkerStates {
			entry.States = append(entry.States, []any{
				st.Frame,
				[]float64{st.Position.X, st.Position.Y, st.Position.Z},
				st.Heading,
				st.Visible,
			})
			maxFrame = max(maxFrame, st.Frame)
		}
		for _, st := range record.LineStates {
			entry.States = append(entry.States, []any{
				st.Frame,
				len(st.Points),
				st.Visible,
			})
			maxFrame = max(maxFrame, st.Frame)
		}
		export.Graphics = append(export.Graphics, entry)

		if f, ok := finalFeature(record); ok {
			export.Final = append(export.Final, f)
		}
	}
	export.EndFrame = maxFrame

	return export
}

// finalFeature is the last recorded geometry of a graphic as GeoJSON.
func finalFeature(r *GraphicRecord) (geom.GeoJSONFeature, bool) {
	props := map[string]any{
		"name":    r.Graphic.Name,
		"overlay": r.Graphic.Overlay,
		"kind":    string(r.Graphic.Kind),
	}

	switch {
	case len(r.MarkerStates) > 0:
		last := r.MarkerStates[len(r.MarkerStates)-1]
		props["heading"] = last.Heading
		props["visible"] = last.Visible
		pt := geom.NewPoint(geom.Coordinates{
			XY:   geom.XY{X: last.Position.X, Y: last.Position.Y},
			Z:    last.Position.Z,
			Type: geom.DimXYZ,
		})
		return geom.GeoJSONFeature{ID: r.Graphic.ID, Geometry: pt.AsGeometry(), Properties: props}, true

	case len(r.LineStates) > 0:
		last := r.LineStates[len(r.LineStates)-1]
		props["visible"] = last.Visible
		return geom.GeoJSONFeature{ID: r.Graphic.ID, Geometry: lineGeometry(last.Points), Properties: props}, true
	}
	return geom.GeoJSONFeature{}, false
}

func lineGeometry(points []core.Position3D) geom.Geometry {
	if len(points) < 2 {
		return geom.LineString{}.AsGeometry()
	}
	flat := make([]float64, 0, len(points)*3)
	for _, p := range points {
		flat = append(flat, p.X, p.Y, p.Z)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ)).AsGeometry()
}

func writeJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
