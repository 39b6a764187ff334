package geo

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePolyline parses a JSON array of coordinates into a path.
// Input format: "[[x1,y1],[x2,y2],...]" with an optional third value for elevation.
func ParsePolyline(input string, sr SpatialReference) (*Path, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}

	if len(coords) < 1 {
		return nil, ErrEmptyPath
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		points[i] = Point{X: coord[0], Y: coord[1]}
		if len(coord) > 2 {
			points[i].Z = coord[2]
		}
	}

	return NewPath(sr, points...)
}

// ParseGeoJSONPath parses a GeoJSON LineString or MultiLineString geometry,
// or a Feature / FeatureCollection whose first feature holds one, into a
// WGS84 path. MultiLineString parts are joined in order.
func ParseGeoJSONPath(input []byte) (*Path, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(input, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	var g geom.Geometry
	switch probe.Type {
	case "Feature":
		var f geom.GeoJSONFeature
		if err := json.Unmarshal(input, &f); err != nil {
			return nil, fmt.Errorf("failed to parse GeoJSON feature: %w", err)
		}
		g = f.Geometry
	case "FeatureCollection":
		var fc geom.GeoJSONFeatureCollection
		if err := json.Unmarshal(input, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse GeoJSON feature collection: %w", err)
		}
		if len(fc) == 0 {
			return nil, ErrEmptyPath
		}
		g = fc[0].Geometry
	default:
		var err error
		g, err = geom.UnmarshalGeoJSON(input)
		if err != nil {
			return nil, fmt.Errorf("failed to parse GeoJSON geometry: %w", err)
		}
	}

	var points []Point
	switch g.Type() {
	case geom.TypeLineString:
		points = sequencePoints(g.MustAsLineString().Coordinates(), nil)
	case geom.TypeMultiLineString:
		mls := g.MustAsMultiLineString()
		for i := 0; i < mls.NumLineStrings(); i++ {
			points = sequencePoints(mls.LineStringN(i).Coordinates(), points)
		}
	default:
		return nil, fmt.Errorf("unsupported GeoJSON geometry type %s", g.Type())
	}

	return NewPath(WGS84, points...)
}

func sequencePoints(seq geom.Sequence, dst []Point) []Point {
	for i := 0; i < seq.Length(); i++ {
		c := seq.Get(i)
		p := Point{X: c.X, Y: c.Y, Z: c.Z}
		if n := len(dst); n > 0 && dst[n-1] == p {
			continue
		}
		dst = append(dst, p)
	}
	return dst
}
