package demo

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/nixta/mapanimations/internal/flight"
	"github.com/nixta/mapanimations/internal/geo"
)

// Scenario names a demo.
type Scenario string

const (
	Planes Scenario = "planes"
	Routes Scenario = "routes"
	Both   Scenario = "both"
	ThreeD Scenario = "3d"
	Path   Scenario = "path"
)

const (
	// PlanesOverlay holds the moving markers.
	PlanesOverlay = "planes"
	// RoutesOverlay holds the traced lines.
	RoutesOverlay = "routes"

	// DestinationAttribute labels each graphic with its destination airport.
	DestinationAttribute = "Destination"

	// threeDAltitude is the cruise altitude of the 3d scenario when none is configured.
	threeDAltitude = 10_000.0
	// 3d speeds are threeDMinSpeed plus up to threeDSpeedRange meters per second.
	threeDMinSpeed   = 60_000.0
	threeDSpeedRange = 30_000
)

// Scenarios lists every known scenario.
func Scenarios() []Scenario {
	return []Scenario{Planes, Routes, Both, ThreeD, Path}
}

// ParseScenario accepts a scenario name in any case.
func ParseScenario(name string) (Scenario, error) {
	s := Scenario(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Scenarios() {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown scenario %q", name)
}

func (s Scenario) glides() bool {
	return s != Routes
}

func (s Scenario) traces() bool {
	return s == Routes || s == Both || s == ThreeD
}

// item is one animated route: a marker, a line or both moving together.
type item struct {
	name        string
	destination string
	path        *geo.Path
}

func (it item) label() string {
	if it.destination != "" {
		return it.destination
	}
	return it.name
}

func (r *Runner) items() ([]item, error) {
	if r.scenario == Path {
		return r.routeFileItems()
	}

	origin, err := flight.Lookup(r.cfg.Origin)
	if err != nil {
		return nil, err
	}
	routes, err := r.planner.Routes(origin, r.cfg.MaxDestinations)
	if err != nil {
		return nil, err
	}
	items := make([]item, 0, len(routes))
	for _, route := range routes {
		items = append(items, item{name: route.Name(), destination: route.To.Code, path: route.Path})
	}
	return items, nil
}

func (r *Runner) routeFileItems() ([]item, error) {
	if r.cfg.RouteFile == "" {
		return nil, fmt.Errorf("scenario %s needs a route file", Path)
	}
	data, err := os.ReadFile(r.cfg.RouteFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}
	path, err := parseRouteFile(data)
	if err != nil {
		return nil, err
	}
	path, err = path.Project(r.planner.Options().SpatialReference)
	if err != nil {
		return nil, err
	}
	return []item{{name: "vehicle", path: path}}, nil
}

// parseRouteFile reads a GeoJSON line geometry or feature, or a bare
// [[lon,lat],...] coordinate array.
func parseRouteFile(data []byte) (*geo.Path, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return geo.ParsePolyline(string(trimmed), geo.WGS84)
	}
	return geo.ParseGeoJSONPath(data)
}

func (r *Runner) pathOptions() flight.PathOptions {
	opts := flight.PathOptions{
		Geodesic:         r.cfg.Geodesic,
		MaxAltitude:      r.cfg.MaxAltitude,
		SpatialReference: geo.SpatialReference(r.cfg.SpatialReference),
	}
	if opts.SpatialReference == 0 {
		opts.SpatialReference = geo.WebMercator
	}
	if r.scenario == ThreeD && opts.MaxAltitude <= 0 {
		opts.MaxAltitude = threeDAltitude
	}
	return opts
}
