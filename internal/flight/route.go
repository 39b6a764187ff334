package flight

import (
	"fmt"
	"math"

	"github.com/nixta/mapanimations/internal/geo"
)

// MaxSegmentLength bounds the great-circle segments of geodesic routes, in meters.
const MaxSegmentLength = 100_000.0

// PathOptions controls how a route is built.
type PathOptions struct {
	// Geodesic densifies the route along the great circle.
	Geodesic bool
	// MaxAltitude, when positive, lifts the route into an arc peaking at
	// this many meters halfway along.
	MaxAltitude float64
	// SpatialReference of the returned path. Zero means Web Mercator.
	SpatialReference geo.SpatialReference
}

// DefaultPathOptions returns geodesic, flat routes in Web Mercator.
func DefaultPathOptions() PathOptions {
	return PathOptions{Geodesic: true, SpatialReference: geo.WebMercator}
}

func (o PathOptions) target() geo.SpatialReference {
	if o.SpatialReference == 0 {
		return geo.WebMercator
	}
	return o.SpatialReference
}

// Route is a flight between two airports.
type Route struct {
	From Airport
	To   Airport
	Path *geo.Path
}

func (r Route) Name() string {
	return r.From.Code + "-" + r.To.Code
}

// PathBetween builds the flight path from one airport to another.
func PathBetween(from, to Airport, opts PathOptions) (*geo.Path, error) {
	points := []geo.Point{from.Location, to.Location}
	if opts.Geodesic {
		points = geo.Densify(points, MaxSegmentLength)
	}

	if opts.MaxAltitude > 0 {
		total := 0.0
		for i := 1; i < len(points); i++ {
			total += geo.Distance(geo.WGS84, points[i-1], points[i])
		}
		origin := points[0]
		for i := range points {
			z := 0.0
			if total > 0 {
				d := geo.Distance(geo.WGS84, origin, points[i])
				z = opts.MaxAltitude * math.Sin(math.Pi*d/total)
			}
			points[i].Z = z
		}
	}

	path, err := geo.NewPath(geo.WGS84, points...)
	if err != nil {
		return nil, fmt.Errorf("building %s-%s path: %w", from.Code, to.Code, err)
	}
	return path.Project(opts.target())
}

// PathsFrom builds routes from origin to every other airport in table
// order, stopping after maxDestinations routes. Zero or less means all.
func PathsFrom(origin Airport, maxDestinations int, opts PathOptions) ([]Route, error) {
	return routesFrom(origin, maxDestinations, func(from, to Airport) (*geo.Path, error) {
		return PathBetween(from, to, opts)
	})
}

func routesFrom(origin Airport, maxDestinations int, build func(from, to Airport) (*geo.Path, error)) ([]Route, error) {
	var routes []Route
	for _, dest := range airports {
		if dest.Code == origin.Code {
			continue
		}
		if maxDestinations > 0 && len(routes) >= maxDestinations {
			break
		}
		path, err := build(origin, dest)
		if err != nil {
			return nil, err
		}
		routes = append(routes, Route{From: origin, To: dest, Path: path})
	}
	return routes, nil
}
