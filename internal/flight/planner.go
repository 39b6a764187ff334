package flight

import (
	"fmt"

	"github.com/nixta/mapanimations/internal/cache"
	"github.com/nixta/mapanimations/internal/geo"
)

// Planner builds routes with fixed options and remembers them.
type Planner struct {
	opts  PathOptions
	paths *cache.PathCache
}

func NewPlanner(opts PathOptions) *Planner {
	return &Planner{opts: opts, paths: cache.NewPathCache()}
}

func (p *Planner) Options() PathOptions { return p.opts }

// Cache exposes the underlying path cache.
func (p *Planner) Cache() *cache.PathCache { return p.paths }

// Path returns the cached route between two airports, building it on first use.
func (p *Planner) Path(from, to Airport) (*geo.Path, error) {
	key := fmt.Sprintf("%s-%s", from.Code, to.Code)
	return p.paths.GetOrCompute(key, func() (*geo.Path, error) {
		return PathBetween(from, to, p.opts)
	})
}

// Routes is PathsFrom through the cache.
func (p *Planner) Routes(origin Airport, maxDestinations int) ([]Route, error) {
	return routesFrom(origin, maxDestinations, p.Path)
}
