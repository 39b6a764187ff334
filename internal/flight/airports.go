// Package flight builds great-circle flight routes between a fixed set of
// airports.
package flight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nixta/mapanimations/internal/geo"
)

// ErrUnknownAirport is returned for codes not in the airport table.
var ErrUnknownAirport = errors.New("unknown airport")

// Airport is an IATA code and a WGS84 location.
type Airport struct {
	Code     string
	Location geo.Point
}

func (a Airport) String() string { return a.Code }

// airports in table order; PathsFrom walks destinations in this order.
var airports = []Airport{
	{"atl", geo.Point{X: -84.4281005859375, Y: 33.63669967651367}},
	{"bkk", geo.Point{X: 100.74700164794922, Y: 13.681099891662598}},
	{"bom", geo.Point{X: 72.8663173, Y: 19.0926195}},
	{"ccu", geo.Point{X: 88.4463299, Y: 22.6520429}},
	{"cdg", geo.Point{X: 2.5479245, Y: 49.0096906}},
	{"cun", geo.Point{X: -86.8770980835, Y: 21.036500930800003}},
	{"den", geo.Point{X: -104.672996521, Y: 39.861698150635}},
	{"dfw", geo.Point{X: -97.03800201416016, Y: 32.89680099487305}},
	{"dxb", geo.Point{X: 55.364444, Y: 25.252778}},
	{"eze", geo.Point{X: -58.5358, Y: -34.8222}},
	{"gru", geo.Point{X: -46.47305679321289, Y: -23.435556411743164}},
	{"hkg", geo.Point{X: 113.914603, Y: 22.308919}},
	{"igt", geo.Point{X: 77.0999578, Y: 28.5561624}},
	{"ist", geo.Point{X: 28.814599990799998, Y: 40.9768981934}},
	{"jfk", geo.Point{X: -73.77890015, Y: 40.63980103}},
	{"kix", geo.Point{X: 135.24400329589844, Y: 34.42729949951172}},
	{"lax", geo.Point{X: -118.408075, Y: 33.942536}},
	{"lhr", geo.Point{X: -0.461389, Y: 51.4775}},
	{"los", geo.Point{X: 3.321160078048706, Y: 6.5773701667785645}},
	{"mex", geo.Point{X: -99.072098, Y: 19.4363}},
	{"mji", geo.Point{X: 13.276000022888184, Y: 32.894100189208984}},
	{"nbo", geo.Point{X: 36.9277992249, Y: -1.31923997402}},
	{"opo", geo.Point{X: -8.68138980865, Y: 41.2481002808}},
	{"ord", geo.Point{X: -87.90480042, Y: 41.97859955}},
	{"phl", geo.Point{X: -159.33900451660156, Y: 21.97599983215332}},
	{"sea", geo.Point{X: -122.30899810791016, Y: 47.44900131225586}},
	{"sfo", geo.Point{X: -122.375, Y: 37.61899948120117}},
	{"sin", geo.Point{X: 103.994003, Y: 1.35019}},
	{"thr", geo.Point{X: 51.31340026855469, Y: 35.68920135498047}},
	{"yeg", geo.Point{X: -113.580001831, Y: 53.309700012200004}},
	{"ymx", geo.Point{X: -74.0386962891, Y: 45.6795005798}},
	{"yqb", geo.Point{X: -71.393303, Y: 46.7911}},
	{"yvr", geo.Point{X: -123.183998108, Y: 49.193901062}},
	{"ywg", geo.Point{X: -97.2398986816, Y: 49.909999847399995}},
	{"yyz", geo.Point{X: -79.63059997559999, Y: 43.6772003174}},
}

// Airports returns a copy of the airport table.
func Airports() []Airport {
	out := make([]Airport, len(airports))
	copy(out, airports)
	return out
}

// Lookup finds an airport by IATA code, ignoring case.
func Lookup(code string) (Airport, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, a := range airports {
		if a.Code == code {
			return a, nil
		}
	}
	return Airport{}, fmt.Errorf("%w: %q", ErrUnknownAirport, code)
}
