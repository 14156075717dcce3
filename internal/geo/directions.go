package geo

import (
	"encoding/json"
	"errors"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Extraction failures are recoverable: a route whose directions payload
// cannot be parsed is saved without coordinates instead of being rejected.
var (
	ErrEmptyPayload  = errors.New("directions payload is empty")
	ErrBadPayload    = errors.New("directions payload does not match the expected schema")
	ErrNoLegs        = errors.New("directions payload contains no route legs")
	ErrInvalidCoords = errors.New("directions payload contains invalid coordinates")
)

// Directions is the typed schema for the route-geometry payload supplied
// at creation time: a list of routes, each a list of legs with start and
// end locations. Unknown fields are ignored.
type Directions struct {
	Routes []DirectionsRoute `json:"routes"`
}

// DirectionsRoute is a single alternative within a directions payload
type DirectionsRoute struct {
	Legs []Leg `json:"legs"`
}

// Leg is one segment of a directions route
type Leg struct {
	StartLocation LatLng `json:"start_location"`
	EndLocation   LatLng `json:"end_location"`
}

// Endpoints holds the extracted origin and destination of a route plus
// the leg waypoints in travel order
type Endpoints struct {
	Origin      LatLng
	Destination LatLng
	Waypoints   []LatLng
}

// ExtractEndpoints validates a raw directions payload against the schema
// and pulls the origin/destination coordinates from the first route's
// legs. The first leg's start is the origin, the last leg's end is the
// destination.
func ExtractEndpoints(raw json.RawMessage) (*Endpoints, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}
	var d Directions
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, ErrBadPayload
	}
	if len(d.Routes) == 0 || len(d.Routes[0].Legs) == 0 {
		return nil, ErrNoLegs
	}

	legs := d.Routes[0].Legs
	ep := &Endpoints{
		Origin:      legs[0].StartLocation,
		Destination: legs[len(legs)-1].EndLocation,
	}
	if !ep.Origin.Valid() || !ep.Destination.Valid() {
		return nil, ErrInvalidCoords
	}

	ep.Waypoints = append(ep.Waypoints, legs[0].StartLocation)
	for _, leg := range legs {
		if !leg.StartLocation.Valid() || !leg.EndLocation.Valid() {
			return nil, ErrInvalidCoords
		}
		ep.Waypoints = append(ep.Waypoints, leg.EndLocation)
	}
	return ep, nil
}

// PathGeoJSON encodes the extracted waypoints as a GeoJSON LineString
// (lng/lat order) for map rendering. Requires at least two waypoints.
func (ep *Endpoints) PathGeoJSON() (string, error) {
	if len(ep.Waypoints) < 2 {
		return "", ErrNoLegs
	}
	coords := make([]geom.Coord, 0, len(ep.Waypoints))
	for _, p := range ep.Waypoints {
		coords = append(coords, geom.Coord{p.Lng, p.Lat})
	}
	ls := geom.NewLineString(geom.XY)
	if _, err := ls.SetCoords(coords); err != nil {
		return "", err
	}
	b, err := geojson.Marshal(ls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
