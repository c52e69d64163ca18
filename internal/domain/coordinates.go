package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// NewCoordinates returns coordinates only when both parts are present.
func NewCoordinates(lat, lon *float64) (*Coordinates, error) {
	if lat == nil && lon == nil {
		return nil, nil
	}
	if lat == nil || lon == nil {
		return nil, fmt.Errorf("coordinates: latitude and longitude must be set together")
	}
	if *lat < -90 || *lat > 90 {
		return nil, fmt.Errorf("coordinates: latitude %v out of range", *lat)
	}
	if *lon < -180 || *lon > 180 {
		return nil, fmt.Errorf("coordinates: longitude %v out of range", *lon)
	}
	return &Coordinates{Lon: *lon, Lat: *lat}, nil
}

// Return coordinates as an orb point ([lon, lat] order).
func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }
