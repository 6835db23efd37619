package domain

import (
	"fmt"
	"time"
)

// Immutable geographic coordinates in the internal (latitude, longitude) order.
// External services that speak (longitude, latitude) are converted at the adapter boundary.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Return "lon,lat" for URL path segments of lon-first services.
func (c Coordinates) LonLatString() string {
	return fmt.Sprintf("%f,%f", c.Lon, c.Lat)
}

// Position is a single timestamped fix produced by a location source.
type Position struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	CapturedAt time.Time `json:"captured_at"`
}

func (p Position) Coordinates() Coordinates {
	return Coordinates{Lat: p.Lat, Lon: p.Lon}
}

// SameCoordinates reports whether two fixes point at the same place, ignoring capture time.
func (p Position) SameCoordinates(other Position) bool {
	return p.Lat == other.Lat && p.Lon == other.Lon
}
