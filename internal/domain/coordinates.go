package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lng, c.Lat} }

// Validate reports whether the coordinates are finite and inside the valid ranges.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("coordinates: non-finite value (%v, %v): %w", c.Lat, c.Lng, ErrMalformedInput)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("coordinates: latitude %v out of range: %w", c.Lat, ErrMalformedInput)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("coordinates: longitude %v out of range: %w", c.Lng, ErrMalformedInput)
	}
	return nil
}
