package ports

import (
	"context"
	"trace-emissions-service/internal/domain"
)

// Contract for turning addresses into coordinates and back.
type Geocoder interface {
	// Resolve a free-text address to coordinates.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
	// Resolve coordinates to a postal address.
	ReverseGeocode(ctx context.Context, c domain.Coordinates) (string, error)
}

// Persistent address -> coordinate cache used by geocoders.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
