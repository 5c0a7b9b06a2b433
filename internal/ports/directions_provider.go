package ports

import (
	"context"
	"trace-emissions-service/internal/domain"
)

// Route geometry and road distance between two points.
type DirectionsResult struct {
	DistanceKm float64
	Polyline   []domain.Coordinates
}

// Contract for retrieving a drivable route between coordinates.
type DirectionsProvider interface {
	Directions(ctx context.Context, origin, destination domain.Coordinates) (DirectionsResult, error)
}
