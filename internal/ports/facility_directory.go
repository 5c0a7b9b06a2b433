package ports

import (
	"context"
	"trace-emissions-service/internal/domain"
)

// Port: a boundary for retrieving Facility entities from a data source.
type FacilityDirectory interface {
	// Retrieve all known facilities with unresolved or stored coordinates.
	ListFacilities(ctx context.Context) ([]domain.Facility, error)
}
