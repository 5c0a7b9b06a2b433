package ports

import (
	"context"
	"trace-emissions-service/internal/domain"
)

// Port: finds the distributor serving a ZIP code.
type DistributorLookup interface {
	LookupDistributor(ctx context.Context, zip string) (domain.Distributor, error)
}

// Port: guesses the municipal water source and treatment center feeding a
// production site. Results are best-effort and must be validated.
type WaterSourceLookup interface {
	LookupWaterSources(ctx context.Context, near domain.Coordinates) (domain.WaterSources, error)
}
