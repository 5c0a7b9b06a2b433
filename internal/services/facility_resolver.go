package services

import (
	"context"
	"trace-emissions-service/internal/domain"
)

// CoordinateFunc resolves a facility's coordinates; false means unresolvable.
type CoordinateFunc func(ctx context.Context, f domain.Facility) (domain.Coordinates, bool)

// Nearest picks the facility of category closest to reference.
//
// Each candidate in the category is resolved once through resolve; candidates
// that cannot be resolved are skipped. Minimisation uses strict "<", so the
// first candidate in input order wins a tie. The returned facility carries its
// resolved coordinates.
func Nearest(
	ctx context.Context,
	candidates []domain.Facility,
	category domain.Category,
	reference domain.Coordinates,
	resolve CoordinateFunc,
) (domain.Facility, bool) {
	var (
		best    domain.Facility
		bestKm  float64
		matched bool
	)

	for _, f := range candidates {
		if f.Category != category {
			continue
		}

		c, ok := resolve(ctx, f)
		if !ok {
			continue
		}

		d := DistanceKm(reference, c)
		if !matched || d < bestKm {
			best = f.WithCoordinates(c)
			bestKm = d
			matched = true
		}
	}

	return best, matched
}
