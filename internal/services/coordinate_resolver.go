package services

import (
	"context"
	"strings"
	"sync"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"

	"go.uber.org/zap"
)

// CoordinateResolver resolves facility coordinates through a geocoder and
// memoises successful lookups per facility id. Failures are not cached, so a
// later run retries them. Safe for concurrent use.
type CoordinateResolver struct {
	geocoder ports.Geocoder

	mu   sync.Mutex
	memo map[string]domain.Coordinates
}

func NewCoordinateResolver(geocoder ports.Geocoder) *CoordinateResolver {
	return &CoordinateResolver{
		geocoder: geocoder,
		memo:     make(map[string]domain.Coordinates),
	}
}

// Resolve implements CoordinateFunc.
func (r *CoordinateResolver) Resolve(ctx context.Context, f domain.Facility) (domain.Coordinates, bool) {
	if f.Coordinates != nil {
		return *f.Coordinates, true
	}

	key := f.ID
	if key == "" {
		key = "addr:" + strings.Join(strings.Fields(f.Address), " ")
	}

	r.mu.Lock()
	c, ok := r.memo[key]
	r.mu.Unlock()
	if ok {
		return c, true
	}

	if r.geocoder == nil || strings.TrimSpace(f.Address) == "" {
		return domain.Coordinates{}, false
	}

	c, err := r.geocoder.Geocode(ctx, f.Address)
	if err == nil {
		err = c.Validate()
	}
	if err != nil {
		obs.FromContext(ctx).Info("facility coordinates unresolved",
			zap.String("facility_id", f.ID),
			zap.String("kind", domain.ErrorKind(err)),
			zap.Error(err),
		)
		return domain.Coordinates{}, false
	}

	r.mu.Lock()
	r.memo[key] = c
	r.mu.Unlock()

	return c, true
}

// Len reports how many facilities have memoised coordinates.
func (r *CoordinateResolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.memo)
}
