package cache

import (
	"context"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"

	"go.uber.org/zap"
)

// TieredGeocodeCache reads the near cache first and falls back to the far one
// for misses, copying far hits forward. Writes go to both. A failing near
// cache is logged and skipped; only far-cache errors are returned.
type TieredGeocodeCache struct {
	Near ports.GeocodeCache
	Far  ports.GeocodeCache
}

var _ ports.GeocodeCache = (*TieredGeocodeCache)(nil)

func (t *TieredGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	log := obs.FromContext(ctx)

	hits, err := t.Near.GetMany(ctx, addresses)
	if err != nil {
		log.Warn("near geocode cache read failed", zap.Error(err))
		hits = map[string]domain.Coordinates{}
	}

	var missing []string
	for _, a := range addresses {
		if _, ok := hits[a]; !ok {
			missing = append(missing, a)
		}
	}
	if len(missing) == 0 {
		return hits, nil
	}

	far, err := t.Far.GetMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(far) > 0 {
		if err := t.Near.PutMany(ctx, far); err != nil {
			log.Warn("near geocode cache backfill failed", zap.Error(err))
		}
	}
	for a, c := range far {
		hits[a] = c
	}

	return hits, nil
}

func (t *TieredGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if err := t.Near.PutMany(ctx, results); err != nil {
		obs.FromContext(ctx).Warn("near geocode cache write failed", zap.Error(err))
	}
	return t.Far.PutMany(ctx, results)
}
