package cache

import (
	"context"
	"errors"
	"testing"
	"time"
	"trace-emissions-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisGeocodeCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisGeocodeCache(client, ttl), mr
}

func TestRedisGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Hour)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"100 Bottling Way": {Lat: 40.2, Lng: -75.1},
	}))
	assert.True(t, mr.Exists("geocode:100 Bottling Way"))

	got, err := c.GetMany(ctx, []string{"100 Bottling Way", " ", "100 Bottling Way", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"100 Bottling Way": {Lat: 40.2, Lng: -75.1}}, got)
}

func TestRedisGeocodeCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"a": {Lat: 1, Lng: 2}}))
	mr.FastForward(2 * time.Minute)

	got, err := c.GetMany(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGeocodeCacheSkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 0)

	require.NoError(t, mr.Set("geocode:bad", "not json"))

	got, err := c.GetMany(ctx, []string{"bad"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGeocodeCacheRejectsEmptyKey(t *testing.T) {
	c, _ := newRedisCache(t, 0)

	err := c.PutMany(context.Background(), map[string]domain.Coordinates{" ": {}})
	assert.Error(t, err)
}

type mapCache struct {
	m      map[string]domain.Coordinates
	getErr error
	putErr error
	gets   [][]string
}

func (c *mapCache) GetMany(_ context.Context, addrs []string) (map[string]domain.Coordinates, error) {
	c.gets = append(c.gets, addrs)
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := map[string]domain.Coordinates{}
	for _, a := range addrs {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *mapCache) PutMany(_ context.Context, r map[string]domain.Coordinates) error {
	if c.putErr != nil {
		return c.putErr
	}
	for k, v := range r {
		c.m[k] = v
	}
	return nil
}

func TestTieredGeocodeCacheBackfillsNear(t *testing.T) {
	ctx := context.Background()
	near := &mapCache{m: map[string]domain.Coordinates{"a": {Lat: 1, Lng: 1}}}
	far := &mapCache{m: map[string]domain.Coordinates{"b": {Lat: 2, Lng: 2}}}
	tc := &TieredGeocodeCache{Near: near, Far: far}

	got, err := tc.GetMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, [][]string{{"b", "c"}}, far.gets)
	assert.Equal(t, domain.Coordinates{Lat: 2, Lng: 2}, near.m["b"])

	got, err = tc.GetMany(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, far.gets, 1)
}

func TestTieredGeocodeCacheToleratesNearFailure(t *testing.T) {
	ctx := context.Background()
	near := &mapCache{m: map[string]domain.Coordinates{}, getErr: errors.New("down"), putErr: errors.New("down")}
	far := &mapCache{m: map[string]domain.Coordinates{"a": {Lat: 1, Lng: 1}}}
	tc := &TieredGeocodeCache{Near: near, Far: far}

	got, err := tc.GetMany(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.NoError(t, tc.PutMany(ctx, map[string]domain.Coordinates{"z": {Lat: 3, Lng: 3}}))
	assert.Contains(t, far.m, "z")
}

func TestTieredGeocodeCacheReturnsFarError(t *testing.T) {
	tc := &TieredGeocodeCache{
		Near: &mapCache{m: map[string]domain.Coordinates{}},
		Far:  &mapCache{m: map[string]domain.Coordinates{}, getErr: errors.New("db down")},
	}

	_, err := tc.GetMany(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "db down")
}
