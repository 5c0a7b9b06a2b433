package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"trace-emissions-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinates
}

func (c *memCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]domain.Coordinates{}
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *ORSClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewORSClient("test-key", append([]Option{WithBaseURL(srv.URL)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewORSClientRequiresKey(t *testing.T) {
	_, err := NewORSClient("")
	assert.Error(t, err)
}

func TestGeocodeCachesResult(t *testing.T) {
	var hits atomic.Int32
	cache := &memCache{m: map[string]domain.Coordinates{}}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "100 Bottling Way, Philadelphia", r.URL.Query().Get("text"))
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-75.1,40.2]}}]}`))
	}, WithGeocodeCache(cache))

	got, err := c.Geocode(context.Background(), "  100 Bottling Way,   Philadelphia ")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 40.2, Lng: -75.1}, got)

	got, err = c.Geocode(context.Background(), "100 Bottling Way, Philadelphia")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 40.2, Lng: -75.1}, got)

	assert.Equal(t, int32(1), hits.Load())
	assert.Contains(t, cache.m, "100 Bottling Way, Philadelphia")
}

func TestGeocodeNoFeaturesIsUnresolvable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	})

	_, err := c.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, domain.ErrUnresolvable)
}

func TestGeocodeRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-75,40]}}]}`))
	})

	got, err := c.Geocode(context.Background(), "somewhere")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 40, Lng: -75}, got)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGeocodeClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	})

	_, err := c.Geocode(context.Background(), "somewhere")
	assert.ErrorIs(t, err, domain.ErrLookupUnavailable)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGeocodeRejectsMalformedCoordinates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-75]}}]}`))
	})

	_, err := c.Geocode(context.Background(), "somewhere")
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestReverseGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/reverse", r.URL.Path)
		assert.Equal(t, "40", r.URL.Query().Get("point.lat"))
		assert.Equal(t, "-75.5", r.URL.Query().Get("point.lon"))
		_, _ = w.Write([]byte(`{"features":[{"properties":{"label":"1 Main St, Media, PA 19063"}}]}`))
	})

	addr, err := c.ReverseGeocode(context.Background(), domain.Coordinates{Lat: 40, Lng: -75.5})
	require.NoError(t, err)
	assert.Equal(t, "1 Main St, Media, PA 19063", addr)
}

func TestDirections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/directions/driving-hgv", r.URL.Path)
		assert.Equal(t, "-75,40", r.URL.Query().Get("start"))
		assert.Equal(t, "-75.1,40.1", r.URL.Query().Get("end"))
		_, _ = w.Write([]byte(`{"features":[{
			"geometry":{"coordinates":[[-75,40,12.5],[-75.05,40.05],[-75.1,40.1]]},
			"properties":{"summary":{"distance":18250.4}}}]}`))
	})

	res, err := c.Directions(context.Background(), domain.Coordinates{Lat: 40, Lng: -75}, domain.Coordinates{Lat: 40.1, Lng: -75.1})
	require.NoError(t, err)
	assert.InDelta(t, 18.2504, res.DistanceKm, 1e-9)
	require.Len(t, res.Polyline, 3)
	assert.Equal(t, domain.Coordinates{Lat: 40.05, Lng: -75.05}, res.Polyline[1])
}
