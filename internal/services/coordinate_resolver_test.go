package services

import (
	"context"
	"errors"
	"testing"
	"trace-emissions-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateResolverMemoisesByFacilityID(t *testing.T) {
	geo := newFakeGeocoder(map[string]domain.Coordinates{
		"1 Plant Rd": {Lat: 40.2, Lng: -75.1},
	})
	r := NewCoordinateResolver(geo)
	f := domain.Facility{ID: "p1", Address: "1 Plant Rd"}

	for i := 0; i < 3; i++ {
		c, ok := r.Resolve(context.Background(), f)
		require.True(t, ok)
		assert.Equal(t, domain.Coordinates{Lat: 40.2, Lng: -75.1}, c)
	}

	assert.Equal(t, 1, geo.callCount("1 Plant Rd"))
	assert.Equal(t, 1, r.Len())
}

func TestCoordinateResolverDoesNotCacheFailures(t *testing.T) {
	geo := newFakeGeocoder(map[string]domain.Coordinates{})
	geo.failures["2 Plant Rd"] = errors.New("timeout")
	r := NewCoordinateResolver(geo)
	f := domain.Facility{ID: "p2", Address: "2 Plant Rd"}

	_, ok := r.Resolve(context.Background(), f)
	assert.False(t, ok)

	delete(geo.failures, "2 Plant Rd")
	geo.forward["2 Plant Rd"] = domain.Coordinates{Lat: 1, Lng: 2}

	c, ok := r.Resolve(context.Background(), f)
	require.True(t, ok)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lng: 2}, c)
	assert.Equal(t, 2, geo.callCount("2 Plant Rd"))
}

func TestCoordinateResolverUsesStoredCoordinates(t *testing.T) {
	geo := newFakeGeocoder(nil)
	r := NewCoordinateResolver(geo)

	c, ok := r.Resolve(context.Background(), domain.Facility{ID: "x", Address: "anywhere", Coordinates: coords(3, 4)})
	require.True(t, ok)
	assert.Equal(t, domain.Coordinates{Lat: 3, Lng: 4}, c)
	assert.Zero(t, geo.callCount("anywhere"))
}

func TestCoordinateResolverRejectsOutOfRange(t *testing.T) {
	geo := newFakeGeocoder(map[string]domain.Coordinates{"bad": {Lat: 123, Lng: 0}})
	r := NewCoordinateResolver(geo)

	_, ok := r.Resolve(context.Background(), domain.Facility{ID: "b", Address: "bad"})
	assert.False(t, ok)
}
