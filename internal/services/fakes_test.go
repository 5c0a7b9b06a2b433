package services

import (
	"context"
	"fmt"
	"sync"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/ports"
)

type fakeGeocoder struct {
	mu       sync.Mutex
	forward  map[string]domain.Coordinates
	reverse  map[domain.Coordinates]string
	calls    map[string]int
	failures map[string]error
}

func newFakeGeocoder(forward map[string]domain.Coordinates) *fakeGeocoder {
	return &fakeGeocoder{
		forward:  forward,
		reverse:  map[domain.Coordinates]string{},
		calls:    map[string]int{},
		failures: map[string]error{},
	}
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[address]++
	if err, ok := g.failures[address]; ok {
		return domain.Coordinates{}, err
	}
	c, ok := g.forward[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("no match for %q: %w", address, domain.ErrUnresolvable)
	}
	return c, nil
}

func (g *fakeGeocoder) ReverseGeocode(_ context.Context, c domain.Coordinates) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	addr, ok := g.reverse[c]
	if !ok {
		return "", fmt.Errorf("no address at %v: %w", c, domain.ErrUnresolvable)
	}
	return addr, nil
}

func (g *fakeGeocoder) callCount(address string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[address]
}

type fakeDistributors struct {
	mu    sync.Mutex
	byZip map[string]domain.Distributor
	zips  []string
}

func (f *fakeDistributors) LookupDistributor(_ context.Context, zip string) (domain.Distributor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zips = append(f.zips, zip)
	d, ok := f.byZip[zip]
	if !ok {
		return domain.Distributor{}, fmt.Errorf("distributor lookup %s: %w", zip, domain.ErrLookupUnavailable)
	}
	return d, nil
}

type fakeDirectory struct {
	mu         sync.Mutex
	facilities []domain.Facility
	err        error
	calls      int
}

func (f *fakeDirectory) ListFacilities(context.Context) ([]domain.Facility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.facilities, f.err
}

type waterFunc func(ctx context.Context, near domain.Coordinates) (domain.WaterSources, error)

func (f waterFunc) LookupWaterSources(ctx context.Context, near domain.Coordinates) (domain.WaterSources, error) {
	return f(ctx, near)
}

type recordingPublisher struct {
	mu    sync.Mutex
	snaps []domain.ImpactSnapshot
}

func (p *recordingPublisher) Publish(_ context.Context, s domain.ImpactSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, s)
	return nil
}

func (p *recordingPublisher) all() []domain.ImpactSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ImpactSnapshot(nil), p.snaps...)
}

type fakeDirections struct{ err error }

func (f fakeDirections) Directions(_ context.Context, from, to domain.Coordinates) (ports.DirectionsResult, error) {
	if f.err != nil {
		return ports.DirectionsResult{}, f.err
	}
	return ports.DirectionsResult{DistanceKm: 99, Polyline: []domain.Coordinates{from, to}}, nil
}
