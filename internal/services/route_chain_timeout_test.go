package services

import (
	"context"
	"testing"
	"time"
	"trace-emissions-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stallingGeocoder blocks on one address until the caller's context ends.
type stallingGeocoder struct {
	*fakeGeocoder
	stall string
}

func (g stallingGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	if address == g.stall {
		<-ctx.Done()
		return domain.Coordinates{}, ctx.Err()
	}
	return g.fakeGeocoder.Geocode(ctx, address)
}

type stallingPublisher struct{}

func (stallingPublisher) Publish(ctx context.Context, _ domain.ImpactSnapshot) error {
	<-ctx.Done()
	return ctx.Err()
}

type stallingDirectory struct{}

func (stallingDirectory) ListFacilities(ctx context.Context) ([]domain.Facility, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// calculateWithin runs one impact calculation under a generous outer deadline
// and returns the result and how long it took.
func calculateWithin(t *testing.T, chain *RouteChain) (ImpactResult, time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	res := chain.NewSession("").CalculateImpact(ctx, ImpactRequest{
		Location: "Philadelphia, PA 19104",
		Base:     waterBase,
	})
	return res, time.Since(start)
}

func TestCalculateImpactBoundsFacilityGeocodes(t *testing.T) {
	fx := newChainFixture(validWater)
	fx.chain.Geocoder = stallingGeocoder{fakeGeocoder: fx.geo, stall: "100 Bottling Way"}
	fx.chain.LookupTimeout = 50 * time.Millisecond

	res, took := calculateWithin(t, fx.chain)

	assert.Less(t, took, time.Second)
	assert.NotEqual(t, domain.StateSuperseded, res.State)
	_, ok := res.Route.Hop(domain.LegDistribution)
	assert.True(t, ok)
	for _, st := range res.Stops {
		if st.Role == domain.RoleProduction {
			assert.Equal(t, "Far Plant", st.Name)
		}
	}
}

func TestCalculateImpactBoundsSnapshotPublishing(t *testing.T) {
	fx := newChainFixture(validWater)
	fx.chain.Publisher = stallingPublisher{}
	fx.chain.LookupTimeout = 50 * time.Millisecond

	res, took := calculateWithin(t, fx.chain)

	// every snapshot is cut off at the lookup timeout
	assert.Less(t, took, 2*time.Second)
	assert.Equal(t, domain.StateAggregated, res.State)
	assert.Equal(t, 5, res.Route.Present())
}

func TestCalculateImpactBoundsFacilityDirectory(t *testing.T) {
	fx := newChainFixture(validWater)
	fx.chain.Facilities = stallingDirectory{}
	fx.chain.LookupTimeout = 50 * time.Millisecond

	res, took := calculateWithin(t, fx.chain)

	assert.Less(t, took, time.Second)
	assert.Equal(t, domain.StateDegraded, res.State)
	_, ok := res.Route.Hop(domain.LegLastMile)
	assert.True(t, ok)
	_, ok = res.Route.Hop(domain.LegDistribution)
	assert.False(t, ok)
}

func TestCalculateImpactStopsAtRunTimeout(t *testing.T) {
	fx := newChainFixture(validWater)
	fx.chain.Publisher = stallingPublisher{}
	fx.chain.RunTimeout = 100 * time.Millisecond

	res, took := calculateWithin(t, fx.chain)

	assert.Less(t, took, time.Second)
	assert.NotEqual(t, domain.StateSuperseded, res.State)
	_, ok := res.Route.Hop(domain.LegLastMile)
	assert.True(t, ok)
}

func TestMergeLegRejectsUnknownLeg(t *testing.T) {
	fx := newChainFixture(validWater)
	s := fx.chain.NewSession("")
	r := &run{
		session:   s,
		id:        "run-1",
		epoch:     s.epoch.Add(1),
		log:       zap.NewNop(),
		state:     domain.StateIdle,
		polylines: make(map[domain.Leg][]domain.Coordinates),
	}

	r.mergeLeg(context.Background(), domain.Leg("customs"), userAt, distributorAt, domain.ModeTruck)

	require.Equal(t, 0, r.route.Present())
	assert.Empty(t, fx.publisher.all())
}
