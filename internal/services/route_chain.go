package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"trace-emissions-service/internal/domain"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RouteChain holds the collaborators shared by every session. Directions and
// Publisher are optional.
//
// LookupTimeout bounds each external call a run makes, snapshot publishing
// included. RunTimeout bounds the whole run: once it passes, pending calls
// fail and the run finishes with the legs it has.
type RouteChain struct {
	Geocoder      ports.Geocoder
	Directions    ports.DirectionsProvider
	Distributors  ports.DistributorLookup
	Facilities    ports.FacilityDirectory
	WaterSources  ports.WaterSourceLookup
	Publisher     ports.SnapshotPublisher
	LookupTimeout time.Duration
	RunTimeout    time.Duration
}

// ImpactRequest is one "calculate impact" action.
type ImpactRequest struct {
	// Free-text location; the ZIP code is taken from it.
	Location string
	// Device position when the user shared it.
	UserCoordinates *domain.Coordinates
	Base            domain.BaseProductFootprint
}

// ImpactResult is the terminal state of a run.
type ImpactResult struct {
	RunID     string
	Epoch     uint64
	State     domain.RunState
	ZIP       string
	Stops     []domain.Stop
	Route     domain.RouteEmissions
	Total     domain.TotalEmissions
	Polylines map[domain.Leg][]domain.Coordinates
}

// Session owns the per-user state that outlives a single run: the facility
// list, the coordinate memo and the run epoch.
type Session struct {
	ID string

	chain    *RouteChain
	resolver *CoordinateResolver
	epoch    atomic.Uint64

	facMu      sync.Mutex
	facilities []domain.Facility
	facLoaded  bool

	runMu     sync.Mutex
	cancelRun context.CancelFunc
}

func (c *RouteChain) NewSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:       id,
		chain:    c,
		resolver: NewCoordinateResolver(c.Geocoder),
	}
}

// Epoch returns the number of runs started in this session.
func (s *Session) Epoch() uint64 { return s.epoch.Load() }

// CalculateImpact runs the supply-chain lookup for req and returns once every
// branch has settled. It never fails: each failed lookup leaves its legs
// absent. Starting a new run supersedes any run still in flight; completions
// of the older run are discarded from then on.
func (s *Session) CalculateImpact(ctx context.Context, req ImpactRequest) ImpactResult {
	epoch := s.epoch.Add(1)

	var cancel context.CancelFunc
	if t := s.chain.RunTimeout; t > 0 {
		ctx, cancel = context.WithTimeout(ctx, t)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	s.runMu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.cancelRun = cancel
	s.runMu.Unlock()

	r := &run{
		session:   s,
		id:        uuid.NewString(),
		epoch:     epoch,
		base:      req.Base,
		state:     domain.StateIdle,
		polylines: make(map[domain.Leg][]domain.Coordinates),
	}
	r.log = obs.FromContext(ctx).With(
		zap.String("session_id", s.ID),
		zap.String("run_id", r.id),
		zap.Uint64("epoch", epoch),
	)
	ctx = obs.WithLogger(ctx, r.log)

	r.execute(ctx, req)
	return r.finish()
}

func (s *Session) facilityList(ctx context.Context) []domain.Facility {
	s.facMu.Lock()
	defer s.facMu.Unlock()

	if s.facLoaded {
		return s.facilities
	}
	if s.chain.Facilities == nil {
		return nil
	}

	list, err := s.chain.Facilities.ListFacilities(ctx)
	if err != nil {
		obs.FromContext(ctx).Warn("facility directory unavailable",
			zap.String("kind", domain.ErrorKind(err)),
			zap.Error(err),
		)
		return nil
	}

	s.facilities = list
	s.facLoaded = true
	return list
}

// run is the accumulator for one CalculateImpact call.
type run struct {
	session *Session
	id      string
	epoch   uint64
	base    domain.BaseProductFootprint
	log     *zap.Logger

	mu        sync.Mutex
	state     domain.RunState
	zip       string
	stops     []domain.Stop
	route     domain.RouteEmissions
	polylines map[domain.Leg][]domain.Coordinates
}

func (r *run) stale() bool { return r.session.epoch.Load() != r.epoch }

func (r *run) lookupCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if t := r.session.chain.LookupTimeout; t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

func (r *run) setState(st domain.RunState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stale() {
		return
	}
	r.state = st
	r.log.Debug("run state", zap.String("state", string(st)))
}

func (r *run) addStop(role, name, address string, c domain.Coordinates) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stale() {
		return
	}
	r.stops = append(r.stops, domain.Stop{Role: role, Name: name, Address: address, Coordinates: c})
}

// lookupFailed records a diagnostic for a lookup that leaves legs absent.
func (r *run) lookupFailed(step string, err error) {
	r.log.Info("lookup failed; legs left absent",
		zap.String("step", step),
		zap.String("kind", domain.ErrorKind(err)),
		zap.Error(err),
	)
}

func (r *run) execute(ctx context.Context, req ImpactRequest) {
	user, reverseAddr, hasUser := r.locateUser(ctx, req)

	r.setState(domain.StateResolvingDistributor)

	zipSource := req.Location
	if strings.TrimSpace(zipSource) == "" {
		zipSource = reverseAddr
	}
	zip, err := ExtractZIP(zipSource)
	if err != nil {
		r.lookupFailed("zip", err)
		return
	}
	r.mu.Lock()
	r.zip = zip
	r.mu.Unlock()

	dist, ok := r.resolveDistributor(ctx, zip)
	if !ok {
		return
	}
	if hasUser {
		r.mergeLeg(ctx, domain.LegLastMile, user, dist, domain.ModeLastMile)
	}

	r.setState(domain.StateResolvingProductionChain)

	fctx, cancel := r.lookupCtx(ctx)
	facilities := r.session.facilityList(fctx)
	cancel()

	resolve := func(ctx context.Context, f domain.Facility) (domain.Coordinates, bool) {
		lctx, cancel := r.lookupCtx(ctx)
		defer cancel()
		return r.session.resolver.Resolve(lctx, f)
	}

	prod, ok := Nearest(ctx, facilities, domain.CategoryProduction, dist, resolve)
	if !ok {
		r.lookupFailed("production", fmt.Errorf("no production center near distributor: %w", domain.ErrUnresolvable))
		return
	}
	prodCoord := *prod.Coordinates
	r.addStop(domain.RoleProduction, prod.Name, prod.Address, prodCoord)
	r.mergeLeg(ctx, domain.LegDistribution, prodCoord, dist, domain.ModeTruck)

	// Both branches only need the production center; neither waits on the other.
	r.setState(domain.StateResolvingWaterChain)

	var g errgroup.Group
	g.Go(func() error {
		mfg, ok := Nearest(ctx, facilities, domain.CategoryManufacturing, prodCoord, resolve)
		if !ok {
			r.lookupFailed("manufacturing", fmt.Errorf("no manufacturing center near production: %w", domain.ErrUnresolvable))
			return nil
		}
		r.addStop(domain.RoleManufacturing, mfg.Name, mfg.Address, *mfg.Coordinates)
		r.mergeLeg(ctx, domain.LegManufacturing, *mfg.Coordinates, prodCoord, domain.ModeTruck)
		return nil
	})
	g.Go(func() error {
		r.resolveWaterChain(ctx, prodCoord)
		return nil
	})
	_ = g.Wait()
}

func (r *run) locateUser(ctx context.Context, req ImpactRequest) (domain.Coordinates, string, bool) {
	r.setState(domain.StateLocatingUser)

	geocoder := r.session.chain.Geocoder

	var (
		user    domain.Coordinates
		address string
		found   bool
	)

	switch {
	case req.UserCoordinates != nil:
		if err := req.UserCoordinates.Validate(); err != nil {
			r.lookupFailed("locate user", err)
			break
		}
		user, found = *req.UserCoordinates, true

		if strings.TrimSpace(req.Location) == "" && geocoder != nil {
			lctx, cancel := r.lookupCtx(ctx)
			addr, err := geocoder.ReverseGeocode(lctx, user)
			cancel()
			if err != nil {
				r.lookupFailed("reverse geocode user", err)
			} else {
				address = addr
			}
		}

	case strings.TrimSpace(req.Location) != "" && geocoder != nil:
		lctx, cancel := r.lookupCtx(ctx)
		c, err := geocoder.Geocode(lctx, req.Location)
		cancel()
		if err == nil {
			err = c.Validate()
		}
		if err != nil {
			r.lookupFailed("geocode user", err)
			break
		}
		user, found = c, true
	}

	if found {
		r.addStop(domain.RoleUser, "You", address, user)
	}
	return user, address, found
}

func (r *run) resolveDistributor(ctx context.Context, zip string) (domain.Coordinates, bool) {
	lookup := r.session.chain.Distributors
	if lookup == nil {
		return domain.Coordinates{}, false
	}

	lctx, cancel := r.lookupCtx(ctx)
	defer cancel()

	d, err := lookup.LookupDistributor(lctx, zip)
	if err != nil {
		r.lookupFailed("distributor", err)
		return domain.Coordinates{}, false
	}

	var c domain.Coordinates
	switch {
	case d.Coordinates != nil:
		c = *d.Coordinates
	case r.session.chain.Geocoder != nil && strings.TrimSpace(d.Address) != "":
		c, err = r.session.chain.Geocoder.Geocode(lctx, d.Address)
	default:
		err = fmt.Errorf("distributor %q has no coordinates or address: %w", d.Name, domain.ErrUnresolvable)
	}
	if err == nil {
		err = c.Validate()
	}
	if err != nil {
		r.lookupFailed("distributor coordinates", err)
		return domain.Coordinates{}, false
	}

	r.addStop(domain.RoleDistributor, d.Name, d.Address, c)
	return c, true
}

func (r *run) resolveWaterChain(ctx context.Context, production domain.Coordinates) {
	lookup := r.session.chain.WaterSources
	if lookup == nil {
		return
	}

	lctx, cancel := r.lookupCtx(ctx)
	ws, err := lookup.LookupWaterSources(lctx, production)
	cancel()
	if err == nil {
		err = ws.Validate()
	}
	if err != nil {
		r.lookupFailed("water sources", err)
		return
	}

	src, plant := ws.MunicipalSource, ws.TreatmentCenter
	r.addStop(domain.RoleWaterSource, src.Name, src.Address, src.Coordinates)
	r.addStop(domain.RoleTreatmentCenter, plant.Name, plant.Address, plant.Coordinates)

	r.mergeLeg(ctx, domain.LegWaterSource, src.Coordinates, plant.Coordinates, domain.ModeTruck)
	r.mergeLeg(ctx, domain.LegWaterTreatment, plant.Coordinates, production, domain.ModeTruck)
}

// mergeLeg computes the hop between from and to, stores it, and pushes the
// route and recomputed total. Distance is always great-circle; the directions
// service only contributes a polyline for display.
func (r *run) mergeLeg(ctx context.Context, leg domain.Leg, from, to domain.Coordinates, mode domain.TransportMode) {
	hop, err := HopFootprint(DistanceKm(from, to), mode)
	if err != nil {
		r.lookupFailed(string(leg), err)
		return
	}

	r.mu.Lock()
	if r.stale() {
		r.mu.Unlock()
		r.log.Debug("discarding stale leg", zap.String("leg", string(leg)))
		return
	}
	if err := r.route.Set(leg, hop); err != nil {
		r.mu.Unlock()
		r.lookupFailed(string(leg), err)
		return
	}
	route := r.route.Clone()
	total := Aggregate(r.base, route)
	r.publish(ctx, leg, route, total)
	r.mu.Unlock()

	r.log.Debug("leg computed",
		zap.String("leg", string(leg)),
		zap.Float64("distance_km", hop.DistanceKm),
		zap.Float64("co2_kg", hop.CO2Kg),
	)

	r.attachPolyline(ctx, leg, from, to)
}

// publish must be called with r.mu held so snapshots leave in merge order.
func (r *run) publish(ctx context.Context, leg domain.Leg, route domain.RouteEmissions, total domain.TotalEmissions) {
	pub := r.session.chain.Publisher
	if pub == nil {
		return
	}

	snaps := []domain.ImpactSnapshot{
		{Kind: domain.SnapshotRoute, Route: &route},
		{Kind: domain.SnapshotTotal, Total: &total},
	}
	for _, s := range snaps {
		s.SessionID = r.session.ID
		s.RunID = r.id
		s.Epoch = r.epoch
		s.Leg = leg
		pctx, cancel := r.lookupCtx(ctx)
		err := pub.Publish(pctx, s)
		cancel()
		if err != nil {
			r.log.Warn("publish snapshot failed",
				zap.String("kind", s.Kind),
				zap.String("leg", string(leg)),
				zap.Error(err),
			)
		}
	}
}

func (r *run) attachPolyline(ctx context.Context, leg domain.Leg, from, to domain.Coordinates) {
	dir := r.session.chain.Directions
	if dir == nil {
		return
	}

	lctx, cancel := r.lookupCtx(ctx)
	res, err := dir.Directions(lctx, from, to)
	cancel()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.log.Info("directions unavailable; leg kept without polyline",
				zap.String("leg", string(leg)),
				zap.Error(err),
			)
		}
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stale() {
		return
	}
	r.polylines[leg] = res.Polyline
}

func (r *run) finish() ImpactResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.stale():
		r.state = domain.StateSuperseded
	case r.route.Present() == len(domain.Legs):
		r.state = domain.StateAggregated
	default:
		r.state = domain.StateDegraded
	}

	route := r.route.Clone()
	polylines := make(map[domain.Leg][]domain.Coordinates, len(r.polylines))
	for k, v := range r.polylines {
		polylines[k] = v
	}

	r.log.Info("impact run finished",
		zap.String("state", string(r.state)),
		zap.Int("legs", route.Present()),
	)

	return ImpactResult{
		RunID:     r.id,
		Epoch:     r.epoch,
		State:     r.state,
		ZIP:       r.zip,
		Stops:     append([]domain.Stop(nil), r.stops...),
		Route:     route,
		Total:     Aggregate(r.base, route),
		Polylines: polylines,
	}
}
