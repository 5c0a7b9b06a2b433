package domain

import (
	"fmt"
	"strings"
)

// TransportMode selects the emission factor applied to a hop.
type TransportMode string

const (
	ModeTruck    TransportMode = "truck"
	ModeRail     TransportMode = "rail"
	ModeShip     TransportMode = "ship"
	ModeLastMile TransportMode = "last-mile"
)

// ParseTransportMode accepts a mode name case-insensitively.
func ParseTransportMode(s string) (TransportMode, error) {
	switch m := TransportMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTruck, ModeRail, ModeShip, ModeLastMile:
		return m, nil
	default:
		return "", fmt.Errorf("parse transport mode %q: %w", s, ErrMalformedInput)
	}
}

// One transportation segment with its rounded distance and CO2 estimate.
// A hop is immutable once computed.
type TransportHop struct {
	DistanceKm float64       `json:"distanceKm"`
	CO2Kg      float64       `json:"co2Kg"`
	Mode       TransportMode `json:"mode"`
}

// Leg names one slot of RouteEmissions.
type Leg string

const (
	LegLastMile       Leg = "lastMile"
	LegDistribution   Leg = "distribution"
	LegManufacturing  Leg = "manufacturing"
	LegWaterSource    Leg = "waterSource"
	LegWaterTreatment Leg = "waterTreatment"
)

// Legs lists every leg in supply-chain order, downstream first.
var Legs = []Leg{LegLastMile, LegDistribution, LegManufacturing, LegWaterSource, LegWaterTreatment}

// RouteEmissions holds the per-leg hops known so far. A nil leg means the hop
// has not been computed (or its lookup failed); it never means zero.
type RouteEmissions struct {
	LastMile       *TransportHop `json:"lastMile"`
	Distribution   *TransportHop `json:"distribution"`
	Manufacturing  *TransportHop `json:"manufacturing"`
	WaterSource    *TransportHop `json:"waterSource"`
	WaterTreatment *TransportHop `json:"waterTreatment"`
}

func (r *RouteEmissions) slot(leg Leg) **TransportHop {
	switch leg {
	case LegLastMile:
		return &r.LastMile
	case LegDistribution:
		return &r.Distribution
	case LegManufacturing:
		return &r.Manufacturing
	case LegWaterSource:
		return &r.WaterSource
	case LegWaterTreatment:
		return &r.WaterTreatment
	default:
		return nil
	}
}

// Set stores hop under leg, replacing any previous value.
func (r *RouteEmissions) Set(leg Leg, hop TransportHop) error {
	p := r.slot(leg)
	if p == nil {
		return fmt.Errorf("route emissions: unknown leg %q: %w", leg, ErrMalformedInput)
	}
	*p = &hop
	return nil
}

// Hop returns the hop stored under leg, if any.
func (r RouteEmissions) Hop(leg Leg) (TransportHop, bool) {
	p := r.slot(leg)
	if p == nil || *p == nil {
		return TransportHop{}, false
	}
	return **p, true
}

// Present counts the legs that carry a hop.
func (r RouteEmissions) Present() int {
	n := 0
	for _, leg := range Legs {
		if _, ok := r.Hop(leg); ok {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand to another goroutine.
func (r RouteEmissions) Clone() RouteEmissions {
	var out RouteEmissions
	for _, leg := range Legs {
		if hop, ok := r.Hop(leg); ok {
			_ = out.Set(leg, hop)
		}
	}
	return out
}

// Fixed, brand-specific environmental cost unrelated to transportation.
type BaseProductFootprint struct {
	CO2Kg           float64 `json:"co2Kg" yaml:"co2_kg"`
	MicroplasticsUg float64 `json:"microplasticsUg" yaml:"microplastics_ug"`
	WaterUsageL     float64 `json:"waterUsageL" yaml:"water_usage_l"`
}

type TransportationTotals struct {
	CO2Kg           float64 `json:"co2Kg"`
	TotalDistanceKm float64 `json:"totalDistanceKm"`
}

// TotalEmissions is always derived from a base footprint and the legs known at
// the time; it is recomputed, never patched.
type TotalEmissions struct {
	BaseProduct    BaseProductFootprint `json:"baseProduct"`
	Transportation TransportationTotals `json:"transportation"`
	Total          BaseProductFootprint `json:"total"`
}
