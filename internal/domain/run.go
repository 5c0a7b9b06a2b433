package domain

// RunState tracks one impact calculation from start to its terminal state.
type RunState string

const (
	StateIdle                     RunState = "idle"
	StateLocatingUser             RunState = "locating_user"
	StateResolvingDistributor     RunState = "resolving_distributor"
	StateResolvingProductionChain RunState = "resolving_production_chain"
	StateResolvingWaterChain      RunState = "resolving_water_chain"
	// Every leg was computed.
	StateAggregated RunState = "aggregated"
	// The run finished with at least one leg absent.
	StateDegraded RunState = "degraded"
	// A newer run in the same session started before this one finished;
	// completions arriving after that point were discarded.
	StateSuperseded RunState = "superseded"
)

// Terminal reports whether no further transitions happen from s.
func (s RunState) Terminal() bool {
	return s == StateAggregated || s == StateDegraded || s == StateSuperseded
}

// Stop is a resolved point on the supply chain shown to the user.
type Stop struct {
	Role        string      `json:"role"`
	Name        string      `json:"name"`
	Address     string      `json:"address,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// Stop roles, downstream first.
const (
	RoleUser            = "user"
	RoleDistributor     = "distributor"
	RoleProduction      = "production"
	RoleManufacturing   = "manufacturing"
	RoleWaterSource     = "water_source"
	RoleTreatmentCenter = "treatment_center"
)

// Snapshot kinds pushed to the presentation layer.
const (
	SnapshotRoute = "route"
	SnapshotTotal = "total"
)

// ImpactSnapshot is the outward-facing update emitted whenever a leg lands.
type ImpactSnapshot struct {
	Kind      string          `json:"kind"`
	SessionID string          `json:"session_id"`
	RunID     string          `json:"run_id"`
	Epoch     uint64          `json:"epoch"`
	Leg       Leg             `json:"leg,omitempty"`
	Route     *RouteEmissions `json:"route,omitempty"`
	Total     *TotalEmissions `json:"total,omitempty"`
}
