package services

import (
	"fmt"
	"math"
	"trace-emissions-service/internal/domain"
)

// UnitWeightKg is the mass of one unit of product (a single bottle).
const UnitWeightKg = 0.025

// Emission factors in kg CO2 per kg-km.
var emissionFactors = map[domain.TransportMode]float64{
	domain.ModeTruck:    0.15,
	domain.ModeRail:     0.03,
	domain.ModeShip:     0.01,
	domain.ModeLastMile: 0.25,
}

// EmissionFactor returns the factor for mode.
func EmissionFactor(mode domain.TransportMode) (float64, error) {
	f, ok := emissionFactors[mode]
	if !ok {
		return 0, fmt.Errorf("emission factor: unknown mode %q: %w", mode, domain.ErrMalformedInput)
	}
	return f, nil
}

// HopFootprint estimates the CO2 of moving one unit distanceKm by mode.
// Distance is rounded to 1 decimal and CO2 to 3; both roundings are part of
// the published numbers and must not change.
func HopFootprint(distanceKm float64, mode domain.TransportMode) (domain.TransportHop, error) {
	factor, err := EmissionFactor(mode)
	if err != nil {
		return domain.TransportHop{}, err
	}

	co2PerKm := factor * UnitWeightKg

	return domain.TransportHop{
		DistanceKm: round(distanceKm, 1),
		CO2Kg:      round(distanceKm*co2PerKm, 3),
		Mode:       mode,
	}, nil
}

// Aggregate folds every present leg into a total on top of the base product.
// Absent legs contribute nothing. Legs are summed in fixed order so the result
// does not depend on the order in which they arrived.
func Aggregate(base domain.BaseProductFootprint, route domain.RouteEmissions) domain.TotalEmissions {
	var co2, dist float64
	for _, leg := range domain.Legs {
		hop, ok := route.Hop(leg)
		if !ok {
			continue
		}
		co2 += hop.CO2Kg
		dist += hop.DistanceKm
	}

	return domain.TotalEmissions{
		BaseProduct: base,
		Transportation: domain.TransportationTotals{
			CO2Kg:           round(co2, 3),
			TotalDistanceKm: round(dist, 1),
		},
		Total: domain.BaseProductFootprint{
			CO2Kg:           round(base.CO2Kg+co2, 3),
			MicroplasticsUg: base.MicroplasticsUg,
			WaterUsageL:     base.WaterUsageL,
		},
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
