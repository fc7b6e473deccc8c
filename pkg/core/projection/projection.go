// Package projection generates the explicit cash-flow forecast consumed by
// the valuation core: a single starting figure compounded at a flat annual
// growth rate.
package projection

import (
	"math"

	"dcf_valuation/pkg/core/scenario"
)

// Compound projects `years` future cash flows from an initial figure.
//
// FORMULA: cf_i = initial * (1 + growth)^i, i = 1..years
//
// A zero or negative horizon yields an empty slice. Negative initial figures
// are projected as-is; whether the resulting valuation is meaningful is the
// core's call.
func Compound(initialCashFlow, growthRate float64, years int) []float64 {
	if years < 1 {
		return nil
	}
	flows := make([]float64, years)
	for i := 1; i <= years; i++ {
		flows[i-1] = initialCashFlow * math.Pow(1.0+growthRate, float64(i))
	}
	return flows
}

// FromScenario projects the scenario's cash-flow series. The scenario's
// InitialCashFlow must already be resolved (manual, provider, or fallback).
func FromScenario(sc scenario.Scenario) []float64 {
	return Compound(sc.InitialCashFlow, sc.GrowthRate, sc.Years)
}
