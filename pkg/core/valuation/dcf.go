// Package valuation implements the pure DCF core: a closed-form two-stage
// valuation (explicit projection horizon + Gordon growth terminal value).
// Every call is stateless; callers thread validated inputs in and get a
// result or a sentinel error out.
package valuation

import (
	"errors"
	"math"
)

// The only two failure kinds the core signals. Callers translate them into
// user-facing messages and withhold derived figures; the core never panics.
var (
	// ErrInvalidParameters is returned when the Gordon growth formula is
	// undefined (discountRate <= terminalGrowth) or the inputs cannot cover
	// the requested horizon.
	ErrInvalidParameters = errors.New("valuation: invalid parameters")

	// ErrNonPositiveResult is returned when the computed total is <= 0.
	// A non-positive intrinsic value is not meaningful for the downstream
	// per-share division, so it is treated as an absent result.
	ErrNonPositiveResult = errors.New("valuation: non-positive result")
)

// DCFResult holds the valuation outputs.
type DCFResult struct {
	Total           float64   `json:"total"`
	PVExplicit      float64   `json:"pv_explicit"`
	PVTerminal      float64   `json:"pv_terminal"`
	TerminalValue   float64   `json:"terminal_value"`
	DiscountFactors []float64 `json:"discount_factors"`
}

// DiscountedCashFlow performs the two-stage DCF.
//
// FORMULA: Total = Sum(cf_i * (1+r)^-i, i=1..N) + TV * (1+r)^-N
// where TV = cf_N * (1+g) / (r - g)
//
// Preconditions:
//   - discountRate > terminalGrowth (terminal value undefined/inverted otherwise)
//   - years >= 1 and len(cashFlows) >= years; only the first `years` entries are used
func DiscountedCashFlow(cashFlows []float64, discountRate, terminalGrowth float64, years int) (DCFResult, error) {
	if discountRate <= terminalGrowth {
		return DCFResult{}, ErrInvalidParameters
	}
	if years < 1 || len(cashFlows) < years {
		return DCFResult{}, ErrInvalidParameters
	}

	factors := make([]float64, years)
	var pvExplicit float64
	for i := 0; i < years; i++ {
		factors[i] = math.Pow(1.0+discountRate, -float64(i+1))
		pvExplicit += cashFlows[i] * factors[i]
	}

	// Terminal value capitalizes the last projected cash flow (Gordon growth),
	// then discounts it back with the final-year factor.
	terminalValue := cashFlows[years-1] * (1 + terminalGrowth) / (discountRate - terminalGrowth)
	pvTerminal := terminalValue * factors[years-1]

	total := pvExplicit + pvTerminal
	if total <= 0 {
		return DCFResult{}, ErrNonPositiveResult
	}

	return DCFResult{
		Total:           total,
		PVExplicit:      pvExplicit,
		PVTerminal:      pvTerminal,
		TerminalValue:   terminalValue,
		DiscountFactors: factors,
	}, nil
}

// FairValuePerShare divides the total valuation by the implied share count
// (marketCap / stockPrice). The second return is false when either market
// input is missing, zero, or negative: the figure is simply undefined then,
// not an error.
func FairValuePerShare(total, marketCap, stockPrice float64) (float64, bool) {
	if marketCap <= 0 || stockPrice <= 0 {
		return 0, false
	}
	shares := marketCap / stockPrice
	return total / shares, true
}
