// Package scenario defines the validated per-request parameter object that
// is threaded into the pure valuation call. All form/API input funnels
// through Scenario.Validate before any market data is fetched.
package scenario

import (
	"fmt"
	"strings"
)

// FallbackInitialCashFlow is used when no cash-flow figure can be sourced
// from the market-data provider.
const FallbackInitialCashFlow = 100.0

// MaxYears bounds the explicit projection horizon. The closed-form model
// carries no information that would make longer horizons meaningful.
const MaxYears = 50

// Scenario holds one valuation request's parameters. Rates are fractions
// (0.10 == 10%); converting user-entered percentages is the form layer's job.
type Scenario struct {
	Ticker          string  `json:"ticker" yaml:"ticker"`
	InitialCashFlow float64 `json:"initial_cash_flow" yaml:"initial_cash_flow"`
	GrowthRate      float64 `json:"growth_rate" yaml:"growth_rate"`
	DiscountRate    float64 `json:"discount_rate" yaml:"discount_rate"`
	TerminalGrowth  float64 `json:"terminal_growth" yaml:"terminal_growth"`
	Years           int     `json:"years" yaml:"years"`
}

// Defaults mirrors the dashboard's initial form state: 5% growth, 10%
// discount, 2% terminal growth over 5 years.
func Defaults() Scenario {
	return Scenario{
		GrowthRate:     0.05,
		DiscountRate:   0.10,
		TerminalGrowth: 0.02,
		Years:          5,
	}
}

// Normalize uppercases the ticker and fills zero-valued horizon from the
// defaults. It does not touch rates: a zero rate is a legitimate input.
func (s *Scenario) Normalize() {
	s.Ticker = strings.ToUpper(strings.TrimSpace(s.Ticker))
	if s.Years == 0 {
		s.Years = Defaults().Years
	}
}

// Validate rejects parameter sets the valuation core would refuse, so
// callers can fail fast before fetching market data.
func (s Scenario) Validate() error {
	if s.Years < 1 {
		return fmt.Errorf("projection years must be at least 1, got %d", s.Years)
	}
	if s.Years > MaxYears {
		return fmt.Errorf("projection years must be at most %d, got %d", MaxYears, s.Years)
	}
	if s.DiscountRate <= s.TerminalGrowth {
		return fmt.Errorf("discount rate (%.4f) must exceed terminal growth (%.4f)", s.DiscountRate, s.TerminalGrowth)
	}
	if s.GrowthRate <= -1.0 {
		return fmt.Errorf("growth rate must be greater than -100%%, got %.4f", s.GrowthRate)
	}
	return nil
}
