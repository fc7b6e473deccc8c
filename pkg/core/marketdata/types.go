// Package marketdata fetches the external figures the valuation consumes:
// current price, market capitalization, and the latest operating cash flow.
// Providers return validated numbers or a typed *FetchError; the valuation
// core never sees a provider failure, the caller chooses the fallback path.
package marketdata

import (
	"context"
	"fmt"
	"time"
)

// CashFlowRow is one labeled line item from a cash-flow statement, most
// recent period first in Values.
type CashFlowRow struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// MarketData holds everything a valuation request needs from the outside
// world. Price and MarketCap are optional: when the provider cannot supply
// them, they stay nil and the derived per-share figure is simply omitted
// downstream.
type MarketData struct {
	Ticker       string        `json:"ticker"`
	Currency     string        `json:"currency,omitempty"`
	Price        *float64      `json:"price,omitempty"`
	MarketCap    *float64      `json:"market_cap,omitempty"`
	CashFlowRows []CashFlowRow `json:"cash_flow_rows,omitempty"`
	AsOf         time.Time     `json:"as_of"`
}

// FetchError reports a failed provider call. Stage identifies which request
// failed (quote, cashflow, decode) so the caller can log it meaningfully.
type FetchError struct {
	Ticker string
	Stage  string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("marketdata: %s fetch failed for %s: %v", e.Stage, e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Provider is the collaborator contract: one call per ticker, context for
// cancellation, typed error on failure.
type Provider interface {
	Fetch(ctx context.Context, ticker string) (*MarketData, error)
}
