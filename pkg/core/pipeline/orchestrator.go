// Package pipeline wires the full request flow: cache -> provider ->
// fallback -> projection -> valuation -> persistence. The API handlers and
// the CLI both run through the same orchestrator so behavior cannot drift.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"dcf_valuation/pkg/core/marketdata"
	"dcf_valuation/pkg/core/projection"
	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/store"
	"dcf_valuation/pkg/core/valuation"
)

// Outcome is everything a completed valuation produced, including what was
// actually used as inputs (source annotations matter for the report).
type Outcome struct {
	Scenario          scenario.Scenario      `json:"scenario"`
	Market            *marketdata.MarketData `json:"market,omitempty"`
	CashFlowSource    string                 `json:"cash_flow_source"` // provider | fallback | manual
	CashFlows         []float64              `json:"cash_flows"`
	Result            valuation.DCFResult    `json:"result"`
	FairValuePerShare *float64               `json:"fair_value_per_share,omitempty"`
	Warnings          []string               `json:"warnings,omitempty"`
	RunID             string                 `json:"run_id,omitempty"`
}

// Orchestrator holds the collaborators. Provider and Fallback may be nil
// (offline mode); QuoteCache and Runs may be nil (no persistence).
type Orchestrator struct {
	Provider   marketdata.Provider
	Fallback   marketdata.Provider
	QuoteCache *store.QuoteCache
	Runs       *store.RunsRepo
}

// Run executes one valuation. The scenario must already be normalized and
// validated; a validation failure here is returned as-is (the core's
// sentinel errors pass through untouched for the caller to classify).
func (o *Orchestrator) Run(ctx context.Context, sc scenario.Scenario) (*Outcome, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	out := &Outcome{Scenario: sc}

	// 1. Market data: cache first, then providers. A fetch failure is a
	// warning, not an error: the valuation proceeds on the fallback figure.
	market := o.fetchMarketData(ctx, sc.Ticker, out)
	out.Market = market

	// 2. Initial cash flow: explicit request value > provider figure >
	// fixed fallback.
	initial := sc.InitialCashFlow
	out.CashFlowSource = "manual"
	if initial == 0 {
		if market != nil {
			if cf, ok := marketdata.SelectOperatingCashFlow(market.CashFlowRows); ok {
				initial = cf
				out.CashFlowSource = "provider"
			}
		}
		if initial == 0 {
			initial = scenario.FallbackInitialCashFlow
			out.CashFlowSource = "fallback"
			out.Warnings = append(out.Warnings, fmt.Sprintf("no cash-flow figure available; using fallback %.1f", scenario.FallbackInitialCashFlow))
		}
	}
	out.Scenario.InitialCashFlow = initial

	// 3. Project and valuate.
	out.CashFlows = projection.FromScenario(out.Scenario)
	result, err := valuation.DiscountedCashFlow(out.CashFlows, sc.DiscountRate, sc.TerminalGrowth, sc.Years)
	if err != nil {
		return nil, err
	}
	out.Result = result

	// 4. Derived per-share figure, omitted when market inputs are missing.
	if market != nil && market.Price != nil && market.MarketCap != nil {
		if fv, ok := valuation.FairValuePerShare(result.Total, *market.MarketCap, *market.Price); ok {
			out.FairValuePerShare = &fv
		}
	}

	// 5. Persist the run (best effort).
	if o.Runs != nil {
		run := &store.ValuationRun{
			Scenario:          out.Scenario,
			CashFlowSource:    out.CashFlowSource,
			CashFlows:         out.CashFlows,
			Result:            out.Result,
			FairValuePerShare: out.FairValuePerShare,
		}
		if market != nil {
			run.Price = market.Price
			run.MarketCap = market.MarketCap
		}
		if err := o.Runs.Insert(ctx, run); err != nil {
			fmt.Printf("[WARNING] Failed to persist valuation run: %v\n", err)
		} else {
			out.RunID = run.ID
		}
	}

	return out, nil
}

// fetchMarketData tries cache, primary provider, then scraper fallback.
// Every failure downgrades to a warning on the outcome.
func (o *Orchestrator) fetchMarketData(ctx context.Context, ticker string, out *Outcome) *marketdata.MarketData {
	if ticker == "" {
		return nil
	}

	today := time.Now().UTC()
	if o.QuoteCache != nil {
		if cached, err := o.QuoteCache.Get(ctx, ticker, today); err == nil && cached != nil {
			fmt.Printf("[PIPELINE] Quote cache HIT for %s\n", ticker)
			return cached
		}
	}

	for _, p := range []marketdata.Provider{o.Provider, o.Fallback} {
		if p == nil {
			continue
		}
		data, err := p.Fetch(ctx, ticker)
		if err != nil {
			fmt.Printf("[PIPELINE] %v\n", err)
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		if o.QuoteCache != nil {
			if err := o.QuoteCache.Save(ctx, data); err != nil {
				fmt.Printf("[WARNING] Failed to cache quote: %v\n", err)
			}
		}
		return data
	}

	return nil
}
