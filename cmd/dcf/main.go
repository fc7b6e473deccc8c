// One-shot CLI: valuate a ticker and print the report to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/marketdata"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/report"
	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/store"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	defaults := scenario.Defaults()

	ticker := flag.String("ticker", "AAPL", "stock ticker")
	initialCF := flag.Float64("cf", 0, "initial cash flow override (0 = fetch from provider)")
	growth := flag.Float64("growth", defaults.GrowthRate, "annual growth rate (fraction)")
	discount := flag.Float64("discount", defaults.DiscountRate, "discount rate (fraction)")
	terminal := flag.Float64("terminal", defaults.TerminalGrowth, "terminal growth rate (fraction)")
	years := flag.Int("years", defaults.Years, "projection years")
	offline := flag.Bool("offline", false, "skip market data fetch")
	save := flag.Bool("save", false, "persist the run")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("DCF_CONFIG"))
	if err != nil {
		fmt.Printf("[WARNING] Config load: %v\n", err)
	}

	sc := scenario.Scenario{
		Ticker:          *ticker,
		InitialCashFlow: *initialCF,
		GrowthRate:      *growth,
		DiscountRate:    *discount,
		TerminalGrowth:  *terminal,
		Years:           *years,
	}
	sc.Normalize()
	if err := sc.Validate(); err != nil {
		fmt.Printf("Invalid parameters: %v\n", err)
		os.Exit(1)
	}

	orchestrator := &pipeline.Orchestrator{}
	if !*offline {
		orchestrator.Provider = marketdata.NewYahooProvider(cfg.QuoteBaseURL)
		if cfg.StatementBaseURL != "" {
			orchestrator.Fallback = marketdata.NewStatementScraper(cfg.StatementBaseURL)
		}
		orchestrator.QuoteCache = store.NewQuoteCache(nil, filepath.Join(cfg.CacheDir, "marketdata", "quotes"))
	}
	if *save {
		orchestrator.Runs = store.NewRunsRepo(nil, filepath.Join(cfg.CacheDir, "runs"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := orchestrator.Run(ctx, sc)
	if err != nil {
		fmt.Printf("Valuation failed: %v\n", err)
		os.Exit(1)
	}

	in := report.Input{
		Scenario:          out.Scenario,
		CashFlows:         out.CashFlows,
		CashFlowSource:    out.CashFlowSource,
		Result:            out.Result,
		FairValuePerShare: out.FairValuePerShare,
		Warnings:          out.Warnings,
	}
	if out.Market != nil {
		in.Price = out.Market.Price
		in.MarketCap = out.Market.MarketCap
		in.Currency = out.Market.Currency
	}

	fmt.Println(report.Markdown(in))
	if out.RunID != "" {
		fmt.Printf("\nSaved run %s\n", out.RunID)
	}
}
