package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	apiconfig "dcf_valuation/pkg/api/config"
	apireport "dcf_valuation/pkg/api/report"
	apivaluation "dcf_valuation/pkg/api/valuation"
	"dcf_valuation/pkg/core/agent"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/marketdata"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/store"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.Load(os.Getenv("DCF_CONFIG"))
	if err != nil {
		fmt.Printf("[WARNING] Config load: %v (continuing with defaults)\n", err)
	}

	// Optional database. Without DATABASE_URL everything runs on file caches.
	ctx := context.Background()
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[WARNING] Database init failed: %v (falling back to file caches)\n", err)
		} else {
			fmt.Println("[STORE] Database connected")
			defer store.Close()
		}
	}
	pool := store.GetPool()

	// LLM provider config for commentary (optional).
	var agentMgr *agent.Manager
	if configData, err := os.ReadFile(cfg.ModelsPath); err == nil {
		var agentCfg agent.Config
		if err := yaml.Unmarshal(configData, &agentCfg); err != nil {
			fmt.Printf("[WARNING] Bad models config: %v\n", err)
		} else {
			agentMgr = agent.NewManager(agentCfg)
			fmt.Printf("[AGENT] Active provider: %s\n", agentMgr.GetActiveProvider())
		}
	}

	// Scenario presets for the form.
	presets, err := scenario.LoadPresets(cfg.PresetsPath)
	if err != nil {
		fmt.Printf("[WARNING] Presets not loaded: %v (using builtins)\n", err)
		presets = scenario.BuiltinPresets()
	}

	orchestrator := &pipeline.Orchestrator{
		Provider:   marketdata.NewYahooProvider(cfg.QuoteBaseURL),
		QuoteCache: store.NewQuoteCache(pool, filepath.Join(cfg.CacheDir, "marketdata", "quotes")),
		Runs:       store.NewRunsRepo(pool, filepath.Join(cfg.CacheDir, "runs")),
	}
	if cfg.StatementBaseURL != "" {
		orchestrator.Fallback = marketdata.NewStatementScraper(cfg.StatementBaseURL)
	}

	// Valuation endpoints
	apivaluation.InitHandler(orchestrator)
	http.HandleFunc("/api/valuation", apivaluation.HandleValuation)
	http.HandleFunc("/api/valuation/runs", apivaluation.HandleRuns)
	http.HandleFunc("/api/valuation/sensitivity", apivaluation.HandleSensitivity)

	// Report endpoint (markdown + HTML + optional commentary)
	apireport.InitHandler(orchestrator, agentMgr)
	http.HandleFunc("/api/valuation/report", apireport.HandleValuationReport)

	// Config endpoints
	configHandler := apiconfig.NewHandler(agentMgr, presets)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	fmt.Printf("API server starting on %s...\n", cfg.ListenAddr)
	fmt.Println("  - POST /api/valuation")
	fmt.Println("  - GET  /api/valuation/runs")
	fmt.Println("  - POST /api/valuation/sensitivity")
	fmt.Println("  - POST /api/valuation/report")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")

	if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
