package valuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/scenario"
	corevaluation "dcf_valuation/pkg/core/valuation"
)

var orchestrator *pipeline.Orchestrator

// InitHandler wires the shared orchestrator into the package handlers.
func InitHandler(o *pipeline.Orchestrator) {
	orchestrator = o
}

// ValuationRequest mirrors the dashboard form. Rates are fractions; a zero
// InitialCashFlow means "source it from the provider".
type ValuationRequest struct {
	Ticker          string  `json:"ticker"`
	InitialCashFlow float64 `json:"initial_cash_flow"`
	GrowthRate      float64 `json:"growth_rate"`
	DiscountRate    float64 `json:"discount_rate"`
	TerminalGrowth  float64 `json:"terminal_growth"`
	Years           int     `json:"years"`
}

func (r ValuationRequest) ToScenario() scenario.Scenario {
	sc := scenario.Scenario{
		Ticker:          r.Ticker,
		InitialCashFlow: r.InitialCashFlow,
		GrowthRate:      r.GrowthRate,
		DiscountRate:    r.DiscountRate,
		TerminalGrowth:  r.TerminalGrowth,
		Years:           r.Years,
	}
	sc.Normalize()
	return sc
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// WriteValuationError maps core failures onto HTTP responses. Both failure
// kinds are client-facing parameter problems, not server faults.
func WriteValuationError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error(), Kind: "invalid_parameters"}
	if errors.Is(err, corevaluation.ErrNonPositiveResult) {
		resp.Kind = "non_positive_result"
		resp.Error = "computed intrinsic value is not positive; no meaningful valuation for these inputs"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(resp)
}

// HandleValuation runs one DCF valuation per request.
func HandleValuation(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sc := req.ToScenario()
	fmt.Printf("[VALUATION] Request: %s r=%.4f g=%.4f years=%d\n", sc.Ticker, sc.DiscountRate, sc.TerminalGrowth, sc.Years)

	out, err := orchestrator.Run(r.Context(), sc)
	if err != nil {
		fmt.Printf("[VALUATION] Rejected: %v\n", err)
		WriteValuationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

type sensitivityRequest struct {
	ValuationRequest
	Steps int     `json:"steps"`
	Delta float64 `json:"delta"`
}

type sensitivityResponse struct {
	Scenario scenario.Scenario              `json:"scenario"`
	Table    corevaluation.SensitivityTable `json:"table"`
}

// HandleSensitivity recomputes the valuation over a grid of discount and
// terminal-growth rates around the requested base case.
func HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Steps <= 0 {
		req.Steps = 2
	}
	if req.Delta <= 0 {
		req.Delta = 0.01
	}

	sc := req.ToScenario()
	out, err := orchestrator.Run(r.Context(), sc)
	if err != nil {
		WriteValuationError(w, err)
		return
	}

	table := corevaluation.Sensitivity(out.CashFlows, sc.DiscountRate, sc.TerminalGrowth, sc.Years, req.Steps, req.Delta)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sensitivityResponse{Scenario: out.Scenario, Table: table})
}

// HandleRuns returns recently saved valuation runs.
func HandleRuns(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if orchestrator.Runs == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
		return
	}

	runs, err := orchestrator.Runs.Recent(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}
