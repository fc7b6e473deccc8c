package report

import (
	"encoding/json"
	"fmt"
	"net/http"

	apivaluation "dcf_valuation/pkg/api/valuation"
	"dcf_valuation/pkg/core/agent"
	"dcf_valuation/pkg/core/commentary"
	"dcf_valuation/pkg/core/pipeline"
	corereport "dcf_valuation/pkg/core/report"
)

var (
	orchestrator *pipeline.Orchestrator
	agentManager *agent.Manager
)

// InitHandler wires the orchestrator and the (optional) agent manager used
// for LLM commentary.
func InitHandler(o *pipeline.Orchestrator, mgr *agent.Manager) {
	orchestrator = o
	agentManager = mgr
}

type reportResponse struct {
	Outcome  *pipeline.Outcome `json:"outcome"`
	Markdown string            `json:"markdown"`
	HTML     string            `json:"html"`
}

// HandleValuationReport runs a valuation and renders it as a full report.
// Commentary is attempted when an LLM provider is configured; its failure
// only logs.
func HandleValuationReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req apivaluation.ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sc := req.ToScenario()
	fmt.Printf("[REPORT] Request: %s\n", sc.Ticker)

	out, err := orchestrator.Run(r.Context(), sc)
	if err != nil {
		apivaluation.WriteValuationError(w, err)
		return
	}

	in := corereport.Input{
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

	if agentManager != nil {
		if provider := agentManager.GetProvider("commentary"); provider != nil {
			var price *float64
			if out.Market != nil {
				price = out.Market.Price
			}
			c, err := commentary.Generate(r.Context(), provider, out.Scenario, out.Result, price, out.FairValuePerShare)
			if err != nil {
				fmt.Printf("[REPORT] Commentary skipped: %v\n", err)
			} else if md := corereport.CleanMarkdown(c.Markdown()); corereport.ValidateMarkdown(md) {
				in.Commentary = md
			}
		}
	}

	markdown := corereport.Markdown(in)
	html, err := corereport.RenderHTML(markdown)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reportResponse{
		Outcome:  out,
		Markdown: markdown,
		HTML:     html,
	})
}
