package config

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dcf_valuation/pkg/core/agent"
	"dcf_valuation/pkg/core/scenario"
)

// Handler serves UI configuration: form defaults, named presets, and the
// active LLM provider.
type Handler struct {
	agentManager *agent.Manager
	presets      []scenario.Preset
}

func NewHandler(mgr *agent.Manager, presets []scenario.Preset) *Handler {
	if len(presets) == 0 {
		presets = scenario.BuiltinPresets()
	}
	return &Handler{agentManager: mgr, presets: presets}
}

type configResponse struct {
	Defaults         scenario.Scenario `json:"defaults"`
	Presets          []scenario.Preset `json:"presets"`
	MaxYears         int               `json:"max_years"`
	ActiveProvider   string            `json:"active_provider,omitempty"`
	FallbackCashFlow float64           `json:"fallback_initial_cash_flow"`
}

// HandleConfig returns the form defaults and presets.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := configResponse{
		Defaults:         scenario.Defaults(),
		Presets:          h.presets,
		MaxYears:         scenario.MaxYears,
		FallbackCashFlow: scenario.FallbackInitialCashFlow,
	}
	if h.agentManager != nil {
		resp.ActiveProvider = h.agentManager.GetActiveProvider()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleSwitch changes the active LLM provider at runtime.
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.agentManager == nil {
		http.Error(w, "no agent manager configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.agentManager.SetGlobalProvider(req.Provider); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"active_provider": %q}`, req.Provider)
}
