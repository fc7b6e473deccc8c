package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dcf_valuation/pkg/core/marketdata"
	"dcf_valuation/pkg/core/pipeline"
)

type stubProvider struct{}

func (s *stubProvider) Fetch(_ context.Context, ticker string) (*marketdata.MarketData, error) {
	price := 10.0
	cap := 5000.0
	return &marketdata.MarketData{
		Ticker:    ticker,
		Currency:  "USD",
		Price:     &price,
		MarketCap: &cap,
		CashFlowRows: []marketdata.CashFlowRow{
			{Label: "operatingCashFlow", Values: []float64{100.0}},
		},
	}, nil
}

func TestHandleValuationReport(t *testing.T) {
	InitHandler(&pipeline.Orchestrator{Provider: &stubProvider{}}, nil)

	body := `{"ticker": "AAPL", "growth_rate": 0.05, "discount_rate": 0.10, "terminal_growth": 0.02, "years": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/valuation/report", strings.NewReader(body))
	rec := httptest.NewRecorder()

	HandleValuationReport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if !strings.Contains(resp.Markdown, "# DCF Valuation — AAPL") {
		t.Error("markdown report missing title")
	}
	if !strings.Contains(resp.Markdown, "Fair value per share") {
		t.Error("markdown report missing per-share figure")
	}
	if !strings.Contains(resp.HTML, "<h1") {
		t.Error("HTML report not rendered")
	}
}

func TestHandleValuationReport_InvalidParameters(t *testing.T) {
	InitHandler(&pipeline.Orchestrator{Provider: &stubProvider{}}, nil)

	body := `{"ticker": "AAPL", "discount_rate": 0.02, "terminal_growth": 0.02, "years": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/valuation/report", strings.NewReader(body))
	rec := httptest.NewRecorder()

	HandleValuationReport(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
