package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const statementFixture = `
<html><body>
<h2>Cash Flow Statement</h2>
<table>
  <tr><th>Breakdown</th><th>FY2024</th><th>FY2023</th></tr>
  <tr><td>Operating Cash Flow</td><td>118,254</td><td>110,543</td></tr>
  <tr><td>Capital Expenditure</td><td>(10,959)</td><td>(10,708)</td></tr>
  <tr><td>Free Cash Flow</td><td>$107,295</td><td>$99,835</td></tr>
  <tr><td>End Cash Position</td><td>—</td><td>30,737</td></tr>
</table>
</body></html>`

func TestParseStatementHTML(t *testing.T) {
	rows, err := ParseStatementHTML(statementFixture)
	if err != nil {
		t.Fatalf("ParseStatementHTML failed: %v", err)
	}

	byLabel := map[string]CashFlowRow{}
	for _, r := range rows {
		byLabel[r.Label] = r
	}

	ocf, ok := byLabel["Operating Cash Flow"]
	if !ok {
		t.Fatalf("missing Operating Cash Flow row, got %v", rows)
	}
	if len(ocf.Values) != 2 || ocf.Values[0] != 118254 || ocf.Values[1] != 110543 {
		t.Errorf("unexpected values: %v", ocf.Values)
	}

	capex := byLabel["Capital Expenditure"]
	if len(capex.Values) != 2 || capex.Values[0] != -10959 {
		t.Errorf("parenthesized negative not handled: %v", capex.Values)
	}

	fcf := byLabel["Free Cash Flow"]
	if len(fcf.Values) != 2 || fcf.Values[0] != 107295 {
		t.Errorf("currency prefix not handled: %v", fcf.Values)
	}

	// The em-dash cell is absent data, not zero.
	end := byLabel["End Cash Position"]
	if len(end.Values) != 1 || end.Values[0] != 30737 {
		t.Errorf("dash cell mishandled: %v", end.Values)
	}
}

func TestParseStatementHTML_FeedsSelection(t *testing.T) {
	rows, err := ParseStatementHTML(statementFixture)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := SelectOperatingCashFlow(rows)
	if !ok || got != 118254 {
		t.Errorf("got %v (ok=%v), want 118254", got, ok)
	}
}

func TestStatementScraper_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/financials/aapl/cash-flow" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(statementFixture))
	}))
	defer srv.Close()

	scraper := NewStatementScraper(srv.URL)
	data, err := scraper.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if data.Price != nil || data.MarketCap != nil {
		t.Error("scraper must not invent price or market cap")
	}
	if _, ok := SelectOperatingCashFlow(data.CashFlowRows); !ok {
		t.Error("scraped rows did not yield an operating cash flow")
	}
}

func TestStatementScraper_FetchErrorOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	scraper := NewStatementScraper(srv.URL)
	_, err := scraper.Fetch(context.Background(), "AAPL")
	fe, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %T (%v)", err, err)
	}
	if fe.Ticker != "AAPL" || fe.Stage != "statement" {
		t.Errorf("unexpected FetchError fields: %+v", fe)
	}
}
