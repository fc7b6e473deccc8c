package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const quoteSummaryFixture = `{
  "quoteSummary": {
    "result": [{
      "price": {
        "regularMarketPrice": {"raw": 189.84, "fmt": "189.84"},
        "marketCap": {"raw": 2950000000000, "fmt": "2.95T"},
        "currency": "USD"
      },
      "cashflowStatementHistory": {
        "cashflowStatements": [
          {
            "netCashProvidedByOperatingActivities": {"raw": 118254000000},
            "capitalExpenditures": {"raw": -10959000000}
          },
          {
            "netCashProvidedByOperatingActivities": {"raw": 110543000000},
            "capitalExpenditures": {"raw": -10708000000}
          }
        ]
      }
    }],
    "error": null
  }
}`

func TestYahooProvider_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v10/finance/quoteSummary/AAPL" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("missing provider user agent, got %q", r.Header.Get("User-Agent"))
		}
		fmt.Fprint(w, quoteSummaryFixture)
	}))
	defer srv.Close()

	provider := NewYahooProvider(srv.URL)
	data, err := provider.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if data.Price == nil || *data.Price != 189.84 {
		t.Errorf("unexpected price: %v", data.Price)
	}
	if data.MarketCap == nil || *data.MarketCap != 2.95e12 {
		t.Errorf("unexpected market cap: %v", data.MarketCap)
	}
	if data.Currency != "USD" {
		t.Errorf("unexpected currency: %q", data.Currency)
	}

	cf, ok := SelectOperatingCashFlow(data.CashFlowRows)
	if !ok {
		t.Fatalf("no operating cash flow selected from rows: %v", data.CashFlowRows)
	}
	if cf != 118254000000 {
		t.Errorf("got %v, want most recent period first", cf)
	}
}

func TestYahooProvider_TolerantDecode(t *testing.T) {
	// Trailing comma: invalid JSON that the repair pass fixes up.
	sloppy := `{"quoteSummary": {"result": [{"price": {"regularMarketPrice": {"raw": 42.0}, "currency": "USD",}}], "error": null}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sloppy)
	}))
	defer srv.Close()

	provider := NewYahooProvider(srv.URL)
	data, err := provider.Fetch(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("Fetch failed on repairable payload: %v", err)
	}
	if data.Price == nil || *data.Price != 42.0 {
		t.Errorf("unexpected price: %v", data.Price)
	}
	if data.MarketCap != nil {
		t.Error("market cap should stay nil when absent")
	}
}

func TestYahooProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary": {"result": [], "error": {"code": "Not Found", "description": "No data found"}}}`)
	}))
	defer srv.Close()

	provider := NewYahooProvider(srv.URL)
	_, err := provider.Fetch(context.Background(), "NOPE")
	fe, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %T (%v)", err, err)
	}
	if fe.Ticker != "NOPE" {
		t.Errorf("unexpected ticker in error: %q", fe.Ticker)
	}
}

func TestYahooProvider_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	provider := NewYahooProvider(srv.URL)
	if _, err := provider.Fetch(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error on 429")
	}
}
