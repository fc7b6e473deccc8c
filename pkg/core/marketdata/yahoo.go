package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dcf_valuation/pkg/core/utils"
)

// UserAgent sent on every provider request. Quote endpoints reject the Go
// default agent.
const UserAgent = "dcf-valuation/1.0 (research tool)"

const defaultQuoteBase = "https://query1.finance.yahoo.com"

// YahooProvider fetches price, market cap, and cash-flow history from a
// Yahoo-style quoteSummary endpoint.
type YahooProvider struct {
	BaseURL string
	Client  *http.Client
}

var _ Provider = (*YahooProvider)(nil)

// NewYahooProvider creates a provider against the public endpoint. Pass a
// different base URL for tests or a caching proxy.
func NewYahooProvider(baseURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = defaultQuoteBase
	}
	return &YahooProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// rawValue is the {"raw": 123.4, "fmt": "123.40"} wrapper the endpoint puts
// around every numeric field.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				MarketCap          rawValue `json:"marketCap"`
				Currency           string   `json:"currency"`
			} `json:"price"`
			CashflowStatementHistory struct {
				CashflowStatements []map[string]rawValue `json:"cashflowStatements"`
			} `json:"cashflowStatementHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Fetch implements Provider.
func (p *YahooProvider) Fetch(ctx context.Context, ticker string) (*MarketData, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,cashflowStatementHistory",
		p.BaseURL, url.PathEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "quote", Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "quote", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Ticker: ticker, Stage: "quote", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "quote", Err: err}
	}

	// The endpoint occasionally serves sloppy payloads; SmartParse falls
	// back to repaired JSON before giving up.
	var envelope quoteSummaryEnvelope
	if _, err := utils.SmartParse(string(body), &envelope); err != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "decode", Err: err}
	}
	if e := envelope.QuoteSummary.Error; e != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "quote", Err: fmt.Errorf("%s: %s", e.Code, e.Description)}
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, &FetchError{Ticker: ticker, Stage: "decode", Err: fmt.Errorf("empty result set")}
	}

	result := envelope.QuoteSummary.Result[0]
	data := &MarketData{
		Ticker:   ticker,
		Currency: result.Price.Currency,
		AsOf:     time.Now().UTC(),
	}
	data.Price = result.Price.RegularMarketPrice.Raw
	data.MarketCap = result.Price.MarketCap.Raw

	// Flatten statement history into labeled rows, most recent period first.
	rowValues := map[string][]float64{}
	var order []string
	for _, period := range result.CashflowStatementHistory.CashflowStatements {
		for label, v := range period {
			if v.Raw == nil {
				continue
			}
			if _, seen := rowValues[label]; !seen {
				order = append(order, label)
			}
			rowValues[label] = append(rowValues[label], *v.Raw)
		}
	}
	for _, label := range order {
		data.CashFlowRows = append(data.CashFlowRows, CashFlowRow{Label: label, Values: rowValues[label]})
	}

	return data, nil
}
