package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StatementScraper is the fallback collaborator for tickers the JSON
// endpoint does not cover: it scrapes a cash-flow statement table out of an
// HTML financials page. It supplies rows only; price and market cap stay nil
// and the per-share figure degrades away downstream.
type StatementScraper struct {
	BaseURL string
	Client  *http.Client
}

var _ Provider = (*StatementScraper)(nil)

func NewStatementScraper(baseURL string) *StatementScraper {
	return &StatementScraper{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 20 * time.Second},
	}
}

// Fetch implements Provider.
func (s *StatementScraper) Fetch(ctx context.Context, ticker string) (*MarketData, error) {
	endpoint := fmt.Sprintf("%s/financials/%s/cash-flow", s.BaseURL, strings.ToLower(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "statement", Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "statement", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Ticker: ticker, Stage: "statement", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "statement", Err: err}
	}

	rows, err := ParseStatementHTML(string(body))
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Stage: "decode", Err: err}
	}
	if len(rows) == 0 {
		return nil, &FetchError{Ticker: ticker, Stage: "decode", Err: fmt.Errorf("no statement rows found")}
	}

	return &MarketData{
		Ticker:       ticker,
		CashFlowRows: rows,
		AsOf:         time.Now().UTC(),
	}, nil
}

// ParseStatementHTML extracts labeled numeric rows from every table in the
// document. A row qualifies when its first cell is a non-empty label and at
// least one later cell parses as a number.
func ParseStatementHTML(html string) ([]CashFlowRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var rows []CashFlowRow
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() < 2 {
			return
		}

		label := strings.TrimSpace(cells.First().Text())
		if label == "" {
			return
		}

		var values []float64
		cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
			if v, ok := parseStatementNumber(cell.Text()); ok {
				values = append(values, v)
			}
		})
		if len(values) == 0 {
			return
		}
		rows = append(rows, CashFlowRow{Label: label, Values: values})
	})

	return rows, nil
}

// parseStatementNumber handles the usual table formats: thousands
// separators, parenthesized negatives, currency signs, dash for absent.
func parseStatementNumber(text string) (float64, bool) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" || cleaned == "-" || cleaned == "—" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSpace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}
