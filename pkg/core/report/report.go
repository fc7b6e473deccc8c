// Package report renders a valuation outcome as Markdown and HTML for the
// front end. The formula line and section order follow the dashboard this
// service feeds.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/valuation"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// md renders the report markdown. GFM is required for the pipe tables.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Input bundles everything a report shows. Optional figures are pointers:
// nil means "omit the section", never "print zero".
type Input struct {
	Scenario          scenario.Scenario
	CashFlows         []float64
	CashFlowSource    string // provider | fallback | manual
	Result            valuation.DCFResult
	Price             *float64
	MarketCap         *float64
	FairValuePerShare *float64
	Currency          string
	Commentary        string // optional LLM narrative, already cleaned
	Warnings          []string
}

// Markdown builds the full valuation report.
func Markdown(in Input) string {
	var b strings.Builder

	ticker := in.Scenario.Ticker
	if ticker == "" {
		ticker = "N/A"
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	fmt.Fprintf(&b, "# DCF Valuation — %s\n\n", ticker)

	for _, w := range in.Warnings {
		fmt.Fprintf(&b, "> ⚠ %s\n\n", w)
	}

	b.WriteString("## Inputs\n\n")
	fmt.Fprintf(&b, "| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Initial cash flow (%s) | %.2f |\n", in.CashFlowSource, in.Scenario.InitialCashFlow)
	fmt.Fprintf(&b, "| Annual growth rate | %.2f%% |\n", in.Scenario.GrowthRate*100)
	fmt.Fprintf(&b, "| Discount rate | %.2f%% |\n", in.Scenario.DiscountRate*100)
	fmt.Fprintf(&b, "| Terminal growth rate | %.2f%% |\n", in.Scenario.TerminalGrowth*100)
	fmt.Fprintf(&b, "| Projection years | %d |\n\n", in.Scenario.Years)

	b.WriteString("## Projected Cash Flows\n\n")
	b.WriteString("| Year | Cash Flow | Discount Factor | Present Value |\n|---|---|---|---|\n")
	for i, cf := range in.CashFlows {
		df := 0.0
		if i < len(in.Result.DiscountFactors) {
			df = in.Result.DiscountFactors[i]
		}
		fmt.Fprintf(&b, "| %d | %.2f | %.4f | %.2f |\n", i+1, cf, df, cf*df)
	}
	b.WriteString("\n")

	b.WriteString("## Valuation\n\n")
	fmt.Fprintf(&b, "- PV of explicit projection: **%.2f**\n", in.Result.PVExplicit)
	fmt.Fprintf(&b, "- Terminal value (Gordon growth): %.2f\n", in.Result.TerminalValue)
	fmt.Fprintf(&b, "- PV of terminal value: **%.2f**\n", in.Result.PVTerminal)
	fmt.Fprintf(&b, "- **Intrinsic Value (Total): %.2f %s million**\n\n", in.Result.Total, currency)

	if in.Price != nil || in.MarketCap != nil || in.FairValuePerShare != nil {
		b.WriteString("## Market Comparison\n\n")
		if in.Price != nil {
			fmt.Fprintf(&b, "- Current price: %.2f %s\n", *in.Price, currency)
		}
		if in.MarketCap != nil {
			fmt.Fprintf(&b, "- Market capitalization: %.0f %s\n", *in.MarketCap, currency)
		}
		if in.FairValuePerShare != nil {
			fmt.Fprintf(&b, "- **Fair value per share: %.2f %s**\n", *in.FairValuePerShare, currency)
		}
		b.WriteString("\n")
	}

	if in.Commentary != "" {
		b.WriteString("## Commentary\n\n")
		b.WriteString(in.Commentary)
		b.WriteString("\n\n")
	}

	b.WriteString("**Formula Used:** DCF = Sum(PV of future cash flows) + PV of terminal value\n")
	return b.String()
}

// RenderHTML converts a markdown report to HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown render failed: %w", err)
	}
	return buf.String(), nil
}

// ValidateMarkdown reports whether the input parses as markdown. LLM output
// passes through here before it is embedded in a report.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	doc := parser.Parse(text.NewReader([]byte(input)))
	return doc != nil
}

// CleanMarkdown strips conversational filler and outer code fences from LLM
// output so it embeds cleanly in the report.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}
