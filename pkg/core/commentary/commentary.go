// Package commentary generates an optional LLM narrative for a completed
// valuation. Failures here never fail the valuation path: callers log and
// move on with an empty commentary.
package commentary

import (
	"context"
	"fmt"
	"strings"

	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/core/valuation"
)

// Commentary is the structured narrative the model returns.
type Commentary struct {
	Summary string   `json:"summary"`
	Risks   []string `json:"risks"`
	Verdict string   `json:"verdict"` // e.g. "undervalued", "overvalued", "fairly valued", "inconclusive"
}

const systemPrompt = `You are a sell-side equity analyst. Given DCF valuation figures,
respond with a JSON object: {"summary": string, "risks": [string], "verdict": string}.
The verdict is one of "undervalued", "overvalued", "fairly valued", "inconclusive".
Be terse and numeric. Do not restate the formula.`

// Generate asks the provider for a narrative and parses it leniently (the
// models do not always emit strict JSON).
func Generate(ctx context.Context, provider llm.Provider, sc scenario.Scenario, res valuation.DCFResult, price, fairValue *float64) (*Commentary, error) {
	if provider == nil {
		return nil, fmt.Errorf("no commentary provider configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\n", sc.Ticker)
	fmt.Fprintf(&b, "Discount rate: %.4f, terminal growth: %.4f, horizon: %d years\n", sc.DiscountRate, sc.TerminalGrowth, sc.Years)
	fmt.Fprintf(&b, "PV of explicit projection: %.2f\n", res.PVExplicit)
	fmt.Fprintf(&b, "PV of terminal value: %.2f\n", res.PVTerminal)
	fmt.Fprintf(&b, "Total intrinsic value: %.2f\n", res.Total)
	if price != nil {
		fmt.Fprintf(&b, "Current share price: %.2f\n", *price)
	}
	if fairValue != nil {
		fmt.Fprintf(&b, "Implied fair value per share: %.2f\n", *fairValue)
	}

	raw, err := provider.GenerateResponse(ctx, b.String(), systemPrompt, map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("commentary generation failed: %w", err)
	}

	var c Commentary
	if _, err := utils.SmartParse(raw, &c); err != nil {
		return nil, fmt.Errorf("commentary parse failed: %w", err)
	}
	if c.Summary == "" {
		return nil, fmt.Errorf("commentary response had no summary")
	}
	return &c, nil
}

// Markdown formats the commentary for embedding in the report.
func (c *Commentary) Markdown() string {
	var b strings.Builder
	b.WriteString(c.Summary)
	if len(c.Risks) > 0 {
		b.WriteString("\n\nKey risks:\n")
		for _, r := range c.Risks {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	if c.Verdict != "" {
		fmt.Fprintf(&b, "\nVerdict: **%s**", c.Verdict)
	}
	return strings.TrimSpace(b.String())
}
