package commentary

import (
	"context"
	"strings"
	"testing"

	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/valuation"
)

// fakeProvider returns a canned response.
type fakeProvider struct {
	response string
	err      error
	prompt   string
}

func (f *fakeProvider) GenerateResponse(_ context.Context, prompt, _ string, _ map[string]interface{}) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeProvider) AdaptInstructions(raw string) string { return raw }

func TestGenerate_ParsesStrictJSON(t *testing.T) {
	p := &fakeProvider{response: `{"summary": "Total 1446.2 vs cap implies upside.", "risks": ["terminal growth sensitivity"], "verdict": "undervalued"}`}

	sc := scenario.Defaults()
	sc.Ticker = "AAPL"
	res := valuation.DCFResult{Total: 1446.23, PVExplicit: 435.81, PVTerminal: 1010.41}

	c, err := Generate(context.Background(), p, sc, res, nil, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if c.Verdict != "undervalued" || len(c.Risks) != 1 {
		t.Errorf("unexpected commentary: %+v", c)
	}
	if !strings.Contains(p.prompt, "Total intrinsic value: 1446.23") {
		t.Errorf("prompt missing valuation figures: %q", p.prompt)
	}
}

func TestGenerate_RepairsSloppyJSON(t *testing.T) {
	// Code fence plus trailing comma; SmartParse should recover it.
	p := &fakeProvider{response: "```json\n{\"summary\": \"ok\", \"risks\": [], \"verdict\": \"inconclusive\",}\n```"}

	c, err := Generate(context.Background(), p, scenario.Defaults(), valuation.DCFResult{}, nil, nil)
	if err != nil {
		t.Fatalf("Generate failed on repairable output: %v", err)
	}
	if c.Summary != "ok" {
		t.Errorf("unexpected summary: %q", c.Summary)
	}
}

func TestGenerate_NilProvider(t *testing.T) {
	if _, err := Generate(context.Background(), nil, scenario.Defaults(), valuation.DCFResult{}, nil, nil); err == nil {
		t.Fatal("expected error with nil provider")
	}
}

func TestMarkdown(t *testing.T) {
	c := &Commentary{
		Summary: "Upside of 12%.",
		Risks:   []string{"rate sensitivity", "growth fade"},
		Verdict: "undervalued",
	}
	md := c.Markdown()
	for _, want := range []string{"Upside of 12%.", "- rate sensitivity", "Verdict: **undervalued**"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q in %q", want, md)
		}
	}
}
