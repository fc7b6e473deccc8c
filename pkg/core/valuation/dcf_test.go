package valuation

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(t *testing.T, got, want, relTol float64, label string) {
	t.Helper()
	if want == 0 {
		if math.Abs(got) > relTol {
			t.Errorf("%s: got %v, want 0", label, got)
		}
		return
	}
	if math.Abs(got-want)/math.Abs(want) > relTol {
		t.Errorf("%s: got %v, want %v", label, got, want)
	}
}

func TestDiscountedCashFlow_ReferenceCase(t *testing.T) {
	// 100.0 compounded at 5% for five years.
	cashFlows := []float64{105, 110.25, 115.76, 121.55, 127.63}

	res, err := DiscountedCashFlow(cashFlows, 0.10, 0.02, 5)
	if err != nil {
		t.Fatalf("DiscountedCashFlow failed: %v", err)
	}

	// Double-precision reference values for this exact input.
	almostEqual(t, res.PVExplicit, 435.8109232479151, 1e-6, "PVExplicit")
	almostEqual(t, res.TerminalValue, 1627.2825, 1e-6, "TerminalValue")
	almostEqual(t, res.PVTerminal, 1010.4144028910093, 1e-6, "PVTerminal")
	almostEqual(t, res.Total, 1446.2253261389244, 1e-6, "Total")

	if len(res.DiscountFactors) != 5 {
		t.Fatalf("expected 5 discount factors, got %d", len(res.DiscountFactors))
	}
	almostEqual(t, res.DiscountFactors[0], 1.0/1.1, 1e-9, "DiscountFactors[0]")
	almostEqual(t, res.DiscountFactors[4], math.Pow(1.1, -5), 1e-9, "DiscountFactors[4]")
}

func TestDiscountedCashFlow_SingleYearBoundary(t *testing.T) {
	// years=1 reduces to one discounted cash flow plus a once-discounted
	// terminal value: 100/1.1 + (100*1.02/0.08)/1.1 = 1250 exactly.
	res, err := DiscountedCashFlow([]float64{100}, 0.10, 0.02, 1)
	if err != nil {
		t.Fatalf("DiscountedCashFlow failed: %v", err)
	}
	almostEqual(t, res.Total, 1250.0, 1e-9, "Total")
}

func TestDiscountedCashFlow_InvalidParameters(t *testing.T) {
	cases := []struct {
		name      string
		cashFlows []float64
		r, g      float64
		years     int
	}{
		{"rate equals growth", []float64{100, 105, 110}, 0.02, 0.02, 3},
		{"rate below growth", []float64{100, 105, 110}, 0.01, 0.02, 3},
		{"negative cash flows still invalid", []float64{-100, -105}, 0.02, 0.02, 2},
		{"zero years", []float64{100}, 0.10, 0.02, 0},
		{"short projection", []float64{100, 105}, 0.10, 0.02, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DiscountedCashFlow(tc.cashFlows, tc.r, tc.g, tc.years)
			if !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("expected ErrInvalidParameters, got %v", err)
			}
		})
	}
}

func TestDiscountedCashFlow_NonPositiveResult(t *testing.T) {
	_, err := DiscountedCashFlow([]float64{-100, -105, -110}, 0.10, 0.02, 3)
	if !errors.Is(err, ErrNonPositiveResult) {
		t.Errorf("expected ErrNonPositiveResult, got %v", err)
	}
}

func TestDiscountedCashFlow_PositiveFlowsYieldPositiveFiniteTotal(t *testing.T) {
	grids := []struct {
		r, g  float64
		years int
	}{
		{0.05, 0.01, 3},
		{0.10, 0.02, 5},
		{0.15, 0.03, 10},
		{0.08, 0.0, 7},
	}
	for _, p := range grids {
		cashFlows := make([]float64, p.years)
		for i := range cashFlows {
			cashFlows[i] = 50.0 * float64(i+1)
		}
		res, err := DiscountedCashFlow(cashFlows, p.r, p.g, p.years)
		if err != nil {
			t.Fatalf("r=%v g=%v years=%d: %v", p.r, p.g, p.years, err)
		}
		if res.Total <= 0 || math.IsInf(res.Total, 0) || math.IsNaN(res.Total) {
			t.Errorf("r=%v g=%v years=%d: total %v not finite positive", p.r, p.g, p.years, res.Total)
		}
	}
}

func TestDiscountedCashFlow_MonotoneInDiscountRate(t *testing.T) {
	cashFlows := []float64{105, 110.25, 115.76, 121.55, 127.63}
	prev := math.Inf(1)
	for _, r := range []float64{0.06, 0.08, 0.10, 0.12, 0.15} {
		res, err := DiscountedCashFlow(cashFlows, r, 0.02, 5)
		if err != nil {
			t.Fatalf("r=%v: %v", r, err)
		}
		if res.Total >= prev {
			t.Errorf("total did not strictly decrease at r=%v: %v >= %v", r, res.Total, prev)
		}
		prev = res.Total
	}
}

func TestDiscountedCashFlow_MonotoneInCashFlows(t *testing.T) {
	base := []float64{105, 110.25, 115.76, 121.55, 127.63}
	baseRes, err := DiscountedCashFlow(base, 0.10, 0.02, 5)
	if err != nil {
		t.Fatalf("base case failed: %v", err)
	}

	for i := range base {
		bumped := append([]float64(nil), base...)
		bumped[i] += 10.0
		res, err := DiscountedCashFlow(bumped, 0.10, 0.02, 5)
		if err != nil {
			t.Fatalf("bumped year %d failed: %v", i+1, err)
		}
		if res.Total <= baseRes.Total {
			t.Errorf("bumping year %d cash flow did not increase total: %v <= %v", i+1, res.Total, baseRes.Total)
		}
	}
}

func TestDiscountedCashFlow_IgnoresEntriesBeyondHorizon(t *testing.T) {
	short := []float64{105, 110.25, 115.76}
	long := []float64{105, 110.25, 115.76, 9999, -9999}

	a, err := DiscountedCashFlow(short, 0.10, 0.02, 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DiscountedCashFlow(long, 0.10, 0.02, 3)
	if err != nil {
		t.Fatal(err)
	}
	if a.Total != b.Total {
		t.Errorf("entries beyond the horizon changed the result: %v != %v", a.Total, b.Total)
	}
}

func TestFairValuePerShare(t *testing.T) {
	fv, ok := FairValuePerShare(1000, 5000, 10)
	if !ok {
		t.Fatal("expected defined fair value")
	}
	// 5000/10 = 500 shares -> 1000/500 = 2.0
	almostEqual(t, fv, 2.0, 1e-9, "fair value per share")

	for _, tc := range []struct {
		name             string
		marketCap, price float64
	}{
		{"zero market cap", 0, 10},
		{"zero price", 5000, 0},
		{"negative market cap", -5000, 10},
		{"negative price", 5000, -10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := FairValuePerShare(1000, tc.marketCap, tc.price); ok {
				t.Error("expected undefined fair value")
			}
		})
	}
}
