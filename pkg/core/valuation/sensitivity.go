package valuation

// SensitivityCell is one entry of the two-way sensitivity table. Valid is
// false where the parameter pair violates r > g or produces a non-positive
// total; the Total is zero there.
type SensitivityCell struct {
	DiscountRate   float64 `json:"discount_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`
	Total          float64 `json:"total"`
	Valid          bool    `json:"valid"`
}

// SensitivityTable holds totals across a grid of discount / terminal growth
// rates around a base case. Rows vary the discount rate, columns the
// terminal growth.
type SensitivityTable struct {
	DiscountRates   []float64           `json:"discount_rates"`
	TerminalGrowths []float64           `json:"terminal_growths"`
	Cells           [][]SensitivityCell `json:"cells"`
}

// Sensitivity recomputes the valuation over a +/- spread around the base
// rates. steps is the number of points either side of the base (so the grid
// is (2*steps+1) x (2*steps+1)); delta is the rate increment per step.
func Sensitivity(cashFlows []float64, baseDiscount, baseGrowth float64, years, steps int, delta float64) SensitivityTable {
	if steps < 0 {
		steps = 0
	}
	n := 2*steps + 1
	table := SensitivityTable{
		DiscountRates:   make([]float64, n),
		TerminalGrowths: make([]float64, n),
		Cells:           make([][]SensitivityCell, n),
	}
	for i := 0; i < n; i++ {
		table.DiscountRates[i] = baseDiscount + float64(i-steps)*delta
		table.TerminalGrowths[i] = baseGrowth + float64(i-steps)*delta
	}

	for i, r := range table.DiscountRates {
		row := make([]SensitivityCell, n)
		for j, g := range table.TerminalGrowths {
			cell := SensitivityCell{DiscountRate: r, TerminalGrowth: g}
			if res, err := DiscountedCashFlow(cashFlows, r, g, years); err == nil {
				cell.Total = res.Total
				cell.Valid = true
			}
			row[j] = cell
		}
		table.Cells[i] = row
	}
	return table
}
