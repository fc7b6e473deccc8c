package marketdata

import "strings"

// operatingCashFlowPriority is the authoritative order in which labeled
// cash-flow rows are considered. This replaces the old substring scan for
// "Operating"/"Cash", which broke across data vintages and locales: only an
// exact (normalized) label from this list is accepted, highest priority
// first.
var operatingCashFlowPriority = []string{
	"operatingcashflow",
	"netcashprovidedbyoperatingactivities",
	"cashflowfromcontinuingoperatingactivities",
	"totalcashfromoperatingactivities",
	"freecashflow",
}

// normalizeLabel collapses a human label to a comparable key: lowercase,
// letters and digits only.
func normalizeLabel(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SelectOperatingCashFlow picks the initial cash-flow figure from a set of
// statement rows using the enumerated priority list. The most recent value
// of the highest-priority matching row wins. Returns false when no listed
// line item is present or the matching row is empty.
func SelectOperatingCashFlow(rows []CashFlowRow) (float64, bool) {
	byLabel := make(map[string]CashFlowRow, len(rows))
	for _, row := range rows {
		key := normalizeLabel(row.Label)
		if _, seen := byLabel[key]; !seen {
			byLabel[key] = row
		}
	}

	for _, want := range operatingCashFlowPriority {
		if row, ok := byLabel[want]; ok && len(row.Values) > 0 {
			return row.Values[0], true
		}
	}
	return 0, false
}
