package analysis

import (
	"sort"

	"stock-compare/internal/performance"
)

// RankByReturn summarizes every valued symbol and sorts descending by ReturnPct.
// Ties are broken by symbol so the order is stable across calls.
func RankByReturn(res *performance.Result) []PositionSummary {
	out := make([]PositionSummary, 0, len(res.Performance))
	for sym, series := range res.Performance {
		out = append(out, Summarize(sym, res.Shares[sym], series))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReturnPct != out[j].ReturnPct {
			return out[i].ReturnPct > out[j].ReturnPct
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
