package performance

import (
	"math"
	"time"
)

// ResolveAllocations converts the investment into a fixed share count per symbol,
// priced at the symbol's adjusted close on firstDate.
//
// A symbol is excluded when it has no record on firstDate, or the record has no
// adjusted close, or the close is not positive. Every symbol lands in exactly one of
// the two results. Excluded symbols keep the order of symbols.
func ResolveAllocations(ix *DateIndex, firstDate time.Time, symbols []string, investment float64) (map[string]float64, []string) {
	shares := make(map[string]float64, len(symbols))
	excluded := []string{}
	for _, sym := range symbols {
		rec, ok := ix.Lookup(firstDate, sym)
		if !ok || rec.AdjClose == nil || *rec.AdjClose <= 0 {
			excluded = append(excluded, sym)
			continue
		}
		n := investment / *rec.AdjClose
		if n <= 0 || math.IsInf(n, 0) || math.IsNaN(n) {
			excluded = append(excluded, sym)
			continue
		}
		shares[sym] = n
	}
	return shares, excluded
}
