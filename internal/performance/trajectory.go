package performance

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ValuationPoint is the market value of one position on one date.
type ValuationPoint struct {
	Date  time.Time
	Value float64
}

// BuildTrajectories values every allocated symbol on every indexed date.
// A missing record or a null/negative close yields an explicit 0 for that date;
// prior values are never carried forward. order fixes the iteration order of symbols
// and only symbols present in shares are emitted.
func BuildTrajectories(ix *DateIndex, shares map[string]float64, order []string) map[string][]ValuationPoint {
	out := make(map[string][]ValuationPoint, len(shares))
	for _, sym := range order {
		if _, ok := shares[sym]; ok {
			out[sym] = make([]ValuationPoint, 0, ix.Len())
		}
	}

	for _, d := range ix.dates {
		for _, sym := range order {
			n, ok := shares[sym]
			if !ok {
				continue
			}
			value := 0.0
			if rec, found := ix.Lookup(d, sym); found && rec.AdjClose != nil && *rec.AdjClose >= 0 {
				value = Round2(n * *rec.AdjClose)
			}
			out[sym] = append(out[sym], ValuationPoint{Date: d, Value: value})
		}
	}
	return out
}

// Round2 rounds to 2 decimal places, half away from zero, working on the shortest
// decimal representation of v (so 10.005 rounds to 10.01). Non-finite input yields 0.
func Round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
