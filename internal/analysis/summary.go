package analysis

import (
	"math"
	"sort"
	"time"

	"stock-compare/internal/performance"
)

// PositionSummary is a symbol-level summary of one valuation series, suitable for
// ranking symbols against each other over the same window.
// Zero-valued points (no usable price that day) are skipped for the statistics.
type PositionSummary struct {
	Symbol string
	Shares float64

	Start time.Time
	End   time.Time

	Count int

	InitialValue float64
	FinalValue   float64

	MinValue  float64
	MaxValue  float64
	MeanValue float64
	P05Value  float64
	P95Value  float64

	// ReturnPct is (final - initial) / initial * 100, rounded to 2 places.
	ReturnPct float64

	// MaxDrawdownPct is the largest peak-to-trough decline seen in the series, in percent.
	MaxDrawdownPct float64
}

// Summarize computes a PositionSummary for one symbol's series.
func Summarize(symbol string, shares float64, series []performance.ValuationPoint) PositionSummary {
	s := PositionSummary{Symbol: symbol, Shares: shares}
	vals := make([]float64, 0, len(series))
	for _, p := range series {
		if p.Value > 0 {
			vals = append(vals, p.Value)
		}
	}
	if len(series) == 0 || len(vals) == 0 {
		return s
	}
	s.Start = series[0].Date
	s.End = series[len(series)-1].Date
	s.Count = len(vals)
	s.InitialValue = vals[0]
	s.FinalValue = vals[len(vals)-1]

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	peak := 0.0
	drawdown := 0.0
	for _, v := range vals {
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
		if v > peak {
			peak = v
		}
		if dd := (peak - v) / peak; dd > drawdown {
			drawdown = dd
		}
	}
	s.MinValue = minv
	s.MaxValue = maxv
	s.MeanValue = performance.Round2(sum / float64(len(vals)))

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.P05Value = performance.Round2(percentileSorted(sorted, 0.05))
	s.P95Value = performance.Round2(percentileSorted(sorted, 0.95))

	s.ReturnPct = performance.Round2((s.FinalValue - s.InitialValue) / s.InitialValue * 100)
	s.MaxDrawdownPct = performance.Round2(drawdown * 100)
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// AggregatePoint is the total portfolio value on one date.
type AggregatePoint struct {
	Date  time.Time
	Value float64
}

// AggregateSeries sums every valued symbol per date. All series in a Result share
// the same date axis, so index i lines up across symbols.
func AggregateSeries(res *performance.Result) []AggregatePoint {
	var out []AggregatePoint
	for _, series := range res.Performance {
		if out == nil {
			out = make([]AggregatePoint, len(series))
			for i, p := range series {
				out[i].Date = p.Date
			}
		}
		for i, p := range series {
			out[i].Value += p.Value
		}
	}
	for i := range out {
		out[i].Value = performance.Round2(out[i].Value)
	}
	return out
}
