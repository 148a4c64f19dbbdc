package performance

import (
	"sort"
	"time"
)

// DateIndex maps calendar date -> symbol -> record for one request's date range.
// Dates are kept in ascending order. It is not modified after Align returns.
type DateIndex struct {
	dates  []time.Time
	byDate map[time.Time]map[string]NormalizedRecord
}

// Dates returns the indexed dates in ascending order.
func (ix *DateIndex) Dates() []time.Time {
	out := make([]time.Time, len(ix.dates))
	copy(out, ix.dates)
	return out
}

// Len is the number of distinct dates.
func (ix *DateIndex) Len() int {
	return len(ix.dates)
}

// Lookup returns the record for symbol on date, if any.
func (ix *DateIndex) Lookup(date time.Time, symbol string) (NormalizedRecord, bool) {
	day, ok := ix.byDate[date]
	if !ok {
		return NormalizedRecord{}, false
	}
	rec, ok := day[symbol]
	return rec, ok
}

// First returns the earliest indexed date. ok is false for an empty index.
func (ix *DateIndex) First() (time.Time, bool) {
	if len(ix.dates) == 0 {
		return time.Time{}, false
	}
	return ix.dates[0], true
}

// Align builds the date index for records falling in [from, to] (both inclusive).
// Records are visited in ascending date order with ties kept in input order, so when
// one symbol has two records on the same date the later one wins.
func Align(records []NormalizedRecord, from, to time.Time) *DateIndex {
	sorted := make([]NormalizedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	ix := &DateIndex{byDate: map[time.Time]map[string]NormalizedRecord{}}
	for _, r := range sorted {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		day, ok := ix.byDate[r.Date]
		if !ok {
			day = map[string]NormalizedRecord{}
			ix.byDate[r.Date] = day
			ix.dates = append(ix.dates, r.Date)
		}
		day[r.Symbol] = r
	}
	return ix
}
