package performance

import (
	"strings"
	"time"

	"stock-compare/internal/model"
)

// DateLayout is the calendar date format used for upstream dates and request bounds.
const DateLayout = "2006-01-02"

// NormalizedRecord is an EOD record reduced to a calendar date.
type NormalizedRecord struct {
	Symbol   string
	Date     time.Time
	AdjClose *float64
}

// ParseDate parses a calendar date, ignoring anything after the first time separator
// ("2024-01-02T00:00:00+0000" and "2024-01-02 00:00:00" both yield 2024-01-02 UTC).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	return time.Parse(DateLayout, s)
}

// NormalizeRecord converts one raw record. ok is false when the date cannot be parsed.
func NormalizeRecord(r model.EODRecord) (NormalizedRecord, bool) {
	d, err := ParseDate(r.Date)
	if err != nil {
		return NormalizedRecord{}, false
	}
	return NormalizedRecord{
		Symbol:   normalizeSymbol(r.Symbol),
		Date:     d,
		AdjClose: r.AdjClose,
	}, true
}

// NormalizeRecords keeps every record whose date parses and silently drops the rest.
// Upstream data is expected to be noisy; dropped records are never reported.
// Input order is preserved.
func NormalizeRecords(raw []model.EODRecord) []NormalizedRecord {
	out := make([]NormalizedRecord, 0, len(raw))
	for _, r := range raw {
		if n, ok := NormalizeRecord(r); ok {
			out = append(out, n)
		}
	}
	return out
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
