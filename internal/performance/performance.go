// Package performance values a hypothetical buy-and-hold portfolio against historical
// end-of-day prices.
//
// The pipeline is: NormalizeRecords -> Align -> ResolveAllocations -> BuildTrajectories.
// Everything here is pure and operates on already-fetched data.
package performance

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"stock-compare/internal/model"
)

var (
	// ErrNoUsableStartData means in-range data exists but no requested symbol has a
	// valid price on the first valid date.
	ErrNoUsableStartData = errors.New("no usable starting price for any requested symbol")

	// ErrInvalidRequest wraps precondition failures on Request.
	ErrInvalidRequest = errors.New("invalid performance request")
)

// Request holds the validated portfolio parameters.
type Request struct {
	Symbols    []string
	Investment float64
	DateFrom   time.Time
	DateTo     time.Time
}

// Validate checks the boundary preconditions. Symbols are expected to be cleaned already.
func (r Request) Validate() error {
	if len(r.Symbols) == 0 {
		return fmt.Errorf("%w: at least one symbol is required", ErrInvalidRequest)
	}
	if math.IsNaN(r.Investment) || math.IsInf(r.Investment, 0) || r.Investment <= 0 {
		return fmt.Errorf("%w: investment must be a positive number", ErrInvalidRequest)
	}
	if r.DateFrom.IsZero() || r.DateTo.IsZero() {
		return fmt.Errorf("%w: date_from and date_to are required", ErrInvalidRequest)
	}
	if r.DateFrom.After(r.DateTo) {
		return fmt.Errorf("%w: date_from must not be after date_to", ErrInvalidRequest)
	}
	return nil
}

// Result is the outcome of one computation. It is not modified after Compute returns.
type Result struct {
	// MarketData is the raw input, passed through untouched.
	MarketData []model.EODRecord

	Performance map[string][]ValuationPoint
	Excluded    []string
	Shares      map[string]float64

	// FirstValidDate is zero when no record fell in range.
	FirstValidDate time.Time
}

// Symbols returns the valued symbols in request order.
func (r *Result) Symbols(requested []string) []string {
	out := make([]string, 0, len(r.Performance))
	for _, s := range requested {
		if _, ok := r.Performance[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// CleanSymbols trims, upper-cases and de-duplicates symbols, dropping empty entries.
// The first occurrence decides the position.
func CleanSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = normalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Compute values the portfolio described by req against records.
//
// When no record falls in range the result is empty and every symbol is excluded.
// When records exist but no symbol has a usable starting price, ErrNoUsableStartData
// is returned.
func Compute(records []model.EODRecord, req Request) (*Result, error) {
	req.Symbols = CleanSymbols(req.Symbols)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ix := Align(NormalizeRecords(records), req.DateFrom, req.DateTo)

	first, ok := ix.First()
	if !ok {
		excluded := make([]string, len(req.Symbols))
		copy(excluded, req.Symbols)
		return &Result{
			MarketData:  records,
			Performance: map[string][]ValuationPoint{},
			Excluded:    excluded,
			Shares:      map[string]float64{},
		}, nil
	}

	shares, excluded := ResolveAllocations(ix, first, req.Symbols, req.Investment)
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w (first valid date %s)", ErrNoUsableStartData, first.Format(DateLayout))
	}

	return &Result{
		MarketData:     records,
		Performance:    BuildTrajectories(ix, shares, req.Symbols),
		Excluded:       excluded,
		Shares:         shares,
		FirstValidDate: first,
	}, nil
}

// FromInputs runs Compute over a PortfolioInputs bundle.
func FromInputs(in model.PortfolioInputs) (*Result, error) {
	return Compute(in.MarketData.Data, Request{
		Symbols:    in.Symbols,
		Investment: in.Investment,
		DateFrom:   in.DateFrom,
		DateTo:     in.DateTo,
	})
}

// ParseSymbolList splits a comma separated list and cleans it.
func ParseSymbolList(s string) []string {
	return CleanSymbols(strings.Split(s, ","))
}
