package models

import "stock-compare/internal/model"

// PerformanceResponse is the serialized portfolio result.
type PerformanceResponse struct {
	MarketData                 []model.EODRecord           `json:"market_data"`
	IndividualStockPerformance map[string][]ValuationPoint `json:"individual_stock_performance"`
	ExcludedSymbols            []string                    `json:"excluded_symbols"`
	InitialShares              map[string]float64          `json:"initial_shares"`
	FirstValidDate             string                      `json:"first_valid_date,omitempty"`
	Summary                    []PositionSummary           `json:"summary,omitempty"`
}

// ValuationPoint is one {date, value} entry of a symbol's series.
type ValuationPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// PositionSummary contains per-symbol statistics over the window
type PositionSummary struct {
	Symbol         string  `json:"symbol"`
	Shares         float64 `json:"shares"`
	StartDate      string  `json:"start_date,omitempty"`
	EndDate        string  `json:"end_date,omitempty"`
	Count          int     `json:"count"`
	InitialValue   float64 `json:"initial_value"`
	FinalValue     float64 `json:"final_value"`
	MinValue       float64 `json:"min_value"`
	MaxValue       float64 `json:"max_value"`
	MeanValue      float64 `json:"mean_value"`
	P05Value       float64 `json:"p05_value"`
	P95Value       float64 `json:"p95_value"`
	ReturnPct      float64 `json:"return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
}

// RankResponse represents the response from ranking symbols
type RankResponse struct {
	Rankings        []Ranking        `json:"rankings"`
	Portfolio       []ValuationPoint `json:"portfolio"`
	ExcludedSymbols []string         `json:"excluded_symbols"`
}

// Ranking represents one ranked symbol
type Ranking struct {
	Rank int `json:"rank"`
	PositionSummary
}

// SymbolInfo represents one catalog entry
type SymbolInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
