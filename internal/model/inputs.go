package model

import "time"

// PortfolioInputs is the canonical "inputs to the system" object: the fetched market
// data plus the hypothetical portfolio it will be valued against.
type PortfolioInputs struct {
	MarketData MarketstackEODResponse
	Symbols    []string
	Investment float64
	DateFrom   time.Time
	DateTo     time.Time
}
