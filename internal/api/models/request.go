package models

// PerformanceRequest is accepted as query parameters on GET and as a JSON body on POST.
// Symbols may be repeated or comma separated ("symbols=AAPL,MSFT").
type PerformanceRequest struct {
	Symbols        []string `json:"symbols" form:"symbols" binding:"required"`
	Investment     float64  `json:"investment" form:"investment" binding:"required,gt=0"`
	DateFrom       string   `json:"date_from" form:"date_from" binding:"required"` // YYYY-MM-DD
	DateTo         string   `json:"date_to" form:"date_to" binding:"required"`     // YYYY-MM-DD
	IncludeSummary bool     `json:"include_summary" form:"include_summary"`
	// OmitMarketData drops the raw market_data passthrough from the response.
	OmitMarketData bool `json:"omit_market_data" form:"omit_market_data"`
}

// EODRequest represents the query for the raw upstream proxy
type EODRequest struct {
	Symbols  string `form:"symbols" binding:"required"` // comma-separated
	DateFrom string `form:"date_from" binding:"required"`
	DateTo   string `form:"date_to" binding:"required"`
	Offset   int    `form:"offset" binding:"gte=0"`
}
