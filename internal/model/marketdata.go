package model

// MarketstackEODResponse matches the JSON shape of the Marketstack /v1/eod endpoint.
//
// Example:
// {
//   "pagination": {"limit": 1000, "offset": 0, "count": 2, "total": 2},
//   "data": [ ... ]
// }
type MarketstackEODResponse struct {
	Pagination Pagination  `json:"pagination"`
	Data       []EODRecord `json:"data"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

// EODRecord is one end-of-day observation for one symbol.
// Every price field is nullable upstream, so they are pointers.
// Date is kept as the raw upstream string (e.g. "2024-01-02T00:00:00+0000").
type EODRecord struct {
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`

	AdjOpen   *float64 `json:"adj_open"`
	AdjHigh   *float64 `json:"adj_high"`
	AdjLow    *float64 `json:"adj_low"`
	AdjClose  *float64 `json:"adj_close"`
	AdjVolume *float64 `json:"adj_volume"`

	SplitFactor *float64 `json:"split_factor"`
	Dividend    *float64 `json:"dividend"`

	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Date     string `json:"date"`
}

// MarketstackTickersResponse matches the /v1/tickers endpoint.
type MarketstackTickersResponse struct {
	Pagination Pagination `json:"pagination"`
	Data       []Ticker   `json:"data"`
}

type Ticker struct {
	Name          string        `json:"name"`
	Symbol        string        `json:"symbol"`
	StockExchange StockExchange `json:"stock_exchange"`
}

type StockExchange struct {
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
	MIC     string `json:"mic"`
	Country string `json:"country"`
}

// Price is a small helper for building records in code and tests.
func Price(v float64) *float64 {
	return &v
}
