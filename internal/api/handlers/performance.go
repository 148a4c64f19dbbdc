package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stock-compare/internal/analysis"
	"stock-compare/internal/api/models"
	"stock-compare/internal/data"
	"stock-compare/internal/model"
	"stock-compare/internal/performance"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MarketData is the upstream collaborator the handlers fetch EOD data from.
type MarketData interface {
	FetchEOD(ctx context.Context, q data.EODQuery) ([]model.EODRecord, error)
	FetchEODPage(ctx context.Context, q data.EODQuery, offset int) (*model.MarketstackEODResponse, error)
}

// PerformanceHandler handles portfolio performance requests
type PerformanceHandler struct {
	marketData MarketData
	maxSymbols int
	logger     *zap.Logger
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(md MarketData, maxSymbols int, logger *zap.Logger) *PerformanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceHandler{marketData: md, maxSymbols: maxSymbols, logger: logger}
}

// GetPerformance handles GET and POST /api/v1/performance
func (h *PerformanceHandler) GetPerformance(c *gin.Context) {
	var req models.PerformanceRequest
	res, perfReq, ok := h.run(c, &req)
	if !ok {
		return
	}

	response := models.PerformanceResponse{
		MarketData:                 res.MarketData,
		IndividualStockPerformance: make(map[string][]models.ValuationPoint, len(res.Performance)),
		ExcludedSymbols:            res.Excluded,
		InitialShares:              res.Shares,
	}
	if req.OmitMarketData || response.MarketData == nil {
		response.MarketData = []model.EODRecord{}
	}
	for sym, series := range res.Performance {
		response.IndividualStockPerformance[sym] = convertSeries(series)
	}
	if !res.FirstValidDate.IsZero() {
		response.FirstValidDate = res.FirstValidDate.Format(performance.DateLayout)
	}
	if req.IncludeSummary {
		for _, sym := range res.Symbols(perfReq.Symbols) {
			response.Summary = append(response.Summary,
				convertSummary(analysis.Summarize(sym, res.Shares[sym], res.Performance[sym])))
		}
	}

	c.JSON(http.StatusOK, response)
}

// RankSymbols handles GET /api/v1/rank
func (h *PerformanceHandler) RankSymbols(c *gin.Context) {
	var req models.PerformanceRequest
	res, _, ok := h.run(c, &req)
	if !ok {
		return
	}

	ranked := analysis.RankByReturn(res)
	rankings := make([]models.Ranking, len(ranked))
	for i, s := range ranked {
		rankings[i] = models.Ranking{Rank: i + 1, PositionSummary: convertSummary(s)}
	}

	agg := analysis.AggregateSeries(res)
	portfolio := make([]models.ValuationPoint, len(agg))
	for i, p := range agg {
		portfolio[i] = models.ValuationPoint{Date: p.Date.Format(performance.DateLayout), Value: p.Value}
	}

	c.JSON(http.StatusOK, models.RankResponse{
		Rankings:        rankings,
		Portfolio:       portfolio,
		ExcludedSymbols: res.Excluded,
	})
}

// run binds and validates the request, fetches market data and computes the result.
// When ok is false a response has already been written.
func (h *PerformanceHandler) run(c *gin.Context, req *models.PerformanceRequest) (*performance.Result, performance.Request, bool) {
	if err := c.ShouldBind(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return nil, performance.Request{}, false
	}

	perfReq, code, err := h.buildRequest(req)
	if err != nil {
		writeError(c, http.StatusBadRequest, code, err.Error())
		return nil, performance.Request{}, false
	}

	records, err := h.marketData.FetchEOD(c.Request.Context(), data.EODQuery{
		Symbols:  perfReq.Symbols,
		DateFrom: perfReq.DateFrom,
		DateTo:   perfReq.DateTo,
	})
	if err != nil {
		h.logger.Warn("market data fetch failed", zap.Strings("symbols", perfReq.Symbols), zap.Error(err))
		writeFetchError(c, err)
		return nil, performance.Request{}, false
	}

	res, err := performance.Compute(records, perfReq)
	switch {
	case errors.Is(err, performance.ErrNoUsableStartData):
		writeError(c, http.StatusNotFound, "NO_USABLE_START_DATA", err.Error())
		return nil, performance.Request{}, false
	case errors.Is(err, performance.ErrInvalidRequest):
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return nil, performance.Request{}, false
	case err != nil:
		writeError(c, http.StatusInternalServerError, "COMPUTATION_ERROR", err.Error())
		return nil, performance.Request{}, false
	}

	h.logger.Info("portfolio computed",
		zap.Strings("symbols", perfReq.Symbols),
		zap.Int("records", len(records)),
		zap.Int("valued", len(res.Performance)),
		zap.Strings("excluded", res.Excluded))
	return res, perfReq, true
}

// buildRequest validates the boundary preconditions. The returned code is the
// error code to report when err is non-nil.
func (h *PerformanceHandler) buildRequest(req *models.PerformanceRequest) (performance.Request, string, error) {
	symbols := performance.ParseSymbolList(strings.Join(req.Symbols, ","))
	if len(symbols) == 0 {
		return performance.Request{}, "INVALID_REQUEST", fmt.Errorf("at least one symbol is required")
	}
	if h.maxSymbols > 0 && len(symbols) > h.maxSymbols {
		return performance.Request{}, "TOO_MANY_SYMBOLS", fmt.Errorf("at most %d symbols are allowed, got %d", h.maxSymbols, len(symbols))
	}

	from, err := time.Parse(performance.DateLayout, req.DateFrom)
	if err != nil {
		return performance.Request{}, "INVALID_DATE", fmt.Errorf("date_from must be in YYYY-MM-DD format")
	}
	to, err := time.Parse(performance.DateLayout, req.DateTo)
	if err != nil {
		return performance.Request{}, "INVALID_DATE", fmt.Errorf("date_to must be in YYYY-MM-DD format")
	}
	if from.After(to) {
		return performance.Request{}, "INVALID_DATE_RANGE", fmt.Errorf("date_from must not be after date_to")
	}

	r := performance.Request{
		Symbols:    symbols,
		Investment: req.Investment,
		DateFrom:   from,
		DateTo:     to,
	}
	if err := r.Validate(); err != nil {
		return performance.Request{}, "INVALID_REQUEST", err
	}
	return r, "", nil
}

func convertSeries(series []performance.ValuationPoint) []models.ValuationPoint {
	out := make([]models.ValuationPoint, len(series))
	for i, p := range series {
		out[i] = models.ValuationPoint{Date: p.Date.Format(performance.DateLayout), Value: p.Value}
	}
	return out
}

func convertSummary(s analysis.PositionSummary) models.PositionSummary {
	out := models.PositionSummary{
		Symbol:         s.Symbol,
		Shares:         s.Shares,
		Count:          s.Count,
		InitialValue:   s.InitialValue,
		FinalValue:     s.FinalValue,
		MinValue:       s.MinValue,
		MaxValue:       s.MaxValue,
		MeanValue:      s.MeanValue,
		P05Value:       s.P05Value,
		P95Value:       s.P95Value,
		ReturnPct:      s.ReturnPct,
		MaxDrawdownPct: s.MaxDrawdownPct,
	}
	if !s.Start.IsZero() {
		out.StartDate = s.Start.Format(performance.DateLayout)
		out.EndDate = s.End.Format(performance.DateLayout)
	}
	return out
}
