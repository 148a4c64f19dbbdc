package handlers

import (
	"net/http"
	"time"

	"stock-compare/internal/api/models"
	"stock-compare/internal/data"
	"stock-compare/internal/performance"

	"github.com/gin-gonic/gin"
)

// GetEOD handles GET /api/v1/eod, passing one upstream page through unchanged.
func (h *PerformanceHandler) GetEOD(c *gin.Context) {
	var req models.EODRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	symbols := performance.ParseSymbolList(req.Symbols)
	if len(symbols) == 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "at least one symbol is required")
		return
	}
	if h.maxSymbols > 0 && len(symbols) > h.maxSymbols {
		writeError(c, http.StatusBadRequest, "TOO_MANY_SYMBOLS", "too many symbols")
		return
	}
	from, err := time.Parse(performance.DateLayout, req.DateFrom)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_DATE", "date_from must be in YYYY-MM-DD format")
		return
	}
	to, err := time.Parse(performance.DateLayout, req.DateTo)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_DATE", "date_to must be in YYYY-MM-DD format")
		return
	}
	if from.After(to) {
		writeError(c, http.StatusBadRequest, "INVALID_DATE_RANGE", "date_from must not be after date_to")
		return
	}

	resp, err := h.marketData.FetchEODPage(c.Request.Context(), data.EODQuery{
		Symbols:  symbols,
		DateFrom: from,
		DateTo:   to,
	}, req.Offset)
	if err != nil {
		writeFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
