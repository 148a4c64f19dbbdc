package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"stock-compare/internal/api/models"
	"stock-compare/internal/data"

	"github.com/gin-gonic/gin"
)

// SymbolsHandler serves the static ticker catalog.
type SymbolsHandler struct {
	path string
}

// NewSymbolsHandler creates a handler reading the catalog at path
// (data.DefaultSymbolsPath() when empty).
func NewSymbolsHandler(path string) *SymbolsHandler {
	if path == "" {
		path = data.DefaultSymbolsPath()
	}
	return &SymbolsHandler{path: path}
}

// ListSymbols handles GET /api/v1/symbols
func (h *SymbolsHandler) ListSymbols(c *gin.Context) {
	list, err := h.load()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "SYMBOLS_LOAD_ERROR", fmt.Sprintf("Failed to load symbols: %v", err))
		return
	}

	q := strings.ToUpper(strings.TrimSpace(c.Query("q")))
	symbols := make([]models.SymbolInfo, 0, len(list.Symbols))
	for _, s := range list.Symbols {
		if q != "" && !strings.HasPrefix(s.Symbol, q) && !strings.Contains(strings.ToUpper(s.Name), q) {
			continue
		}
		symbols = append(symbols, models.SymbolInfo{
			Symbol:   s.Symbol,
			Name:     s.Name,
			Exchange: s.Exchange,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"symbols":    symbols,
		"updated_at": list.UpdatedAt,
		"count":      len(symbols),
	})
}

// load reads the catalog. A missing file is an empty catalog, not an error.
func (h *SymbolsHandler) load() (*data.SymbolList, error) {
	list, err := data.LoadSymbols(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &data.SymbolList{Symbols: []data.Symbol{}}, nil
		}
		return nil, err
	}
	return list, nil
}
