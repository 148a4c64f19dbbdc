// Package api wires the HTTP routes of the service.
package api

import (
	"net/http"
	"os"
	"strings"

	"stock-compare/internal/api/handlers"
	"stock-compare/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	MarketData  handlers.MarketData
	MaxSymbols  int
	CORSOrigins []string
	SymbolsFile string
	StaticDir   string
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(rc RouterConfig) *gin.Engine {
	logger := rc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(rc.CORSOrigins))

	perfHandler := handlers.NewPerformanceHandler(rc.MarketData, rc.MaxSymbols, logger)
	symbolsHandler := handlers.NewSymbolsHandler(rc.SymbolsFile)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/performance", perfHandler.GetPerformance)
		api.POST("/performance", perfHandler.GetPerformance)
		api.GET("/rank", perfHandler.RankSymbols)
		api.GET("/eod", perfHandler.GetEOD)
		api.GET("/symbols", symbolsHandler.ListSymbols)
	}

	serveStatic(router, rc.StaticDir, logger)
	return router
}

// serveStatic serves the built frontend from staticDir (if it exists) with SPA fallback.
func serveStatic(router *gin.Engine, staticDir string, logger *zap.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	}

	if staticDir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(staticDir); err != nil {
		logger.Info("static directory not found, skipping static file serving", zap.String("dir", staticDir))
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", staticDir+"/assets")
	router.StaticFile("/favicon.ico", staticDir+"/favicon.ico")

	// Serve index.html for all non-API routes (SPA routing)
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(staticDir + "/index.html")
	})
	logger.Info("serving static files", zap.String("dir", staticDir))
}
