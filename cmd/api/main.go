package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-compare/internal/api"
	"stock-compare/internal/config"
	"stock-compare/internal/data"
	"stock-compare/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Marketstack.APIKey == "" {
		logger.Warn("MARKETSTACK_API_KEY is not set; market data requests will fail")
	}

	var cache *data.ResponseCache
	if cfg.CacheEnabled() {
		cache = data.NewResponseCache(cfg.Cache.TTL)
		defer cache.Close()
		logger.Warn("marketstack response cache enabled (development only)", zap.Duration("ttl", cfg.Cache.TTL))
	}

	client := data.NewMarketstackClient(cfg.Marketstack.APIKey,
		data.WithBaseURL(cfg.Marketstack.BaseURL),
		data.WithHTTPClient(&http.Client{Timeout: cfg.Marketstack.Timeout}),
		data.WithRateLimit(cfg.Marketstack.RateLimit),
		data.WithPaging(cfg.Marketstack.PageLimit, cfg.Marketstack.MaxPages),
		data.WithCache(cache),
		data.WithLogger(logger.Named("marketstack")),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		MarketData:  client,
		MaxSymbols:  cfg.Limits.MaxSymbols,
		CORSOrigins: cfg.Server.CORSOrigins,
		SymbolsFile: data.DefaultSymbolsPath(),
		StaticDir:   cfg.Server.StaticDir,
		Logger:      logger.Named("api"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting API server", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
