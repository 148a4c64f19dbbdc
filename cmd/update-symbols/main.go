package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"stock-compare/internal/config"
	"stock-compare/internal/data"
	"stock-compare/internal/logging"
	"stock-compare/internal/model"

	"go.uber.org/zap"
)

// tickerSearcher is the part of the Marketstack client used here.
type tickerSearcher interface {
	ListTickers(ctx context.Context, search string, limit int) ([]model.Ticker, error)
}

// update-symbols refreshes the static ticker catalog served by GET /api/v1/symbols.
// Marketstack's ticker search is keyed by query, so a seed list of symbols is looked
// up one by one and merged into the existing catalog.
func main() {
	var (
		outputPath = flag.String("output", "", "Output file path (default: ./data/symbols.json)")
		seedFile   = flag.String("seed", "", "Path to existing symbols file to use as seed")
		extra      = flag.String("symbols", "", "Comma-separated symbols to add to the seed")
		baseURL    = flag.String("base-url", "", "Marketstack API base URL override")
		cfgPath    = flag.String("config", "", "Optional: YAML config")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Marketstack.APIKey == "" {
		logger.Fatal("MARKETSTACK_API_KEY is required")
	}
	if *baseURL != "" {
		cfg.Marketstack.BaseURL = *baseURL
	}
	if *outputPath == "" {
		*outputPath = data.DefaultSymbolsPath()
	}

	seedPath := *seedFile
	if seedPath == "" {
		seedPath = data.DefaultSymbolsPath()
	}
	var seed []data.Symbol
	if list, err := data.LoadSymbols(seedPath); err == nil {
		seed = list.Symbols
		logger.Info("loaded existing symbols", zap.Int("count", len(seed)), zap.String("path", seedPath))
	}
	for _, s := range strings.Split(*extra, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			seed = append(seed, data.Symbol{Symbol: s})
		}
	}
	if len(seed) == 0 {
		seed = []data.Symbol{
			{Symbol: "AAPL", Name: "Apple Inc"},
			{Symbol: "MSFT", Name: "Microsoft Corporation"},
			{Symbol: "GOOGL", Name: "Alphabet Inc - Class A"},
			{Symbol: "AMZN", Name: "Amazon.com Inc"},
		}
	}

	client := data.NewMarketstackClient(cfg.Marketstack.APIKey,
		data.WithBaseURL(cfg.Marketstack.BaseURL),
		data.WithRateLimit(cfg.Marketstack.RateLimit),
		data.WithLogger(logger.Named("marketstack")),
	)
	symbols := updateSymbols(context.Background(), client, seed, logger)

	list := &data.SymbolList{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Symbols:   symbols,
	}
	if err := data.SaveSymbols(list, *outputPath); err != nil {
		logger.Fatal("failed to save symbols", zap.Error(err))
	}
	logger.Info("saved symbols", zap.Int("count", len(symbols)), zap.String("path", *outputPath))
}

// updateSymbols refreshes metadata for each seed symbol. Symbols that cannot be
// looked up keep their existing entry.
func updateSymbols(ctx context.Context, client tickerSearcher, seed []data.Symbol, logger *zap.Logger) []data.Symbol {
	bySymbol := make(map[string]data.Symbol, len(seed))
	for _, s := range seed {
		if prev, ok := bySymbol[s.Symbol]; ok && s.Name == "" {
			s = prev
		}
		bySymbol[s.Symbol] = s
	}

	ok := 0
	for sym := range bySymbol {
		reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		tickers, err := client.ListTickers(reqCtx, sym, 10)
		cancel()
		if err != nil {
			logger.Warn("ticker lookup failed", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		for _, t := range tickers {
			if t.Symbol != sym {
				continue
			}
			bySymbol[sym] = data.Symbol{
				Symbol:   t.Symbol,
				Name:     t.Name,
				Exchange: t.StockExchange.Acronym,
				MIC:      t.StockExchange.MIC,
			}
			ok++
			logger.Debug("updated symbol", zap.String("symbol", t.Symbol), zap.String("name", t.Name))
			break
		}
	}
	logger.Info("symbol refresh finished", zap.Int("updated", ok), zap.Int("total", len(bySymbol)))

	out := make([]data.Symbol, 0, len(bySymbol))
	for _, s := range bySymbol {
		out = append(out, s)
	}
	return out
}
