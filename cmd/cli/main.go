package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"stock-compare/internal/analysis"
	"stock-compare/internal/config"
	"stock-compare/internal/data"
	"stock-compare/internal/logging"
	"stock-compare/internal/model"
	"stock-compare/internal/performance"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "perf":
		err = cmdPerf(os.Args[2:])
	case "rank":
		err = cmdRank(os.Args[2:])
	case "fetch":
		err = cmdFetch(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, performance.ErrNoUsableStartData) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli perf  --symbols AAPL,MSFT --investment 1000 --from 2024-01-01 --to 2024-06-30 [--data eod.json] --out results/performance.csv")
	fmt.Println("  cli rank  --symbols AAPL,MSFT --investment 1000 --from 2024-01-01 --to 2024-06-30 [--data eod.json]")
	fmt.Println("  cli fetch --symbols AAPL,MSFT --from 2024-01-01 --to 2024-06-30 --out data/eod.json")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - without --data, prices are fetched from Marketstack (MARKETSTACK_API_KEY)")
	fmt.Println("  - perf writes one CSV row per date and symbol; excluded symbols are printed")
}

// portfolioFlags are shared by perf and rank.
type portfolioFlags struct {
	symbols    *string
	investment *float64
	from       *string
	to         *string
	dataPath   *string
	cfgPath    *string
}

func addPortfolioFlags(fs *flag.FlagSet) portfolioFlags {
	return portfolioFlags{
		symbols:    fs.String("symbols", "", "Comma-separated ticker symbols"),
		investment: fs.Float64("investment", 1000, "Initial investment per symbol"),
		from:       fs.String("from", "", "Start date (YYYY-MM-DD)"),
		to:         fs.String("to", "", "End date (YYYY-MM-DD)"),
		dataPath:   fs.String("data", "", "Optional: saved Marketstack EOD JSON instead of fetching"),
		cfgPath:    fs.String("config", "", "Optional: YAML config"),
	}
}

// compute returns the result, the cleaned symbols and the market data it was computed from.
func (pf portfolioFlags) compute() (*performance.Result, []string, *model.MarketstackEODResponse, error) {
	symbols := performance.ParseSymbolList(*pf.symbols)
	from, to, err := parseRange(*pf.from, *pf.to)
	if err != nil {
		return nil, nil, nil, err
	}

	var resp *model.MarketstackEODResponse
	if *pf.dataPath != "" {
		resp, err = data.LoadEODJSON(*pf.dataPath)
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		records, err := fetch(*pf.cfgPath, symbols, from, to)
		if err != nil {
			return nil, nil, nil, err
		}
		resp = &model.MarketstackEODResponse{Data: records}
	}

	res, err := performance.FromInputs(model.PortfolioInputs{
		MarketData: *resp,
		Symbols:    symbols,
		Investment: *pf.investment,
		DateFrom:   from,
		DateTo:     to,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return res, symbols, resp, nil
}

func cmdPerf(args []string) error {
	fs := flag.NewFlagSet("perf", flag.ExitOnError)
	pf := addPortfolioFlags(fs)
	outPath := fs.String("out", "results/performance.csv", "Output CSV path")
	_ = fs.Parse(args)

	res, symbols, _, err := pf.compute()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		return err
	}
	if err := performance.WriteSeriesCSV(*outPath, res, symbols); err != nil {
		return err
	}

	valued := res.Symbols(symbols)
	fmt.Printf("Wrote %d symbols to %s\n", len(valued), *outPath)
	for _, sym := range valued {
		series := res.Performance[sym]
		last := series[len(series)-1]
		fmt.Printf("  %-8s shares=%.6f final=%s $%.2f\n", sym, res.Shares[sym], last.Date.Format(performance.DateLayout), last.Value)
	}
	if len(res.Excluded) > 0 {
		fmt.Printf("Excluded (no usable starting price): %v\n", res.Excluded)
	}
	return nil
}

func cmdRank(args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	pf := addPortfolioFlags(fs)
	_ = fs.Parse(args)

	res, _, resp, err := pf.compute()
	if err != nil {
		return err
	}

	writeRankTable(os.Stdout, res, resp)
	return nil
}

// writeRankTable prints symbols by return. Record counts cover the whole input,
// including dates outside the range.
func writeRankTable(w io.Writer, res *performance.Result, resp *model.MarketstackEODResponse) {
	bySymbol := data.GroupBySymbol(resp)
	fmt.Fprintf(w, "%-4s %-8s %-8s %-12s %-12s %-10s %-10s\n", "rank", "symbol", "records", "initial$", "final$", "return%", "maxdd%")
	for i, r := range analysis.RankByReturn(res) {
		fmt.Fprintf(w, "%-4d %-8s %-8d %-12.2f %-12.2f %-10.2f %-10.2f\n",
			i+1, r.Symbol, len(bySymbol[r.Symbol]), r.InitialValue, r.FinalValue, r.ReturnPct, r.MaxDrawdownPct)
	}
	if len(res.Excluded) > 0 {
		fmt.Fprintf(w, "Excluded: %v\n", res.Excluded)
	}
}

func cmdFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	symbolsFlag := fs.String("symbols", "", "Comma-separated ticker symbols")
	fromFlag := fs.String("from", "", "Start date (YYYY-MM-DD)")
	toFlag := fs.String("to", "", "End date (YYYY-MM-DD)")
	cfgPath := fs.String("config", "", "Optional: YAML config")
	outPath := fs.String("out", "data/eod.json", "Output JSON path")
	_ = fs.Parse(args)

	from, to, err := parseRange(*fromFlag, *toFlag)
	if err != nil {
		return err
	}
	records, err := fetch(*cfgPath, performance.ParseSymbolList(*symbolsFlag), from, to)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		return err
	}
	if err := data.SaveEODJSON(*outPath, records); err != nil {
		return err
	}
	fmt.Printf("Wrote %d records to %s\n", len(records), *outPath)
	return nil
}

func fetch(cfgPath string, symbols []string, from, to time.Time) ([]model.EODRecord, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("--symbols is required")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Server.Env)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	client := data.NewMarketstackClient(cfg.Marketstack.APIKey,
		data.WithBaseURL(cfg.Marketstack.BaseURL),
		data.WithRateLimit(cfg.Marketstack.RateLimit),
		data.WithPaging(cfg.Marketstack.PageLimit, cfg.Marketstack.MaxPages),
		data.WithLogger(logger.Named("marketstack")),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	records, err := client.FetchEOD(ctx, data.EODQuery{Symbols: symbols, DateFrom: from, DateTo: to})
	if err != nil {
		logger.Error("fetch failed", zap.Error(err))
		return nil, err
	}
	return records, nil
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := time.Parse(performance.DateLayout, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
	}
	to, err := time.Parse(performance.DateLayout, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must not be after --to")
	}
	return from, to, nil
}
