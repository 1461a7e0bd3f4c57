package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stock-backtest/internal/analysis"
	"stock-backtest/internal/backtest"
	"stock-backtest/internal/config"
	"stock-backtest/internal/data"
	"stock-backtest/internal/strategy"
	"stock-backtest/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backtest":
		cmdBacktest(os.Args[2:])
	case "rank":
		cmdRank(os.Args[2:])
	case "strategies":
		cmdStrategies()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli backtest --config examples/config.yaml --out results")
	fmt.Println("  cli rank --data data/ --limit 10")
	fmt.Println("  cli strategies")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - backtest writes trades.csv and equity.csv under --out and prints metrics")
	fmt.Println("  - rank scores each symbol by its best single-trade 'oracle' profit")
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	outDir := fs.String("out", "results", "Output directory for CSV artifacts")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatal(err)
	}

	bars, err := data.LoadDir(cfg.Data.Dir, cfg.Data.Symbols)
	if err != nil {
		fatal(err)
	}

	portfolioCfg, err := cfg.Portfolio.ToModelConfig(cfg.RiskFreeRate)
	if err != nil {
		fatal(err)
	}
	strat, err := strategy.New(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		fatal(err)
	}

	log := util.NewLogger(*logLevel)
	engine, err := backtest.New(strat, &portfolioCfg, log)
	if err != nil {
		fatal(err)
	}

	start, end := cfg.Window()
	res, err := engine.Run(bars, start, end)
	if err != nil {
		fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatal(err)
	}
	tradesPath := filepath.Join(*outDir, "trades.csv")
	equityPath := filepath.Join(*outDir, "equity.csv")
	if err := backtest.WriteTradesCSV(tradesPath, res.Trades); err != nil {
		fatal(err)
	}
	if err := backtest.WriteEquityCSV(equityPath, res.Snapshots); err != nil {
		fatal(err)
	}

	m := analysis.NewCalculator(portfolioCfg.RiskFreeRate).CalculateAll(res)

	fmt.Printf("Wrote %d trades to %s, %d equity rows to %s\n\n",
		len(res.Trades), tradesPath, len(res.Snapshots), equityPath)
	fmt.Printf("Window        %s to %s\n", res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02"))
	fmt.Printf("Initial       %s\n", res.InitialValue.StringFixed(2))
	fmt.Printf("Final         %s\n", res.FinalValue.StringFixed(2))
	fmt.Printf("Return        %s%%\n", res.TotalReturnPct.StringFixed(2))
	fmt.Printf("Annual        %.2f%%\n", m.AnnualReturn*100)
	fmt.Printf("Sharpe        %.3f\n", m.SharpeRatio)
	fmt.Printf("Sortino       %.3f\n", m.SortinoRatio)
	fmt.Printf("Calmar        %.3f\n", m.CalmarRatio)
	fmt.Printf("Max drawdown  %.2f%% (%d days)\n", m.MaxDrawdown*100, m.MaxDrawdownDuration)
	fmt.Printf("Trades        %d (win rate %.1f%%, profit factor %s)\n",
		res.TotalTrades, res.WinRate, fmtProfitFactor(res.ProfitFactor))
	fmt.Printf("Exposure      %.1f%%\n", m.MarketExposure*100)
}

func cmdRank(args []string) {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	dataDir := fs.String("data", "data", "Directory of per-symbol OHLCV CSVs")
	symbols := fs.String("symbols", "", "Comma-separated symbols (empty = all)")
	limit := fs.Int("limit", 0, "Show only the top N symbols (0=all)")
	_ = fs.Parse(args)

	var syms []string
	if *symbols != "" {
		for _, s := range strings.Split(*symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				syms = append(syms, s)
			}
		}
	}

	bySymbol, err := data.LoadDir(*dataDir, syms)
	if err != nil {
		fatal(err)
	}

	ranked := analysis.RankByOracleProfit(bySymbol)
	if *limit > 0 && *limit < len(ranked) {
		ranked = ranked[:*limit]
	}

	fmt.Printf("%-4s %-12s %-8s %-10s %-14s %-10s %-12s\n",
		"rank", "symbol", "bars", "p95-p05", "min/max", "buy&hold", "oracle")
	for _, r := range ranked {
		fmt.Printf("%-4d %-12s %-8d %-10.2f %-6.1f/%-6.1f %-10.2f %-12.2f\n",
			r.Rank,
			r.Symbol,
			r.Count,
			r.SpreadP95P05,
			r.MinClose,
			r.MaxClose,
			r.BuyHoldReturn,
			r.OracleProfit,
		)
	}
}

func cmdStrategies() {
	for _, info := range strategy.List() {
		fmt.Printf("%s\n  %s\n", info.Name, info.Description)
		for _, p := range info.Parameters {
			fmt.Printf("    %-14s %v  %s\n", p.Name, p.Default, p.Description)
		}
		fmt.Println()
	}
}

func fmtProfitFactor(pf float64) string {
	if pf > 1e12 {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
