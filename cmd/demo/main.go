package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"stock-backtest/internal/analysis"
	"stock-backtest/internal/backtest"
	"stock-backtest/internal/model"
	"stock-backtest/internal/strategy"
	"stock-backtest/internal/util"
)

// Demo:
// - Generate a synthetic two-symbol price history (trend plus a sine swing)
// - Run the MA crossover strategy through the portfolio engine
// - Print the trades and headline metrics to show how the pieces fit together
func main() {
	days := flag.Int("days", 250, "Number of trading days to simulate")
	capital := flag.Float64("capital", 1_000_000, "Initial capital")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	bars := map[string][]model.Bar{
		"ALPHA": syntheticSeries(*days, 100, 0.15, 18),
		"BETA":  syntheticSeries(*days, 250, -0.05, 31),
	}

	cfg := &model.PortfolioConfig{
		InitialCapital:    decimal.NewFromFloat(*capital),
		SizingMethod:      model.SizingEqualWeight,
		MaxTradesPerWeek:  3,
		MaxTradesPerMonth: 8,
		MaxPositions:      2,
		BrokerageRate:     decimal.NewFromFloat(0.0003),
		TransactionRate:   decimal.NewFromFloat(0.0001),
		STTRate:           decimal.NewFromFloat(0.001),
		SlippageRate:      decimal.NewFromFloat(0.0005),
	}

	strat := &strategy.MACrossover{Params: strategy.MACrossoverParams{
		FastPeriod: 10,
		SlowPeriod: 30,
	}}

	engine, err := backtest.New(strat, cfg, util.NewLogger(*logLevel))
	if err != nil {
		panic(err)
	}
	res, err := engine.Run(bars, time.Time{}, time.Time{})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Simulated %d days across %d symbols with %s capital\n\n",
		*days, len(bars), cfg.InitialCapital.StringFixed(0))

	for _, t := range res.Trades {
		fmt.Printf("%-6s %s -> %s  qty=%-6d  pnl=%10s (%s%%)\n",
			t.Symbol,
			t.EntryDate.Format("2006-01-02"),
			t.ExitDate.Format("2006-01-02"),
			t.Quantity,
			t.PnL.StringFixed(2),
			t.PnLPct.StringFixed(2),
		)
	}

	m := analysis.NewCalculator(cfg.RiskFreeRate).CalculateAll(res)
	fmt.Printf("\nFinal value  %s (%s%%)\n", res.FinalValue.StringFixed(2), res.TotalReturnPct.StringFixed(2))
	fmt.Printf("Sharpe       %.3f\n", m.SharpeRatio)
	fmt.Printf("Max drawdown %.2f%%\n", m.MaxDrawdown*100)
	fmt.Printf("Trades       %d, win rate %.1f%%\n", res.TotalTrades, res.WinRate)
}

// syntheticSeries builds a deterministic daily series: linear annual drift
// plus a sine swing wide enough for moving averages to cross repeatedly.
func syntheticSeries(days int, base, annualDrift float64, swingPeriod int) []model.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, 0, days)
	date := start
	for i := 0; i < days; i++ {
		// skip weekends to mimic a real exchange calendar
		for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, 1)
		}
		drift := base * annualDrift * float64(i) / 252
		swing := base * 0.08 * math.Sin(2*math.Pi*float64(i)/float64(swingPeriod))
		close := base + drift + swing
		bars = append(bars, model.Bar{
			Date:   date,
			Open:   close * 0.998,
			High:   close * 1.006,
			Low:    close * 0.993,
			Close:  close,
			Volume: 1_000_000,
		})
		date = date.AddDate(0, 0, 1)
	}
	return bars
}
