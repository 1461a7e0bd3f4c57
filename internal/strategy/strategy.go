package strategy

import "stock-backtest/internal/model"

// Strategy generates trading signals from a price history. The backtester
// re-invokes GenerateSignals with growing prefixes of the same series, so
// implementations must be pure functions of the history passed in: no hidden
// state, and nothing read beyond the last bar. Signals are returned in
// chronological order; the backtester acts on the latest one.
type Strategy interface {
	Name() string
	GenerateSignals(symbol string, history []model.Bar) ([]model.Signal, error)
}
