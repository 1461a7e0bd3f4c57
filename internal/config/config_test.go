package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-backtest/internal/model"
)

func writeYAML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fullConfig = `
portfolio:
  name: aggressive
  initial_capital: 1000000
  sizing_method: percentage
  sizing_value: 10
  max_trades_per_week: 3
  max_trades_per_month: 8
  max_positions: 5
  brokerage_rate: 0.0003
  transaction_rate: 0.0001
  stt_rate: 0.001
  slippage_rate: 0.0005
strategy:
  name: ma_crossover
  params:
    fast_period: 10
    slow_period: 30
data:
  dir: testdata
  symbols: [TCS, INFY]
start_date: "2023-01-01"
end_date: "2024-01-01"
risk_free_rate: 0.06
`

func TestLoadParsesFullConfig(t *testing.T) {
	path := writeYAML(t, t.TempDir(), "config.yaml", fullConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "aggressive", cfg.Portfolio.Name)
	assert.Equal(t, 1_000_000.0, cfg.Portfolio.InitialCapital)
	assert.Equal(t, "percentage", cfg.Portfolio.SizingMethod)
	assert.Equal(t, "ma_crossover", cfg.Strategy.Name)
	assert.Equal(t, []string{"TCS", "INFY"}, cfg.Data.Symbols)
	assert.Equal(t, 0.06, cfg.RiskFreeRate)

	start, end := cfg.Window()
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestLoadMergesPortfolioFile(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "base.yaml", `
portfolio:
  name: base
  initial_capital: 500000
  sizing_method: fixed_amount
  sizing_value: 50000
  max_trades_per_week: 2
  max_trades_per_month: 6
  max_positions: 4
`)
	path := writeYAML(t, dir, "config.yaml", `
portfolio_file: base.yaml
portfolio:
  initial_capital: 750000
strategy:
  name: rsi
data:
  dir: testdata
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Override wins where set, base fills the rest.
	assert.Equal(t, 750_000.0, cfg.Portfolio.InitialCapital)
	assert.Equal(t, "base", cfg.Portfolio.Name)
	assert.Equal(t, "fixed_amount", cfg.Portfolio.SizingMethod)
	assert.Equal(t, 4, cfg.Portfolio.MaxPositions)
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing strategy", "portfolio:\n  initial_capital: 1000\ndata:\n  dir: d\n"},
		{"missing data dir", "strategy:\n  name: rsi\nportfolio:\n  initial_capital: 1000\n"},
		{"bad start date", `
portfolio:
  initial_capital: 1000000
  sizing_method: fixed_amount
  sizing_value: 1000
  max_trades_per_week: 1
  max_trades_per_month: 1
  max_positions: 1
strategy:
  name: rsi
data:
  dir: testdata
start_date: "01-01-2023"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeYAML(t, t.TempDir(), "config.yaml", tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsInvalidPortfolio(t *testing.T) {
	path := writeYAML(t, t.TempDir(), "config.yaml", `
portfolio:
  initial_capital: 0
  sizing_method: fixed_amount
  sizing_value: 1000
  max_trades_per_week: 1
  max_trades_per_month: 1
  max_positions: 1
strategy:
  name: rsi
data:
  dir: testdata
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestToModelConfigConvertsAndValidates(t *testing.T) {
	p := PortfolioConfig{
		InitialCapital:    1_000_000,
		SizingMethod:      "equal_weight",
		MaxTradesPerWeek:  3,
		MaxTradesPerMonth: 8,
		MaxPositions:      5,
		BrokerageRate:     0.0003,
	}

	cfg, err := p.ToModelConfig(0)
	require.NoError(t, err)
	assert.Equal(t, model.SizingEqualWeight, cfg.SizingMethod)
	assert.Equal(t, model.DefaultRiskFreeRate, cfg.RiskFreeRate)
	assert.True(t, cfg.InitialCapital.IsPositive())

	p.SizingMethod = "nope"
	_, err = p.ToModelConfig(0)
	assert.Error(t, err)
}

func TestMergePortfolioOverlaysNonZeroFields(t *testing.T) {
	base := PortfolioConfig{
		Name:           "base",
		InitialCapital: 100,
		SizingMethod:   "fixed_amount",
		SizingValue:    10,
		MaxPositions:   3,
	}
	override := PortfolioConfig{InitialCapital: 200, MaxPositions: 5}

	merged := MergePortfolio(base, override)
	assert.Equal(t, 200.0, merged.InitialCapital)
	assert.Equal(t, 5, merged.MaxPositions)
	assert.Equal(t, "base", merged.Name)
	assert.Equal(t, 10.0, merged.SizingValue)
}
