package backtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-backtest/internal/model"
)

func execConfig(slippage, brokerage, stt float64) *model.PortfolioConfig {
	return &model.PortfolioConfig{
		SlippageRate:  decimal.NewFromFloat(slippage),
		BrokerageRate: decimal.NewFromFloat(brokerage),
		STTRate:       decimal.NewFromFloat(stt),
	}
}

func TestFillPriceAppliesAdverseSlippage(t *testing.T) {
	exec := NewExecutionModel(execConfig(0.01, 0, 0))

	buy := exec.FillPrice(model.Buy, 100)
	sell := exec.FillPrice(model.Sell, 100)
	assert.True(t, buy.Equal(decimal.NewFromInt(101)), "buy fill %s", buy)
	assert.True(t, sell.Equal(decimal.NewFromInt(99)), "sell fill %s", sell)
}

func TestEntryFloorsQuantityToWholeShares(t *testing.T) {
	exec := NewExecutionModel(execConfig(0, 0, 0))

	fill, ok := exec.Entry(100, decimal.NewFromInt(1050), decimal.NewFromInt(100_000), 0)
	require.True(t, ok)
	assert.Equal(t, int64(10), fill.Quantity)
	assert.True(t, fill.TotalAmount.Equal(decimal.NewFromInt(1000)))
}

func TestEntryClampsNotionalToAvailableCash(t *testing.T) {
	exec := NewExecutionModel(execConfig(0, 0, 0))

	fill, ok := exec.Entry(100, decimal.NewFromInt(50_000), decimal.NewFromInt(550), 0)
	require.True(t, ok)
	assert.Equal(t, int64(5), fill.Quantity)
}

func TestEntrySkipsWhenOneShareUnaffordable(t *testing.T) {
	exec := NewExecutionModel(execConfig(0, 0, 0))

	_, ok := exec.Entry(100, decimal.NewFromInt(99), decimal.NewFromInt(100_000), 0)
	assert.False(t, ok)

	_, ok = exec.Entry(100, decimal.NewFromInt(10_000), decimal.NewFromInt(50), 0)
	assert.False(t, ok)
}

func TestEntryHonorsRequestedQuantityCap(t *testing.T) {
	exec := NewExecutionModel(execConfig(0, 0, 0))

	fill, ok := exec.Entry(100, decimal.NewFromInt(10_000), decimal.NewFromInt(100_000), 3)
	require.True(t, ok)
	assert.Equal(t, int64(3), fill.Quantity)
}

func TestEntryShrinksQuantityWhenCostsExceedCash(t *testing.T) {
	// 1% brokerage; 10 shares at 100 cost 1010 total, but only 1000 is
	// available, so one share must be given up.
	exec := NewExecutionModel(execConfig(0, 0.01, 0))

	fill, ok := exec.Entry(100, decimal.NewFromInt(1000), decimal.NewFromInt(1000), 0)
	require.True(t, ok)
	assert.Equal(t, int64(9), fill.Quantity)
	assert.True(t, fill.TotalAmount.LessThanOrEqual(decimal.NewFromInt(1000)))
}

func TestEntryIncludesCostsInTotal(t *testing.T) {
	exec := NewExecutionModel(execConfig(0, 0.001, 0))

	fill, ok := exec.Entry(100, decimal.NewFromInt(1000), decimal.NewFromInt(100_000), 0)
	require.True(t, ok)
	assert.True(t, fill.GrossAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, fill.Cost.Equal(decimal.NewFromInt(1)))
	assert.True(t, fill.TotalAmount.Equal(decimal.NewFromInt(1001)))
}

func TestExitAppliesSTTSellSideOnly(t *testing.T) {
	cfg := execConfig(0, 0.001, 0.001)
	exec := NewExecutionModel(cfg)

	entry, ok := exec.Entry(100, decimal.NewFromInt(1000), decimal.NewFromInt(100_000), 0)
	require.True(t, ok)
	// Entry cost excludes STT: 0.1% of 1000.
	assert.True(t, entry.Cost.Equal(decimal.NewFromInt(1)))

	exit := exec.Exit(100, 10)
	// Exit cost includes STT: 0.2% of 1000.
	assert.True(t, exit.Cost.Equal(decimal.NewFromInt(2)), "exit cost %s", exit.Cost)
	assert.True(t, exit.NetAmount.Equal(decimal.NewFromInt(998)))
}

func TestExitZeroQuantityIsZeroFill(t *testing.T) {
	exec := NewExecutionModel(execConfig(0.01, 0.001, 0.001))
	exit := exec.Exit(100, 0)
	assert.True(t, exit.GrossAmount.IsZero())
	assert.True(t, exit.NetAmount.IsZero())
}
