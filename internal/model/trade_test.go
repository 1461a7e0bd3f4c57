package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeCloseSetsAllExitFields(t *testing.T) {
	entry := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	exit := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	tr := &Trade{
		Symbol:         "RELIANCE",
		EntryDate:      entry,
		EntryPrice:     decimal.NewFromInt(100),
		Quantity:       10,
		InvestedAmount: decimal.NewFromInt(1000),
		EntryReason:    "ma_crossover",
	}
	require.True(t, tr.IsOpen())

	tr.Close(exit, decimal.NewFromInt(110), decimal.NewFromInt(1100), "rsi_overbought")

	assert.False(t, tr.IsOpen())
	assert.True(t, tr.PnL.Equal(decimal.NewFromInt(100)))
	assert.True(t, tr.PnLPct.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 10, tr.HoldingDays)
	assert.Equal(t, "rsi_overbought", tr.ExitReason)
}

func TestTradeClosePnLPctGuardsZeroInvestment(t *testing.T) {
	tr := &Trade{Symbol: "X", EntryDate: time.Now()}
	tr.Close(time.Now(), decimal.Zero, decimal.Zero, "backtest_end")
	assert.True(t, tr.PnLPct.IsZero())
}

func TestDayNormalizesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2024, 6, 15, 15, 30, 0, 0, loc)
	d := Day(ts)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, time.UTC, d.Location())
}

func TestLastBarOnOrBefore(t *testing.T) {
	bars := []Bar{
		{Date: Day(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), Close: 1},
		{Date: Day(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), Close: 3},
		{Date: Day(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)), Close: 5},
	}

	bar, ok := LastBarOnOrBefore(bars, Day(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)))
	require.True(t, ok)
	assert.Equal(t, 3.0, bar.Close)

	bar, ok = LastBarOnOrBefore(bars, Day(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	require.True(t, ok)
	assert.Equal(t, 5.0, bar.Close)

	_, ok = LastBarOnOrBefore(bars, Day(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, ok)
}
