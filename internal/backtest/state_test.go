package backtest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-backtest/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOpenPositionDebitsCashAndCountsTrade(t *testing.T) {
	state := NewPortfolioState(decimal.NewFromInt(100_000), day(2024, 1, 1))

	tr := &model.Trade{
		Symbol:         "TCS",
		EntryDate:      day(2024, 1, 1),
		InvestedAmount: decimal.NewFromInt(30_000),
	}
	require.NoError(t, state.OpenPosition(tr))

	assert.True(t, state.Cash.Equal(decimal.NewFromInt(70_000)))
	assert.Equal(t, 1, state.TradesThisWeek)
	assert.Equal(t, 1, state.TradesThisMonth)
	assert.True(t, state.TotalInvested().Equal(decimal.NewFromInt(30_000)))
	assert.True(t, state.TotalValue().Equal(decimal.NewFromInt(100_000)))
}

func TestOpenPositionRejectsDuplicateSymbol(t *testing.T) {
	state := NewPortfolioState(decimal.NewFromInt(100_000), day(2024, 1, 1))
	require.NoError(t, state.OpenPosition(&model.Trade{Symbol: "TCS", InvestedAmount: decimal.NewFromInt(1)}))
	assert.Error(t, state.OpenPosition(&model.Trade{Symbol: "TCS", InvestedAmount: decimal.NewFromInt(1)}))
}

func TestClosePositionCreditsNetAndMovesTrade(t *testing.T) {
	state := NewPortfolioState(decimal.NewFromInt(100_000), day(2024, 1, 1))
	tr := &model.Trade{
		Symbol:         "INFY",
		EntryDate:      day(2024, 1, 1),
		InvestedAmount: decimal.NewFromInt(40_000),
	}
	require.NoError(t, state.OpenPosition(tr))

	closed, err := state.ClosePosition("INFY", day(2024, 1, 10), decimal.NewFromInt(110), decimal.NewFromInt(44_000), "take_profit")
	require.NoError(t, err)

	assert.True(t, state.Cash.Equal(decimal.NewFromInt(104_000)))
	assert.Empty(t, state.Positions)
	assert.Len(t, state.ClosedTrades, 1)
	assert.True(t, closed.PnL.Equal(decimal.NewFromInt(4_000)))

	_, err = state.ClosePosition("INFY", day(2024, 1, 11), decimal.Zero, decimal.Zero, "x")
	assert.Error(t, err)
}

func TestCanTakeTradeEnforcesAllLimits(t *testing.T) {
	cfg := &model.PortfolioConfig{MaxPositions: 2, MaxTradesPerWeek: 3, MaxTradesPerMonth: 4}
	state := NewPortfolioState(decimal.NewFromInt(100_000), day(2024, 1, 1))

	assert.True(t, state.CanTakeTrade(cfg))

	state.TradesThisWeek = 3
	assert.False(t, state.CanTakeTrade(cfg))
	state.TradesThisWeek = 0

	state.TradesThisMonth = 4
	assert.False(t, state.CanTakeTrade(cfg))
	state.TradesThisMonth = 0

	state.Positions["A"] = &model.Trade{}
	state.Positions["B"] = &model.Trade{}
	assert.False(t, state.CanTakeTrade(cfg))
}

func TestRollCalendarWindowsWeekly(t *testing.T) {
	start := day(2024, 1, 1)
	state := NewPortfolioState(decimal.NewFromInt(1), start)
	state.TradesThisWeek = 3

	// Six days in: same window.
	state.RollCalendarWindows(day(2024, 1, 6))
	assert.Equal(t, 3, state.TradesThisWeek)

	// Seventh day: counter resets, window re-anchors.
	state.RollCalendarWindows(day(2024, 1, 8))
	assert.Equal(t, 0, state.TradesThisWeek)
	assert.Equal(t, day(2024, 1, 8), state.WeekStart)
}

func TestRollCalendarWindowsMonthly(t *testing.T) {
	start := day(2024, 1, 15)
	state := NewPortfolioState(decimal.NewFromInt(1), start)
	state.TradesThisMonth = 5

	state.RollCalendarWindows(day(2024, 1, 31))
	assert.Equal(t, 5, state.TradesThisMonth)

	state.RollCalendarWindows(day(2024, 2, 1))
	assert.Equal(t, 0, state.TradesThisMonth)
	assert.Equal(t, day(2024, 2, 1), state.MonthStart)

	// Year rollover also counts as a month change.
	state.TradesThisMonth = 2
	state.RollCalendarWindows(day(2025, 2, 1))
	assert.Equal(t, 0, state.TradesThisMonth)
}

func TestAvailableCashWithholdsReserve(t *testing.T) {
	state := NewPortfolioState(decimal.NewFromInt(100_000), day(2024, 1, 1))

	avail := state.AvailableCash(decimal.NewFromFloat(0.1))
	assert.True(t, avail.Equal(decimal.NewFromInt(90_000)), "got %s", avail)

	// Reserve is a fraction of total value, not of cash: with 90k invested and
	// 10k cash, a 20% reserve exceeds the cash on hand.
	require.NoError(t, state.OpenPosition(&model.Trade{Symbol: "A", InvestedAmount: decimal.NewFromInt(90_000)}))
	avail = state.AvailableCash(decimal.NewFromFloat(0.2))
	assert.True(t, avail.IsZero(), "got %s", avail)
}
