package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"stock-backtest/internal/model"
)

// Snapshot is a read-only view of the portfolio at the end of one simulated
// day, retained for equity-curve reconstruction. It is a lightweight record,
// not a deep copy of the ledger: equity values open positions at invested
// amount, so long backtests stay O(days) in memory.
type Snapshot struct {
	Date          time.Time       `json:"date"`
	Cash          decimal.Decimal `json:"cash"`
	Invested      decimal.Decimal `json:"invested"`
	Equity        decimal.Decimal `json:"equity"`
	OpenPositions int             `json:"open_positions"`
	OpenSymbols   []string        `json:"open_symbols,omitempty"`

	TradesThisWeek  int `json:"trades_this_week"`
	TradesThisMonth int `json:"trades_this_month"`
}

// Result is the read-only output of a finished run.
type Result struct {
	ID string `json:"id"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	InitialValue   decimal.Decimal `json:"initial_value"`
	FinalValue     decimal.Decimal `json:"final_value"`
	TotalReturn    decimal.Decimal `json:"total_return"`
	TotalReturnPct decimal.Decimal `json:"total_return_pct"`

	TotalTrades   int `json:"total_trades"`
	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`

	// WinRate is a percentage (100 = every trade won).
	WinRate        float64         `json:"win_rate"`
	AvgWin         decimal.Decimal `json:"avg_win"`
	AvgLoss        decimal.Decimal `json:"avg_loss"`
	ProfitFactor   float64         `json:"profit_factor"`
	AvgHoldingDays float64         `json:"avg_holding_days"`

	MaxConcurrentPositions int `json:"max_concurrent_positions"`

	Trades    []*model.Trade `json:"trades"`
	Snapshots []Snapshot     `json:"snapshots"`
}
