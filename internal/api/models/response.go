package models

import (
	"math"
	"strconv"
	"time"
)

// JSONFloat is a float64 that marshals NaN and infinities as null instead of
// breaking the encoder. Profit factor is +Inf for a run with wins and no
// losses, and JSON has no spelling for that.
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Summary     BacktestSummary `json:"summary"`
	Metrics     Metrics         `json:"metrics"`
	Trades      []Trade         `json:"trades,omitempty"`
	EquityCurve []EquityPoint   `json:"equity_curve,omitempty"`
}

// BacktestSummary contains aggregated backtest results
type BacktestSummary struct {
	BacktestWindow         TimeWindow `json:"backtest_window"`
	InitialValue           float64    `json:"initial_value"`
	FinalValue             float64    `json:"final_value"`
	TotalReturnPct         float64    `json:"total_return_pct"`
	TotalTrades            int        `json:"total_trades"`
	WinningTrades          int        `json:"winning_trades"`
	LosingTrades           int        `json:"losing_trades"`
	WinRatePct             float64    `json:"win_rate_pct"`
	ProfitFactor           JSONFloat  `json:"profit_factor"`
	AvgHoldingDays         float64    `json:"avg_holding_days"`
	MaxConcurrentPositions int        `json:"max_concurrent_positions"`
}

// Metrics contains risk-adjusted performance statistics
type Metrics struct {
	TotalReturn         JSONFloat `json:"total_return"`
	AnnualReturn        JSONFloat `json:"annual_return"`
	MonthlyReturn       JSONFloat `json:"monthly_return"`
	SharpeRatio         JSONFloat `json:"sharpe_ratio"`
	SortinoRatio        JSONFloat `json:"sortino_ratio"`
	CalmarRatio         JSONFloat `json:"calmar_ratio"`
	MaxDrawdown         JSONFloat `json:"max_drawdown"`
	MaxDrawdownDuration int       `json:"max_drawdown_duration"`
	AvgDrawdown         JSONFloat `json:"avg_drawdown"`
	TotalTrades         int       `json:"total_trades"`
	WinRate             JSONFloat `json:"win_rate"`
	ProfitFactor        JSONFloat `json:"profit_factor"`
	AvgTradeReturn      JSONFloat `json:"avg_trade_return"`
	AvgWin              JSONFloat `json:"avg_win"`
	AvgLoss             JSONFloat `json:"avg_loss"`
	LargestWin          JSONFloat `json:"largest_win"`
	LargestLoss         JSONFloat `json:"largest_loss"`
	MarketExposure      JSONFloat `json:"market_exposure"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Trade represents one completed round trip
type Trade struct {
	Symbol         string    `json:"symbol"`
	EntryDate      time.Time `json:"entry_date"`
	EntryPrice     float64   `json:"entry_price"`
	Quantity       int64     `json:"quantity"`
	InvestedAmount float64   `json:"invested_amount"`
	ExitDate       time.Time `json:"exit_date"`
	ExitPrice      float64   `json:"exit_price"`
	ExitAmount     float64   `json:"exit_amount"`
	PNL            float64   `json:"pnl"`
	PNLPct         float64   `json:"pnl_pct"`
	HoldingDays    int       `json:"holding_days"`
	EntryReason    string    `json:"entry_reason,omitempty"`
	ExitReason     string    `json:"exit_reason,omitempty"`
}

// EquityPoint represents one sample of the portfolio value history
type EquityPoint struct {
	Date            time.Time `json:"date"`
	Cash            float64   `json:"cash"`
	Invested        float64   `json:"invested"`
	Equity          float64   `json:"equity"`
	OpenPositions   int       `json:"open_positions"`
	TradesThisWeek  int       `json:"trades_this_week"`
	TradesThisMonth int       `json:"trades_this_month"`
}

// CompareBacktestResponse represents the response from a comparison
type CompareBacktestResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string          `json:"name"`
	Summary BacktestSummary `json:"summary"`
	Metrics Metrics         `json:"metrics"`
}

// RankResponse represents the response from ranking symbols
type RankResponse struct {
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked symbol
type Ranking struct {
	Rank          int     `json:"rank"`
	Symbol        string  `json:"symbol"`
	Count         int     `json:"count"`
	MinClose      float64 `json:"min_close"`
	MaxClose      float64 `json:"max_close"`
	SpreadP95P05  float64 `json:"spread_p95_p05"`
	BuyHoldReturn float64 `json:"buy_hold_return"`
	OracleProfit  float64 `json:"oracle_profit"`
}

// PortfolioInfo represents information about a portfolio preset
type PortfolioInfo struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	File  string         `json:"file"`
	Specs PortfolioSpecs `json:"specs"`
}

// PortfolioSpecs contains the headline preset parameters
type PortfolioSpecs struct {
	InitialCapital float64 `json:"initial_capital"`
	SizingMethod   string  `json:"sizing_method"`
	MaxPositions   int     `json:"max_positions"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// DatasetInfo represents one local dataset
type DatasetInfo struct {
	Symbol    string    `json:"symbol"`
	Rows      int       `json:"rows"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
