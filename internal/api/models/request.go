package models

// BacktestRequest represents the request body for running a backtest
type BacktestRequest struct {
	DataSource DataSourceConfig `json:"data_source" binding:"required"`
	Config     BacktestConfig   `json:"config" binding:"required"`
	Options    BacktestOptions  `json:"options,omitempty"`
}

// DataSourceConfig selects which local datasets to load
type DataSourceConfig struct {
	Dir       string   `json:"dir,omitempty"`     // default: DATA_DIR env or ./data
	Symbols   []string `json:"symbols,omitempty"` // empty = every dataset in dir
	StartDate string   `json:"start_date,omitempty"` // YYYY-MM-DD, empty = dataset start
	EndDate   string   `json:"end_date,omitempty"`   // YYYY-MM-DD, empty = dataset end
}

// BacktestConfig contains portfolio and strategy configuration
type BacktestConfig struct {
	PortfolioFile string          `json:"portfolio_file,omitempty"`
	Portfolio     PortfolioConfig `json:"portfolio,omitempty"`
	Strategy      StrategyConfig  `json:"strategy" binding:"required"`
	RiskFreeRate  float64         `json:"risk_free_rate,omitempty"`
}

// PortfolioConfig defines capital, sizing, limit and cost parameters
type PortfolioConfig struct {
	Name              string  `json:"name,omitempty"`
	InitialCapital    float64 `json:"initial_capital"`
	SizingMethod      string  `json:"sizing_method"`
	SizingValue       float64 `json:"sizing_value,omitempty"`
	MaxTradesPerWeek  int     `json:"max_trades_per_week"`
	MaxTradesPerMonth int     `json:"max_trades_per_month"`
	MaxPositions      int     `json:"max_positions"`
	BrokerageRate     float64 `json:"brokerage_rate,omitempty"`
	TransactionRate   float64 `json:"transaction_rate,omitempty"`
	STTRate           float64 `json:"stt_rate,omitempty"`
	SlippageRate      float64 `json:"slippage_rate,omitempty"`
	CashReservePct    float64 `json:"cash_reserve_pct,omitempty"`
}

// StrategyConfig defines strategy and its parameters
type StrategyConfig struct {
	Name   string                 `json:"name" binding:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// BacktestOptions contains optional backtest parameters
type BacktestOptions struct {
	IncludeTrades      bool `json:"include_trades,omitempty"`       // default: false
	IncludeEquityCurve bool `json:"include_equity_curve,omitempty"` // default: false
}

// CompareBacktestRequest represents a request to compare multiple backtests
type CompareBacktestRequest struct {
	DataSource DataSourceConfig    `json:"data_source" binding:"required"`
	BaseConfig BacktestConfig      `json:"base_config" binding:"required"`
	Variations []BacktestVariation `json:"variations" binding:"required"`
}

// BacktestVariation defines a variation to test
type BacktestVariation struct {
	Name   string         `json:"name" binding:"required"`
	Config BacktestConfig `json:"config" binding:"required"`
}

// RankRequest represents a request to rank symbols by trading potential
type RankRequest struct {
	Dir     string `form:"dir,omitempty"`
	Symbols string `form:"symbols,omitempty"` // comma-separated, empty = all
	Limit   int    `form:"limit,omitempty"`   // default: 10
}
