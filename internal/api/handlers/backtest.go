package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stock-backtest/internal/analysis"
	"stock-backtest/internal/api/models"
	"stock-backtest/internal/backtest"
	"stock-backtest/internal/config"
	"stock-backtest/internal/data"
	"stock-backtest/internal/metrics"
	"stock-backtest/internal/model"
	"stock-backtest/internal/strategy"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// storedRun retains a finished run so trade and equity histories can be
// fetched later by ID without re-running the simulation.
type storedRun struct {
	result  *backtest.Result
	metrics analysis.Metrics
	created time.Time
}

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	log zerolog.Logger

	mu   sync.RWMutex
	runs map[string]*storedRun
}

// maxStoredRuns bounds the in-memory run registry; the oldest run is evicted
// once the bound is hit.
const maxStoredRuns = 100

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(log zerolog.Logger) *BacktestHandler {
	return &BacktestHandler{
		log:  log,
		runs: make(map[string]*storedRun),
	}
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	bars, start, end, errResp := h.loadData(req.DataSource)
	if errResp != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: *errResp})
		return
	}

	result, m, errResp := h.run(req.Config, bars, start, end)
	if errResp != nil {
		status := http.StatusBadRequest
		if errResp.Code == "BACKTEST_ERROR" {
			status = http.StatusInternalServerError
		}
		c.JSON(status, models.ErrorResponse{Error: *errResp})
		return
	}

	h.store(result, m)
	metrics.BacktestsTotal.WithLabelValues(req.Config.Strategy.Name).Inc()
	metrics.TradesSimulated.Add(float64(result.TotalTrades))

	response := models.BacktestResponse{
		ID:      result.ID,
		Status:  "completed",
		Summary: buildSummary(result),
		Metrics: buildMetrics(m),
	}
	if req.Options.IncludeTrades {
		response.Trades = convertTrades(result)
	}
	if req.Options.IncludeEquityCurve {
		response.EquityCurve = convertSnapshots(result)
	}
	c.JSON(http.StatusOK, response)
}

// GetTrades handles GET /api/v1/backtest/:id/trades
func (h *BacktestHandler) GetTrades(c *gin.Context) {
	run, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_NOT_FOUND",
				Message: "no stored backtest with that id",
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     run.result.ID,
		"trades": convertTrades(run.result),
	})
}

// GetEquity handles GET /api/v1/backtest/:id/equity
func (h *BacktestHandler) GetEquity(c *gin.Context) {
	run, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_NOT_FOUND",
				Message: "no stored backtest with that id",
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           run.result.ID,
		"equity_curve": convertSnapshots(run.result),
	})
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	// Load data once, share it across variations.
	bars, start, end, errResp := h.loadData(req.DataSource)
	if errResp != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: *errResp})
		return
	}

	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	for _, variation := range req.Variations {
		merged := mergeRequestConfig(req.BaseConfig, variation.Config)
		result, m, errResp := h.run(merged, bars, start, end)
		if errResp != nil {
			h.log.Warn().
				Str("variation", variation.Name).
				Str("code", errResp.Code).
				Str("reason", errResp.Message).
				Msg("comparison variation skipped")
			continue
		}
		comparison = append(comparison, models.ComparisonResult{
			Name:    variation.Name,
			Summary: buildSummary(result),
			Metrics: buildMetrics(m),
		})
	}

	c.JSON(http.StatusOK, models.CompareBacktestResponse{Comparison: comparison})
}

// Helper methods

// DefaultDataDir resolves the dataset directory: DATA_DIR env, else ./data
// relative to the working directory.
func DefaultDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "data")
	}
	return "./data"
}

func (h *BacktestHandler) loadData(ds models.DataSourceConfig) (map[string][]model.Bar, time.Time, time.Time, *models.ErrorDetail) {
	var start, end time.Time
	var err error
	if ds.StartDate != "" {
		start, err = time.ParseInLocation("2006-01-02", ds.StartDate, time.UTC)
		if err != nil {
			return nil, start, end, &models.ErrorDetail{
				Code:    "INVALID_DATE",
				Message: "start_date must be in YYYY-MM-DD format",
			}
		}
	}
	if ds.EndDate != "" {
		end, err = time.ParseInLocation("2006-01-02", ds.EndDate, time.UTC)
		if err != nil {
			return nil, start, end, &models.ErrorDetail{
				Code:    "INVALID_DATE",
				Message: "end_date must be in YYYY-MM-DD format",
			}
		}
	}

	dir := ds.Dir
	if dir == "" {
		dir = DefaultDataDir()
	}
	bars, err := data.LoadDir(dir, ds.Symbols)
	if err != nil {
		return nil, start, end, &models.ErrorDetail{
			Code:    "DATA_LOAD_ERROR",
			Message: err.Error(),
		}
	}
	return bars, start, end, nil
}

// run builds a portfolio config and strategy from the request and executes
// one simulation.
func (h *BacktestHandler) run(reqCfg models.BacktestConfig, bars map[string][]model.Bar, start, end time.Time) (*backtest.Result, analysis.Metrics, *models.ErrorDetail) {
	portfolio := h.buildPortfolio(reqCfg)
	cfg, err := portfolio.ToModelConfig(reqCfg.RiskFreeRate)
	if err != nil {
		return nil, analysis.Metrics{}, &models.ErrorDetail{
			Code:    "INVALID_CONFIG",
			Message: err.Error(),
		}
	}

	strat, err := strategy.New(reqCfg.Strategy.Name, reqCfg.Strategy.Params)
	if err != nil {
		return nil, analysis.Metrics{}, &models.ErrorDetail{
			Code:    "INVALID_STRATEGY",
			Message: err.Error(),
		}
	}

	engine, err := backtest.New(strat, &cfg, h.log)
	if err != nil {
		return nil, analysis.Metrics{}, &models.ErrorDetail{
			Code:    "INVALID_CONFIG",
			Message: err.Error(),
		}
	}
	result, err := engine.Run(bars, start, end)
	if err != nil {
		return nil, analysis.Metrics{}, &models.ErrorDetail{
			Code:    "BACKTEST_ERROR",
			Message: err.Error(),
		}
	}

	m := analysis.NewCalculator(cfg.RiskFreeRate).CalculateAll(result)
	return result, m, nil
}

// buildPortfolio merges an optional preset file with request overrides, the
// preset being the base. Preset files live under PORTFOLIO_DIR (default
// examples/portfolios) and are referenced by bare name.
func (h *BacktestHandler) buildPortfolio(reqCfg models.BacktestConfig) config.PortfolioConfig {
	override := config.PortfolioConfig{
		Name:              reqCfg.Portfolio.Name,
		InitialCapital:    reqCfg.Portfolio.InitialCapital,
		SizingMethod:      reqCfg.Portfolio.SizingMethod,
		SizingValue:       reqCfg.Portfolio.SizingValue,
		MaxTradesPerWeek:  reqCfg.Portfolio.MaxTradesPerWeek,
		MaxTradesPerMonth: reqCfg.Portfolio.MaxTradesPerMonth,
		MaxPositions:      reqCfg.Portfolio.MaxPositions,
		BrokerageRate:     reqCfg.Portfolio.BrokerageRate,
		TransactionRate:   reqCfg.Portfolio.TransactionRate,
		STTRate:           reqCfg.Portfolio.STTRate,
		SlippageRate:      reqCfg.Portfolio.SlippageRate,
		CashReservePct:    reqCfg.Portfolio.CashReservePct,
	}
	if reqCfg.PortfolioFile == "" {
		return override
	}

	path := filepath.Join(PortfolioDir(), reqCfg.PortfolioFile+".yaml")
	loaded, err := config.LoadUnchecked(path)
	if err != nil {
		h.log.Warn().Str("path", path).Err(err).Msg("failed to load portfolio preset")
		return override
	}
	return config.MergePortfolio(loaded.Portfolio, override)
}

// PortfolioDir resolves the portfolio preset directory.
func PortfolioDir() string {
	if dir := os.Getenv("PORTFOLIO_DIR"); dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "examples", "portfolios")
	}
	return "./examples/portfolios"
}

func mergeRequestConfig(base, override models.BacktestConfig) models.BacktestConfig {
	merged := base
	if override.PortfolioFile != "" {
		merged.PortfolioFile = override.PortfolioFile
	}
	if override.Portfolio.InitialCapital != 0 {
		merged.Portfolio.InitialCapital = override.Portfolio.InitialCapital
	}
	if override.Portfolio.SizingMethod != "" {
		merged.Portfolio.SizingMethod = override.Portfolio.SizingMethod
	}
	if override.Portfolio.SizingValue != 0 {
		merged.Portfolio.SizingValue = override.Portfolio.SizingValue
	}
	if override.Portfolio.MaxTradesPerWeek != 0 {
		merged.Portfolio.MaxTradesPerWeek = override.Portfolio.MaxTradesPerWeek
	}
	if override.Portfolio.MaxTradesPerMonth != 0 {
		merged.Portfolio.MaxTradesPerMonth = override.Portfolio.MaxTradesPerMonth
	}
	if override.Portfolio.MaxPositions != 0 {
		merged.Portfolio.MaxPositions = override.Portfolio.MaxPositions
	}
	if override.Portfolio.BrokerageRate != 0 {
		merged.Portfolio.BrokerageRate = override.Portfolio.BrokerageRate
	}
	if override.Portfolio.TransactionRate != 0 {
		merged.Portfolio.TransactionRate = override.Portfolio.TransactionRate
	}
	if override.Portfolio.STTRate != 0 {
		merged.Portfolio.STTRate = override.Portfolio.STTRate
	}
	if override.Portfolio.SlippageRate != 0 {
		merged.Portfolio.SlippageRate = override.Portfolio.SlippageRate
	}
	if override.Portfolio.CashReservePct != 0 {
		merged.Portfolio.CashReservePct = override.Portfolio.CashReservePct
	}
	if override.Portfolio.Name != "" {
		merged.Portfolio.Name = override.Portfolio.Name
	}
	if override.Strategy.Name != "" {
		merged.Strategy = override.Strategy
	}
	if override.RiskFreeRate != 0 {
		merged.RiskFreeRate = override.RiskFreeRate
	}
	return merged
}

// store registers a finished run, evicting the oldest entry past the bound.
func (h *BacktestHandler) store(result *backtest.Result, m analysis.Metrics) {
	if result.ID == "" {
		h.log.Warn().Msg("run has no id; trade and equity history will not be retrievable")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.runs) >= maxStoredRuns {
		var oldestID string
		var oldest time.Time
		for id, run := range h.runs {
			if oldestID == "" || run.created.Before(oldest) {
				oldestID = id
				oldest = run.created
			}
		}
		delete(h.runs, oldestID)
	}
	h.runs[result.ID] = &storedRun{result: result, metrics: m, created: time.Now()}
}

func (h *BacktestHandler) lookup(id string) (*storedRun, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	run, ok := h.runs[id]
	return run, ok
}

// Conversion helpers

func buildSummary(result *backtest.Result) models.BacktestSummary {
	initial, _ := result.InitialValue.Float64()
	final, _ := result.FinalValue.Float64()
	returnPct, _ := result.TotalReturnPct.Float64()
	return models.BacktestSummary{
		BacktestWindow:         models.TimeWindow{Start: result.StartDate, End: result.EndDate},
		InitialValue:           initial,
		FinalValue:             final,
		TotalReturnPct:         returnPct,
		TotalTrades:            result.TotalTrades,
		WinningTrades:          result.WinningTrades,
		LosingTrades:           result.LosingTrades,
		WinRatePct:             result.WinRate,
		ProfitFactor:           models.JSONFloat(result.ProfitFactor),
		AvgHoldingDays:         result.AvgHoldingDays,
		MaxConcurrentPositions: result.MaxConcurrentPositions,
	}
}

func buildMetrics(m analysis.Metrics) models.Metrics {
	return models.Metrics{
		TotalReturn:         models.JSONFloat(m.TotalReturn),
		AnnualReturn:        models.JSONFloat(m.AnnualReturn),
		MonthlyReturn:       models.JSONFloat(m.MonthlyReturn),
		SharpeRatio:         models.JSONFloat(m.SharpeRatio),
		SortinoRatio:        models.JSONFloat(m.SortinoRatio),
		CalmarRatio:         models.JSONFloat(m.CalmarRatio),
		MaxDrawdown:         models.JSONFloat(m.MaxDrawdown),
		MaxDrawdownDuration: m.MaxDrawdownDuration,
		AvgDrawdown:         models.JSONFloat(m.AvgDrawdown),
		TotalTrades:         m.TotalTrades,
		WinRate:             models.JSONFloat(m.WinRate),
		ProfitFactor:        models.JSONFloat(m.ProfitFactor),
		AvgTradeReturn:      models.JSONFloat(m.AvgTradeReturn),
		AvgWin:              models.JSONFloat(m.AvgWin),
		AvgLoss:             models.JSONFloat(m.AvgLoss),
		LargestWin:          models.JSONFloat(m.LargestWin),
		LargestLoss:         models.JSONFloat(m.LargestLoss),
		MarketExposure:      models.JSONFloat(m.MarketExposure),
	}
}

func convertTrades(result *backtest.Result) []models.Trade {
	trades := make([]models.Trade, len(result.Trades))
	for i, t := range result.Trades {
		entryPrice, _ := t.EntryPrice.Float64()
		invested, _ := t.InvestedAmount.Float64()
		exitPrice, _ := t.ExitPrice.Float64()
		exitAmount, _ := t.ExitAmount.Float64()
		pnl, _ := t.PnL.Float64()
		pnlPct, _ := t.PnLPct.Float64()
		trades[i] = models.Trade{
			Symbol:         t.Symbol,
			EntryDate:      t.EntryDate,
			EntryPrice:     entryPrice,
			Quantity:       t.Quantity,
			InvestedAmount: invested,
			ExitDate:       t.ExitDate,
			ExitPrice:      exitPrice,
			ExitAmount:     exitAmount,
			PNL:            pnl,
			PNLPct:         pnlPct,
			HoldingDays:    t.HoldingDays,
			EntryReason:    t.EntryReason,
			ExitReason:     t.ExitReason,
		}
	}
	return trades
}

func convertSnapshots(result *backtest.Result) []models.EquityPoint {
	curve := make([]models.EquityPoint, len(result.Snapshots))
	for i, s := range result.Snapshots {
		cash, _ := s.Cash.Float64()
		invested, _ := s.Invested.Float64()
		equity, _ := s.Equity.Float64()
		curve[i] = models.EquityPoint{
			Date:            s.Date,
			Cash:            cash,
			Invested:        invested,
			Equity:          equity,
			OpenPositions:   s.OpenPositions,
			TradesThisWeek:  s.TradesThisWeek,
			TradesThisMonth: s.TradesThisMonth,
		}
	}
	return curve
}
