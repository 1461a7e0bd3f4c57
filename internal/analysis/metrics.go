package analysis

import (
	"math"
	"time"

	"stock-backtest/internal/backtest"
	"stock-backtest/internal/model"
)

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// Metrics is the full set of risk-adjusted performance statistics derived
// from a finished run. Ratios are fractions (0.05 = 5%) except where noted;
// drawdowns are negative fractions. Every field has a defined default for
// degenerate inputs — a run with no trades or a single snapshot produces
// zeros, never NaN.
type Metrics struct {
	TotalReturn   float64 `json:"total_return"`
	AnnualReturn  float64 `json:"annual_return"`
	MonthlyReturn float64 `json:"monthly_return"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`

	MaxDrawdown         float64 `json:"max_drawdown"`
	MaxDrawdownDuration int     `json:"max_drawdown_duration"`
	AvgDrawdown         float64 `json:"avg_drawdown"`

	TotalTrades    int     `json:"total_trades"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	AvgTradeReturn float64 `json:"avg_trade_return"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"`

	MarketExposure float64 `json:"market_exposure"`
}

// Calculator computes metrics against a configured annual risk-free rate.
type Calculator struct {
	riskFreeRate float64
}

// NewCalculator builds a Calculator; a zero rate falls back to the default.
func NewCalculator(riskFreeRate float64) *Calculator {
	if riskFreeRate == 0 {
		riskFreeRate = model.DefaultRiskFreeRate
	}
	return &Calculator{riskFreeRate: riskFreeRate}
}

// CalculateAll derives every metric from the run's snapshot history and
// closed-trade list. It is pure: identical inputs give identical outputs and
// the result is never written back into anything.
func (c *Calculator) CalculateAll(res *backtest.Result) Metrics {
	curve := equityCurve(res.Snapshots)
	initial, _ := res.InitialValue.Float64()

	m := Metrics{
		TotalReturn:         c.TotalReturn(curve, initial),
		MaxDrawdown:         c.MaxDrawdown(curve),
		MaxDrawdownDuration: c.MaxDrawdownDuration(curve),
		AvgDrawdown:         c.AvgDrawdown(curve),
		SharpeRatio:         c.SharpeRatio(curve),
		SortinoRatio:        c.SortinoRatio(curve),
		TotalTrades:         len(res.Trades),
	}
	m.AnnualReturn = c.AnnualReturn(curve, initial)
	m.MonthlyReturn = math.Pow(1+m.AnnualReturn, 1.0/12) - 1
	if m.MaxDrawdown != 0 {
		m.CalmarRatio = m.AnnualReturn / math.Abs(m.MaxDrawdown)
	}

	c.fillTradeStats(&m, res.Trades)
	m.MarketExposure = c.MarketExposure(curve, res.Trades)
	return m
}

// equityPoint is one sample of the reconstructed equity curve.
type equityPoint struct {
	date  time.Time
	value float64
}

func equityCurve(snapshots []backtest.Snapshot) []equityPoint {
	curve := make([]equityPoint, len(snapshots))
	for i, s := range snapshots {
		v, _ := s.Equity.Float64()
		curve[i] = equityPoint{date: s.Date, value: v}
	}
	return curve
}

// TotalReturn is (final - initial) / initial; 0 on an empty curve.
func (c *Calculator) TotalReturn(curve []equityPoint, initial float64) float64 {
	if len(curve) == 0 || initial == 0 {
		return 0
	}
	return (curve[len(curve)-1].value - initial) / initial
}

// AnnualReturn is the CAGR over the curve's calendar span; 0 with fewer than
// two distinct dates.
func (c *Calculator) AnnualReturn(curve []equityPoint, initial float64) float64 {
	if len(curve) < 2 {
		return 0
	}
	days := curve[len(curve)-1].date.Sub(curve[0].date).Hours() / 24
	if days <= 0 {
		return 0
	}
	total := c.TotalReturn(curve, initial)
	return math.Pow(1+total, 365.25/days) - 1
}

// SharpeRatio is mean excess daily return over the std of daily returns,
// annualized; 0 on fewer than two samples or zero variance.
func (c *Calculator) SharpeRatio(curve []equityPoint) float64 {
	returns := dailyReturns(curve)
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	excess := mean(returns) - c.riskFreeRate/tradingDaysPerYear
	return excess / std * math.Sqrt(tradingDaysPerYear)
}

// SortinoRatio uses the same numerator as Sharpe but only downside deviation
// in the denominator; 0 when no negative daily returns exist.
func (c *Calculator) SortinoRatio(curve []equityPoint) float64 {
	returns := dailyReturns(curve)
	if len(returns) == 0 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	std := stddev(downside)
	if std == 0 {
		return 0
	}
	excess := mean(returns) - c.riskFreeRate/tradingDaysPerYear
	return excess / std * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdown is the deepest peak-to-trough decline as a negative fraction.
func (c *Calculator) MaxDrawdown(curve []equityPoint) float64 {
	worst := 0.0
	runningMax := math.Inf(-1)
	for _, p := range curve {
		if p.value > runningMax {
			runningMax = p.value
		}
		if runningMax > 0 {
			dd := (p.value - runningMax) / runningMax
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// MaxDrawdownDuration is the longest consecutive run of samples below the
// running equity peak.
func (c *Calculator) MaxDrawdownDuration(curve []equityPoint) int {
	longest, current := 0, 0
	runningMax := math.Inf(-1)
	for _, p := range curve {
		if p.value > runningMax {
			runningMax = p.value
		}
		if p.value < runningMax {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

// AvgDrawdown is the mean of the negative drawdown samples; 0 if none.
func (c *Calculator) AvgDrawdown(curve []equityPoint) float64 {
	sum := 0.0
	count := 0
	runningMax := math.Inf(-1)
	for _, p := range curve {
		if p.value > runningMax {
			runningMax = p.value
		}
		if runningMax > 0 {
			if dd := (p.value - runningMax) / runningMax; dd < 0 {
				sum += dd
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// MarketExposure approximates the fraction of the horizon with capital
// deployed: total holding days over calendar days, capped at 1. Overlapping
// positions overstate exposure; that approximation is deliberate.
func (c *Calculator) MarketExposure(curve []equityPoint, trades []*model.Trade) float64 {
	if len(curve) < 2 {
		return 0
	}
	totalDays := curve[len(curve)-1].date.Sub(curve[0].date).Hours() / 24
	if totalDays <= 0 {
		return 0
	}
	held := 0
	for _, t := range trades {
		held += t.HoldingDays
	}
	return math.Min(float64(held)/totalDays, 1.0)
}

func (c *Calculator) fillTradeStats(m *Metrics, trades []*model.Trade) {
	if len(trades) == 0 {
		return
	}
	var wins, losses int
	var grossProfit, grossLoss, returnSum float64
	for _, t := range trades {
		pnl, _ := t.PnL.Float64()
		pct, _ := t.PnLPct.Float64()
		returnSum += pct / 100
		switch {
		case pnl > 0:
			wins++
			grossProfit += pnl
			if pnl > m.LargestWin {
				m.LargestWin = pnl
			}
		case pnl < 0:
			losses++
			grossLoss += -pnl
			if pnl < m.LargestLoss {
				m.LargestLoss = pnl
			}
		}
	}
	m.WinRate = float64(wins) / float64(len(trades))
	m.AvgTradeReturn = returnSum / float64(len(trades))
	if wins > 0 {
		m.AvgWin = grossProfit / float64(wins)
	}
	if losses > 0 {
		m.AvgLoss = -grossLoss / float64(losses)
	}
	switch {
	case grossLoss == 0 && grossProfit > 0:
		m.ProfitFactor = math.Inf(1)
	case grossLoss > 0:
		m.ProfitFactor = grossProfit / grossLoss
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the sample standard deviation; 0 with fewer than two samples.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mu := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func dailyReturns(curve []equityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1].value == 0 {
			continue
		}
		out = append(out, (curve[i].value-curve[i-1].value)/curve[i-1].value)
	}
	return out
}
