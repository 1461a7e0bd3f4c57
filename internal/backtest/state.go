package backtest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stock-backtest/internal/model"
)

// PortfolioState is the mutable ledger of one backtest run: cash, open
// positions, closed trades, and rolling weekly/monthly trade counters.
// It is exclusively owned by a single Backtester; parallel runs must each
// construct their own instance.
type PortfolioState struct {
	Date time.Time
	Cash decimal.Decimal

	// Positions holds at most one open trade per symbol.
	Positions    map[string]*model.Trade
	ClosedTrades []*model.Trade

	TradesThisWeek  int
	TradesThisMonth int
	WeekStart       time.Time
	MonthStart      time.Time
}

// NewPortfolioState creates the ledger with all capital in cash.
func NewPortfolioState(initialCapital decimal.Decimal, start time.Time) *PortfolioState {
	return &PortfolioState{
		Date:       start,
		Cash:       initialCapital,
		Positions:  make(map[string]*model.Trade),
		WeekStart:  start,
		MonthStart: start,
	}
}

// TotalInvested is the sum of invested amounts across open positions.
func (p *PortfolioState) TotalInvested() decimal.Decimal {
	total := decimal.Zero
	for _, t := range p.Positions {
		total = total.Add(t.InvestedAmount)
	}
	return total
}

// TotalValue is cash plus open positions valued at their invested amount.
// Open positions are not marked to market; the invested-amount approximation
// understates interim drawdown but keeps the ledger cost-exact.
func (p *PortfolioState) TotalValue() decimal.Decimal {
	return p.Cash.Add(p.TotalInvested())
}

// AvailableCash is the cash free for new entries after withholding the
// configured reserve fraction of total portfolio value.
func (p *PortfolioState) AvailableCash(reservePct decimal.Decimal) decimal.Decimal {
	avail := p.Cash.Sub(p.TotalValue().Mul(reservePct))
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// CanTakeTrade reports whether a new entry is admissible under the position
// cap and the weekly/monthly trade limits. Pure predicate.
func (p *PortfolioState) CanTakeTrade(cfg *model.PortfolioConfig) bool {
	if len(p.Positions) >= cfg.MaxPositions {
		return false
	}
	if p.TradesThisWeek >= cfg.MaxTradesPerWeek {
		return false
	}
	if p.TradesThisMonth >= cfg.MaxTradesPerMonth {
		return false
	}
	return true
}

// RollCalendarWindows resets the weekly counter once 7 or more days have
// elapsed since the window opened, and the monthly counter when the calendar
// month changes. It must run once per simulated day, before any trade
// decision, so stale limits never leak across boundaries.
func (p *PortfolioState) RollCalendarWindows(date time.Time) {
	if p.WeekStart.IsZero() || date.Sub(p.WeekStart).Hours() >= 7*24 {
		p.TradesThisWeek = 0
		p.WeekStart = date
	}
	if p.MonthStart.IsZero() || date.Month() != p.MonthStart.Month() || date.Year() != p.MonthStart.Year() {
		p.TradesThisMonth = 0
		p.MonthStart = date
	}
}

// OpenPosition inserts a freshly filled trade, debits cash by its invested
// amount, and consumes one weekly and one monthly trade slot.
func (p *PortfolioState) OpenPosition(t *model.Trade) error {
	if _, ok := p.Positions[t.Symbol]; ok {
		return fmt.Errorf("position already open for %s", t.Symbol)
	}
	p.Positions[t.Symbol] = t
	p.Cash = p.Cash.Sub(t.InvestedAmount)
	p.TradesThisWeek++
	p.TradesThisMonth++
	return nil
}

// ClosePosition applies an exit fill: the trade's exit fields are set, net
// proceeds are credited to cash, and the trade moves to the closed list.
func (p *PortfolioState) ClosePosition(symbol string, exitDate time.Time, exitPrice, netAmount decimal.Decimal, reason string) (*model.Trade, error) {
	t, ok := p.Positions[symbol]
	if !ok {
		return nil, fmt.Errorf("no open position for %s", symbol)
	}
	t.Close(exitDate, exitPrice, netAmount, reason)
	p.Cash = p.Cash.Add(netAmount)
	delete(p.Positions, symbol)
	p.ClosedTrades = append(p.ClosedTrades, t)
	return t, nil
}
