package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"stock-backtest/internal/model"
	"stock-backtest/internal/strategy"
)

// Backtester simulates a strategy's signals against a pool of capital, day by
// day, under position-sizing, trade-frequency, cost, and slippage constraints.
// One Backtester owns one PortfolioState per Run; runs are sequential and
// deterministic.
type Backtester struct {
	strat strategy.Strategy
	cfg   *model.PortfolioConfig
	exec  *ExecutionModel
	log   zerolog.Logger
}

// New validates the configuration and builds a Backtester. Configuration
// errors fail here, before any simulated day runs.
func New(strat strategy.Strategy, cfg *model.PortfolioConfig, log zerolog.Logger) (*Backtester, error) {
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("portfolio config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("portfolio config invalid: %w", err)
	}
	return &Backtester{
		strat: strat,
		cfg:   cfg,
		exec:  NewExecutionModel(cfg),
		log:   log,
	}, nil
}

// series bundles one symbol's bars with a date index for O(1) prefix lookup.
type series struct {
	symbol string
	bars   []model.Bar
	byDate map[time.Time]int
}

// entryCandidate is a BUY signal competing for admission on one day.
type entryCandidate struct {
	symbol string
	signal model.Signal
	bar    model.Bar
}

// Run executes the simulation over the sorted union of all trading dates
// present in any symbol's series within [start, end]. Zero start/end times
// leave the corresponding bound open.
//
// A symbol with no bar on a date is skipped for that day only; an entry that
// cannot be sized or afforded is skipped silently. A strategy error aborts
// the whole run: a broken signal source invalidates every subsequent day.
func (b *Backtester) Run(data map[string][]model.Bar, start, end time.Time) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no price data")
	}

	symbols := make([]string, 0, len(data))
	seriesBySymbol := make(map[string]*series, len(data))
	dateSet := make(map[time.Time]struct{})
	for sym, bars := range data {
		s := &series{symbol: sym, bars: bars, byDate: make(map[time.Time]int, len(bars))}
		for i, bar := range bars {
			d := model.Day(bar.Date)
			s.byDate[d] = i
			if (start.IsZero() || !d.Before(start)) && (end.IsZero() || !d.After(end)) {
				dateSet[d] = struct{}{}
			}
		}
		seriesBySymbol[sym] = s
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	if len(dates) == 0 {
		return nil, fmt.Errorf("no trading dates in backtest window")
	}

	b.log.Info().
		Int("symbols", len(symbols)).
		Int("trading_days", len(dates)).
		Str("initial_capital", b.cfg.InitialCapital.String()).
		Msg("starting portfolio backtest")

	state := NewPortfolioState(b.cfg.InitialCapital, dates[0])
	snapshots := make([]Snapshot, 0, len(dates))

	for _, date := range dates {
		state.RollCalendarWindows(date)

		// Exits free capacity before entries consume it.
		if err := b.exitPass(state, seriesBySymbol, date); err != nil {
			return nil, err
		}
		if err := b.entryPass(state, seriesBySymbol, symbols, date); err != nil {
			return nil, err
		}

		state.Date = date
		snapshots = append(snapshots, takeSnapshot(state, date))
	}

	b.forceCloseAll(state, seriesBySymbol, dates[len(dates)-1])

	res := b.assembleResult(state, snapshots, dates[0], dates[len(dates)-1])
	b.log.Info().
		Str("final_value", res.FinalValue.String()).
		Str("total_return_pct", res.TotalReturnPct.String()).
		Int("trades", res.TotalTrades).
		Msg("backtest complete")
	return res, nil
}

// exitPass re-evaluates the strategy for every held symbol on this date and
// executes exits where the latest signal is SELL.
func (b *Backtester) exitPass(state *PortfolioState, seriesBySymbol map[string]*series, date time.Time) error {
	held := make([]string, 0, len(state.Positions))
	for sym := range state.Positions {
		held = append(held, sym)
	}
	sort.Strings(held)

	for _, sym := range held {
		s, ok := seriesBySymbol[sym]
		if !ok {
			continue
		}
		idx, ok := s.byDate[date]
		if !ok {
			// no bar for this symbol today
			continue
		}
		sigs, err := b.strat.GenerateSignals(sym, s.bars[:idx+1])
		if err != nil {
			return fmt.Errorf("strategy %s on %s at %s: %w", b.strat.Name(), sym, date.Format("2006-01-02"), err)
		}
		if len(sigs) == 0 {
			continue
		}
		latest := sigs[len(sigs)-1]
		if latest.Side != model.Sell {
			continue
		}
		b.executeExit(state, sym, date, s.bars[idx].Close, reasonOr(latest.Reason, "SELL"))
	}
	return nil
}

// entryPass collects BUY candidates across unheld symbols, ranks them by
// confidence (descending) with an alphabetical tie-break, and admits them
// until slot and limit capacity for the day is exhausted.
func (b *Backtester) entryPass(state *PortfolioState, seriesBySymbol map[string]*series, symbols []string, date time.Time) error {
	if !state.CanTakeTrade(b.cfg) {
		return nil
	}

	var candidates []entryCandidate
	for _, sym := range symbols {
		if _, held := state.Positions[sym]; held {
			continue
		}
		s := seriesBySymbol[sym]
		idx, ok := s.byDate[date]
		if !ok {
			continue
		}
		sigs, err := b.strat.GenerateSignals(sym, s.bars[:idx+1])
		if err != nil {
			return fmt.Errorf("strategy %s on %s at %s: %w", b.strat.Name(), sym, date.Format("2006-01-02"), err)
		}
		if len(sigs) == 0 {
			continue
		}
		latest := sigs[len(sigs)-1]
		if latest.Side != model.Buy {
			continue
		}
		candidates = append(candidates, entryCandidate{symbol: sym, signal: latest, bar: s.bars[idx]})
	}

	// Deterministic admission order: strongest signal first, then symbol.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].signal.Confidence != candidates[j].signal.Confidence {
			return candidates[i].signal.Confidence > candidates[j].signal.Confidence
		}
		return candidates[i].symbol < candidates[j].symbol
	})

	for _, c := range candidates {
		if !state.CanTakeTrade(b.cfg) {
			break
		}
		if err := b.executeEntry(state, c, date); err != nil {
			return err
		}
	}
	return nil
}

// executeEntry sizes, fills, and opens a position. Sizing or cash shortfalls
// skip the entry with no side effects.
func (b *Backtester) executeEntry(state *PortfolioState, c entryCandidate, date time.Time) error {
	sized, err := PositionSize(b.cfg, state)
	if err != nil {
		return err
	}
	available := state.AvailableCash(b.cfg.CashReservePct)
	fill, ok := b.exec.Entry(c.bar.Close, sized, available, c.signal.Quantity)
	if !ok {
		b.log.Debug().Str("symbol", c.symbol).Msg("entry skipped: insufficient cash for one share")
		return nil
	}

	trade := &model.Trade{
		Symbol:         c.symbol,
		EntryDate:      date,
		EntryPrice:     fill.FillPrice,
		Quantity:       fill.Quantity,
		InvestedAmount: fill.TotalAmount,
		EntryReason:    reasonOr(c.signal.Reason, "BUY"),
	}
	if err := state.OpenPosition(trade); err != nil {
		return err
	}
	b.log.Debug().
		Str("symbol", c.symbol).
		Int64("qty", fill.Quantity).
		Str("price", fill.FillPrice.String()).
		Str("invested", fill.TotalAmount.String()).
		Msg("BUY")
	return nil
}

func (b *Backtester) executeExit(state *PortfolioState, symbol string, date time.Time, quote float64, reason string) {
	trade, ok := state.Positions[symbol]
	if !ok {
		return
	}
	fill := b.exec.Exit(quote, trade.Quantity)
	closed, err := state.ClosePosition(symbol, date, fill.FillPrice, fill.NetAmount, reason)
	if err != nil {
		return
	}
	b.log.Debug().
		Str("symbol", symbol).
		Int64("qty", closed.Quantity).
		Str("price", fill.FillPrice.String()).
		Str("pnl", closed.PnL.String()).
		Msg("SELL")
}

// forceCloseAll liquidates remaining positions at each symbol's last known
// price on or before the final simulated date (a synthetic SELL).
func (b *Backtester) forceCloseAll(state *PortfolioState, seriesBySymbol map[string]*series, finalDate time.Time) {
	held := make([]string, 0, len(state.Positions))
	for sym := range state.Positions {
		held = append(held, sym)
	}
	sort.Strings(held)

	for _, sym := range held {
		s, ok := seriesBySymbol[sym]
		if !ok {
			continue
		}
		bar, ok := model.LastBarOnOrBefore(s.bars, finalDate)
		if !ok {
			continue
		}
		b.executeExit(state, sym, finalDate, bar.Close, "backtest_end")
	}
}

func takeSnapshot(state *PortfolioState, date time.Time) Snapshot {
	openSymbols := make([]string, 0, len(state.Positions))
	for sym := range state.Positions {
		openSymbols = append(openSymbols, sym)
	}
	sort.Strings(openSymbols)
	invested := state.TotalInvested()
	return Snapshot{
		Date:            date,
		Cash:            state.Cash,
		Invested:        invested,
		Equity:          state.Cash.Add(invested),
		OpenPositions:   len(state.Positions),
		OpenSymbols:     openSymbols,
		TradesThisWeek:  state.TradesThisWeek,
		TradesThisMonth: state.TradesThisMonth,
	}
}

func (b *Backtester) assembleResult(state *PortfolioState, snapshots []Snapshot, startDate, endDate time.Time) *Result {
	res := &Result{
		StartDate:    startDate,
		EndDate:      endDate,
		InitialValue: b.cfg.InitialCapital,
		FinalValue:   state.Cash,
		Trades:       state.ClosedTrades,
		Snapshots:    snapshots,
	}
	if id, err := uuid.NewV4(); err == nil {
		res.ID = id.String()
	}

	res.TotalReturn = res.FinalValue.Sub(res.InitialValue)
	if res.InitialValue.IsPositive() {
		res.TotalReturnPct = res.TotalReturn.Div(res.InitialValue).Mul(decimal.NewFromInt(100))
	}

	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	var holdingDays int
	for _, t := range state.ClosedTrades {
		holdingDays += t.HoldingDays
		if t.PnL.IsPositive() {
			res.WinningTrades++
			grossProfit = grossProfit.Add(t.PnL)
		} else if t.PnL.IsNegative() {
			res.LosingTrades++
			grossLoss = grossLoss.Add(t.PnL.Abs())
		}
	}
	res.TotalTrades = len(state.ClosedTrades)
	if res.TotalTrades > 0 {
		res.WinRate = float64(res.WinningTrades) / float64(res.TotalTrades) * 100
		res.AvgHoldingDays = float64(holdingDays) / float64(res.TotalTrades)
	}
	if res.WinningTrades > 0 {
		res.AvgWin = grossProfit.Div(decimal.NewFromInt(int64(res.WinningTrades)))
	}
	if res.LosingTrades > 0 {
		res.AvgLoss = grossLoss.Neg().Div(decimal.NewFromInt(int64(res.LosingTrades)))
	}
	res.ProfitFactor = profitFactor(grossProfit, grossLoss)

	for _, s := range snapshots {
		if s.OpenPositions > res.MaxConcurrentPositions {
			res.MaxConcurrentPositions = s.OpenPositions
		}
	}
	return res
}

func profitFactor(grossProfit, grossLoss decimal.Decimal) float64 {
	if grossLoss.IsZero() {
		if grossProfit.IsPositive() {
			return math.Inf(1)
		}
		return 0
	}
	pf, _ := grossProfit.Div(grossLoss).Float64()
	return pf
}

func reasonOr(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}
