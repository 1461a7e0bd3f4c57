package backtest

import (
	"github.com/shopspring/decimal"

	"stock-backtest/internal/model"
)

var one = decimal.NewFromInt(1)

// ExecutionModel turns a signal and a sized notional into a concrete fill:
// slippage-adjusted price, affordable whole-share quantity, and transaction
// costs. Quotes arrive as float64 market data and are converted to decimal
// exactly once here; everything downstream is exact.
type ExecutionModel struct {
	cfg *model.PortfolioConfig
}

func NewExecutionModel(cfg *model.PortfolioConfig) *ExecutionModel {
	return &ExecutionModel{cfg: cfg}
}

// FillPrice applies symmetric adverse slippage: buys fill above the quote,
// sells below it.
func (e *ExecutionModel) FillPrice(side model.Side, quote float64) decimal.Decimal {
	q := decimal.NewFromFloat(quote)
	if side == model.Buy {
		return q.Mul(one.Add(e.cfg.SlippageRate))
	}
	return q.Mul(one.Sub(e.cfg.SlippageRate))
}

// EntryFill is a concrete buy fill. TotalAmount (gross + entry costs) is the
// exact cash debit for the position.
type EntryFill struct {
	FillPrice   decimal.Decimal
	Quantity    int64
	GrossAmount decimal.Decimal
	Cost        decimal.Decimal
	TotalAmount decimal.Decimal
}

// Entry computes a buy fill for the given quote. sizedNotional is the target
// from the position sizer, clamped here to availableCash; requestedQty > 0
// caps the share count when the signal asked for a fixed quantity.
//
// The second return is false when the entry cannot be afforded at all
// (quantity zero); that is a silent skip for the caller, not an error.
func (e *ExecutionModel) Entry(quote float64, sizedNotional, availableCash decimal.Decimal, requestedQty int64) (EntryFill, bool) {
	fillPrice := e.FillPrice(model.Buy, quote)
	if !fillPrice.IsPositive() {
		return EntryFill{}, false
	}

	notional := sizedNotional
	if notional.GreaterThan(availableCash) {
		notional = availableCash
	}
	if notional.LessThan(fillPrice) {
		return EntryFill{}, false
	}

	qty := notional.Div(fillPrice).Floor().IntPart()
	if requestedQty > 0 && requestedQty < qty {
		qty = requestedQty
	}
	if qty <= 0 {
		return EntryFill{}, false
	}

	costRate := e.cfg.EntryCostRate()
	gross := fillPrice.Mul(decimal.NewFromInt(qty))
	total := gross.Add(gross.Mul(costRate))

	if total.GreaterThan(availableCash) {
		// Entry costs pushed the debit past available cash; shrink the
		// quantity so the cost-inclusive total fits.
		qty = availableCash.Div(fillPrice.Mul(one.Add(costRate))).Floor().IntPart()
		if qty <= 0 {
			return EntryFill{}, false
		}
		gross = fillPrice.Mul(decimal.NewFromInt(qty))
		total = gross.Add(gross.Mul(costRate))
	}

	return EntryFill{
		FillPrice:   fillPrice,
		Quantity:    qty,
		GrossAmount: gross,
		Cost:        total.Sub(gross),
		TotalAmount: total,
	}, true
}

// ExitFill is a concrete sell fill. NetAmount (gross - exit costs) is the
// exact cash credit for closing the position.
type ExitFill struct {
	FillPrice   decimal.Decimal
	GrossAmount decimal.Decimal
	Cost        decimal.Decimal
	NetAmount   decimal.Decimal
}

// Exit computes a sell fill for the full position quantity at the given
// quote. STT applies on this side only.
func (e *ExecutionModel) Exit(quote float64, quantity int64) ExitFill {
	fillPrice := e.FillPrice(model.Sell, quote)
	gross := fillPrice.Mul(decimal.NewFromInt(quantity))
	cost := gross.Mul(e.cfg.ExitCostRate())
	return ExitFill{
		FillPrice:   fillPrice,
		GrossAmount: gross,
		Cost:        cost,
		NetAmount:   gross.Sub(cost),
	}
}
