package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one symbol's entry-to-exit lifecycle with cost-adjusted cash
// accounting. It is created on the entry fill, mutated exactly once when the
// exit fill sets all exit fields together, and is immutable afterwards.
//
// All money fields are decimal so the portfolio's cash conservation holds
// exactly; prices already include slippage, amounts already include costs.
type Trade struct {
	Symbol     string          `json:"symbol"`
	EntryDate  time.Time       `json:"entry_date"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Quantity   int64           `json:"quantity"`

	// InvestedAmount is the entry fill notional plus entry costs; this is the
	// exact amount debited from portfolio cash.
	InvestedAmount decimal.Decimal `json:"invested_amount"`

	ExitDate  time.Time       `json:"exit_date,omitempty"`
	ExitPrice decimal.Decimal `json:"exit_price,omitempty"`

	// ExitAmount is the exit fill notional net of costs; this is the exact
	// amount credited back to portfolio cash.
	ExitAmount decimal.Decimal `json:"exit_amount,omitempty"`

	PnL         decimal.Decimal `json:"pnl,omitempty"`
	PnLPct      decimal.Decimal `json:"pnl_pct,omitempty"`
	HoldingDays int             `json:"holding_days,omitempty"`

	EntryReason string `json:"entry_reason,omitempty"`
	ExitReason  string `json:"exit_reason,omitempty"`
}

// IsOpen reports whether the trade has not been exited yet.
func (t *Trade) IsOpen() bool { return t.ExitDate.IsZero() }

// Close sets all exit fields together. netAmount is the exit proceeds after
// costs; PnL and PnLPct are derived from it against the invested amount.
func (t *Trade) Close(exitDate time.Time, exitPrice, netAmount decimal.Decimal, reason string) {
	t.ExitDate = exitDate
	t.ExitPrice = exitPrice
	t.ExitAmount = netAmount
	t.ExitReason = reason
	t.PnL = netAmount.Sub(t.InvestedAmount)
	if t.InvestedAmount.IsPositive() {
		t.PnLPct = t.PnL.Div(t.InvestedAmount).Mul(decimal.NewFromInt(100))
	}
	t.HoldingDays = int(exitDate.Sub(t.EntryDate).Hours() / 24)
}
