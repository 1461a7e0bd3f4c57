package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SizingMethod selects how new entries are sized. It is a closed set; the
// sizer switches over it exhaustively and rejects anything else.
type SizingMethod uint8

const (
	// SizingFixedAmount allocates a constant notional per position,
	// independent of portfolio value.
	SizingFixedAmount SizingMethod = iota
	// SizingEqualWeight allocates total portfolio value divided by the
	// configured max_positions cap (not the current open count), so sizing
	// targets stay stable as positions open and close.
	SizingEqualWeight
	// SizingPercentage allocates a fixed percentage of portfolio value.
	SizingPercentage
)

func (m SizingMethod) String() string {
	switch m {
	case SizingFixedAmount:
		return "fixed_amount"
	case SizingEqualWeight:
		return "equal_weight"
	case SizingPercentage:
		return "percentage"
	}
	return fmt.Sprintf("unknown(%d)", uint8(m))
}

// ParseSizingMethod maps the config-file spelling to a SizingMethod.
func ParseSizingMethod(s string) (SizingMethod, error) {
	switch s {
	case "fixed_amount":
		return SizingFixedAmount, nil
	case "equal_weight":
		return SizingEqualWeight, nil
	case "percentage":
		return SizingPercentage, nil
	}
	return 0, fmt.Errorf("unsupported sizing method %q", s)
}

// PortfolioConfig defines the capital, limit, and cost parameters of a run.
// Rates are fractions (0.001 = 0.1%); SizingValue is a currency amount for
// fixed_amount and a percentage (e.g. 10 for 10%) for percentage sizing.
type PortfolioConfig struct {
	InitialCapital decimal.Decimal

	SizingMethod SizingMethod
	SizingValue  decimal.Decimal

	MaxTradesPerWeek  int
	MaxTradesPerMonth int
	MaxPositions      int

	BrokerageRate   decimal.Decimal
	TransactionRate decimal.Decimal
	STTRate         decimal.Decimal
	SlippageRate    decimal.Decimal

	// CashReservePct of total portfolio value is kept out of new entries.
	CashReservePct decimal.Decimal

	// RoundTripCostRate is derived from the individual rates when zero:
	// buy side pays brokerage + transaction, sell side additionally pays STT.
	RoundTripCostRate decimal.Decimal

	// RiskFreeRate is the annual rate subtracted when computing Sharpe and
	// Sortino ratios. Defaults to 0.07 when unset.
	RiskFreeRate float64
}

// DefaultRiskFreeRate approximates the Indian government bond yield.
const DefaultRiskFreeRate = 0.07

var two = decimal.NewFromInt(2)

// Validate checks invariants and fills derived fields. It must be called
// before a Backtester is constructed; the Backtester refuses invalid configs.
func (c *PortfolioConfig) Validate() error {
	if c == nil {
		return errors.New("portfolio config is nil")
	}
	if !c.InitialCapital.IsPositive() {
		return errors.New("initial_capital must be > 0")
	}
	switch c.SizingMethod {
	case SizingFixedAmount, SizingEqualWeight, SizingPercentage:
	default:
		return fmt.Errorf("unsupported sizing method %v", c.SizingMethod)
	}
	if c.SizingMethod != SizingEqualWeight && !c.SizingValue.IsPositive() {
		return errors.New("sizing value must be > 0")
	}
	if c.MaxPositions < 1 {
		return errors.New("max_positions must be >= 1")
	}
	if c.MaxTradesPerWeek < 1 {
		return errors.New("max_trades_per_week must be >= 1")
	}
	if c.MaxTradesPerMonth < 1 {
		return errors.New("max_trades_per_month must be >= 1")
	}
	for _, r := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"brokerage_rate", c.BrokerageRate},
		{"transaction_rate", c.TransactionRate},
		{"stt_rate", c.STTRate},
		{"slippage_rate", c.SlippageRate},
		{"cash_reserve_pct", c.CashReservePct},
	} {
		if r.v.IsNegative() {
			return fmt.Errorf("%s must be >= 0", r.name)
		}
	}
	if c.RoundTripCostRate.IsZero() {
		// buy: brokerage + transaction; sell: brokerage + transaction + STT
		c.RoundTripCostRate = c.BrokerageRate.Add(c.TransactionRate).Mul(two).Add(c.STTRate)
	}
	if c.RiskFreeRate == 0 {
		c.RiskFreeRate = DefaultRiskFreeRate
	}
	if c.RiskFreeRate < 0 {
		return errors.New("risk_free_rate must be >= 0")
	}
	return nil
}

// EntryCostRate is the fraction of gross notional paid on a buy fill.
func (c *PortfolioConfig) EntryCostRate() decimal.Decimal {
	return c.BrokerageRate.Add(c.TransactionRate)
}

// ExitCostRate is the fraction of gross notional paid on a sell fill;
// STT applies sell-side only.
func (c *PortfolioConfig) ExitCostRate() decimal.Decimal {
	return c.BrokerageRate.Add(c.TransactionRate).Add(c.STTRate)
}
