package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stock-backtest/internal/model"
)

var hundred = decimal.NewFromInt(100)

// PositionSize maps the configured sizing policy and the current portfolio
// state to the target notional for a new entry. The caller clamps the result
// to available cash before executing; a notional too small to buy one share
// skips the entry rather than erroring.
func PositionSize(cfg *model.PortfolioConfig, state *PortfolioState) (decimal.Decimal, error) {
	switch cfg.SizingMethod {
	case model.SizingFixedAmount:
		return cfg.SizingValue, nil
	case model.SizingEqualWeight:
		// Divide by the configured cap, not the current open count, so
		// sizing targets stay stable as positions open and close.
		return state.TotalValue().Div(decimal.NewFromInt(int64(cfg.MaxPositions))), nil
	case model.SizingPercentage:
		return state.TotalValue().Mul(cfg.SizingValue.Div(hundred)), nil
	}
	return decimal.Zero, fmt.Errorf("unsupported sizing method %v", cfg.SizingMethod)
}
