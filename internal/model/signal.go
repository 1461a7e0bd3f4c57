package model

import "time"

// Side is the direction of a trading signal.
// Keep these values stable; they are intended for CSV/JSON output.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Signal is an immutable record of one trading decision point emitted by a
// strategy. Price is a hint taken from the bar the signal was generated on;
// the execution model applies slippage on top of the actual quote.
type Signal struct {
	Date   time.Time `json:"date"`
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Price  float64   `json:"price"`

	// Quantity is a fixed share count requested by the strategy.
	// 0 means the portfolio sizes the position automatically.
	Quantity int64 `json:"quantity,omitempty"`

	// Confidence in [0,1] ranks competing entry candidates on the same day.
	Confidence float64 `json:"confidence,omitempty"`

	// Reason tags the trade with why the signal fired (e.g. "ma_crossover").
	Reason string `json:"reason,omitempty"`

	Metadata map[string]float64 `json:"metadata,omitempty"`
}
