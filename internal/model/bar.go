package model

import "time"

// Bar represents one daily OHLCV row for a symbol.
// Dates are normalized to midnight UTC; a series holds one bar per trading
// date, chronologically sorted, with no duplicates. Column normalization and
// sourcing are the data collaborator's responsibility.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Day normalizes a timestamp to its trading date (midnight UTC).
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LastBarOnOrBefore returns the most recent bar dated on or before t,
// or false if the series has no bar that early.
func LastBarOnOrBefore(bars []Bar, t time.Time) (Bar, bool) {
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].Date.After(t) {
			return bars[i], true
		}
	}
	return Bar{}, false
}
