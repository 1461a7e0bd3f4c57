package strategy

import (
	"fmt"
	"math"

	"stock-backtest/internal/model"
)

// RSIParams configures the RSI mean-reversion strategy.
type RSIParams struct {
	Period     int
	Oversold   float64
	Overbought float64
}

// RSI buys when the index drops below the oversold threshold and sells once
// it rises above the overbought threshold. Signal confidence scales with how
// deep past the threshold the index is, which ranks same-day entry candidates.
type RSI struct {
	Params RSIParams
}

func (s *RSI) Name() string { return "rsi" }

func (s *RSI) GenerateSignals(symbol string, history []model.Bar) ([]model.Signal, error) {
	period := s.Params.Period
	if period <= 0 {
		period = 14
	}
	oversold := s.Params.Oversold
	if oversold <= 0 {
		oversold = 30
	}
	overbought := s.Params.Overbought
	if overbought <= 0 {
		overbought = 70
	}
	if oversold >= overbought {
		return nil, fmt.Errorf("oversold %.0f must be < overbought %.0f", oversold, overbought)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("empty price history for %s", symbol)
	}

	closes := make([]float64, len(history))
	for i, bar := range history {
		closes[i] = bar.Close
	}
	rsi := relativeStrength(closes, period)

	var signals []model.Signal
	inPosition := false
	for i := 1; i < len(history); i++ {
		v := rsi[i]
		if math.IsNaN(v) {
			continue
		}
		switch {
		case !inPosition && v < oversold:
			signals = append(signals, model.Signal{
				Date:       history[i].Date,
				Symbol:     symbol,
				Side:       model.Buy,
				Price:      history[i].Close,
				Confidence: (oversold - v) / oversold,
				Reason:     "rsi_oversold",
				Metadata:   map[string]float64{"rsi": v},
			})
			inPosition = true
		case inPosition && v > overbought:
			signals = append(signals, model.Signal{
				Date:       history[i].Date,
				Symbol:     symbol,
				Side:       model.Sell,
				Price:      history[i].Close,
				Confidence: (v - overbought) / (100 - overbought),
				Reason:     "rsi_overbought",
				Metadata:   map[string]float64{"rsi": v},
			})
			inPosition = false
		}
	}
	return signals, nil
}

// relativeStrength computes an SMA-based RSI; entries before a full window
// are NaN. A window with no losses saturates at 100.
func relativeStrength(closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}
	avgGain := sma(gains[1:], period)
	avgLoss := sma(losses[1:], period)
	out[0] = math.NaN()
	for i := 1; i < n; i++ {
		g, l := avgGain[i-1], avgLoss[i-1]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
			out[i] = math.NaN()
		case l == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+g/l)
		}
	}
	return out
}
