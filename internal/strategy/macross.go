package strategy

import (
	"fmt"
	"math"

	"stock-backtest/internal/model"
)

// MACrossoverParams configures the moving-average crossover strategy.
type MACrossoverParams struct {
	FastPeriod int
	SlowPeriod int
}

// MACrossover buys when the fast moving average crosses above the slow one
// and sells when it crosses back below.
type MACrossover struct {
	Params MACrossoverParams
}

func (s *MACrossover) Name() string { return "ma_crossover" }

func (s *MACrossover) GenerateSignals(symbol string, history []model.Bar) ([]model.Signal, error) {
	fast := s.Params.FastPeriod
	slow := s.Params.SlowPeriod
	if fast <= 0 {
		fast = 20
	}
	if slow <= 0 {
		slow = 50
	}
	if fast >= slow {
		return nil, fmt.Errorf("fast period %d must be < slow period %d", fast, slow)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("empty price history for %s", symbol)
	}

	closes := make([]float64, len(history))
	for i, bar := range history {
		closes[i] = bar.Close
	}
	fastMA := sma(closes, fast)
	slowMA := sma(closes, slow)

	var signals []model.Signal
	for i := 1; i < len(history); i++ {
		if math.IsNaN(fastMA[i-1]) || math.IsNaN(slowMA[i-1]) || math.IsNaN(fastMA[i]) || math.IsNaN(slowMA[i]) {
			continue
		}
		var side model.Side
		switch {
		case fastMA[i-1] <= slowMA[i-1] && fastMA[i] > slowMA[i]:
			side = model.Buy
		case fastMA[i-1] >= slowMA[i-1] && fastMA[i] < slowMA[i]:
			side = model.Sell
		default:
			continue
		}
		signals = append(signals, model.Signal{
			Date:       history[i].Date,
			Symbol:     symbol,
			Side:       side,
			Price:      history[i].Close,
			Confidence: 1,
			Reason:     "ma_crossover",
			Metadata: map[string]float64{
				"fast_ma": fastMA[i],
				"slow_ma": slowMA[i],
			},
		})
	}
	return signals, nil
}

// sma returns the simple moving average; entries before a full window are NaN.
func sma(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
