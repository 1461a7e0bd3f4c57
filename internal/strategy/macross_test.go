package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-backtest/internal/model"
)

func barsFromCloses(closes []float64) []model.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func TestMACrossoverRejectsBadInput(t *testing.T) {
	s := &MACrossover{Params: MACrossoverParams{FastPeriod: 10, SlowPeriod: 5}}
	_, err := s.GenerateSignals("X", barsFromCloses([]float64{1, 2, 3}))
	assert.Error(t, err)

	s = &MACrossover{Params: MACrossoverParams{FastPeriod: 2, SlowPeriod: 4}}
	_, err = s.GenerateSignals("X", nil)
	assert.Error(t, err)
}

func TestMACrossoverDetectsCrossings(t *testing.T) {
	// Downtrend then a sharp recovery: the 2-day MA crosses above the 4-day
	// MA during the rebound, then back below in the second decline.
	closes := []float64{
		10, 9, 8, 7, 6, 5,
		7, 9, 11, 13, 14,
		12, 9, 6, 4, 3,
	}
	s := &MACrossover{Params: MACrossoverParams{FastPeriod: 2, SlowPeriod: 4}}
	sigs, err := s.GenerateSignals("X", barsFromCloses(closes))
	require.NoError(t, err)
	require.NotEmpty(t, sigs)

	assert.Equal(t, model.Buy, sigs[0].Side)
	var sawSell bool
	for _, sig := range sigs {
		assert.Equal(t, "X", sig.Symbol)
		assert.Equal(t, "ma_crossover", sig.Reason)
		assert.False(t, math.IsNaN(sig.Metadata["fast_ma"]))
		if sig.Side == model.Sell {
			sawSell = true
		}
	}
	assert.True(t, sawSell, "expected a sell on the way down")
}

func TestMACrossoverQuietOnMonotonicTrend(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	s := &MACrossover{Params: MACrossoverParams{FastPeriod: 3, SlowPeriod: 6}}
	sigs, err := s.GenerateSignals("X", barsFromCloses(closes))
	require.NoError(t, err)
	// Fast sits above slow for the whole ramp once both exist; the only
	// potential cross is inside the NaN warmup and is skipped.
	assert.Empty(t, sigs)
}

func TestMACrossoverIsPrefixConsistent(t *testing.T) {
	// Signals generated on a prefix must match the full-series signals that
	// fall inside the prefix: no look-ahead.
	closes := []float64{10, 9, 8, 7, 6, 5, 7, 9, 11, 13, 14, 12, 9, 6, 4, 3}
	bars := barsFromCloses(closes)
	s := &MACrossover{Params: MACrossoverParams{FastPeriod: 2, SlowPeriod: 4}}

	full, err := s.GenerateSignals("X", bars)
	require.NoError(t, err)

	for cut := 5; cut <= len(bars); cut++ {
		prefix, err := s.GenerateSignals("X", bars[:cut])
		require.NoError(t, err)

		var wantInPrefix []model.Signal
		for _, sig := range full {
			if !sig.Date.After(bars[cut-1].Date) {
				wantInPrefix = append(wantInPrefix, sig)
			}
		}
		assert.Equal(t, wantInPrefix, prefix, "prefix length %d", cut)
	}
}

func TestSMAWarmupIsNaN(t *testing.T) {
	out := sma([]float64{2, 4, 6, 8}, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 4.0, out[2], 1e-9)
	assert.InDelta(t, 6.0, out[3], 1e-9)
}
