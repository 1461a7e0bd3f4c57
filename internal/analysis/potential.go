package analysis

import (
	"math"
	"sort"
	"time"

	"stock-backtest/internal/model"
)

// SymbolPotential is a symbol-level summary used for ranking candidates
// before running a full backtest. It intentionally does not depend on a
// strategy; it includes raw price stats plus two strategy-free profit
// baselines per share: buy-and-hold over the whole series, and an "oracle"
// single round trip (buy at the best low, sell at a later high).
type SymbolPotential struct {
	Symbol string

	Start time.Time
	End   time.Time

	Count int

	MinClose  float64
	MaxClose  float64
	MeanClose float64
	P05Close  float64
	P95Close  float64

	SpreadP95P05 float64

	// BuyHoldReturn is (last close - first close) / first close.
	BuyHoldReturn float64

	// OracleProfit is the best achievable single-trade profit per share,
	// buying at one close and selling at a strictly later one. Zero when no
	// profitable round trip exists.
	OracleProfit float64
}

func ComputePotential(symbol string, bars []model.Bar) SymbolPotential {
	p := SymbolPotential{Symbol: symbol}
	if len(bars) == 0 {
		return p
	}
	p.Count = len(bars)
	p.Start = bars[0].Date
	p.End = bars[len(bars)-1].Date

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	vals := make([]float64, 0, len(bars))
	for _, bar := range bars {
		v := bar.Close
		vals = append(vals, v)
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	sort.Float64s(vals)
	p.MinClose = minv
	p.MaxClose = maxv
	p.MeanClose = sum / float64(len(vals))
	p.P05Close = percentileSorted(vals, 0.05)
	p.P95Close = percentileSorted(vals, 0.95)
	p.SpreadP95P05 = p.P95Close - p.P05Close

	if first := bars[0].Close; first > 0 {
		p.BuyHoldReturn = (bars[len(bars)-1].Close - first) / first
	}
	p.OracleProfit = oracleSingleTrade(bars)
	return p
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// oracleSingleTrade finds the maximum close[j] - close[i] with j > i in one
// pass, tracking the lowest close seen so far.
func oracleSingleTrade(bars []model.Bar) float64 {
	best := 0.0
	lowest := math.Inf(1)
	for _, bar := range bars {
		if bar.Close < lowest {
			lowest = bar.Close
			continue
		}
		if profit := bar.Close - lowest; profit > best {
			best = profit
		}
	}
	return best
}
