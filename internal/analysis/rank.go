package analysis

import (
	"sort"

	"stock-backtest/internal/model"
)

type RankedPotential struct {
	Rank int
	SymbolPotential
}

// RankByOracleProfit computes potentials per symbol and sorts descending by
// OracleProfit, breaking ties alphabetically so the order is deterministic.
func RankByOracleProfit(bySymbol map[string][]model.Bar) []RankedPotential {
	out := make([]RankedPotential, 0, len(bySymbol))
	for symbol, bars := range bySymbol {
		p := ComputePotential(symbol, bars)
		out = append(out, RankedPotential{SymbolPotential: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OracleProfit != out[j].OracleProfit {
			return out[i].OracleProfit > out[j].OracleProfit
		}
		return out[i].Symbol < out[j].Symbol
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
