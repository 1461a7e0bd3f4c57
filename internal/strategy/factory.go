package strategy

import "fmt"

// Info describes an available strategy for listings (CLI and API).
type Info struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamInfo `json:"parameters"`
}

// ParamInfo describes one tunable strategy parameter.
type ParamInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Default     float64 `json:"default"`
}

// New builds a strategy by config name with an untyped parameter bundle, the
// shape strategy params take in YAML and JSON requests.
func New(name string, params map[string]any) (Strategy, error) {
	switch name {
	case "ma_crossover":
		return &MACrossover{Params: MACrossoverParams{
			FastPeriod: intParam(params, "fast_period", 20),
			SlowPeriod: intParam(params, "slow_period", 50),
		}}, nil
	case "rsi":
		return &RSI{Params: RSIParams{
			Period:     intParam(params, "period", 14),
			Oversold:   numParam(params, "oversold", 30),
			Overbought: numParam(params, "overbought", 70),
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", name)
	}
}

// List enumerates the built-in strategies.
func List() []Info {
	return []Info{
		{
			Name:        "ma_crossover",
			Description: "Buy when the fast moving average crosses above the slow one; sell on the cross back below.",
			Parameters: []ParamInfo{
				{Name: "fast_period", Description: "Fast moving average window (days)", Default: 20},
				{Name: "slow_period", Description: "Slow moving average window (days)", Default: 50},
			},
		},
		{
			Name:        "rsi",
			Description: "Mean reversion: buy below the oversold threshold, sell above the overbought threshold.",
			Parameters: []ParamInfo{
				{Name: "period", Description: "RSI window (days)", Default: 14},
				{Name: "oversold", Description: "Buy threshold", Default: 30},
				{Name: "overbought", Description: "Sell threshold", Default: 70},
			},
		},
	}
}

func numParam(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		}
	}
	return def
}

func intParam(m map[string]any, key string, def int) int {
	return int(numParam(m, key, float64(def)))
}
