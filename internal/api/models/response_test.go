package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFloatMarshalsNonFiniteAsNull(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"finite", 1.5, "1.5"},
		{"zero", 0, "0"},
		{"negative", -2.25, "-2.25"},
		{"+inf", math.Inf(1), "null"},
		{"-inf", math.Inf(-1), "null"},
		{"nan", math.NaN(), "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(JSONFloat(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestMetricsWithInfiniteProfitFactorMarshals(t *testing.T) {
	m := Metrics{
		TotalReturn:  JSONFloat(0.1),
		ProfitFactor: JSONFloat(math.Inf(1)),
	}
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"profit_factor":null`)
	assert.Contains(t, string(out), `"total_return":0.1`)
}
