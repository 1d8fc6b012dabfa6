package variance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute(t *testing.T) {
	cases := []struct {
		name    string
		a, b    string
		diff    string
		percent string
	}{
		{name: "growth", a: "25000", b: "20000", diff: "5000", percent: "25"},
		{name: "decline", a: "16000", b: "20000", diff: "-4000", percent: "-20"},
		{name: "equal", a: "100", b: "100", diff: "0", percent: "0"},
		{name: "zero baseline", a: "500", b: "0", diff: "500", percent: "0"},
		{name: "both zero", a: "0", b: "0", diff: "0", percent: "0"},
		{name: "negative baseline", a: "-50", b: "-100", diff: "50", percent: "50"},
		{name: "rounded", a: "1", b: "3", diff: "-2", percent: "-66.67"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := Compute("x", dec(tc.a), dec(tc.b))
			require.True(t, entry.Difference.Equal(dec(tc.diff)), "difference %s", entry.Difference)
			require.True(t, entry.PercentDifference.Equal(dec(tc.percent)), "percent %s", entry.PercentDifference)
		})
	}
}

func TestComputeKeepsInputs(t *testing.T) {
	entry := Compute("Receitas", dec("10"), dec("4"))
	require.Equal(t, "Receitas", entry.Label)
	require.True(t, entry.ValueA.Equal(dec("10")))
	require.True(t, entry.ValueB.Equal(dec("4")))
}
