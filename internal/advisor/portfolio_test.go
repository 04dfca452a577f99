package advisor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"conservative", "balanced", "aggressive"} {
		s, err := ParseStrategy(name)
		require.NoError(t, err)
		assert.True(t, s.IsValid())
	}

	_, err := ParseStrategy("yolo")
	require.Error(t, err)
	assert.True(t, types.IsInvalidInput(err))
}

func TestAllocateWeightsConservativeThreeStocks(t *testing.T) {
	weights := AllocateWeights(3, StrategyConservative)
	require.Len(t, weights, 3)

	var sum float64
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	// Equal 1/3 exceeds the conservative max of 0.15, so each weight is
	// clamped then renormalized back to an equal share.
	for _, w := range weights {
		assert.InDelta(t, 1.0/3.0, w, 1e-9)
	}
}

func TestAllocateWeightsRespectsBandBeforeNormalization(t *testing.T) {
	// Ten stocks, balanced: equal 0.10 sits inside [0.05, 0.25] and
	// survives untouched.
	weights := AllocateWeights(10, StrategyBalanced)
	var sum float64
	for _, w := range weights {
		assert.InDelta(t, 0.10, w, 1e-9)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestOptimizePortfolio(t *testing.T) {
	a := testAdvisor(t, testSnapshot())

	alloc, err := a.OptimizePortfolio(t.Context(), 100000, StrategyConservative,
		[]string{"RELIANCE.NS", "ONGC.NS"})
	require.NoError(t, err)
	require.Len(t, alloc.Holdings, 2)

	var weightSum float64
	for _, h := range alloc.Holdings {
		weightSum += h.Weight
		assert.GreaterOrEqual(t, h.Shares, int64(0))
		// Whole shares only: amount = shares · price exactly.
		expected := decimal.NewFromFloat(h.Price).Mul(decimal.NewFromInt(h.Shares)).Round(2)
		assert.True(t, h.Amount.Equal(expected), "amount %s != %s", h.Amount, expected)
	}
	assert.InDelta(t, 1.0, weightSum, 1e-6)

	assert.True(t, alloc.Invested.Add(alloc.CashLeft).Equal(decimal.NewFromInt(100000)))
	assert.False(t, alloc.CashLeft.IsNegative())

	// Weighted beta: 0.5·1.1 + 0.5·0.8
	assert.InDelta(t, 0.95, alloc.RiskScore, 1e-9)
}

func TestOptimizePortfolioInvalidInput(t *testing.T) {
	a := testAdvisor(t, testSnapshot())

	_, err := a.OptimizePortfolio(t.Context(), 100000, Strategy("reckless"), []string{"RELIANCE.NS"})
	assert.True(t, types.IsInvalidInput(err))

	_, err = a.OptimizePortfolio(t.Context(), 100000, StrategyBalanced, nil)
	assert.True(t, types.IsInvalidInput(err))

	_, err = a.OptimizePortfolio(t.Context(), -5, StrategyBalanced, []string{"RELIANCE.NS"})
	assert.True(t, types.IsInvalidInput(err))

	_, err = a.OptimizePortfolio(t.Context(), 100000, StrategyBalanced, []string{"NOPRICE.NS"})
	assert.True(t, types.IsInvalidInput(err))
}

func TestCheckRebalance(t *testing.T) {
	current := map[string]float64{"RELIANCE.NS": 0.40, "ONGC.NS": 0.60}
	target := map[string]float64{"RELIANCE.NS": 0.50, "ONGC.NS": 0.50}

	needed, drifts := CheckRebalance(current, target)
	assert.True(t, needed)
	require.Len(t, drifts, 2)
	assert.InDelta(t, 0.10, drifts[0].Drift, 1e-9)
}

func TestCheckRebalanceWithinThreshold(t *testing.T) {
	current := map[string]float64{"RELIANCE.NS": 0.52, "ONGC.NS": 0.48}
	target := map[string]float64{"RELIANCE.NS": 0.50, "ONGC.NS": 0.50}

	needed, _ := CheckRebalance(current, target)
	assert.False(t, needed)
}

func TestCheckRebalanceMissingSymbolCountsFully(t *testing.T) {
	current := map[string]float64{"RELIANCE.NS": 1.0}
	target := map[string]float64{"RELIANCE.NS": 0.5, "TCS.NS": 0.5}

	needed, drifts := CheckRebalance(current, target)
	assert.True(t, needed)
	assert.Len(t, drifts, 2)
}
