package advisor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parthkaria14/GenAdvisor/internal/market"
	"github.com/parthkaria14/GenAdvisor/internal/types"
)

func riskSnapshot() *market.Snapshot {
	snap := testSnapshot()
	snap.Stocks["TCS.NS"] = market.StockRecord{
		Symbol: "TCS.NS", Name: "Tata Consultancy Services", Sector: "IT",
		CurrentPrice: market.Float(3600),
		Beta:         market.Float(0.9),
	}
	return snap
}

func TestAnalyzeRiskBetaAndVaR(t *testing.T) {
	a := testAdvisor(t, riskSnapshot())

	report, err := a.AnalyzeRisk(t.Context(), map[string]float64{
		"RELIANCE.NS": 0.5,
		"ONGC.NS":     0.5,
	})
	require.NoError(t, err)

	wantBeta := 0.5*1.1 + 0.5*0.8
	assert.InDelta(t, wantBeta, report.PortfolioBeta, 1e-9)
	assert.InDelta(t, wantBeta*0.20, report.AnnualizedVolatility, 1e-9)
	assert.InDelta(t, 1.645*wantBeta*0.20/math.Sqrt(252), report.DailyVaR95, 1e-9)
	assert.Equal(t, "medium", report.Rating)
}

func TestAnalyzeRiskSectorConcentration(t *testing.T) {
	a := testAdvisor(t, riskSnapshot())

	report, err := a.AnalyzeRisk(t.Context(), map[string]float64{
		"RELIANCE.NS": 0.45,
		"ONGC.NS":     0.25,
		"TCS.NS":      0.30,
	})
	require.NoError(t, err)
	require.NotEmpty(t, report.SectorExposures)

	// Energy carries 70% of the book.
	assert.Equal(t, "Energy", report.SectorExposures[0].Sector)
	assert.InDelta(t, 0.70, report.SectorExposures[0].Weight, 1e-9)
	assert.Equal(t, "high", report.SectorExposures[0].Concentration)

	assert.Greater(t, report.DiversificationScore, 0.0)
	assert.Less(t, report.DiversificationScore, 1.0)
}

func TestAnalyzeRiskStressScenarios(t *testing.T) {
	a := testAdvisor(t, riskSnapshot())

	report, err := a.AnalyzeRisk(t.Context(), map[string]float64{
		"RELIANCE.NS": 0.6,
		"TCS.NS":      0.4,
	})
	require.NoError(t, err)
	require.Len(t, report.StressScenarios, 3)

	byName := make(map[string]StressScenario)
	for _, s := range report.StressScenarios {
		byName[s.Name] = s
	}

	// Tech correction hits only the IT share of the book.
	assert.InDelta(t, 0.30*0.4, byName["tech_correction"].LossAmount, 1e-9)
	assert.Greater(t, byName["market_crash"].LossAmount, 0.0)
	assert.Greater(t, byName["rate_shock"].LossAmount, 0.0)
}

func TestAnalyzeRiskNormalizesWeights(t *testing.T) {
	a := testAdvisor(t, riskSnapshot())

	// Rupee values instead of weights.
	report, err := a.AnalyzeRisk(t.Context(), map[string]float64{
		"RELIANCE.NS": 50000,
		"ONGC.NS":     50000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.95, report.PortfolioBeta, 1e-9)
}

func TestAnalyzeRiskUnknownSymbolDefaultsBeta(t *testing.T) {
	a := testAdvisor(t, riskSnapshot())

	report, err := a.AnalyzeRisk(t.Context(), map[string]float64{"MYSTERY.NS": 1.0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, report.PortfolioBeta, 1e-9)
	assert.Equal(t, "Unknown", report.SectorExposures[0].Sector)
}

func TestAnalyzeRiskInvalidInput(t *testing.T) {
	a := testAdvisor(t, riskSnapshot())

	_, err := a.AnalyzeRisk(t.Context(), nil)
	assert.True(t, types.IsInvalidInput(err))

	_, err = a.AnalyzeRisk(t.Context(), map[string]float64{"RELIANCE.NS": -1})
	assert.True(t, types.IsInvalidInput(err))
}

func TestRiskRatingThresholds(t *testing.T) {
	assert.Equal(t, "low", riskRating(0.4))
	assert.Equal(t, "low", riskRating(0.5))
	assert.Equal(t, "medium", riskRating(0.9))
	assert.Equal(t, "high", riskRating(1.3))
	assert.Equal(t, "very_high", riskRating(1.8))
}

func TestMarketOverview(t *testing.T) {
	snap := riskSnapshot()
	snap.Sectors["Energy"] = market.SectorPerformance{ChangePercent: 1.4, Volume: 1_000_000}
	snap.Sectors["IT"] = market.SectorPerformance{ChangePercent: -0.6, Volume: 800_000}
	snap.Breadth = &market.MarketBreadth{Advances: 1200, Declines: 800, AdvanceDeclineRatio: 1.5, Sentiment: "bullish"}

	a := testAdvisor(t, snap)

	overview, err := a.MarketOverview(t.Context())
	require.NoError(t, err)

	require.NotNil(t, overview.Breadth)
	assert.Equal(t, 1200, overview.Breadth.Advances)
	assert.Equal(t, 4, overview.StockCount)

	require.Len(t, overview.Sectors, 2)
	assert.Equal(t, "Energy", overview.Sectors[0].Sector)

	// Only RELIANCE.NS reports a change percent in the fixture.
	require.Len(t, overview.TopGainers, 1)
	assert.Equal(t, "RELIANCE.NS", overview.TopGainers[0].Symbol)
	assert.Empty(t, overview.TopLosers)
}
