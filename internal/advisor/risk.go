package advisor

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Risk model constants. Volatility uses a flat 20% annualized market
// proxy scaled by portfolio beta; VaR is the one-sided 95% daily quantile.
const (
	marketAnnualVolatility = 0.20
	var95Z                 = 1.645
	tradingDaysPerYear     = 252

	assumedMaxDrawdown = 0.15

	concentrationHigh   = 0.40
	concentrationMedium = 0.25

	riskRatingLowCeiling    = 0.5
	riskRatingMediumCeiling = 1.0
	riskRatingHighCeiling   = 1.5
)

// StressScenario is one hypothetical shock applied to the portfolio.
type StressScenario struct {
	Name       string  `json:"name"`
	Impact     float64 `json:"impact_percent"`
	LossAmount float64 `json:"loss_amount"`
}

// SectorExposure is one sector's share of portfolio value.
type SectorExposure struct {
	Sector        string  `json:"sector"`
	Weight        float64 `json:"weight"`
	Concentration string  `json:"concentration"`
}

// RiskReport summarizes portfolio risk.
type RiskReport struct {
	PortfolioBeta        float64          `json:"portfolio_beta"`
	AnnualizedVolatility float64          `json:"annualized_volatility"`
	DailyVaR95           float64          `json:"daily_var_95"`
	MaxDrawdownEstimate  float64          `json:"max_drawdown_estimate"`
	DiversificationScore float64          `json:"diversification_score"`
	SectorExposures      []SectorExposure `json:"sector_exposures"`
	StressScenarios      []StressScenario `json:"stress_scenarios"`
	Rating               string           `json:"rating"`
	Timestamp            time.Time        `json:"timestamp"`
}

// AnalyzeRisk evaluates a portfolio given as symbol → weight. Weights are
// normalized internally, so callers may pass rupee values or raw weights.
func (a *Advisor) AnalyzeRisk(ctx context.Context, holdings map[string]float64) (*RiskReport, error) {
	if len(holdings) == 0 {
		return nil, types.NewError(types.INVALID_INPUT, "holdings cannot be empty")
	}

	snap := a.snapshotFn()
	if snap == nil {
		return nil, types.NewError(types.DATA_MISSING, "market data not loaded")
	}

	var total float64
	for _, w := range holdings {
		if w < 0 {
			return nil, types.NewError(types.INVALID_INPUT, "holding weights cannot be negative")
		}
		total += w
	}
	if total == 0 {
		return nil, types.NewError(types.INVALID_INPUT, "holding weights sum to zero")
	}

	symbols := make([]string, 0, len(holdings))
	for s := range holdings {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var beta, itWeight float64
	sectorWeights := make(map[string]float64)
	for _, symbol := range symbols {
		weight := holdings[symbol] / total

		stockBeta := 1.0
		sector := "Unknown"
		if rec, ok := snap.Stock(symbol); ok {
			if rec.Beta != nil {
				stockBeta = *rec.Beta
			}
			if rec.Sector != "" {
				sector = rec.Sector
			}
		}
		beta += weight * stockBeta
		sectorWeights[sector] += weight
		if isTechSector(sector) {
			itWeight += weight
		}
	}

	volatility := beta * marketAnnualVolatility
	dailyVaR := var95Z * volatility / math.Sqrt(tradingDaysPerYear)

	exposures := make([]SectorExposure, 0, len(sectorWeights))
	for sector, weight := range sectorWeights {
		exposures = append(exposures, SectorExposure{
			Sector:        sector,
			Weight:        weight,
			Concentration: concentrationLabel(weight),
		})
	}
	sort.Slice(exposures, func(i, j int) bool {
		if exposures[i].Weight != exposures[j].Weight {
			return exposures[i].Weight > exposures[j].Weight
		}
		return exposures[i].Sector < exposures[j].Sector
	})

	report := &RiskReport{
		PortfolioBeta:        beta,
		AnnualizedVolatility: volatility,
		DailyVaR95:           dailyVaR,
		MaxDrawdownEstimate:  assumedMaxDrawdown * beta,
		DiversificationScore: diversificationScore(sectorWeights),
		SectorExposures:      exposures,
		StressScenarios: []StressScenario{
			{Name: "market_crash", Impact: -20, LossAmount: 0.20 * beta},
			{Name: "tech_correction", Impact: -30, LossAmount: 0.30 * itWeight},
			{Name: "rate_shock", Impact: -15, LossAmount: 0.15 * beta},
		},
		Rating:    riskRating(beta),
		Timestamp: a.now(),
	}
	return report, nil
}

// diversificationScore is 1 minus the Herfindahl concentration of sector
// weights, so a single-sector portfolio scores 0 and a perfectly spread
// one approaches 1.
func diversificationScore(sectorWeights map[string]float64) float64 {
	var hhi float64
	for _, w := range sectorWeights {
		hhi += w * w
	}
	return clamp(1-hhi, 0, 1)
}

func concentrationLabel(weight float64) string {
	switch {
	case weight > concentrationHigh:
		return "high"
	case weight > concentrationMedium:
		return "medium"
	default:
		return "low"
	}
}

func riskRating(beta float64) string {
	switch {
	case beta <= riskRatingLowCeiling:
		return "low"
	case beta <= riskRatingMediumCeiling:
		return "medium"
	case beta <= riskRatingHighCeiling:
		return "high"
	default:
		return "very_high"
	}
}

func isTechSector(sector string) bool {
	s := strings.ToLower(sector)
	return s == "it" || strings.Contains(s, "technology") || strings.Contains(s, "software")
}
