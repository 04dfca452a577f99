package advisor

import "github.com/parthkaria14/GenAdvisor/internal/market"

// Fundamental scoring heuristics. The score starts neutral at 0.5 and
// each available ratio nudges it; absent fields contribute nothing.
const (
	fundamentalBase = 0.5

	peCheap     = 15.0
	peExpensive = 30.0
	pbCheap     = 1.0
	pbExpensive = 3.0

	goodDividendYield = 3.0  // percent
	largeCapFloor     = 1e12 // rupees
)

// ScoreFundamentals rates valuation quality in [0, 1]. 0.5 is neutral;
// higher is cheaper/safer by the classic value screens.
func ScoreFundamentals(rec market.StockRecord) float64 {
	score := fundamentalBase

	if rec.PERatio != nil {
		switch {
		case *rec.PERatio > 0 && *rec.PERatio < peCheap:
			score += 0.1
		case *rec.PERatio > peExpensive:
			score -= 0.1
		}
	}

	if rec.PBRatio != nil {
		switch {
		case *rec.PBRatio > 0 && *rec.PBRatio < pbCheap:
			score += 0.1
		case *rec.PBRatio > pbExpensive:
			score -= 0.1
		}
	}

	if rec.DividendYield != nil && *rec.DividendYield > goodDividendYield {
		score += 0.05
	}

	if rec.MarketCap != nil && *rec.MarketCap > largeCapFloor {
		score += 0.05
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
