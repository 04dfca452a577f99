package advisor

import "github.com/parthkaria14/GenAdvisor/internal/market"

// Signal classifies the technical stance on a stock.
type Signal string

const (
	SignalBuy     Signal = "buy"
	SignalSell    Signal = "sell"
	SignalNeutral Signal = "neutral"
)

// String returns the string representation of Signal.
func (s Signal) String() string {
	return string(s)
}

// RSI bands and the buy/sell decision threshold.
const (
	rsiOversold     = 30.0
	rsiOverbought   = 70.0
	signalThreshold = 0.3
)

// TechnicalSignal is the outcome of technical scoring for one stock.
// Score is the mean of the available component votes in [−1, 1]; Strength
// is |Score|, or 0.5 when no component voted.
type TechnicalSignal struct {
	Signal     Signal             `json:"signal"`
	Score      float64            `json:"score"`
	Strength   float64            `json:"strength"`
	Components map[string]float64 `json:"components,omitempty"`
}

// ScoreTechnicals votes on RSI position, MACD histogram sign and the
// price/SMA20/SMA50 trend, then averages whichever of the three had data.
func ScoreTechnicals(rec market.StockRecord, tech market.Technicals) TechnicalSignal {
	components := make(map[string]float64)

	if tech.RSI != nil {
		switch {
		case *tech.RSI < rsiOversold:
			components["rsi"] = 1
		case *tech.RSI > rsiOverbought:
			components["rsi"] = -1
		default:
			components["rsi"] = 0
		}
	}

	if tech.MACD != nil {
		switch {
		case tech.MACD.Histogram > 0:
			components["macd"] = 1
		case tech.MACD.Histogram < 0:
			components["macd"] = -1
		default:
			components["macd"] = 0
		}
	}

	if rec.CurrentPrice != nil && tech.SMA20 != nil && tech.SMA50 != nil {
		price := *rec.CurrentPrice
		switch {
		case price > *tech.SMA20 && *tech.SMA20 > *tech.SMA50:
			components["trend"] = 1
		case price < *tech.SMA20 && *tech.SMA20 < *tech.SMA50:
			components["trend"] = -1
		default:
			components["trend"] = 0
		}
	}

	if len(components) == 0 {
		return TechnicalSignal{Signal: SignalNeutral, Score: 0, Strength: 0.5}
	}

	var sum float64
	for _, vote := range components {
		sum += vote
	}
	score := sum / float64(len(components))

	sig := SignalNeutral
	switch {
	case score >= signalThreshold:
		sig = SignalBuy
	case score <= -signalThreshold:
		sig = SignalSell
	}

	strength := score
	if strength < 0 {
		strength = -strength
	}
	if sig == SignalNeutral {
		strength = 0.5
	}

	return TechnicalSignal{Signal: sig, Score: score, Strength: strength, Components: components}
}
