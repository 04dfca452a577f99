package advisor

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/parthkaria14/GenAdvisor/internal/graph"
	"github.com/parthkaria14/GenAdvisor/internal/market"
)

// Action is the five-step recommendation scale.
type Action string

const (
	ActionStrongBuy  Action = "strong_buy"
	ActionBuy        Action = "buy"
	ActionHold       Action = "hold"
	ActionSell       Action = "sell"
	ActionStrongSell Action = "strong_sell"
)

// String returns the string representation of Action.
func (a Action) String() string {
	return string(a)
}

// IsValid checks if the Action is a valid value.
func (a Action) IsValid() bool {
	switch a {
	case ActionStrongBuy, ActionBuy, ActionHold, ActionSell, ActionStrongSell:
		return true
	default:
		return false
	}
}

// Recommendation score weights and action thresholds.
const (
	weightReturn      = 0.3
	weightTechnical   = 0.25
	weightFundamental = 0.25
	weightSentiment   = 0.2

	thresholdStrong = 0.5
	thresholdMild   = 0.2
)

// Recommendation is the full analysis output for one stock. When data for
// the symbol is missing Success is false and every score field is zero;
// the scorer never emits partial values.
type Recommendation struct {
	Symbol  string `json:"symbol"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Action       Action          `json:"action,omitempty"`
	Score        float64         `json:"score"`
	CurrentPrice float64         `json:"current_price,omitempty"`
	TargetPrice  float64         `json:"target_price,omitempty"`
	Horizon      string          `json:"horizon,omitempty"`
	Confidence   float64         `json:"confidence"`
	Technical    TechnicalSignal `json:"technical"`
	Fundamental  float64         `json:"fundamental"`
	Sentiment    float64         `json:"sentiment"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Advisor scores stocks against the current market snapshot and knowledge
// graph. Both are read through provider funcs so a refresh mid-request
// cannot tear a single analysis.
type Advisor struct {
	snapshotFn func() *market.Snapshot
	graphFn    func() *graph.Graph
	logger     *slog.Logger
	now        func() time.Time
}

// NewAdvisor creates an Advisor over snapshot and graph providers.
func NewAdvisor(snapshotFn func() *market.Snapshot, graphFn func() *graph.Graph, logger *slog.Logger) *Advisor {
	return &Advisor{
		snapshotFn: snapshotFn,
		graphFn:    graphFn,
		logger:     logger,
		now:        time.Now,
	}
}

// AnalyzeStock produces a recommendation for one symbol. Missing symbol
// or missing price data yields Success:false with an error message.
func (a *Advisor) AnalyzeStock(ctx context.Context, symbol string) Recommendation {
	snap := a.snapshotFn()
	if snap == nil {
		return failedRecommendation(symbol, "market data not loaded", a.now())
	}

	rec, ok := snap.Stock(symbol)
	if !ok {
		return failedRecommendation(symbol, "symbol not found in market data", a.now())
	}
	if rec.CurrentPrice == nil {
		return failedRecommendation(symbol, "no price data available", a.now())
	}

	tech, _ := snap.TechnicalsFor(symbol)
	technical := ScoreTechnicals(rec, tech)
	fundamental := ScoreFundamentals(rec)
	sentiment := NewsSentiment(a.graphFn(), symbol)

	var dayReturn float64
	if rec.ChangePercent != nil {
		dayReturn = *rec.ChangePercent / 100
	}

	score := weightReturn*clamp(dayReturn*10, -1, 1) +
		weightTechnical*technical.Score +
		weightFundamental*(fundamental-0.5)*2 +
		weightSentiment*sentiment

	price := *rec.CurrentPrice
	momentum := rangePosition(rec) - 0.5
	expectedReturn := 0.01 + momentum*0.02 + (fundamental-0.5)*0.03

	confidence := clamp(0.5+
		0.2*technical.Strength+
		0.3*math.Abs(fundamental-0.5)+
		0.2*math.Abs(sentiment), 0, 1)

	out := Recommendation{
		Symbol:       symbol,
		Success:      true,
		Action:       actionFor(score),
		Score:        score,
		CurrentPrice: price,
		TargetPrice:  price * (1 + expectedReturn),
		Horizon:      "3-6 months",
		Confidence:   confidence,
		Technical:    technical,
		Fundamental:  fundamental,
		Sentiment:    sentiment,
		Timestamp:    a.now(),
	}

	a.logger.Debug("stock analyzed",
		"symbol", symbol,
		"action", out.Action.String(),
		"score", out.Score,
		"confidence", out.Confidence)
	return out
}

func actionFor(score float64) Action {
	switch {
	case score >= thresholdStrong:
		return ActionStrongBuy
	case score >= thresholdMild:
		return ActionBuy
	case score > -thresholdMild:
		return ActionHold
	case score > -thresholdStrong:
		return ActionSell
	default:
		return ActionStrongSell
	}
}

// rangePosition places the current price inside the 52-week range,
// 0 at the low and 1 at the high. Missing or degenerate range is 0.5.
func rangePosition(rec market.StockRecord) float64 {
	if rec.CurrentPrice == nil || rec.FiftyTwoWeekHigh == nil || rec.FiftyTwoWeekLow == nil {
		return 0.5
	}
	span := *rec.FiftyTwoWeekHigh - *rec.FiftyTwoWeekLow
	if span <= 0 {
		return 0.5
	}
	return clamp((*rec.CurrentPrice-*rec.FiftyTwoWeekLow)/span, 0, 1)
}

func failedRecommendation(symbol, message string, now time.Time) Recommendation {
	return Recommendation{
		Symbol:    symbol,
		Success:   false,
		Error:     message,
		Timestamp: now,
	}
}

func clamp(f, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, f))
}
