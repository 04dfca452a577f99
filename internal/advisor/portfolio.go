package advisor

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Strategy bounds each holding's weight.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyBalanced     Strategy = "balanced"
	StrategyAggressive   Strategy = "aggressive"
)

// String returns the string representation of Strategy.
func (s Strategy) String() string {
	return string(s)
}

// IsValid checks if the Strategy is a valid value.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyConservative, StrategyBalanced, StrategyAggressive:
		return true
	default:
		return false
	}
}

// ParseStrategy validates a strategy name. Unrecognized names are
// InvalidInput, the one error category the allocator rejects on.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	if !s.IsValid() {
		return "", types.NewErrorf(types.INVALID_INPUT, "unknown strategy: %q", name)
	}
	return s, nil
}

// strategyBounds returns the per-holding [min, max] weight band.
func strategyBounds(s Strategy) (minWeight, maxWeight float64) {
	switch s {
	case StrategyConservative:
		return 0.05, 0.15
	case StrategyAggressive:
		return 0.05, 0.40
	default:
		return 0.05, 0.25
	}
}

// rebalanceDriftThreshold triggers a rebalance suggestion when any
// holding's weight drifts this far from target.
const rebalanceDriftThreshold = 0.05

// Holding is one allocated position.
type Holding struct {
	Symbol string          `json:"symbol"`
	Weight float64         `json:"weight"`
	Amount decimal.Decimal `json:"amount"`
	Shares int64           `json:"shares"`
	Price  float64         `json:"price,omitempty"`
	Beta   float64         `json:"beta"`
}

// Allocation is the allocator's output for one budget.
type Allocation struct {
	Strategy  Strategy        `json:"strategy"`
	Budget    decimal.Decimal `json:"budget"`
	Holdings  []Holding       `json:"holdings"`
	Invested  decimal.Decimal `json:"invested"`
	CashLeft  decimal.Decimal `json:"cash_left"`
	RiskScore float64         `json:"risk_score"`
	Timestamp time.Time       `json:"timestamp"`
}

// OptimizePortfolio allocates budget across symbols: equal weights,
// clamped into the strategy band, renormalized to sum to exactly 1. Rupee
// amounts and whole-share counts use decimal arithmetic so paise never
// drift. Symbols without price data are InvalidInput; an empty universe
// likewise.
func (a *Advisor) OptimizePortfolio(ctx context.Context, budget float64, strategy Strategy, symbols []string) (*Allocation, error) {
	if !strategy.IsValid() {
		return nil, types.NewErrorf(types.INVALID_INPUT, "unknown strategy: %q", strategy)
	}
	if len(symbols) == 0 {
		return nil, types.NewError(types.INVALID_INPUT, "portfolio universe cannot be empty")
	}
	if budget <= 0 {
		return nil, types.NewError(types.INVALID_INPUT, "budget must be positive")
	}

	snap := a.snapshotFn()
	if snap == nil {
		return nil, types.NewError(types.DATA_MISSING, "market data not loaded")
	}

	weights := AllocateWeights(len(symbols), strategy)

	budgetDec := decimal.NewFromFloat(budget)
	invested := decimal.Zero
	holdings := make([]Holding, 0, len(symbols))
	var riskScore float64

	for i, symbol := range symbols {
		rec, ok := snap.Stock(symbol)
		if !ok || rec.CurrentPrice == nil {
			return nil, types.NewErrorf(types.INVALID_INPUT, "no price data for %s", symbol)
		}

		beta := 1.0
		if rec.Beta != nil {
			beta = *rec.Beta
		}
		riskScore += weights[i] * beta

		amount := budgetDec.Mul(decimal.NewFromFloat(weights[i])).Round(2)
		price := decimal.NewFromFloat(*rec.CurrentPrice)
		shares := amount.Div(price).Floor().IntPart()
		spent := price.Mul(decimal.NewFromInt(shares)).Round(2)
		invested = invested.Add(spent)

		holdings = append(holdings, Holding{
			Symbol: symbol,
			Weight: weights[i],
			Amount: spent,
			Shares: shares,
			Price:  *rec.CurrentPrice,
			Beta:   beta,
		})
	}

	return &Allocation{
		Strategy:  strategy,
		Budget:    budgetDec,
		Holdings:  holdings,
		Invested:  invested,
		CashLeft:  budgetDec.Sub(invested),
		RiskScore: riskScore,
		Timestamp: a.now(),
	}, nil
}

// AllocateWeights produces n weights: equal, clamped to the strategy
// band, renormalized to sum to 1. When n is large enough that the band's
// minimum cannot hold (n·min > 1), renormalization scales everything down
// proportionally, which is the documented behavior of the allocator.
func AllocateWeights(n int, strategy Strategy) []float64 {
	minWeight, maxWeight := strategyBounds(strategy)

	weights := make([]float64, n)
	equal := 1.0 / float64(n)
	var sum float64
	for i := range weights {
		weights[i] = clamp(equal, minWeight, maxWeight)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// Drift is one holding's divergence from its target weight.
type Drift struct {
	Symbol  string  `json:"symbol"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Drift   float64 `json:"drift"`
}

// CheckRebalance compares current weights against targets and reports
// whether any drift exceeds the 5% threshold. Symbols present on only one
// side count at full drift.
func CheckRebalance(current, target map[string]float64) (bool, []Drift) {
	symbols := make(map[string]struct{}, len(current)+len(target))
	for s := range current {
		symbols[s] = struct{}{}
	}
	for s := range target {
		symbols[s] = struct{}{}
	}

	ordered := make([]string, 0, len(symbols))
	for s := range symbols {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	var drifts []Drift
	needed := false
	for _, s := range ordered {
		d := Drift{Symbol: s, Current: current[s], Target: target[s]}
		d.Drift = d.Current - d.Target
		if d.Drift < 0 {
			d.Drift = -d.Drift
		}
		if d.Drift > rebalanceDriftThreshold {
			needed = true
		}
		drifts = append(drifts, d)
	}
	return needed, drifts
}
