package market

import (
	"reflect"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Criteria is the structured screener filter. Nil bounds are open; an
// empty sector matches every sector. Expression, when set, is a CEL
// expression evaluated per stock and combined (AND) with the structured
// bounds.
type Criteria struct {
	Sector           string   `json:"sector,omitempty"`
	MinPrice         *float64 `json:"min_price,omitempty"`
	MaxPrice         *float64 `json:"max_price,omitempty"`
	MinPE            *float64 `json:"min_pe,omitempty"`
	MaxPE            *float64 `json:"max_pe,omitempty"`
	MinDividendYield *float64 `json:"min_dividend_yield,omitempty"`
	Expression       string   `json:"expression,omitempty"`
}

// ScreenerMatch is one stock passing the screen.
type ScreenerMatch struct {
	Symbol string      `json:"symbol"`
	Stock  StockRecord `json:"stock"`
}

// screenerEnv declares the variables a screener expression may reference.
// Absent numeric fields evaluate as 0 so expressions stay total.
func screenerEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("symbol", cel.StringType),
		cel.Variable("sector", cel.StringType),
		cel.Variable("price", cel.DoubleType),
		cel.Variable("pe", cel.DoubleType),
		cel.Variable("pb", cel.DoubleType),
		cel.Variable("dividend_yield", cel.DoubleType),
		cel.Variable("market_cap", cel.DoubleType),
		cel.Variable("beta", cel.DoubleType),
		cel.Variable("rsi", cel.DoubleType),
	)
}

// Screen filters the snapshot by the criteria. An unparseable or
// non-boolean CEL expression is InvalidInput; evaluation errors on a
// single stock skip that stock.
func Screen(snap *Snapshot, criteria Criteria) ([]ScreenerMatch, error) {
	if snap == nil {
		return nil, types.NewError(types.DATA_MISSING, "market data not loaded")
	}

	var program cel.Program
	if criteria.Expression != "" {
		env, err := screenerEnv()
		if err != nil {
			return nil, types.WrapError(types.SEARCH_FAILED, "screener environment", err)
		}
		ast, issues := env.Compile(criteria.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, types.WrapError(types.INVALID_INPUT, "invalid screener expression", issues.Err())
		}
		if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
			return nil, types.NewErrorf(types.INVALID_INPUT,
				"screener expression must be boolean, got %s", ast.OutputType())
		}
		program, err = env.Program(ast)
		if err != nil {
			return nil, types.WrapError(types.INVALID_INPUT, "invalid screener expression", err)
		}
	}

	var matches []ScreenerMatch
	for _, symbol := range snap.Symbols() {
		rec := snap.Stocks[symbol]
		if !matchesCriteria(rec, criteria) {
			continue
		}
		if program != nil {
			ok, err := evalExpression(program, symbol, rec, snap.Technicals[symbol])
			if err != nil || !ok {
				continue
			}
		}
		matches = append(matches, ScreenerMatch{Symbol: symbol, Stock: rec})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Symbol < matches[j].Symbol })
	return matches, nil
}

func matchesCriteria(rec StockRecord, c Criteria) bool {
	if c.Sector != "" && !strings.EqualFold(rec.Sector, c.Sector) {
		return false
	}
	if c.MinPrice != nil && (rec.CurrentPrice == nil || *rec.CurrentPrice < *c.MinPrice) {
		return false
	}
	if c.MaxPrice != nil && (rec.CurrentPrice == nil || *rec.CurrentPrice > *c.MaxPrice) {
		return false
	}
	if c.MinPE != nil && (rec.PERatio == nil || *rec.PERatio < *c.MinPE) {
		return false
	}
	if c.MaxPE != nil && (rec.PERatio == nil || *rec.PERatio > *c.MaxPE) {
		return false
	}
	if c.MinDividendYield != nil && (rec.DividendYield == nil || *rec.DividendYield < *c.MinDividendYield) {
		return false
	}
	return true
}

func evalExpression(program cel.Program, symbol string, rec StockRecord, tech Technicals) (bool, error) {
	vars := map[string]any{
		"symbol":         symbol,
		"sector":         rec.Sector,
		"price":          deref(rec.CurrentPrice),
		"pe":             deref(rec.PERatio),
		"pb":             deref(rec.PBRatio),
		"dividend_yield": deref(rec.DividendYield),
		"market_cap":     deref(rec.MarketCap),
		"beta":           deref(rec.Beta),
		"rsi":            deref(tech.RSI),
	}
	out, _, err := program.Eval(vars)
	if err != nil {
		return false, err
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, nil
	}
	return result, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
