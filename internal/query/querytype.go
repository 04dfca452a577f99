package query

import "strings"

// QueryType classifies what a user question is asking for. It drives seed
// selection, document re-ranking and the response template.
type QueryType string

const (
	QueryTypeStockAnalysis       QueryType = "stock_analysis"
	QueryTypePortfolioAdvice     QueryType = "portfolio_advice"
	QueryTypeMarketOverview      QueryType = "market_overview"
	QueryTypeSectorAnalysis      QueryType = "sector_analysis"
	QueryTypeTechnicalAnalysis   QueryType = "technical_analysis"
	QueryTypeFundamentalAnalysis QueryType = "fundamental_analysis"
	QueryTypeNewsSentiment       QueryType = "news_sentiment"
	QueryTypeRiskAssessment      QueryType = "risk_assessment"
)

// String returns the string representation of QueryType.
func (qt QueryType) String() string {
	return string(qt)
}

// IsValid checks if the QueryType is a valid value.
func (qt QueryType) IsValid() bool {
	switch qt {
	case QueryTypeStockAnalysis, QueryTypePortfolioAdvice, QueryTypeMarketOverview,
		QueryTypeSectorAnalysis, QueryTypeTechnicalAnalysis, QueryTypeFundamentalAnalysis,
		QueryTypeNewsSentiment, QueryTypeRiskAssessment:
		return true
	default:
		return false
	}
}

// classifierRules maps keyword groups to query types. Group order is
// fixed: the first group with a hit decides the classification.
var classifierRules = []struct {
	queryType QueryType
	keywords  []string
}{
	{QueryTypePortfolioAdvice, []string{"portfolio", "diversif", "allocat", "invest", "holding"}},
	{QueryTypeMarketOverview, []string{"market", "nifty", "sensex", "overview", "index", "breadth"}},
	{QueryTypeSectorAnalysis, []string{"sector", "industry"}},
	{QueryTypeTechnicalAnalysis, []string{"rsi", "macd", "technical", "chart", "sma", "moving average", "momentum", "oversold", "overbought"}},
	{QueryTypeFundamentalAnalysis, []string{"fundamental", "valuation", "pe ratio", "p/e", "earnings", "balance sheet", "book value", "dividend"}},
	{QueryTypeNewsSentiment, []string{"news", "sentiment", "headline", "announcement"}},
	{QueryTypeRiskAssessment, []string{"risk", "volatil", "beta", "drawdown", "safe"}},
}

// Classify maps a question to a QueryType using keyword groups. Anything
// that matches no group is stock analysis, the dominant question shape.
func Classify(text string) QueryType {
	lower := strings.ToLower(text)
	for _, rule := range classifierRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.queryType
			}
		}
	}
	return QueryTypeStockAnalysis
}
