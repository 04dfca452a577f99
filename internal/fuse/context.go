package fuse

import (
	"math"
	"strings"
	"time"

	"github.com/parthkaria14/GenAdvisor/internal/extract"
	"github.com/parthkaria14/GenAdvisor/internal/query"
	"github.com/parthkaria14/GenAdvisor/internal/retrieval"
)

// Context is the fused input handed to a response generator. It is built
// once per query and never mutated afterwards; generators receive it by
// value.
type Context struct {
	Query        string
	QueryType    query.QueryType
	Entities     extract.Entities
	GraphResults []query.Result
	Documents    []retrieval.ScoredDocument
	Sentiment    float64
	Confidence   float64
	Timestamp    time.Time
}

// Sentiment component weights. News labels carry less weight than the
// breadth indicator; technicals derived from RSI and MACD carry half.
const (
	sentimentWeightNews      = 0.7
	sentimentWeightBreadth   = 1.0
	sentimentWeightTechnical = 0.5
)

// Confidence component weights.
const (
	confidenceWeightCoverage  = 0.4
	confidenceWeightRelevance = 0.3
	confidenceWeightFreshness = 0.3
	confidenceDefault         = 0.5
	coverageSaturation        = 5
)

// NewContext fuses graph results and retrieved documents into a Context,
// computing the aggregate sentiment and confidence.
func NewContext(queryText string, queryType query.QueryType, entities extract.Entities,
	graphResults []query.Result, docs []retrieval.ScoredDocument, now time.Time) Context {
	return Context{
		Query:        queryText,
		QueryType:    queryType,
		Entities:     entities,
		GraphResults: graphResults,
		Documents:    docs,
		Sentiment:    AggregateSentiment(graphResults),
		Confidence:   Confidence(graphResults, docs, now),
		Timestamp:    now,
	}
}

// AggregateSentiment computes the weighted mean sentiment over graph
// results: news labels, the market-breadth label, and technical sentiment
// derived from the seed stocks' RSI and MACD. An empty set is exactly 0.0,
// never NaN.
func AggregateSentiment(results []query.Result) float64 {
	var sum, weight float64

	for _, res := range results {
		node := res.Node
		if node == nil {
			continue
		}
		switch {
		case res.ResultType == query.ResultTypeRelatedNews && node.News != nil:
			sum += sentimentWeightNews * labelValue(node.News.Sentiment)
			weight += sentimentWeightNews

		case res.ResultType == query.ResultTypeMarketContext && node.Indicator != nil:
			sum += sentimentWeightBreadth * labelValue(node.Indicator.Sentiment)
			weight += sentimentWeightBreadth

		case res.ResultType == "stock_info" && node.Stock != nil:
			if node.Stock.RSI != nil {
				sum += sentimentWeightTechnical * rsiSentiment(*node.Stock.RSI)
				weight += sentimentWeightTechnical
			}
			if node.Stock.MACDHistogram != nil {
				sum += sentimentWeightTechnical * sign(*node.Stock.MACDHistogram)
				weight += sentimentWeightTechnical
			}
		}
	}

	if weight == 0 {
		return 0.0
	}
	return sum / weight
}

// Confidence is the weighted mean of coverage, mean document relevance and
// graph-data freshness. Components without signal are omitted from both
// numerator and weight sum; when nothing contributes the result defaults
// to 0.5. Always in [0,1].
func Confidence(results []query.Result, docs []retrieval.ScoredDocument, now time.Time) float64 {
	var sum, weight float64

	if len(results) > 0 {
		n := len(results)
		if n > coverageSaturation {
			n = coverageSaturation
		}
		sum += confidenceWeightCoverage * float64(n) / coverageSaturation
		weight += confidenceWeightCoverage
	}

	if len(docs) > 0 {
		var relevance float64
		for _, doc := range docs {
			relevance += doc.Score
		}
		sum += confidenceWeightRelevance * relevance / float64(len(docs))
		weight += confidenceWeightRelevance
	}

	if freshness, ok := meanFreshness(results, now); ok {
		sum += confidenceWeightFreshness * freshness
		weight += confidenceWeightFreshness
	}

	if weight == 0 {
		return confidenceDefault
	}
	return clamp01(sum / weight)
}

// meanFreshness averages max(0, 1 − age_hours/24) over timestamped graph
// results. Nodes without a timestamp do not count.
func meanFreshness(results []query.Result, now time.Time) (float64, bool) {
	var sum float64
	var count int

	for _, res := range results {
		node := res.Node
		if node == nil {
			continue
		}
		var ts time.Time
		switch {
		case node.Stock != nil && node.Stock.Timestamp != nil:
			ts = *node.Stock.Timestamp
		case node.Indicator != nil:
			ts = node.Indicator.Timestamp
		case node.News != nil:
			ts = node.News.Date
		}
		if ts.IsZero() {
			continue
		}
		ageHours := now.Sub(ts).Hours()
		sum += math.Max(0, 1-ageHours/24)
		count++
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// labelValue maps a sentiment label to a signed score.
func labelValue(label string) float64 {
	switch strings.ToLower(label) {
	case "positive", "bullish":
		return 1
	case "negative", "bearish":
		return -1
	default:
		return 0
	}
}

func rsiSentiment(rsi float64) float64 {
	switch {
	case rsi < 30:
		return 1
	case rsi > 70:
		return -1
	default:
		return 0
	}
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

func clamp01(f float64) float64 {
	return math.Min(1, math.Max(0, f))
}
