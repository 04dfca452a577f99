package fuse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/parthkaria14/GenAdvisor/internal/extract"
	"github.com/parthkaria14/GenAdvisor/internal/graph"
	"github.com/parthkaria14/GenAdvisor/internal/query"
	"github.com/parthkaria14/GenAdvisor/internal/retrieval"
)

func fp(f float64) *float64 { return &f }

func extractEntitiesNone() extract.Entities { return extract.Entities{} }

func newsResult(sentiment string) query.Result {
	return query.Result{
		Key:        "news:abc",
		ResultType: query.ResultTypeRelatedNews,
		Relevance:  0.8,
		Node: &graph.Node{
			Key:  "news:abc",
			Type: graph.NodeTypeNews,
			News: &graph.NewsAttrs{Title: "headline", Sentiment: sentiment},
		},
	}
}

func breadthResult(sentiment string, ts time.Time) query.Result {
	return query.Result{
		Key:        graph.BreadthKey,
		ResultType: query.ResultTypeMarketContext,
		Relevance:  0.7,
		Node: &graph.Node{
			Key:       graph.BreadthKey,
			Type:      graph.NodeTypeIndicator,
			Indicator: &graph.IndicatorAttrs{Advances: 1000, Declines: 800, Sentiment: sentiment, Timestamp: ts},
		},
	}
}

func stockResult(rsi, macd *float64) query.Result {
	return query.Result{
		Key:        "RELIANCE.NS",
		ResultType: "stock_info",
		Relevance:  1.0,
		Node: &graph.Node{
			Key:   "RELIANCE.NS",
			Type:  graph.NodeTypeStock,
			Stock: &graph.StockAttrs{Name: "Reliance Industries", RSI: rsi, MACDHistogram: macd},
		},
	}
}

func TestAggregateSentimentEmptyIsExactlyZero(t *testing.T) {
	assert.Equal(t, 0.0, AggregateSentiment(nil))
	assert.Equal(t, 0.0, AggregateSentiment([]query.Result{}))
}

func TestAggregateSentimentWeights(t *testing.T) {
	// positive news (w 0.7, +1) against bearish breadth (w 1.0, −1):
	// (0.7 − 1.0) / 1.7
	got := AggregateSentiment([]query.Result{
		newsResult("positive"),
		breadthResult("bearish", time.Now()),
	})
	assert.InDelta(t, -0.3/1.7, got, 1e-9)
}

func TestAggregateSentimentTechnicalComponents(t *testing.T) {
	// Oversold RSI (+1, w 0.5) and negative MACD (−1, w 0.5) cancel out.
	got := AggregateSentiment([]query.Result{stockResult(fp(25), fp(-0.4))})
	assert.Equal(t, 0.0, got)

	// Only RSI present: +1 at full weight of the available set.
	got = AggregateSentiment([]query.Result{stockResult(fp(25), nil)})
	assert.Equal(t, 1.0, got)

	// Neutral RSI contributes 0, not nothing.
	got = AggregateSentiment([]query.Result{stockResult(fp(50), nil)})
	assert.Equal(t, 0.0, got)
}

func TestAggregateSentimentIgnoresUnlabeledNews(t *testing.T) {
	got := AggregateSentiment([]query.Result{newsResult("")})
	assert.Equal(t, 0.0, got)
}

func TestConfidenceDefaultsWithoutSignal(t *testing.T) {
	assert.Equal(t, 0.5, Confidence(nil, nil, time.Now()))
}

func TestConfidenceOmitsMissingComponents(t *testing.T) {
	// Only documents available: confidence equals their mean relevance,
	// because the other components drop out of the weight sum.
	docs := []retrieval.ScoredDocument{
		{Document: retrieval.Document{ID: "a"}, Score: 0.8},
		{Document: retrieval.Document{ID: "b"}, Score: 0.6},
	}
	assert.InDelta(t, 0.7, Confidence(nil, docs, time.Now()), 1e-9)
}

func TestConfidenceCoverageSaturatesAtFive(t *testing.T) {
	now := time.Now()
	many := make([]query.Result, 8)
	for i := range many {
		many[i] = newsResult("positive") // undated: no freshness signal
	}
	five := many[:5]

	assert.Equal(t, Confidence(five, nil, now), Confidence(many, nil, now))
	assert.InDelta(t, 1.0, Confidence(many, nil, now), 1e-9)
}

func TestConfidenceFreshnessDecays(t *testing.T) {
	now := time.Now()
	fresh := Confidence([]query.Result{breadthResult("bullish", now)}, nil, now)
	stale := Confidence([]query.Result{breadthResult("bullish", now.Add(-48*time.Hour))}, nil, now)
	assert.Greater(t, fresh, stale)
}

func TestConfidenceAlwaysInUnitInterval(t *testing.T) {
	now := time.Now()
	cases := [][]query.Result{
		nil,
		{breadthResult("bullish", now.Add(-1000 * time.Hour))},
		{stockResult(fp(25), fp(1)), newsResult("positive"), breadthResult("bullish", now)},
	}
	for _, results := range cases {
		got := Confidence(results, []retrieval.ScoredDocument{{Score: 1.5}}, now)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestNewContextFusesEverything(t *testing.T) {
	now := time.Now()
	results := []query.Result{stockResult(fp(25), fp(0.5))}
	docs := []retrieval.ScoredDocument{{Document: retrieval.Document{ID: "d"}, Score: 0.9}}

	entities := extract.Entities{Companies: []string{"RELIANCE.NS"}}
	fused := NewContext("How is Reliance doing", query.QueryTypeStockAnalysis, entities, results, docs, now)

	assert.Equal(t, query.QueryTypeStockAnalysis, fused.QueryType)
	assert.Equal(t, now, fused.Timestamp)
	assert.Equal(t, 1.0, fused.Sentiment) // oversold + positive MACD
	assert.GreaterOrEqual(t, fused.Confidence, 0.0)
	assert.LessOrEqual(t, fused.Confidence, 1.0)
}
