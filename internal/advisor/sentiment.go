package advisor

import (
	"sort"
	"strings"

	"github.com/parthkaria14/GenAdvisor/internal/graph"
)

// NewsSentiment is the mean sentiment of news nodes connected to the
// stock node, weighted by recency rank: the newest connected article
// counts fully, each older one half as much as the one before. A stock
// with no connected news scores exactly 0.0.
func NewsSentiment(g *graph.Graph, symbol string) float64 {
	if g == nil {
		return 0.0
	}

	var items []*graph.NewsAttrs
	for _, neighbor := range g.Neighbors(symbol) {
		if neighbor.Node.Type == graph.NodeTypeNews && neighbor.Node.News != nil {
			items = append(items, neighbor.Node.News)
		}
	}
	if len(items) == 0 {
		return 0.0
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	var sum, weight float64
	w := 1.0
	for _, item := range items {
		sum += w * sentimentValue(item.Sentiment)
		weight += w
		w /= 2
	}
	return sum / weight
}

func sentimentValue(label string) float64 {
	switch strings.ToLower(label) {
	case "positive", "bullish":
		return 1
	case "negative", "bearish":
		return -1
	default:
		return 0
	}
}
