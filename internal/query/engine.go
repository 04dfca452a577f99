package query

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/parthkaria14/GenAdvisor/internal/extract"
	"github.com/parthkaria14/GenAdvisor/internal/graph"
)

// Relevance scores are fixed policy, not computed weights. Ranking
// behavior depends on these exact values; do not tune them.
const (
	scoreSeed          = 1.0
	scoreSectorHop     = 0.9
	scoreRelatedNews   = 0.8
	scoreMarketContext = 0.7
	scorePeerStock     = 0.6
)

// Result type labels attached to emitted nodes.
const (
	ResultTypeMarketContext = "market_context"
	ResultTypeRelatedNews   = "related_news"
	ResultTypeSectorInfo    = "sector_info"
	ResultTypeSectorStock   = "sector_stock"
	ResultTypePeerStock     = "peer_stock"
)

// maxResults caps the engine's output.
const maxResults = 20

// DefaultMaxDepth is the traversal depth used when callers pass zero.
const DefaultMaxDepth = 2

// Result is one scored node emitted by the engine.
type Result struct {
	Key        string      `json:"key"`
	Node       *graph.Node `json:"node"`
	ResultType string      `json:"result_type"`
	Relevance  float64     `json:"relevance_score"`
}

// Engine runs bounded, type-aware traversals over the published graph
// snapshot. It only reads: the graph it loads is immutable.
type Engine struct {
	graphFn func() *graph.Graph
	logger  *slog.Logger
}

// NewEngine creates an Engine over the graph provider.
func NewEngine(graphFn func() *graph.Graph, logger *slog.Logger) *Engine {
	return &Engine{graphFn: graphFn, logger: logger}
}

// Query seeds a traversal from the extracted entities and expands up to
// maxDepth hops, emitting typed, scored results. Output is deduplicated
// by node key (first emission wins), sorted by descending relevance with
// stable ties, and capped at 20. Any internal failure yields an empty
// list, never partial output.
func (e *Engine) Query(queryType QueryType, entities extract.Entities, maxDepth int) (results []Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("graph query aborted", "query_type", queryType.String(), "panic", r)
			results = nil
		}
	}()

	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	g := e.graphFn()
	if g == nil {
		return nil
	}

	t := &traversal{g: g, visited: make(map[string]struct{})}

	// The market-breadth node leads every result set when present.
	if breadth := g.Node(graph.BreadthKey); breadth != nil {
		t.emit(breadth, ResultTypeMarketContext, scoreMarketContext)
	}

	for _, seed := range t.seeds(entities) {
		if t.seen(seed.Key) {
			continue
		}
		t.emit(seed, seed.Type.String()+"_info", scoreSeed)
		t.expand(seed, maxDepth)
	}

	sort.SliceStable(t.results, func(i, j int) bool {
		return t.results[i].Relevance > t.results[j].Relevance
	})
	if len(t.results) > maxResults {
		t.results = t.results[:maxResults]
	}
	return t.results
}

type traversal struct {
	g       *graph.Graph
	visited map[string]struct{}
	results []Result
}

// seeds resolves the entity lists to graph nodes, preserving input order:
// companies by exact key, then sector nodes whose name contains a
// requested sector term.
func (t *traversal) seeds(entities extract.Entities) []*graph.Node {
	var seeds []*graph.Node
	for _, key := range entities.Companies {
		if node := t.g.Node(key); node != nil {
			seeds = append(seeds, node)
		}
	}
	if len(entities.Sectors) > 0 {
		sectorNodes := t.g.NodesByType(graph.NodeTypeSector)
		for _, term := range entities.Sectors {
			lowerTerm := strings.ToLower(term)
			for _, node := range sectorNodes {
				if strings.Contains(strings.ToLower(node.Sector.Name), lowerTerm) {
					seeds = append(seeds, node)
				}
			}
		}
	}
	return seeds
}

func (t *traversal) seen(key string) bool {
	_, ok := t.visited[key]
	return ok
}

// emit records a result unless the node was already emitted. First
// occurrence wins: a node found later via a lower-scored path never
// overwrites its earlier emission.
func (t *traversal) emit(node *graph.Node, resultType string, relevance float64) {
	if t.seen(node.Key) {
		return
	}
	t.visited[node.Key] = struct{}{}
	t.results = append(t.results, Result{
		Key:        node.Key,
		Node:       node,
		ResultType: resultType,
		Relevance:  relevance,
	})
}

// expand performs the one-hop expansion from a seed, branching on its
// type, with the conditional second hop through sector intermediaries.
func (t *traversal) expand(seed *graph.Node, maxDepth int) {
	if maxDepth < 1 {
		return
	}
	switch seed.Type {
	case graph.NodeTypeStock:
		for _, n := range t.g.Neighbors(seed.Key) {
			switch n.Node.Type {
			case graph.NodeTypeNews:
				t.emit(n.Node, ResultTypeRelatedNews, scoreRelatedNews)
			case graph.NodeTypeSector:
				t.emit(n.Node, ResultTypeSectorInfo, scoreSectorHop)
				if maxDepth >= 2 {
					t.expandSectorPeers(n.Node, seed.Key)
				}
			}
		}
	case graph.NodeTypeSector:
		for _, n := range t.g.Neighbors(seed.Key) {
			if n.Node.Type == graph.NodeTypeStock {
				t.emit(n.Node, ResultTypeSectorStock, scoreSectorHop)
			}
		}
	}
}

// expandSectorPeers is the second hop: sibling stocks reached through the
// seed stock's sector, excluding the seed itself.
func (t *traversal) expandSectorPeers(sector *graph.Node, seedKey string) {
	for _, n := range t.g.Neighbors(sector.Key) {
		if n.Node.Type == graph.NodeTypeStock && n.Node.Key != seedKey {
			t.emit(n.Node, ResultTypePeerStock, scorePeerStock)
		}
	}
}
