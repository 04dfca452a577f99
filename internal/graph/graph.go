package graph

import (
	"sort"
	"sync/atomic"
)

// Graph is a typed, attributed, undirected knowledge graph. A Graph is
// mutated only by its Builder before publication; once published through a
// Holder it is read-only, so queries need no locking.
type Graph struct {
	nodes map[string]*Node
	// adj maps a node key to its neighbors and the relation on each edge.
	// Both directions are stored; there is at most one edge per pair and
	// a later relation between the same pair overwrites the earlier one.
	adj map[string]map[string]Relation
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		adj:   make(map[string]map[string]Relation),
	}
}

// AddNode inserts or replaces a node. The node's attribute variant is
// taken as-is; callers set exactly the variant matching the type.
func (g *Graph) AddNode(node *Node) {
	g.nodes[node.Key] = node
	if g.adj[node.Key] == nil {
		g.adj[node.Key] = make(map[string]Relation)
	}
}

// AddEdge connects two existing nodes with the given relation. Edges are
// undirected and collapse: adding a second relation between the same pair
// overwrites the first. Edges to unknown nodes are ignored.
func (g *Graph) AddEdge(a, b string, relation Relation) {
	if a == b {
		return
	}
	if _, ok := g.nodes[a]; !ok {
		return
	}
	if _, ok := g.nodes[b]; !ok {
		return
	}
	g.adj[a][b] = relation
	g.adj[b][a] = relation
}

// Node returns the node for key, or nil when absent.
func (g *Graph) Node(key string) *Node {
	return g.nodes[key]
}

// HasNode reports whether key exists in the graph.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// HasEdge reports whether an edge connects a and b.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.adj[a][b]
	return ok
}

// EdgeBetween returns the relation between a and b and whether an edge exists.
func (g *Graph) EdgeBetween(a, b string) (Relation, bool) {
	rel, ok := g.adj[a][b]
	return rel, ok
}

// Neighbor pairs an adjacent node with the relation connecting it.
type Neighbor struct {
	Node     *Node
	Relation Relation
}

// Neighbors returns the neighbors of key in deterministic (key-sorted)
// order. Deterministic iteration keeps traversal output stable across
// rebuilds of the same snapshot.
func (g *Graph) Neighbors(key string) []Neighbor {
	edges := g.adj[key]
	if len(edges) == 0 {
		return nil
	}
	keys := make([]string, 0, len(edges))
	for k := range edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	neighbors := make([]Neighbor, 0, len(keys))
	for _, k := range keys {
		neighbors = append(neighbors, Neighbor{Node: g.nodes[k], Relation: edges[k]})
	}
	return neighbors
}

// NodesByType returns all nodes of the given type in key-sorted order.
func (g *Graph) NodesByType(t NodeType) []*Node {
	var nodes []*Node
	for _, node := range g.nodes {
		if node.Type == t {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Key < nodes[j].Key })
	return nodes
}

// Stats summarizes the graph for logging and the stats endpoint.
type Stats struct {
	Nodes       int            `json:"nodes"`
	Edges       int            `json:"edges"`
	NodesByType map[string]int `json:"nodes_by_type"`
	EdgesByType map[string]int `json:"edges_by_type"`
}

// Stats counts nodes and edges, broken down by type and relation.
func (g *Graph) Stats() Stats {
	stats := Stats{
		Nodes:       len(g.nodes),
		NodesByType: make(map[string]int),
		EdgesByType: make(map[string]int),
	}
	for _, node := range g.nodes {
		stats.NodesByType[node.Type.String()]++
	}
	seen := make(map[[2]string]struct{})
	for a, edges := range g.adj {
		for b, rel := range edges {
			pair := [2]string{a, b}
			if b < a {
				pair = [2]string{b, a}
			}
			if _, ok := seen[pair]; ok {
				continue
			}
			seen[pair] = struct{}{}
			stats.Edges++
			stats.EdgesByType[rel.String()]++
		}
	}
	return stats
}

// Holder publishes graph snapshots. Rebuilds construct a fresh Graph and
// swap it in atomically, so in-flight queries keep the snapshot they
// loaded and never observe a half-built view.
type Holder struct {
	current atomic.Pointer[Graph]
}

// NewHolder returns a Holder seeded with an empty graph so readers never
// load nil.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(New())
	return h
}

// Current returns the most recently published graph.
func (h *Holder) Current() *Graph {
	return h.current.Load()
}

// Publish swaps in a newly built graph.
func (h *Holder) Publish(g *Graph) {
	h.current.Store(g)
}
