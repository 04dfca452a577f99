package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeTypeIsValid(t *testing.T) {
	valid := []NodeType{NodeTypeStock, NodeTypeSector, NodeTypeIndex, NodeTypeIndicator, NodeTypeNews}
	for _, nt := range valid {
		assert.True(t, nt.IsValid(), "expected %s to be valid", nt)
	}
	assert.False(t, NodeType("portfolio").IsValid())
	assert.False(t, NodeType("").IsValid())
}

func TestRelationIsValid(t *testing.T) {
	valid := []Relation{RelationBelongsTo, RelationComponentOf, RelationIndicates, RelationMentions, RelationPeerOfSector}
	for _, r := range valid {
		assert.True(t, r.IsValid(), "expected %s to be valid", r)
	}
	assert.False(t, Relation("linked_to").IsValid())
}

func TestAddEdgeRequiresBothNodes(t *testing.T) {
	g := New()
	g.AddNode(&Node{Key: "RELIANCE.NS", Type: NodeTypeStock, Stock: &StockAttrs{}})

	g.AddEdge("RELIANCE.NS", "Energy", RelationBelongsTo)
	assert.False(t, g.HasEdge("RELIANCE.NS", "Energy"), "edge to missing node must be dropped")

	g.AddNode(&Node{Key: "Energy", Type: NodeTypeSector, Sector: &SectorAttrs{Name: "Energy"}})
	g.AddEdge("RELIANCE.NS", "Energy", RelationBelongsTo)
	assert.True(t, g.HasEdge("RELIANCE.NS", "Energy"))
	assert.True(t, g.HasEdge("Energy", "RELIANCE.NS"), "edges are undirected")
}

func TestAddEdgeCollapsesParallelEdges(t *testing.T) {
	g := New()
	g.AddNode(&Node{Key: "a", Type: NodeTypeStock, Stock: &StockAttrs{}})
	g.AddNode(&Node{Key: "b", Type: NodeTypeSector, Sector: &SectorAttrs{Name: "b"}})

	g.AddEdge("a", "b", RelationBelongsTo)
	g.AddEdge("a", "b", RelationMentions)

	rel, ok := g.EdgeBetween("a", "b")
	require.True(t, ok)
	assert.Equal(t, RelationMentions, rel, "last write wins")
	assert.Equal(t, 1, g.Stats().Edges)
}

func TestAddEdgeIgnoresSelfLoop(t *testing.T) {
	g := New()
	g.AddNode(&Node{Key: "a", Type: NodeTypeStock, Stock: &StockAttrs{}})
	g.AddEdge("a", "a", RelationPeerOfSector)
	assert.Zero(t, g.Stats().Edges)
}

func TestNeighborsDeterministicOrder(t *testing.T) {
	g := New()
	g.AddNode(&Node{Key: "hub", Type: NodeTypeSector, Sector: &SectorAttrs{Name: "hub"}})
	for _, key := range []string{"c", "a", "b"} {
		g.AddNode(&Node{Key: key, Type: NodeTypeStock, Stock: &StockAttrs{}})
		g.AddEdge("hub", key, RelationBelongsTo)
	}

	neighbors := g.Neighbors("hub")
	require.Len(t, neighbors, 3)
	assert.Equal(t, "a", neighbors[0].Node.Key)
	assert.Equal(t, "b", neighbors[1].Node.Key)
	assert.Equal(t, "c", neighbors[2].Node.Key)
}

func TestStatsCountsUndirectedEdgesOnce(t *testing.T) {
	g := New()
	g.AddNode(&Node{Key: "a", Type: NodeTypeStock, Stock: &StockAttrs{}})
	g.AddNode(&Node{Key: "b", Type: NodeTypeStock, Stock: &StockAttrs{}})
	g.AddNode(&Node{Key: "s", Type: NodeTypeSector, Sector: &SectorAttrs{Name: "s"}})
	g.AddEdge("a", "s", RelationBelongsTo)
	g.AddEdge("b", "s", RelationBelongsTo)
	g.AddEdge("a", "b", RelationPeerOfSector)

	stats := g.Stats()
	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 3, stats.Edges)
	assert.Equal(t, 2, stats.NodesByType["stock"])
	assert.Equal(t, 2, stats.EdgesByType["belongs_to"])
	assert.Equal(t, 1, stats.EdgesByType["peer_of_sector"])
}

func TestNewsKeyDeterministic(t *testing.T) {
	date := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	k1 := NewsKey("Reliance posts record profit", date, "moneycontrol.com")
	k2 := NewsKey("Reliance  posts   record profit", date, "Moneycontrol.com")
	assert.Equal(t, k1, k2, "whitespace and source case must not change the key")

	k3 := NewsKey("Reliance posts record profit", date, "economictimes.com")
	assert.NotEqual(t, k1, k3, "different source is a different node")

	k4 := NewsKey("Reliance posts record profit", date.AddDate(0, 0, 1), "moneycontrol.com")
	assert.NotEqual(t, k1, k4, "different date is a different node")

	assert.True(t, len(k1) > 5 && k1[:5] == "news:")
}

func TestHolderPublishSwapsAtomically(t *testing.T) {
	h := NewHolder()
	require.NotNil(t, h.Current(), "holder must never expose nil")

	old := h.Current()
	g := New()
	g.AddNode(&Node{Key: "x", Type: NodeTypeStock, Stock: &StockAttrs{}})
	h.Publish(g)

	assert.Same(t, g, h.Current())
	assert.False(t, old.HasNode("x"), "previously loaded snapshot stays untouched")
}
