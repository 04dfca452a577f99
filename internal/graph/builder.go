package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/parthkaria14/GenAdvisor/internal/market"
)

// MentionResolver maps free text to keys of nodes in a graph under
// construction. The entity extractor implements it; the indirection keeps
// this package free of a dependency on the extraction tiers.
type MentionResolver interface {
	ResolveMentions(ctx context.Context, g *Graph, text string) (companies, sectors []string)
}

// BuilderConfig tunes graph construction.
type BuilderConfig struct {
	// MaxNews bounds how many news items are ingested per build, newest
	// first. Zero means all.
	MaxNews int
}

// Builder constructs a knowledge graph from a market snapshot. Build is
// best-effort: a failing step is logged and skipped, and the caller always
// receives whatever graph the remaining steps produced. Each Build starts
// from a fresh graph, so a partial failure can never mix in stale state
// from a previous generation.
type Builder struct {
	cfg      BuilderConfig
	resolver MentionResolver
	logger   *slog.Logger
}

// NewBuilder creates a Builder. resolver may be nil, in which case news
// nodes are created without mentions edges.
func NewBuilder(cfg BuilderConfig, resolver MentionResolver, logger *slog.Logger) *Builder {
	return &Builder{cfg: cfg, resolver: resolver, logger: logger}
}

// Build constructs a new graph from the snapshot. It never returns an
// error and never panics out: every step runs under recovery and the
// (possibly partial) graph is always returned.
func (b *Builder) Build(ctx context.Context, snap *market.Snapshot) *Graph {
	g := New()
	failed := 0

	steps := []struct {
		name string
		fn   func()
	}{
		{"indices", func() { b.addIndices(g) }},
		{"stocks", func() { b.addStocks(g, snap) }},
		{"breadth", func() { b.addBreadth(g, snap) }},
		{"technicals", func() { b.overlayTechnicals(g, snap) }},
		{"news", func() { b.addNews(ctx, g, snap) }},
		{"peers", func() { b.connectPeers(g) }},
	}

	for _, step := range steps {
		if err := b.runStep(step.name, step.fn); err != nil {
			failed++
		}
	}

	stats := g.Stats()
	b.logger.Info("knowledge graph built",
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"failed_steps", failed)
	return g
}

// runStep executes one build step under panic recovery. A failing step is
// reported as an error so the caller can count it, never propagated.
func (b *Builder) runStep(name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build step panicked: %v", r)
			b.logger.Warn("graph build step failed, continuing with partial graph",
				"step", name, "error", err)
		}
	}()
	fn()
	return nil
}

func (b *Builder) addIndices(g *Graph) {
	g.AddNode(&Node{Key: IndexNifty, Type: NodeTypeIndex, Index: &IndexAttrs{Name: "Nifty 50"}})
	g.AddNode(&Node{Key: IndexSensex, Type: NodeTypeIndex, Index: &IndexAttrs{Name: "BSE Sensex"}})
}

// addStocks upserts one node per stock record, attaches it to its sector
// and wires the sector into both broad-market indices. Missing numeric
// fields stay nil on the node; the builder never fabricates a value.
func (b *Builder) addStocks(g *Graph, snap *market.Snapshot) {
	for _, symbol := range snap.Symbols() {
		rec := snap.Stocks[symbol]
		g.AddNode(&Node{
			Key:  symbol,
			Type: NodeTypeStock,
			Stock: &StockAttrs{
				Name:             rec.Name,
				Sector:           rec.Sector,
				Price:            rec.CurrentPrice,
				ChangePercent:    rec.ChangePercent,
				Volume:           rec.Volume,
				MarketCap:        rec.MarketCap,
				PERatio:          rec.PERatio,
				PBRatio:          rec.PBRatio,
				DividendYield:    rec.DividendYield,
				Beta:             rec.Beta,
				FiftyTwoWeekHigh: rec.FiftyTwoWeekHigh,
				FiftyTwoWeekLow:  rec.FiftyTwoWeekLow,
				Timestamp:        rec.Timestamp,
			},
		})

		if rec.Sector == "" {
			continue
		}

		sectorNode := g.Node(rec.Sector)
		if sectorNode == nil {
			attrs := &SectorAttrs{Name: rec.Sector}
			if perf, ok := snap.Sectors[rec.Sector]; ok {
				attrs.ChangePercent = market.Float(perf.ChangePercent)
				attrs.Volume = market.Int(perf.Volume)
			}
			sectorNode = &Node{Key: rec.Sector, Type: NodeTypeSector, Sector: attrs}
			g.AddNode(sectorNode)
		}
		sectorNode.Sector.StockCount++

		g.AddEdge(symbol, rec.Sector, RelationBelongsTo)
		if !g.HasEdge(rec.Sector, IndexNifty) {
			g.AddEdge(rec.Sector, IndexNifty, RelationComponentOf)
		}
		if !g.HasEdge(rec.Sector, IndexSensex) {
			g.AddEdge(rec.Sector, IndexSensex, RelationComponentOf)
		}
	}
}

func (b *Builder) addBreadth(g *Graph, snap *market.Snapshot) {
	if snap.Breadth == nil {
		return
	}
	g.AddNode(&Node{
		Key:  BreadthKey,
		Type: NodeTypeIndicator,
		Indicator: &IndicatorAttrs{
			Advances:            snap.Breadth.Advances,
			Declines:            snap.Breadth.Declines,
			AdvanceDeclineRatio: snap.Breadth.AdvanceDeclineRatio,
			Sentiment:           snap.Breadth.Sentiment,
			Timestamp:           snap.Breadth.Timestamp,
		},
	})
	g.AddEdge(BreadthKey, IndexNifty, RelationIndicates)
	g.AddEdge(BreadthKey, IndexSensex, RelationIndicates)
}

// overlayTechnicals copies indicator values onto existing stock nodes.
// Indicators never create a node: a symbol with technicals but no stock
// record is skipped.
func (b *Builder) overlayTechnicals(g *Graph, snap *market.Snapshot) {
	for symbol, tech := range snap.Technicals {
		node := g.Node(symbol)
		if node == nil || node.Type != NodeTypeStock {
			continue
		}
		node.Stock.RSI = tech.RSI
		node.Stock.SMA20 = tech.SMA20
		node.Stock.SMA50 = tech.SMA50
		if tech.MACD != nil {
			node.Stock.MACDHistogram = market.Float(tech.MACD.Histogram)
		}
	}
}

// addNews creates one node per news item and attaches mentions edges to
// entities the resolver finds that already exist in the graph. Unresolved
// mentions are dropped; news never creates stub nodes.
func (b *Builder) addNews(ctx context.Context, g *Graph, snap *market.Snapshot) {
	items := make([]market.NewsItem, len(snap.News))
	copy(items, snap.News)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if b.cfg.MaxNews > 0 && len(items) > b.cfg.MaxNews {
		items = items[:b.cfg.MaxNews]
	}

	for _, item := range items {
		if item.Title == "" {
			continue
		}
		key := NewsKey(item.Title, item.PublishedAt, item.Source)
		g.AddNode(&Node{
			Key:  key,
			Type: NodeTypeNews,
			News: &NewsAttrs{
				Title:     item.Title,
				Sentiment: item.Sentiment,
				Date:      item.PublishedAt,
				Source:    item.Source,
			},
		})

		if b.resolver == nil {
			continue
		}
		text := item.Title + " " + item.Description + " " + item.Content
		companies, sectors := b.resolver.ResolveMentions(ctx, g, text)
		for _, target := range companies {
			if g.HasNode(target) {
				g.AddEdge(key, target, RelationMentions)
			}
		}
		for _, target := range sectors {
			if g.HasNode(target) {
				g.AddEdge(key, target, RelationMentions)
			}
		}
	}
}

// connectPeers adds a peer_of_sector edge between every unordered pair of
// stocks sharing a sector. Quadratic per sector, which is fine at tens of
// members. Runs last so every belongs_to edge already exists.
func (b *Builder) connectPeers(g *Graph) {
	for _, sectorNode := range g.NodesByType(NodeTypeSector) {
		var members []string
		for _, n := range g.Neighbors(sectorNode.Key) {
			if n.Relation == RelationBelongsTo && n.Node.Type == NodeTypeStock {
				members = append(members, n.Node.Key)
			}
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				g.AddEdge(members[i], members[j], RelationPeerOfSector)
			}
		}
	}
}
