package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/parthkaria14/GenAdvisor/internal/graph"
	"github.com/parthkaria14/GenAdvisor/internal/market"
)

// Entities is the result of entity extraction over free text. Lists are
// deduplicated and empty when nothing matched; extraction never fails.
type Entities struct {
	Companies []string `json:"companies"`
	Sectors   []string `json:"sectors"`
	Metrics   []string `json:"metrics"`
}

// MetricVocabulary is the fixed set of financial metric terms recognized
// in queries, matched by substring containment.
var MetricVocabulary = []string{
	"pe", "pb", "roe", "debt", "margin", "growth", "dividend", "rsi", "macd", "price",
}

// stopwords are name words too generic to identify a company on their own.
var stopwords = map[string]struct{}{
	"the": {}, "of": {}, "and": {}, "bank": {}, "limited": {}, "ltd": {},
	"india": {}, "indian": {}, "industries": {}, "corporation": {},
	"company": {}, "services": {}, "finance": {}, "motors": {},
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Extractor resolves free text to graph node keys. Company resolution is
// tiered: a direct scan over graph stock nodes, then NER-assisted matching,
// then a raw registry scan. The first tier that finds anything wins;
// sectors and metrics are matched independently of the company tiers.
type Extractor struct {
	graphFn    func() *graph.Graph
	registry   *market.Registry
	recognizer Recognizer
	logger     *slog.Logger
}

// NewExtractor creates an Extractor. graphFn supplies the current graph
// snapshot; recognizer may be nil to disable the NER tier.
func NewExtractor(graphFn func() *graph.Graph, registry *market.Registry, recognizer Recognizer, logger *slog.Logger) *Extractor {
	return &Extractor{
		graphFn:    graphFn,
		registry:   registry,
		recognizer: recognizer,
		logger:     logger,
	}
}

// Extract resolves companies, sectors and metrics mentioned in text
// against the current graph snapshot.
func (e *Extractor) Extract(ctx context.Context, text string) Entities {
	g := e.graphFn()
	return Entities{
		Companies: e.resolveCompanies(ctx, g, text),
		Sectors:   e.resolveSectors(g, text),
		Metrics:   matchMetrics(text),
	}
}

// ResolveMentions implements graph.MentionResolver so the builder can
// attach mentions edges while the graph is still under construction.
func (e *Extractor) ResolveMentions(ctx context.Context, g *graph.Graph, text string) ([]string, []string) {
	return e.resolveCompanies(ctx, g, text), e.resolveSectors(g, text)
}

func (e *Extractor) resolveCompanies(ctx context.Context, g *graph.Graph, text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens := tokenSet(text)

	// Tier 1: direct ticker/name scan over graph stock nodes.
	if g != nil {
		if found := scanStocks(g.NodesByType(graph.NodeTypeStock), tokens); len(found) > 0 {
			return found
		}
	}

	// Tier 2: NER over the raw text, spans matched with the same rule.
	if e.recognizer != nil {
		if found := e.resolveViaNER(ctx, g, text); len(found) > 0 {
			return found
		}
	}

	// Tier 3: raw registry scan, bypassing the graph.
	return e.scanRegistry(tokens)
}

// scanStocks applies the direct-match rule to a list of stock nodes:
// the exchange-suffix-stripped ticker appears as a word, or at least two
// significant words of the company name do.
func scanStocks(stocks []*graph.Node, tokens map[string]struct{}) []string {
	var found []string
	seen := make(map[string]struct{})
	for _, node := range stocks {
		name := ""
		if node.Stock != nil {
			name = node.Stock.Name
		}
		if !matchesCompany(node.Key, name, tokens) {
			continue
		}
		if _, dup := seen[node.Key]; dup {
			continue
		}
		seen[node.Key] = struct{}{}
		found = append(found, node.Key)
	}
	return found
}

// matchesCompany is the shared tier rule.
func matchesCompany(symbol, name string, tokens map[string]struct{}) bool {
	ticker := strings.ToLower(stripExchangeSuffix(symbol))
	if ticker != "" {
		if _, ok := tokens[ticker]; ok {
			return true
		}
	}
	return significantOverlap(name, tokens) >= 2
}

func (e *Extractor) resolveViaNER(ctx context.Context, g *graph.Graph, text string) []string {
	spans, err := e.recognizer.Recognize(ctx, text)
	if err != nil {
		// Upstream failure: skip the tier, the registry scan still runs.
		e.logger.Warn("entity recognizer failed, skipping NER tier", "error", err)
		return nil
	}

	var stocks []*graph.Node
	if g != nil {
		stocks = g.NodesByType(graph.NodeTypeStock)
	}

	var found []string
	seen := make(map[string]struct{})
	for _, span := range spans {
		if !span.IsOrganization() {
			continue
		}
		spanTokens := tokenSet(span.Text)
		for _, node := range stocks {
			name := ""
			if node.Stock != nil {
				name = node.Stock.Name
			}
			if !matchesCompany(node.Key, name, spanTokens) {
				continue
			}
			if _, dup := seen[node.Key]; dup {
				continue
			}
			seen[node.Key] = struct{}{}
			found = append(found, node.Key)
		}
	}
	return found
}

// scanRegistry matches the text against the curated universe: colloquial
// aliases first, then the same ticker/name rule over every entry.
func (e *Extractor) scanRegistry(tokens map[string]struct{}) []string {
	if e.registry == nil {
		return nil
	}

	var found []string
	seen := make(map[string]struct{})
	add := func(symbol string) {
		if _, dup := seen[symbol]; dup {
			return
		}
		seen[symbol] = struct{}{}
		found = append(found, symbol)
	}

	for _, alias := range e.registry.Aliases() {
		if _, ok := tokens[alias]; !ok {
			continue
		}
		for _, symbol := range e.registry.TickersForAlias(alias) {
			add(symbol)
		}
	}
	for _, entry := range e.registry.Entries() {
		if matchesCompany(entry.Symbol, entry.Name, tokens) {
			add(entry.Symbol)
		}
	}
	return found
}

// resolveSectors matches known sector node names against the text,
// independently of the company tiers. Names match by case-insensitive
// substring, except very short ones (IT): those require an exact-case
// standalone word so the pronoun "it" never triggers the IT sector.
func (e *Extractor) resolveSectors(g *graph.Graph, text string) []string {
	lower := strings.ToLower(text)
	exactTokens := make(map[string]struct{})
	for _, word := range wordPattern.FindAllString(text, -1) {
		exactTokens[word] = struct{}{}
	}

	var names []string
	if g != nil {
		for _, node := range g.NodesByType(graph.NodeTypeSector) {
			names = append(names, node.Sector.Name)
		}
	}
	if len(names) == 0 && e.registry != nil {
		names = e.registry.Sectors()
	}

	var found []string
	seen := make(map[string]struct{})
	for _, name := range names {
		matched := false
		if len(name) <= 3 {
			_, matched = exactTokens[name]
		} else {
			matched = strings.Contains(lower, strings.ToLower(name))
		}
		if !matched {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		found = append(found, name)
	}
	return found
}

func matchMetrics(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, metric := range MetricVocabulary {
		if strings.Contains(lower, metric) {
			found = append(found, metric)
		}
	}
	return found
}

// stripExchangeSuffix removes the exchange qualifier from a ticker:
// RELIANCE.NS -> RELIANCE.
func stripExchangeSuffix(symbol string) string {
	if idx := strings.IndexByte(symbol, '.'); idx > 0 {
		return symbol[:idx]
	}
	return symbol
}

// significantOverlap counts how many non-stopword words of name appear in
// the token set.
func significantOverlap(name string, tokens map[string]struct{}) int {
	count := 0
	for _, word := range wordPattern.FindAllString(strings.ToLower(name), -1) {
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, ok := tokens[word]; ok {
			count++
		}
	}
	return count
}

func tokenSet(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		tokens[word] = struct{}{}
	}
	return tokens
}
