package market

import (
	_ "embed"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

//go:embed universe.yaml
var universeYAML []byte

// RegistryEntry is one stock in the curated universe.
type RegistryEntry struct {
	Symbol     string  `yaml:"symbol" json:"symbol"`
	Name       string  `yaml:"name" json:"name"`
	Sector     string  `yaml:"sector" json:"sector"`
	Popularity float64 `yaml:"popularity" json:"popularity"`
}

type universeFile struct {
	Companies     map[string][]string `yaml:"companies"`
	Sectors       []string            `yaml:"sectors"`
	SectorIndices map[string]string   `yaml:"sector_indices"`
	Stocks        []RegistryEntry     `yaml:"stocks"`
}

// Registry holds the curated Indian-equity universe: listed stocks with
// names and sectors, colloquial company-name aliases, and the tracked
// sector indices. It is the ground truth the extractor falls back to when
// the graph has no matching node.
type Registry struct {
	entries       []RegistryEntry
	bySymbol      map[string]RegistryEntry
	aliases       map[string][]string
	sectors       []string
	sectorIndices map[string]string
}

// NewRegistry parses the embedded universe definition.
func NewRegistry() (*Registry, error) {
	return NewRegistryFromYAML(universeYAML)
}

// NewRegistryFromYAML builds a Registry from raw YAML, primarily for
// tests that need a smaller universe.
func NewRegistryFromYAML(data []byte) (*Registry, error) {
	var file universeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, types.WrapError(types.DATA_LOAD_FAILED, "failed to parse universe definition", err)
	}

	r := &Registry{
		entries:       file.Stocks,
		bySymbol:      make(map[string]RegistryEntry, len(file.Stocks)),
		aliases:       make(map[string][]string, len(file.Companies)),
		sectors:       file.Sectors,
		sectorIndices: file.SectorIndices,
	}
	for _, entry := range file.Stocks {
		r.bySymbol[entry.Symbol] = entry
	}
	for alias, symbols := range file.Companies {
		r.aliases[strings.ToLower(alias)] = symbols
	}
	return r, nil
}

// Entries returns all universe stocks.
func (r *Registry) Entries() []RegistryEntry {
	return r.entries
}

// Lookup returns the entry for an exact symbol.
func (r *Registry) Lookup(symbol string) (RegistryEntry, bool) {
	entry, ok := r.bySymbol[symbol]
	return entry, ok
}

// TickersForAlias maps a colloquial company name to its tickers.
// Conglomerate aliases (tata) resolve to several symbols.
func (r *Registry) TickersForAlias(name string) []string {
	return r.aliases[strings.ToLower(strings.TrimSpace(name))]
}

// Aliases returns the known colloquial names in sorted order.
func (r *Registry) Aliases() []string {
	names := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sectors returns the tracked sector names.
func (r *Registry) Sectors() []string {
	return r.sectors
}

// SectorIndex returns the index ticker tracking a sector.
func (r *Registry) SectorIndex(sector string) (string, bool) {
	ticker, ok := r.sectorIndices[sector]
	return ticker, ok
}

// Symbols returns every universe symbol in sorted order.
func (r *Registry) Symbols() []string {
	symbols := make([]string, 0, len(r.bySymbol))
	for symbol := range r.bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
