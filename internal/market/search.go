package market

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// SymbolSearch is a full-text index over the stock universe, used to
// resolve free-text company references to tickers. Ranking combines text
// relevance with a curated popularity score so that "tata" surfaces the
// widely held Tata stocks first.
type SymbolSearch struct {
	index bleve.Index
}

// searchDoc is the indexed shape of a registry entry.
type searchDoc struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Sector     string  `json:"sector"`
	Popularity float64 `json:"popularity"`
}

// SymbolHit is one ranked search result.
type SymbolHit struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Sector     string  `json:"sector"`
	Popularity float64 `json:"popularity"`
	Score      float64 `json:"score"`
}

// NewSymbolSearch indexes the registry at indexPath. An empty path keeps
// the index in memory, which is the default and rebuilds on startup.
func NewSymbolSearch(registry *Registry, indexPath string) (*SymbolSearch, error) {
	var (
		index bleve.Index
		err   error
	)
	if indexPath == "" {
		index, err = bleve.NewMemOnly(buildSymbolMapping())
	} else {
		index, err = bleve.Open(indexPath)
		if err == bleve.ErrorIndexPathDoesNotExist {
			index, err = bleve.New(indexPath, buildSymbolMapping())
		}
	}
	if err != nil {
		return nil, types.WrapError(types.SEARCH_FAILED, "failed to open symbol index", err)
	}

	batch := index.NewBatch()
	for _, entry := range registry.Entries() {
		doc := searchDoc{
			Symbol:     strings.ToLower(entry.Symbol),
			Name:       entry.Name,
			Sector:     entry.Sector,
			Popularity: entry.Popularity,
		}
		if err := batch.Index(entry.Symbol, doc); err != nil {
			index.Close()
			return nil, types.WrapError(types.SEARCH_FAILED, fmt.Sprintf("failed to index %s", entry.Symbol), err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, types.WrapError(types.SEARCH_FAILED, "failed to build symbol index", err)
	}

	return &SymbolSearch{index: index}, nil
}

func buildSymbolMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()

	popularityMapping := bleve.NewNumericFieldMapping()
	popularityMapping.Store = true
	popularityMapping.Index = true
	docMapping.AddFieldMappingsAt("popularity", popularityMapping)

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Store = true
	textMapping.Index = true
	docMapping.AddFieldMappingsAt("symbol", textMapping)
	docMapping.AddFieldMappingsAt("name", textMapping)
	docMapping.AddFieldMappingsAt("sector", textMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Search ranks universe stocks against a free-text query. The final score
// is 0.7 times the text relevance plus 0.3 times the popularity score.
func (s *SymbolSearch) Search(queryText string, limit int) ([]SymbolHit, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return nil, types.NewError(types.INVALID_INPUT, "search query cannot be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	lower := strings.ToLower(queryText)

	exact := bleve.NewTermQuery(lower)
	exact.SetField("symbol")
	exact.SetBoost(10.0)

	prefix := bleve.NewPrefixQuery(lower)
	prefix.SetField("symbol")
	prefix.SetBoost(5.0)

	nameMatch := bleve.NewMatchQuery(queryText)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	wildcardSymbol := bleve.NewWildcardQuery("*" + lower + "*")
	wildcardSymbol.SetField("symbol")
	wildcardSymbol.SetBoost(2.0)

	wildcardName := bleve.NewWildcardQuery("*" + lower + "*")
	wildcardName.SetField("name")
	wildcardName.SetBoost(1.5)

	sectorMatch := bleve.NewMatchQuery(queryText)
	sectorMatch.SetField("sector")
	sectorMatch.SetBoost(1.0)

	request := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(
		exact, prefix, nameMatch, wildcardSymbol, wildcardName, sectorMatch,
	))
	request.Fields = []string{"symbol", "name", "sector", "popularity"}
	request.Size = limit * 4

	result, err := s.index.Search(request)
	if err != nil {
		return nil, types.WrapError(types.SEARCH_FAILED, "symbol search failed", err)
	}

	hits := make([]SymbolHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		popularity := fieldFloat(hit.Fields, "popularity")
		hits = append(hits, SymbolHit{
			Symbol:     hit.ID,
			Name:       fieldString(hit.Fields, "name"),
			Sector:     fieldString(hit.Fields, "sector"),
			Popularity: popularity,
			Score:      hit.Score*0.7 + popularity*0.3,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Close releases the underlying index.
func (s *SymbolSearch) Close() error {
	return s.index.Close()
}

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldFloat(fields map[string]interface{}, key string) float64 {
	if v, ok := fields[key].(float64); ok {
		return v
	}
	return 0
}
