package retrieval

import (
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// KeywordIndex is the lexical leg of hybrid retrieval: a bleve full-text
// index over the same documents the vector store holds. It catches exact
// terms (tickers, metric names) that embedding similarity can miss.
type KeywordIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	docs  map[string]Document
}

type keywordDoc struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	DocType string `json:"doc_type"`
}

// NewKeywordIndex opens a bleve index at path; an empty path keeps it in
// memory and rebuilds on startup.
func NewKeywordIndex(path string) (*KeywordIndex, error) {
	var (
		index bleve.Index
		err   error
	)
	if path == "" {
		index, err = bleve.NewMemOnly(buildKeywordMapping())
	} else {
		index, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			index, err = bleve.New(path, buildKeywordMapping())
		}
	}
	if err != nil {
		return nil, types.WrapError(types.SEARCH_FAILED, "failed to open keyword index", err)
	}
	return &KeywordIndex{index: index, docs: make(map[string]Document)}, nil
}

func buildKeywordMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Store = false
	textMapping.Index = true
	docMapping.AddFieldMappingsAt("content", textMapping)
	docMapping.AddFieldMappingsAt("source", textMapping)
	docMapping.AddFieldMappingsAt("doc_type", textMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Index adds documents to the keyword index.
func (k *KeywordIndex) Index(docs ...Document) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	batch := k.index.NewBatch()
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return err
		}
		entry := keywordDoc{
			Content: doc.Content,
			Source:  doc.Metadata.Source,
			DocType: doc.Metadata.DocType,
		}
		if err := batch.Index(doc.ID, entry); err != nil {
			return types.WrapError(types.STORE_FAILED, "failed to index document", err)
		}
		k.docs[doc.ID] = doc
	}
	if err := k.index.Batch(batch); err != nil {
		return types.WrapError(types.STORE_FAILED, "failed to commit keyword batch", err)
	}
	return nil
}

// Search runs a match query over document content and returns up to k
// results with scores normalized to [0,1] by the best hit.
func (k *KeywordIndex) Search(queryText string, topK int) ([]ScoredDocument, error) {
	if topK <= 0 {
		topK = 10
	}

	match := bleve.NewMatchQuery(queryText)
	match.SetField("content")
	request := bleve.NewSearchRequest(match)
	request.Size = topK

	k.mu.RLock()
	defer k.mu.RUnlock()

	result, err := k.index.Search(request)
	if err != nil {
		return nil, types.WrapError(types.SEARCH_FAILED, "keyword search failed", err)
	}

	maxScore := result.MaxScore
	if maxScore <= 0 {
		maxScore = 1
	}
	hits := make([]ScoredDocument, 0, len(result.Hits))
	for _, hit := range result.Hits {
		doc, ok := k.docs[hit.ID]
		if !ok {
			continue
		}
		hits = append(hits, ScoredDocument{Document: doc, Score: hit.Score / maxScore})
	}
	return hits, nil
}

// Close releases the underlying index.
func (k *KeywordIndex) Close() error {
	return k.index.Close()
}
