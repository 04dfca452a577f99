package retrieval

import (
	"context"
	"sort"
	"sync"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// EmbeddedStore is an in-memory document store using brute-force cosine
// search. Suitable for the document volumes this pipeline indexes (news
// and reports, thousands not millions); larger corpora belong in the
// sqlite store or an external index.
type EmbeddedStore struct {
	mu         sync.RWMutex
	docs       map[string]Document
	embeddings map[string][]float64
	dims       int
	fixedDims  int
}

// NewEmbeddedStore creates an in-memory store. dims may be zero, in which
// case the store adopts the dimensionality of the first stored vector
// (the tfidf embedder's dimensions are known only after fitting).
func NewEmbeddedStore(dims int) *EmbeddedStore {
	return &EmbeddedStore{
		docs:       make(map[string]Document),
		embeddings: make(map[string][]float64),
		dims:       dims,
		fixedDims:  dims,
	}
}

// Store implements DocumentStore.
func (s *EmbeddedStore) Store(ctx context.Context, doc Document, embedding []float64) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if len(embedding) == 0 {
		return types.NewError(types.STORE_FAILED, "embedding cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims == 0 {
		s.dims = len(embedding)
	}
	if len(embedding) != s.dims {
		return types.NewErrorf(types.STORE_FAILED,
			"embedding dimensions mismatch: expected %d, got %d", s.dims, len(embedding))
	}
	s.docs[doc.ID] = doc
	s.embeddings[doc.ID] = embedding
	return nil
}

// StoreBatch implements DocumentStore.
func (s *EmbeddedStore) StoreBatch(ctx context.Context, docs []Document, embeddings [][]float64) error {
	if len(docs) != len(embeddings) {
		return types.NewError(types.STORE_FAILED, "documents and embeddings length mismatch")
	}
	for i := range docs {
		if err := s.Store(ctx, docs[i], embeddings[i]); err != nil {
			return types.WrapError(types.STORE_FAILED, "batch store failed", err)
		}
	}
	return nil
}

// Search implements DocumentStore.
func (s *EmbeddedStore) Search(ctx context.Context, query SearchQuery) ([]ScoredDocument, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]ScoredDocument, 0, len(s.docs))
	for id, doc := range s.docs {
		if !matchesFilters(doc, query.Filters) {
			continue
		}
		score := cosineSimilarity(query.Embedding, s.embeddings[id])
		if score < query.MinScore {
			continue
		}
		results = append(results, ScoredDocument{Document: doc, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})
	if len(results) > query.TopK {
		results = results[:query.TopK]
	}
	return results, nil
}

// Get implements DocumentStore.
func (s *EmbeddedStore) Get(ctx context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

// Delete implements DocumentStore.
func (s *EmbeddedStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	delete(s.embeddings, id)
	return nil
}

// Reset implements DocumentStore. Adopted dimensions are forgotten along
// with the documents, so the next stored vector may have a new size.
func (s *EmbeddedStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]Document)
	s.embeddings = make(map[string][]float64)
	s.dims = s.fixedDims
	return nil
}

// Count implements DocumentStore.
func (s *EmbeddedStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Health implements DocumentStore.
func (s *EmbeddedStore) Health(ctx context.Context) types.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.docs) == 0 {
		return types.Degraded("document store is empty")
	}
	return types.Healthy("embedded document store operational")
}

// Close implements DocumentStore.
func (s *EmbeddedStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]Document)
	s.embeddings = make(map[string][]float64)
	return nil
}
