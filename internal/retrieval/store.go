package retrieval

import (
	"context"
	"math"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// SearchQuery describes a vector search over the document store.
type SearchQuery struct {
	// Embedding is the query vector. Required.
	Embedding []float64

	// TopK bounds the number of results.
	TopK int

	// MinScore filters out weak matches. Zero keeps everything.
	MinScore float64

	// Filters restrict results by exact metadata match. A "doc_type" key
	// matches Metadata.DocType, "source" matches Metadata.Source; any
	// other key matches Metadata.Extra.
	Filters map[string]string
}

// Validate checks the query is runnable.
func (q *SearchQuery) Validate() error {
	if len(q.Embedding) == 0 {
		return types.NewError(types.INVALID_INPUT, "search query requires an embedding")
	}
	if q.TopK <= 0 {
		return types.NewError(types.INVALID_INPUT, "search topK must be positive")
	}
	return nil
}

// DocumentStore persists embedded documents and serves similarity search.
// Implementations must be safe for concurrent use.
type DocumentStore interface {
	// Store adds or replaces a single document with its embedding.
	Store(ctx context.Context, doc Document, embedding []float64) error

	// StoreBatch adds multiple documents efficiently.
	StoreBatch(ctx context.Context, docs []Document, embeddings [][]float64) error

	// Search returns documents ranked by similarity to the query vector.
	Search(ctx context.Context, query SearchQuery) ([]ScoredDocument, error)

	// Get retrieves a document by ID, nil when absent.
	Get(ctx context.Context, id string) (*Document, error)

	// Delete removes a document.
	Delete(ctx context.Context, id string) error

	// Reset removes every document, returning the store to its empty
	// state. Called when the embedding space changes and previously
	// stored vectors are no longer comparable with new ones.
	Reset(ctx context.Context) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Health returns the health status of the store.
	Health(ctx context.Context) types.HealthStatus

	// Close releases all resources held by the store.
	Close() error
}

// cosineSimilarity computes the cosine of two vectors, mapped from
// [-1, 1] to [0, 1] so scores compose with the re-ranking weights.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}

// matchesFilters applies metadata filters to a document.
func matchesFilters(doc Document, filters map[string]string) bool {
	for key, want := range filters {
		var got string
		switch key {
		case "doc_type":
			got = doc.Metadata.DocType
		case "source":
			got = doc.Metadata.Source
		default:
			got = doc.Metadata.Extra[key]
		}
		if got != want {
			return false
		}
	}
	return true
}
