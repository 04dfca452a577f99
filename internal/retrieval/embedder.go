package retrieval

import (
	"context"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Embedder generates embedding vectors from text. Implementations must be
// safe for concurrent use once constructed (and, for the tfidf embedder,
// once fitted).
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the dimensionality of the vectors.
	Dimensions() int

	// Model returns the name of the embedding model in use.
	Model() string

	// Health returns the health status of the embedder.
	Health(ctx context.Context) types.HealthStatus
}
