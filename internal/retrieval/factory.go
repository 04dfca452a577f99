package retrieval

import (
	"github.com/parthkaria14/GenAdvisor/internal/config"
	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// NewDocumentStore builds the configured document store backend.
func NewDocumentStore(cfg config.VectorStoreConfig) (DocumentStore, error) {
	switch cfg.Type {
	case "embedded", "mock", "":
		return NewEmbeddedStore(cfg.Dimensions), nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, types.NewError(types.INVALID_INPUT, "sqlite document store requires a path")
		}
		return NewSQLiteStore(cfg.Path, cfg.Dimensions)
	default:
		return nil, types.NewErrorf(types.INVALID_INPUT, "unknown document store type: %q", cfg.Type)
	}
}

// NewEmbedder builds the configured embedder provider. The tfidf embedder
// is returned unfitted; the retriever fits it as documents are ingested.
func NewEmbedder(cfg config.EmbedderConfig) (Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return NewTFIDFEmbedder(), nil
	case "openai":
		return NewOpenAIEmbedder(OpenAIEmbedderConfig{
			Model:      cfg.Model,
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, types.NewErrorf(types.INVALID_INPUT, "unknown embedder type: %q", cfg.Type)
	}
}
