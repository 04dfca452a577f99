package retrieval

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.LLM
	model  string
	dims   int
}

// OpenAIEmbedderConfig configures the OpenAI embedder.
type OpenAIEmbedderConfig struct {
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
}

// NewOpenAIEmbedder creates an embedder for the configured model. The API
// key falls back to OPENAI_API_KEY.
func NewOpenAIEmbedder(cfg OpenAIEmbedderConfig) (*OpenAIEmbedder, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, types.NewError(types.INVALID_INPUT,
			"openai embedder requires api_key (or OPENAI_API_KEY)")
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = 1536
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, types.WrapError(types.EMBEDDING_FAILED, "failed to create openai embedder", err)
	}
	return &OpenAIEmbedder{client: client, model: model, dims: dims}, nil
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	batch, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return batch[0], nil
}

// EmbedBatch implements Embedder.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	raw, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, types.NewRetryableError(types.EMBEDDING_FAILED,
			"openai embedding call failed: "+err.Error())
	}
	vectors := make([][]float64, len(raw))
	for i, v := range raw {
		vec := make([]float64, len(v))
		for j, f := range v {
			vec[j] = float64(f)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions implements Embedder.
func (e *OpenAIEmbedder) Dimensions() int { return e.dims }

// Model implements Embedder.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Health implements Embedder.
func (e *OpenAIEmbedder) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("openai embedder configured")
}
