package llm

import (
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Config selects and configures a chat model backend.
type Config struct {
	// Provider is "openai" or "ollama".
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// NewModel constructs a langchaingo model from the config. The OpenAI
// backend falls back to OPENAI_API_KEY from the environment when no key is
// configured.
func NewModel(cfg Config) (llms.Model, error) {
	switch cfg.Provider {
	case "openai":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, types.NewError(types.INVALID_INPUT,
				"openai provider requires api_key (or OPENAI_API_KEY)")
		}
		opts := []openai.Option{openai.WithToken(apiKey)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		client, err := openai.New(opts...)
		if err != nil {
			return nil, types.WrapError(types.UPSTREAM_FAILED, "failed to create openai client", err)
		}
		return client, nil

	case "ollama":
		opts := []ollama.Option{}
		if cfg.Model != "" {
			opts = append(opts, ollama.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		client, err := ollama.New(opts...)
		if err != nil {
			return nil, types.WrapError(types.UPSTREAM_FAILED, "failed to create ollama client", err)
		}
		return client, nil

	default:
		return nil, types.NewErrorf(types.INVALID_INPUT, "unknown llm provider: %q", cfg.Provider)
	}
}
