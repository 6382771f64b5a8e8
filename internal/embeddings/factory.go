package embeddings

import (
	"fmt"
	"os"

	"github.com/guidepro/guidepro/internal/config"
)

// New creates a single embedder. API keys are read from the provider's
// conventional environment variable. Empty model and baseURL use the preset.
func New(provider config.ProviderType, model, baseURL string, dims int) (Embedder, error) {
	preset := config.GetPreset(provider)
	if model == "" {
		model = preset.EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		envVar := config.APIKeyEnvVar(provider)
		apiKey := os.Getenv(envVar)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is required for OpenAI embeddings", envVar)
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(model), baseURL), nil

	case config.ProviderOllama:
		if baseURL == "" {
			baseURL = preset.BaseURL
			if host := os.Getenv("OLLAMA_HOST"); host != "" {
				baseURL = host
			}
		}
		return NewOllamaEmbedder(model, dims, baseURL), nil

	case config.ProviderLocal:
		return NewLocalEmbedder(dims), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// FromConfig builds the configured embedder, wrapped in a FallbackEmbedder
// when fallbacks are listed. Fallbacks that cannot be built are skipped; all
// members must agree on dimensionality.
func FromConfig(cfg *config.Config) (Embedder, error) {
	primary, err := New(cfg.EmbeddingProvider, cfg.EmbeddingModel, cfg.EmbeddingBaseURL, cfg.EmbeddingDimensions)
	if err != nil {
		return nil, err
	}
	if len(cfg.EmbeddingFallbacks) == 0 {
		return primary, nil
	}

	chain := []Embedder{primary}
	for _, fb := range cfg.EmbeddingFallbacks {
		e, err := New(fb, "", "", cfg.EmbeddingDimensions)
		if err != nil {
			continue
		}
		chain = append(chain, e)
	}
	if len(chain) == 1 {
		return primary, nil
	}
	return NewFallbackEmbedder(chain...)
}
