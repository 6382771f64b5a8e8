package llm

import (
	"fmt"
	"os"

	"github.com/guidepro/guidepro/internal/config"
)

// NewProvider creates a single completion provider. API keys are read from
// the provider's conventional environment variable.
func NewProvider(providerType config.ProviderType, model, baseURL string) (Provider, error) {
	if baseURL == "" {
		baseURL = config.GetPreset(providerType).BaseURL
	}
	if model == "" {
		model = config.GetPreset(providerType).Model
	}

	switch providerType {
	case config.ProviderOpenAI, config.ProviderGroq:
		envVar := config.APIKeyEnvVar(providerType)
		apiKey := os.Getenv(envVar)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", envVar)
		}
		return NewOpenAIProvider(apiKey, model, baseURL, string(providerType)), nil

	case config.ProviderAnthropic:
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model, baseURL), nil

	case config.ProviderOllama:
		if host := os.Getenv("OLLAMA_HOST"); host != "" && baseURL == config.GetPreset(config.ProviderOllama).BaseURL {
			baseURL = host
		}
		return NewOllamaProvider(baseURL, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// FromConfig builds the configured provider chain: the primary provider,
// then each fallback in order, wrapped in a rate limiter when
// llm_requests_per_minute is set. It returns (nil, nil) when the provider is
// "none". Fallbacks whose keys are missing are skipped; a missing primary key
// is an error only when no fallback could be built either.
func FromConfig(cfg *config.Config) (Provider, error) {
	if cfg.LLMProvider == config.ProviderNone {
		return nil, nil
	}

	var chain []Provider
	var firstErr error

	primary, err := NewProvider(cfg.LLMProvider, cfg.LLMModel, cfg.LLMBaseURL)
	if err != nil {
		firstErr = err
	} else {
		chain = append(chain, primary)
	}
	for _, fb := range cfg.LLMFallbacks {
		p, err := NewProvider(fb, "", "")
		if err != nil {
			continue
		}
		chain = append(chain, p)
	}
	if len(chain) == 0 {
		return nil, firstErr
	}

	var p Provider = chain[0]
	if len(chain) > 1 {
		p = NewFallbackProvider(chain...)
	}
	if cfg.LLMRequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, cfg.LLMRequestsPerMinute)
	}
	return p, nil
}
