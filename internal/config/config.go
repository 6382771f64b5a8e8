package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides. Nested keys use a double
// underscore: GUIDEPRO_RAG__TOP_K -> rag.top_k.
const EnvPrefix = "GUIDEPRO_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (GUIDEPRO_*). A .env file in the working
// directory is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLLMProviders = map[ProviderType]bool{
	ProviderOpenAI:    true,
	ProviderGroq:      true,
	ProviderAnthropic: true,
	ProviderOllama:    true,
	ProviderNone:      true,
}

var validEmbeddingProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
	ProviderLocal:  true,
}

const (
	MinChunkWords = 150
	MaxChunkWords = 800
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if !validLLMProviders[c.LLMProvider] {
		return fmt.Errorf("invalid llm_provider %q: must be one of openai, groq, anthropic, ollama, none", c.LLMProvider)
	}
	if c.LLMProvider != ProviderNone && c.LLMModel == "" {
		return fmt.Errorf("llm_model is required")
	}
	for _, p := range c.LLMFallbacks {
		if !validLLMProviders[p] || p == ProviderNone {
			return fmt.Errorf("invalid llm_fallbacks entry %q", p)
		}
	}
	if c.LLMRequestsPerMinute < 0 {
		return fmt.Errorf("llm_requests_per_minute must be non-negative")
	}

	if !validEmbeddingProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be one of openai, ollama, local", c.EmbeddingProvider)
	}
	for _, p := range c.EmbeddingFallbacks {
		if !validEmbeddingProviders[p] {
			return fmt.Errorf("invalid embedding_fallbacks entry %q", p)
		}
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("embedding_dimensions must be positive")
	}
	if c.ProviderTimeoutSecs < 0 {
		return fmt.Errorf("provider_timeout_secs must be non-negative")
	}

	if c.RAG.ChunkWords < MinChunkWords || c.RAG.ChunkWords > MaxChunkWords {
		return fmt.Errorf("rag.chunk_words must be between %d and %d, got %d", MinChunkWords, MaxChunkWords, c.RAG.ChunkWords)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkWords {
		return fmt.Errorf("rag.chunk_overlap must be in [0, chunk_words)")
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("rag.top_k must be positive")
	}
	if c.RAG.Index != IndexFlat && c.RAG.Index != IndexChromem {
		return fmt.Errorf("invalid rag.index %q: must be flat or chromem", c.RAG.Index)
	}

	if c.Booking.SessionTTLMinutes < 0 {
		return fmt.Errorf("booking.session_ttl_minutes must be non-negative")
	}

	switch c.Email.Provider {
	case "none", "":
	case "sendgrid":
		if c.Email.FromEmail == "" {
			return fmt.Errorf("email.from_email is required for sendgrid")
		}
	default:
		return fmt.Errorf("invalid email.provider %q: must be sendgrid or none", c.Email.Provider)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// SendGridKeyEnvVar holds the SendGrid API key.
const SendGridKeyEnvVar = "SENDGRID_API_KEY"
