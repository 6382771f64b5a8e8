package config

import "time"

// ProviderPreset describes the default model and endpoint of a provider.
type ProviderPreset struct {
	Model          string
	EmbeddingModel string
	BaseURL        string
}

var providerPresets = map[ProviderType]ProviderPreset{
	ProviderGroq: {
		Model:   "llama-3.1-8b-instant",
		BaseURL: "https://api.groq.com/openai/v1",
	},
	ProviderOpenAI: {
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
	},
	ProviderAnthropic: {
		Model: "claude-haiku-4-5-20251001",
	},
	ProviderOllama: {
		Model:          "llama3",
		EmbeddingModel: "nomic-embed-text",
		BaseURL:        "http://localhost:11434",
	},
	ProviderLocal: {
		EmbeddingModel: "hashing-bow",
	},
}

// DefaultBookingKeywords start the booking dialogue.
var DefaultBookingKeywords = []string{"book", "booking", "reserve", "reservation", "hotel", "trip", "room"}

// DefaultDocumentKeywords route a question to the uploaded documents.
var DefaultDocumentKeywords = []string{"pdf", "document", "summary", "policy", "faq", "hotel", "rules", "information"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:              "data",
		LogLevel:             "info",
		LLMProvider:          ProviderGroq,
		LLMModel:             providerPresets[ProviderGroq].Model,
		LLMRequestsPerMinute: 60,
		EmbeddingProvider:    ProviderLocal,
		EmbeddingModel:       providerPresets[ProviderLocal].EmbeddingModel,
		EmbeddingDimensions:  384,
		ProviderTimeoutSecs:  30,
		RAG: RAGConfig{
			ChunkWords:   300,
			ChunkOverlap: 0,
			TopK:         3,
			Index:        IndexChromem,
		},
		Intent: IntentConfig{
			BookingKeywords:  DefaultBookingKeywords,
			DocumentKeywords: DefaultDocumentKeywords,
		},
		Email: EmailConfig{
			Provider: "none",
			FromName: "GuidePro AI",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// GetPreset returns the preset for the given provider. Unknown providers
// yield a zero preset.
func GetPreset(provider ProviderType) ProviderPreset {
	return providerPresets[provider]
}

// ProviderTimeout returns the per-call timeout, zero when disabled.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSecs) * time.Second
}

// SessionTTL returns the stale booking session lifetime, zero when disabled.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Booking.SessionTTLMinutes) * time.Minute
}
