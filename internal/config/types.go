package config

// ProviderType identifies a completion or embedding backend.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderGroq      ProviderType = "groq"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
	// ProviderLocal is the offline hashing embedder. It has no completion model.
	ProviderLocal ProviderType = "local"
	ProviderNone  ProviderType = "none"
)

// IndexType selects the vector index backend of the retrieval store.
type IndexType string

const (
	IndexFlat    IndexType = "flat"
	IndexChromem IndexType = "chromem"
)

// Config is the top-level guidepro configuration, corresponding to .guidepro.yml.
type Config struct {
	DataDir  string `yaml:"data_dir" koanf:"data_dir"`
	LogLevel string `yaml:"log_level" koanf:"log_level"`
	LogFile  string `yaml:"log_file" koanf:"log_file"`

	LLMProvider          ProviderType   `yaml:"llm_provider" koanf:"llm_provider"`
	LLMModel             string         `yaml:"llm_model" koanf:"llm_model"`
	LLMBaseURL           string         `yaml:"llm_base_url" koanf:"llm_base_url"`
	LLMFallbacks         []ProviderType `yaml:"llm_fallbacks" koanf:"llm_fallbacks"`
	LLMRequestsPerMinute int            `yaml:"llm_requests_per_minute" koanf:"llm_requests_per_minute"`

	EmbeddingProvider   ProviderType   `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string         `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingBaseURL    string         `yaml:"embedding_base_url" koanf:"embedding_base_url"`
	EmbeddingDimensions int            `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`
	EmbeddingFallbacks  []ProviderType `yaml:"embedding_fallbacks" koanf:"embedding_fallbacks"`

	// ProviderTimeoutSecs bounds every embedding, completion, persistence and
	// email call. Zero disables the timeout.
	ProviderTimeoutSecs int `yaml:"provider_timeout_secs" koanf:"provider_timeout_secs"`

	RAG     RAGConfig     `yaml:"rag" koanf:"rag"`
	Intent  IntentConfig  `yaml:"intent" koanf:"intent"`
	Booking BookingConfig `yaml:"booking" koanf:"booking"`
	Email   EmailConfig   `yaml:"email" koanf:"email"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
}

// RAGConfig configures chunking and retrieval.
type RAGConfig struct {
	ChunkWords   int       `yaml:"chunk_words" koanf:"chunk_words"`
	ChunkOverlap int       `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK         int       `yaml:"top_k" koanf:"top_k"`
	Index        IndexType `yaml:"index" koanf:"index"`
	Synthesize   bool      `yaml:"synthesize" koanf:"synthesize"`
}

// IntentConfig holds the keyword lists of the intent trigger.
type IntentConfig struct {
	BookingKeywords  []string `yaml:"booking_keywords" koanf:"booking_keywords"`
	DocumentKeywords []string `yaml:"document_keywords" koanf:"document_keywords"`
}

// BookingConfig holds booking dialogue options.
type BookingConfig struct {
	EnforceDateOrder  bool `yaml:"enforce_date_order" koanf:"enforce_date_order"`
	SessionTTLMinutes int  `yaml:"session_ttl_minutes" koanf:"session_ttl_minutes"`
}

// EmailConfig configures confirmation emails.
type EmailConfig struct {
	Provider  string `yaml:"provider" koanf:"provider"` // "sendgrid" or "none"
	FromEmail string `yaml:"from_email" koanf:"from_email"`
	FromName  string `yaml:"from_name" koanf:"from_name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
