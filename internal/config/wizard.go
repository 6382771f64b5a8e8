package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to GuidePro! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Completion provider.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"groq", "openai", "anthropic", "ollama", "none"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.LLMProvider = ProviderType(providerStr)
	cfg.LLMModel = GetPreset(cfg.LLMProvider).Model

	// 2. Embedding provider.
	embedPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"local  (offline hashing embedder)",
			"openai (text-embedding-3-small)",
			"ollama (nomic-embed-text)",
		},
	}
	embedIdx, _, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	embedProviders := []ProviderType{ProviderLocal, ProviderOpenAI, ProviderOllama}
	cfg.EmbeddingProvider = embedProviders[embedIdx]
	cfg.EmbeddingModel = GetPreset(cfg.EmbeddingProvider).EmbeddingModel
	cfg.EmbeddingDimensions = defaultDimensions(cfg.EmbeddingProvider)

	// 3. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (bookings database, vector index)",
		Default: cfg.DataDir,
	}
	cfg.DataDir, err = dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 4. Confirmation email sender.
	fromPrompt := promptui.Prompt{
		Label:   "Confirmation email sender (blank disables email)",
		Default: "",
	}
	from, err := fromPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("email sender: %w", err)
	}
	if from != "" {
		cfg.Email.Provider = "sendgrid"
		cfg.Email.FromEmail = from
	}

	for _, envVar := range []string{APIKeyEnvVar(cfg.LLMProvider), APIKeyEnvVar(cfg.EmbeddingProvider)} {
		if envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment or .env before running guidepro.\n", envVar)
		}
	}
	if cfg.Email.Provider == "sendgrid" && os.Getenv(SendGridKeyEnvVar) == "" {
		fmt.Printf("Note: Set %s to send confirmation emails.\n", SendGridKeyEnvVar)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func defaultDimensions(p ProviderType) int {
	switch p {
	case ProviderOpenAI:
		return 1536
	case ProviderOllama:
		return 768
	default:
		return 384
	}
}
