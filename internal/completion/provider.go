package completion

import (
	"fmt"

	"go.uber.org/zap"
)

// Supported provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// New creates a completion service based on configuration. An empty
// provider selects the OpenAI-compatible client.
func New(cfg Config, logger *zap.Logger) (Service, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return newOpenAIClient(cfg, logger)
	case ProviderOllama:
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
