// Package config provides configuration loading for recommit.
//
// Configuration is merged from four layers, lowest precedence first:
// built-in defaults, the user file (~/.config/recommit/config.yaml), the
// repository file (.recommit.yaml at the repo root), and RECOMMIT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/recommit/internal/logging"
)

// Config holds the complete recommit configuration.
type Config struct {
	Endpoint  EndpointConfig  `koanf:"endpoint"`
	Model     ModelConfig     `koanf:"model"`
	Rewrite   RewriteConfig   `koanf:"rewrite"`
	Validator ValidatorConfig `koanf:"validator"`
	Logging   logging.Config  `koanf:"logging"`
}

// EndpointConfig describes the completion endpoint.
type EndpointConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible server, which includes Ollama's /v1 layer) or
	// "ollama" (the native Ollama API).
	Provider string `koanf:"provider"`

	// BaseURL is the endpoint root, without the API path.
	BaseURL string `koanf:"base_url"`

	// APIKey is an optional bearer token for authenticated gateways.
	APIKey string `koanf:"api_key"`

	// Timeout bounds a single completion request.
	Timeout time.Duration `koanf:"timeout"`
}

// ModelConfig holds sampling parameters for the completion model.
type ModelConfig struct {
	Name        string  `koanf:"name"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
}

// RewriteConfig controls the rewrite loop and the hook adapter.
type RewriteConfig struct {
	// MaxRetries is the generate-then-validate attempt budget (>= 1).
	MaxRetries int `koanf:"max_retries"`

	// SystemPrompt replaces the built-in instruction set when non-empty.
	SystemPrompt string `koanf:"system_prompt"`

	// IncludeDiff adds the staged diff to the prompt for context.
	IncludeDiff bool `koanf:"include_diff"`

	// MaxDiffBytes caps the staged diff included in the prompt.
	MaxDiffBytes int `koanf:"max_diff_bytes"`

	// SkipPrefixes lists message prefixes that bypass rewriting entirely
	// (fixup!/squash! commits, merges, reverts).
	SkipPrefixes []string `koanf:"skip_prefixes"`

	// AbortOnFailure makes fatal completion failures exit non-zero,
	// aborting the commit. Off by default: the commit proceeds with the
	// original message.
	AbortOnFailure bool `koanf:"abort_on_failure"`
}

// ValidatorConfig controls message-format validator detection and execution.
type ValidatorConfig struct {
	// Disable skips validator detection entirely.
	Disable bool `koanf:"disable"`

	// Command overrides the argv of the detected validator tool.
	Command []string `koanf:"command"`

	// Timeout bounds a single validator invocation.
	Timeout time.Duration `koanf:"timeout"`
}

const (
	// ProviderOpenAI selects the OpenAI-compatible HTTP client.
	ProviderOpenAI = "openai"
	// ProviderOllama selects the native Ollama client.
	ProviderOllama = "ollama"
)

// defaultsYAML carries the built-in defaults in the same shape as the config
// file. It is loaded into koanf before any file or environment layer so that
// booleans defaulting to true (include_diff) survive partial configs.
const defaultsYAML = `
endpoint:
  provider: openai
  base_url: http://localhost:11434
  api_key: ""
  timeout: 60s
model:
  name: qwen2.5-coder:7b
  temperature: 0.2
  max_tokens: 512
rewrite:
  max_retries: 3
  system_prompt: ""
  include_diff: true
  max_diff_bytes: 32768
  skip_prefixes: ["fixup!", "squash!", "amend!", "Merge", "Revert"]
  abort_on_failure: false
validator:
  disable: false
  timeout: 10s
logging:
  level: info
  format: console
`

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Endpoint.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown endpoint provider %q (want %q or %q)",
			c.Endpoint.Provider, ProviderOpenAI, ProviderOllama)
	}

	if c.Endpoint.BaseURL == "" {
		return errors.New("endpoint base_url is required")
	}
	if c.Endpoint.Timeout <= 0 {
		return errors.New("endpoint timeout must be positive")
	}

	if c.Model.Name == "" {
		return errors.New("model name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model temperature must be in [0.0, 1.0], got %v", c.Model.Temperature)
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("model max_tokens must be positive, got %d", c.Model.MaxTokens)
	}

	if c.Rewrite.MaxRetries < 1 {
		return fmt.Errorf("rewrite max_retries must be >= 1, got %d", c.Rewrite.MaxRetries)
	}
	if c.Rewrite.IncludeDiff && c.Rewrite.MaxDiffBytes <= 0 {
		return errors.New("rewrite max_diff_bytes must be positive when include_diff is enabled")
	}

	if c.Validator.Timeout <= 0 {
		return errors.New("validator timeout must be positive")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}
