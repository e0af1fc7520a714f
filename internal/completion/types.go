// Package completion talks to a local text-generation endpoint.
//
// Two providers are supported: any OpenAI-compatible chat completions
// server (Ollama's /v1 layer, LM Studio, llama.cpp server) and the native
// Ollama API. Every failure a Service returns carries a FailureKind so the
// caller can tell an unreachable endpoint from a rejected request.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultBaseURL      = "http://localhost:11434"
	defaultModel        = "qwen2.5-coder:7b"
	defaultTimeout      = 60 * time.Second
	defaultRetryBackoff = 2 * time.Second
)

// Rate limiter defaults. The endpoint is local, so the limiter only guards
// against pathological retry storms.
const (
	defaultRateLimit = 5.0 // requests per second
	defaultBurst     = 5
)

// Service generates text from a completion endpoint.
//
// Complete performs one network call per invocation, two when the single
// internal timeout retry fires. No state is retained between calls.
type Service interface {
	// Complete returns the generated text, trimmed of surrounding
	// whitespace. An empty completion is an error, never an empty success.
	Complete(ctx context.Context, req Request) (string, error)

	// Ping checks that the endpoint is reachable and answering.
	Ping(ctx context.Context) error
}

// Request holds one completion request. Requests are ephemeral: the caller
// builds a fresh one per attempt.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Validate checks the request constraints.
func (r Request) Validate() error {
	if r.SystemPrompt == "" {
		return errors.New("system prompt is required")
	}
	if r.UserPrompt == "" {
		return errors.New("user prompt is required")
	}
	if r.Temperature < 0 || r.Temperature > 1 {
		return fmt.Errorf("temperature must be in [0.0, 1.0], got %v", r.Temperature)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", r.MaxTokens)
	}
	return nil
}

// Config holds settings for a completion client.
type Config struct {
	// Provider selects the client: "openai" or "ollama".
	Provider string

	// BaseURL is the endpoint root, without the API path.
	BaseURL string

	// APIKey is an optional bearer token. Local endpoints ignore it.
	APIKey string `json:"-"` // Never serialize API keys

	// Model is the model identifier passed to the endpoint.
	Model string

	// Timeout bounds a single request round trip.
	Timeout time.Duration
}
