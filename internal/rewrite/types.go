// Package rewrite drives the generate-validate-retry loop that turns a raw
// commit message into one that conforms to the project's message format.
package rewrite

// Request carries one commit message through the rewrite loop.
type Request struct {
	// Original is the message as the author wrote it. It is read, never
	// mutated.
	Original string

	// Diff is optional staged-change context included in the user prompt.
	Diff string
}

// Result is the outcome of one rewrite run.
type Result struct {
	// Success reports whether the final message passed validation, or was
	// generated with no validator active.
	Success bool

	// Message is the final message. On success it is the accepted
	// candidate; when the retry budget runs out it is the last candidate
	// (best effort); on a fatal completion failure it is the original.
	Message string

	// Attempts is the number of completion calls the loop issued.
	Attempts int

	// Violations holds the last attempt's validation findings. Empty when
	// the message validated cleanly or was never validated.
	Violations []string
}

// Config configures the rewrite service.
type Config struct {
	// MaxRetries is the total generation attempt budget (default: 3).
	MaxRetries int

	// Temperature is the sampling temperature for generation (default: 0.2).
	Temperature float64

	// MaxTokens bounds the generated message length (default: 512).
	MaxTokens int

	// SystemPrompt replaces the built-in rewrite instructions when set.
	SystemPrompt string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:  3,
		Temperature: 0.2,
		MaxTokens:   512,
	}
}
