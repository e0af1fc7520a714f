// Package validate checks candidate commit messages against a project's own
// message-format tooling (commitlint, gitlint, commitizen).
//
// Detection scans the project directory for known configuration markers in a
// fixed priority order and returns the first matching validator. Checker
// tools are invoked as argv vectors, never through a shell.
package validate

import (
	"context"
	"errors"
)

var (
	// ErrToolUnavailable means the external checker cannot run: the binary
	// is missing, timed out, or crashed before producing a verdict. It is
	// not a judgement on the message; callers degrade to unvalidated
	// rewriting for the rest of the run.
	ErrToolUnavailable = errors.New("validator tool unavailable")
)

// Result of validating one candidate message.
type Result struct {
	// Valid reports whether the message conforms to the project rules.
	Valid bool

	// Violations holds human-readable rule violations, ordered as the
	// checker reported them. Empty iff Valid.
	Violations []string
}

// Validator checks a candidate commit message against project rules.
//
// Validate is a pure function of its input apart from invoking the external
// checking tool.
type Validator interface {
	Validate(ctx context.Context, message string) (Result, error)

	// PromptHint returns text describing the project's rules, appended to
	// the rewrite system prompt when this validator is active.
	PromptHint() string

	// Name identifies the validator variant ("commitlint", "gitlint", ...).
	Name() string
}

// NullValidator accepts every message and contributes no prompt hint.
type NullValidator struct{}

// Validate reports every message as valid.
func (NullValidator) Validate(ctx context.Context, message string) (Result, error) {
	return Result{Valid: true}, nil
}

// PromptHint returns an empty hint.
func (NullValidator) PromptHint() string { return "" }

// Name identifies the validator variant.
func (NullValidator) Name() string { return "none" }

// Ensure interfaces are implemented.
var _ Validator = NullValidator{}
