package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// gitlintHint describes gitlint's default rule set. The tool's own config
// file is INI-style and carries rule tweaks rather than a type vocabulary,
// so a static description serves.
const gitlintHint = "Keep the title at most 72 characters, in imperative " +
	"mood, with no trailing punctuation. Separate the title from the body " +
	"with a blank line and wrap body lines at 80 characters."

// gitlint reports violations as "LINE: RULE message".
var gitlintViolationRe = regexp.MustCompile(`^\d+:\s*\S+`)

// gitlintValidator runs the project's gitlint against the candidate.
type gitlintValidator struct {
	dir     string
	argv    []string
	timeout time.Duration
}

func newGitlintValidator(dir string, opts Options) *gitlintValidator {
	argv := opts.Command
	if len(argv) == 0 {
		// gitlint lints stdin when it is piped.
		argv = []string{"gitlint"}
	}
	return &gitlintValidator{
		dir:     dir,
		argv:    argv,
		timeout: opts.Timeout,
	}
}

// Name identifies the validator variant.
func (v *gitlintValidator) Name() string { return "gitlint" }

// PromptHint returns the rule description for the system prompt.
func (v *gitlintValidator) PromptHint() string { return gitlintHint }

// Validate feeds the candidate to gitlint on stdin.
//
// gitlint exits with the violation count; 253 and above signal usage,
// config, or internal errors rather than a verdict on the message.
func (v *gitlintValidator) Validate(ctx context.Context, message string) (Result, error) {
	output, exitCode, err := runTool(ctx, v.dir, v.argv, message, v.timeout)
	if err != nil {
		return Result{}, err
	}
	if exitCode == 0 {
		return Result{Valid: true}, nil
	}
	if exitCode >= 253 {
		return Result{}, fmt.Errorf("gitlint exited %d: %s: %w", exitCode, strings.TrimSpace(output), ErrToolUnavailable)
	}

	violations := parseGitlintOutput(output)
	if len(violations) == 0 {
		violations = rawViolation(output)
	}
	if len(violations) == 0 {
		return Result{}, fmt.Errorf("gitlint exited %d with no output: %w", exitCode, ErrToolUnavailable)
	}
	return Result{Valid: false, Violations: violations}, nil
}

// parseGitlintOutput keeps the "LINE: RULE message" lines verbatim.
func parseGitlintOutput(output string) []string {
	var violations []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if gitlintViolationRe.MatchString(trimmed) {
			violations = append(violations, trimmed)
		}
	}
	return violations
}

// Ensure interfaces are implemented.
var _ Validator = (*gitlintValidator)(nil)
