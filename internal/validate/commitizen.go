package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// commitizenValidator runs `cz check` against the candidate.
type commitizenValidator struct {
	dir     string
	argv    []string
	timeout time.Duration
	hint    string
}

func newCommitizenValidator(dir string, opts Options) *commitizenValidator {
	return &commitizenValidator{
		dir:     dir,
		argv:    opts.Command,
		timeout: opts.Timeout,
		hint:    commitizenHint(dir),
	}
}

// Name identifies the validator variant.
func (v *commitizenValidator) Name() string { return "commitizen" }

// PromptHint returns the rule description for the system prompt.
func (v *commitizenValidator) PromptHint() string { return v.hint }

// Validate hands the candidate to cz check. The default invocation passes
// the message through a temporary file because cz reads no stdin; an argv
// override receives the message on stdin instead.
func (v *commitizenValidator) Validate(ctx context.Context, message string) (Result, error) {
	var (
		output   string
		exitCode int
		err      error
	)
	if len(v.argv) > 0 {
		output, exitCode, err = runTool(ctx, v.dir, v.argv, message, v.timeout)
	} else {
		tmp, tmpErr := os.CreateTemp("", "recommit-cz-*.txt")
		if tmpErr != nil {
			return Result{}, fmt.Errorf("failed to create temp file: %w", tmpErr)
		}
		defer os.Remove(tmp.Name())
		if _, writeErr := tmp.WriteString(message); writeErr != nil {
			tmp.Close()
			return Result{}, fmt.Errorf("failed to write temp file: %w", writeErr)
		}
		tmp.Close()

		argv := []string{"cz", "check", "--commit-msg-file", tmp.Name()}
		output, exitCode, err = runTool(ctx, v.dir, argv, "", v.timeout)
	}
	if err != nil {
		return Result{}, err
	}
	if exitCode == 0 {
		return Result{Valid: true}, nil
	}

	violations := parseCommitizenOutput(output)
	if len(violations) == 0 {
		return Result{}, fmt.Errorf("cz exited %d with no output: %w", exitCode, ErrToolUnavailable)
	}
	return Result{Valid: false, Violations: violations}, nil
}

// parseCommitizenOutput keeps cz's explanation lines, dropping the pass/fail
// banner.
func parseCommitizenOutput(output string) []string {
	var violations []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(trimmed), "commit validation") {
			continue
		}
		violations = append(violations, trimmed)
	}
	return violations
}

// commitizenHint names the configured scheme when one is declared.
func commitizenHint(dir string) string {
	for _, name := range []string{".cz.toml", "cz.toml", "pyproject.toml"} {
		var cfg struct {
			Tool struct {
				Commitizen struct {
					Name string `toml:"name"`
				} `toml:"commitizen"`
			} `toml:"tool"`
		}
		if _, err := toml.DecodeFile(filepath.Join(dir, name), &cfg); err != nil {
			continue
		}
		if cfg.Tool.Commitizen.Name != "" {
			return fmt.Sprintf("The project uses the %s commitizen scheme. %s",
				cfg.Tool.Commitizen.Name, staticConventionalHint)
		}
	}
	return staticConventionalHint
}

// Ensure interfaces are implemented.
var _ Validator = (*commitizenValidator)(nil)
