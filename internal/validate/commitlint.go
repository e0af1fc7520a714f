package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// staticConventionalHint is the rule description used when a project's
// config file cannot be parsed for concrete rules (JS configs, extends-only
// configs).
const staticConventionalHint = "Follow the Conventional Commits format: " +
	"type(scope): subject, where type is one of feat, fix, docs, style, " +
	"refactor, perf, test, build, ci, chore, or revert."

// commitlintConfigFiles lists the marker files, checked in order. A
// "commitlint" key in package.json also counts as a marker.
var commitlintConfigFiles = []string{
	".commitlintrc",
	".commitlintrc.json",
	".commitlintrc.yaml",
	".commitlintrc.yml",
	".commitlintrc.js",
	".commitlintrc.cjs",
	"commitlint.config.js",
	"commitlint.config.cjs",
	"commitlint.config.mjs",
}

// commitlintValidator runs the project's commitlint via npx.
type commitlintValidator struct {
	dir     string
	argv    []string
	timeout time.Duration
	hint    string
}

func newCommitlintValidator(dir string, opts Options) *commitlintValidator {
	argv := opts.Command
	if len(argv) == 0 {
		// --no-install keeps npx from downloading commitlint on the fly
		// inside a commit hook.
		argv = []string{"npx", "--no-install", "commitlint"}
	}
	return &commitlintValidator{
		dir:     dir,
		argv:    argv,
		timeout: opts.Timeout,
		hint:    commitlintHint(dir),
	}
}

// Name identifies the validator variant.
func (v *commitlintValidator) Name() string { return "commitlint" }

// PromptHint returns the rule description for the system prompt.
func (v *commitlintValidator) PromptHint() string { return v.hint }

// Validate feeds the candidate to commitlint on stdin.
func (v *commitlintValidator) Validate(ctx context.Context, message string) (Result, error) {
	output, exitCode, err := runTool(ctx, v.dir, v.argv, message, v.timeout)
	if err != nil {
		return Result{}, err
	}
	if exitCode == 0 {
		return Result{Valid: true}, nil
	}

	// npx exits before commitlint runs when the package is not installed
	// in the project.
	if exitCode == 127 || strings.Contains(output, "could not determine executable") {
		return Result{}, fmt.Errorf("commitlint is not installed in this project: %w", ErrToolUnavailable)
	}

	violations := parseCommitlintOutput(output)
	if len(violations) == 0 {
		violations = rawViolation(output)
	}
	if len(violations) == 0 {
		return Result{}, fmt.Errorf("commitlint exited %d with no output: %w", exitCode, ErrToolUnavailable)
	}
	return Result{Valid: false, Violations: violations}, nil
}

// parseCommitlintOutput extracts the problem lines from commitlint's
// report. The trailing "found N problems" summary is not a violation.
func parseCommitlintOutput(output string) []string {
	var violations []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "✖") {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(trimmed, "✖"))
		if text == "" || strings.HasPrefix(text, "found ") {
			continue
		}
		violations = append(violations, text)
	}
	return violations
}

// rawViolation falls back to the raw output tail as a single violation when
// no problem lines could be parsed.
func rawViolation(output string) []string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return nil
	}
	const maxLen = 500
	if len(trimmed) > maxLen {
		trimmed = trimmed[len(trimmed)-maxLen:]
	}
	return []string{trimmed}
}

// commitlintHint derives a rule description from the project's commitlint
// config. JSON and YAML configs are parseable (JSON is a YAML subset); JS
// configs fall back to the static hint.
func commitlintHint(dir string) string {
	for _, name := range []string{".commitlintrc", ".commitlintrc.json", ".commitlintrc.yaml", ".commitlintrc.yml"} {
		if hint := hintFromRules(filepath.Join(dir, name), "rules"); hint != "" {
			return hint
		}
	}
	if hint := hintFromRules(filepath.Join(dir, "package.json"), "commitlint.rules"); hint != "" {
		return hint
	}
	return staticConventionalHint
}

// hintFromRules reads the rule table at rulesPath inside the given file and
// renders the type-enum and header-max-length rules as prompt text.
func hintFromRules(path, rulesPath string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return ""
	}

	var parts []string
	if types := ruleStrings(k.Get(rulesPath + ".type-enum")); len(types) > 0 {
		parts = append(parts, "Allowed commit types: "+strings.Join(types, ", ")+".")
	}
	if max, ok := ruleInt(k.Get(rulesPath + ".header-max-length")); ok {
		parts = append(parts, fmt.Sprintf("Keep the header at most %d characters.", max))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ")
}

// ruleStrings extracts the value list from a [level, applicability, [...]]
// commitlint rule.
func ruleStrings(rule interface{}) []string {
	items, ok := ruleValue(rule).([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ruleInt extracts the numeric value from a [level, applicability, N]
// commitlint rule.
func ruleInt(rule interface{}) (int, bool) {
	switch n := ruleValue(rule).(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

// ruleValue returns the third element of a commitlint rule tuple.
func ruleValue(rule interface{}) interface{} {
	tuple, ok := rule.([]interface{})
	if !ok || len(tuple) < 3 {
		return nil
	}
	return tuple[2]
}

// Ensure interfaces are implemented.
var _ Validator = (*commitlintValidator)(nil)
