package rewrite

import "strings"

// defaultSystemPrompt instructs the model to normalize a commit message into
// the Conventional Commits format.
const defaultSystemPrompt = `You rewrite git commit messages into the Conventional Commits format.
Output only the rewritten commit message, no other text or explanation.
Format:
- First line: type(scope): subject, 72 characters or less. The type is one of feat, fix, docs, style, refactor, perf, test, build, ci, chore, or revert. The scope is optional. Use imperative mood ("add feature", not "added feature").
- Blank line.
- Then a longer body if the change needs one, wrapped at 72 characters.
Preserve the intent of the original message. Do not invent changes that are not described or shown.
Do not use markdown, code blocks, or quotes.`

// buildSystemPrompt composes the system prompt from the configured override
// (or the default) and the active validator's rule hint.
func buildSystemPrompt(custom, hint string) string {
	prompt := defaultSystemPrompt
	if strings.TrimSpace(custom) != "" {
		prompt = strings.TrimSpace(custom)
	}
	if strings.TrimSpace(hint) != "" {
		prompt += "\n\n" + strings.TrimSpace(hint)
	}
	return prompt
}

// buildUserPrompt composes the per-attempt user prompt: the original message,
// the staged diff when supplied, and on retries the most recent attempt's
// violations. Earlier attempts' violations are never included.
func buildUserPrompt(original, diff string, violations []string) string {
	var b strings.Builder
	b.WriteString("Rewrite this commit message:\n\n")
	b.WriteString(strings.TrimSpace(original))

	if strings.TrimSpace(diff) != "" {
		b.WriteString("\n\nStaged changes:\n```diff\n")
		b.WriteString(strings.TrimRight(diff, "\n"))
		b.WriteString("\n```")
	}

	if len(violations) > 0 {
		b.WriteString("\n\nThe previous attempt violated these rules:\n")
		for _, v := range violations {
			b.WriteString("- ")
			b.WriteString(v)
			b.WriteString("\n")
		}
	}

	return strings.TrimSpace(b.String())
}
