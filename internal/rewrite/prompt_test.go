package rewrite

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt(t *testing.T) {
	t.Run("default when nothing configured", func(t *testing.T) {
		if got := buildSystemPrompt("", ""); got != defaultSystemPrompt {
			t.Errorf("buildSystemPrompt() = %q, want default", got)
		}
	})

	t.Run("whitespace custom prompt ignored", func(t *testing.T) {
		if got := buildSystemPrompt("  \n ", ""); got != defaultSystemPrompt {
			t.Errorf("buildSystemPrompt() = %q, want default", got)
		}
	})

	t.Run("custom replaces default", func(t *testing.T) {
		got := buildSystemPrompt("Be brief.", "")
		if got != "Be brief." {
			t.Errorf("buildSystemPrompt() = %q", got)
		}
	})

	t.Run("hint appended after blank line", func(t *testing.T) {
		got := buildSystemPrompt("", "Allowed commit types: feat, fix.")
		want := defaultSystemPrompt + "\n\nAllowed commit types: feat, fix."
		if got != want {
			t.Errorf("buildSystemPrompt() = %q, want %q", got, want)
		}
	})

	t.Run("custom and hint compose", func(t *testing.T) {
		got := buildSystemPrompt("Be brief.", "No trailing period.")
		if got != "Be brief.\n\nNo trailing period." {
			t.Errorf("buildSystemPrompt() = %q", got)
		}
	})
}

func TestBuildUserPrompt(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		got := buildUserPrompt("add feature", "", nil)
		if !strings.Contains(got, "add feature") {
			t.Errorf("prompt missing the original message: %q", got)
		}
		if strings.Contains(got, "```diff") {
			t.Error("prompt should not contain a diff fence")
		}
		if strings.Contains(got, "violated these rules") {
			t.Error("prompt should not contain a violations block")
		}
	})

	t.Run("diff fenced", func(t *testing.T) {
		got := buildUserPrompt("add feature", "diff --git a/x b/x\n+new line\n", nil)
		if !strings.Contains(got, "```diff\ndiff --git a/x b/x\n+new line\n```") {
			t.Errorf("diff not fenced as expected: %q", got)
		}
	})

	t.Run("whitespace diff skipped", func(t *testing.T) {
		got := buildUserPrompt("add feature", "  \n", nil)
		if strings.Contains(got, "```") {
			t.Errorf("expected no fence for blank diff: %q", got)
		}
	})

	t.Run("violations listed", func(t *testing.T) {
		got := buildUserPrompt("add feature", "", []string{"header too long", "missing type"})
		if !strings.Contains(got, "The previous attempt violated these rules:") {
			t.Errorf("missing violations header: %q", got)
		}
		if !strings.Contains(got, "- header too long\n- missing type") {
			t.Errorf("violations not listed: %q", got)
		}
	})

	t.Run("section order", func(t *testing.T) {
		got := buildUserPrompt("add feature", "+something", []string{"header too long"})

		msgIdx := strings.Index(got, "add feature")
		diffIdx := strings.Index(got, "Staged changes:")
		violIdx := strings.Index(got, "The previous attempt violated")
		if msgIdx < 0 || diffIdx < 0 || violIdx < 0 {
			t.Fatalf("missing sections: %q", got)
		}
		if !(msgIdx < diffIdx && diffIdx < violIdx) {
			t.Errorf("sections out of order: message=%d diff=%d violations=%d", msgIdx, diffIdx, violIdx)
		}
	})
}
