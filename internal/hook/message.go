// Package hook adapts the rewrite loop to git's commit-msg hook: message
// file handling, cleanup, and hook script installation.
package hook

import (
	"fmt"
	"os"
	"strings"
)

// scissorsLine marks the start of the verbose-commit diff; git discards
// everything below it.
const scissorsLine = "# ------------------------ >8 ------------------------"

// Strip removes comment lines and the scissors region from a raw commit
// message, the way git's default cleanup does, and trims surrounding blank
// lines. The commit-msg hook runs before git's own cleanup, so the raw file
// still carries the template comments.
func Strip(message string) string {
	var kept []string
	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) == scissorsLine {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}

	// Drop leading and trailing blank lines, keeping interior structure.
	start := 0
	for start < len(kept) && kept[start] == "" {
		start++
	}
	end := len(kept)
	for end > start && kept[end-1] == "" {
		end--
	}
	return strings.Join(kept[start:end], "\n")
}

// HasSkipPrefix reports whether the message's first line starts with any of
// the given prefixes. Messages git generates itself (fixup!, merges,
// reverts) are left alone.
func HasSkipPrefix(message string, prefixes []string) bool {
	firstLine := message
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		firstLine = message[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)

	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(firstLine, prefix) {
			return true
		}
	}
	return false
}

// ReadMessageFile reads the commit message file git hands to the hook.
func ReadMessageFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read message file: %w", err)
	}
	return string(content), nil
}

// WriteMessageFile replaces the commit message file with the final message,
// terminated by a newline.
func WriteMessageFile(path, message string) error {
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	if err := os.WriteFile(path, []byte(message), 0644); err != nil {
		return fmt.Errorf("failed to write message file: %w", err)
	}
	return nil
}
