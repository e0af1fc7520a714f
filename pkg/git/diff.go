package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultDiffTimeout = 10 * time.Second

	diffTruncationMarker = "[diff truncated]"
)

// StagedDiff returns the staged changes in dir as a unified diff, for use as
// prompt context. Output beyond maxBytes is cut and marked; maxBytes <= 0
// means no limit. External diff drivers and color codes are disabled so the
// output stays plain text.
func StagedDiff(ctx context.Context, dir string, timeout time.Duration, maxBytes int) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", fmt.Errorf("git binary not found: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultDiffTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, "git", "diff", "--cached", "--no-color", "--no-ext-diff")
	cmd.Dir = dir

	// stderr is kept out of the diff so warnings never leak into the prompt.
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if timeoutCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git diff timeout after %v", timeout)
		}
		return "", fmt.Errorf("git diff failed: %w (output: %s)", err, strings.TrimSpace(stderr.String()))
	}

	diff := stdout.String()
	if maxBytes > 0 && len(diff) > maxBytes {
		diff = diff[:maxBytes] + "\n\n" + diffTruncationMarker
	}
	return diff, nil
}
