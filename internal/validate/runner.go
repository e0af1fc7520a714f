package validate

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// defaultToolTimeout bounds one checker invocation when the caller does
	// not supply a timeout.
	defaultToolTimeout = 10 * time.Second

	// maxToolOutput caps captured checker output.
	maxToolOutput = 64 * 1024
)

// runTool executes argv in dir with input supplied on stdin.
//
// A non-zero exit with output is a normal outcome for a checker and is
// returned as exitCode with a nil error. A missing binary, a timeout, or a
// crash before exit all wrap ErrToolUnavailable.
func runTool(ctx context.Context, dir string, argv []string, stdin string, timeout time.Duration) (string, int, error) {
	if len(argv) == 0 {
		return "", 0, fmt.Errorf("empty validator command: %w", ErrToolUnavailable)
	}
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}

	if _, err := exec.LookPath(argv[0]); err != nil {
		return "", 0, fmt.Errorf("%s: %w", argv[0], ErrToolUnavailable)
	}

	// Create context with timeout
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	output, err := cmd.CombinedOutput()
	if len(output) > maxToolOutput {
		output = output[:maxToolOutput]
	}

	// Check if it's a timeout
	if timeoutCtx.Err() == context.DeadlineExceeded {
		return string(output), 0, fmt.Errorf("%s timed out after %v: %w", argv[0], timeout, ErrToolUnavailable)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), exitErr.ExitCode(), nil
		}
		return string(output), 0, fmt.Errorf("%s failed to run: %v: %w", argv[0], err, ErrToolUnavailable)
	}

	return string(output), 0, nil
}
