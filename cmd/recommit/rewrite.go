package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recommit/internal/completion"
	"github.com/fyrsmithlabs/recommit/internal/hook"
	"github.com/fyrsmithlabs/recommit/internal/rewrite"
	"github.com/fyrsmithlabs/recommit/internal/validate"
	"github.com/fyrsmithlabs/recommit/pkg/git"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [file]",
	Short: "Rewrite a commit message in place or through a pipe",
	Long: `Rewrite a commit message file in place, or read a message from stdin and
print the rewritten message on stdout.

This is the command the installed commit-msg hook runs. Messages that are
empty, comment-only, or start with a configured skip prefix pass through
untouched.

Examples:
  # As invoked by the commit-msg hook
  recommit rewrite .git/COMMIT_EDITMSG

  # Through a pipe
  echo "add feature" | recommit rewrite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRewrite,
}

var rewriteNoDiff bool

func init() {
	rewriteCmd.Flags().BoolVar(&rewriteNoDiff, "no-diff", false, "do not include the staged diff in the prompt")
}

// runRewrite handles the rewrite command
func runRewrite(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	// Outside a repository the repo config layer, validator markers, and
	// diff context are simply absent.
	root, err := git.FindRoot(cwd)
	inRepo := err == nil
	if !inRepo {
		root = cwd
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if inRepo {
		if branch := git.Branch(root); branch != "" {
			logger = logger.With(zap.String("branch", branch))
		}
	}

	messagePath := ""
	if len(args) == 1 && args[0] != "-" {
		messagePath = args[0]
	}

	var raw string
	if messagePath == "" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		raw = string(content)
	} else {
		raw, err = hook.ReadMessageFile(messagePath)
		if err != nil {
			return err
		}
	}

	stripped := hook.Strip(raw)

	if hook.HasSkipPrefix(stripped, cfg.Rewrite.SkipPrefixes) {
		logger.Debug("skip prefix matched, leaving message untouched")
		return passThrough(messagePath, raw)
	}

	ctx := context.Background()

	var diff string
	if cfg.Rewrite.IncludeDiff && !rewriteNoDiff && inRepo && strings.TrimSpace(stripped) != "" {
		diff, err = git.StagedDiff(ctx, root, 0, cfg.Rewrite.MaxDiffBytes)
		if err != nil {
			logger.Warn("failed to collect staged diff, continuing without it", zap.Error(err))
			diff = ""
		}
	}

	var validator validate.Validator
	if !cfg.Validator.Disable {
		validator = validate.Detect(root, validate.Options{
			Command: cfg.Validator.Command,
			Timeout: cfg.Validator.Timeout,
		})
		if validator != nil {
			logger.Debug("validator detected", zap.String("validator", validator.Name()))
		}
	}

	cs, err := completion.New(completion.Config{
		Provider: cfg.Endpoint.Provider,
		BaseURL:  cfg.Endpoint.BaseURL,
		APIKey:   cfg.Endpoint.APIKey,
		Model:    cfg.Model.Name,
		Timeout:  cfg.Endpoint.Timeout,
	}, logger)
	if err != nil {
		return err
	}

	svc, err := rewrite.NewService(&rewrite.Config{
		MaxRetries:   cfg.Rewrite.MaxRetries,
		Temperature:  cfg.Model.Temperature,
		MaxTokens:    cfg.Model.MaxTokens,
		SystemPrompt: cfg.Rewrite.SystemPrompt,
	}, cs, validator, logger)
	if err != nil {
		return err
	}

	result, rewriteErr := svc.Rewrite(ctx, &rewrite.Request{Original: stripped, Diff: diff})

	writeMessage, exitErr := decideOutcome(result, rewriteErr, cfg.Rewrite.AbortOnFailure)
	if exitErr != nil {
		return exitErr
	}
	if !writeMessage {
		return passThrough(messagePath, raw)
	}

	if messagePath == "" {
		fmt.Println(result.Message)
		return nil
	}
	return hook.WriteMessageFile(messagePath, result.Message)
}

// decideOutcome maps a rewrite outcome onto the hook's behavior: whether to
// replace the message, and whether to abort the commit. A fatal completion
// failure or an exhausted retry budget only aborts when abort_on_failure is
// set; otherwise the commit proceeds, with the best-effort candidate written
// on exhaustion and the original kept on fatal failures.
func decideOutcome(result *rewrite.Result, rewriteErr error, abortOnFailure bool) (writeMessage bool, exitErr error) {
	if rewriteErr != nil {
		if abortOnFailure {
			return false, rewriteErr
		}
		return false, nil
	}
	if result == nil || result.Attempts == 0 {
		return false, nil
	}
	if result.Success {
		return true, nil
	}
	if abortOnFailure {
		return false, fmt.Errorf("message failed validation after %d attempts: %s",
			result.Attempts, strings.Join(result.Violations, "; "))
	}
	return true, nil
}

// passThrough leaves a message file untouched; in stdin mode it echoes the
// raw input so the pipeline still carries the message.
func passThrough(messagePath, raw string) error {
	if messagePath != "" {
		return nil
	}
	fmt.Print(raw)
	return nil
}
