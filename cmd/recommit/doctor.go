package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recommit/internal/completion"
	"github.com/fyrsmithlabs/recommit/internal/hook"
	"github.com/fyrsmithlabs/recommit/internal/validate"
	"github.com/fyrsmithlabs/recommit/pkg/git"
)

const pingTimeout = 5 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the endpoint, hook, and checker tooling are usable",
	Long: `Run environment checks: configuration, completion endpoint reachability,
the git binary, hook installation, and the detected message-format checker's
tool.

Examples:
  recommit doctor`,
	RunE: runDoctor,
}

type checkResult struct {
	status string // ok, warn, fail
	detail string
}

// runDoctor handles the doctor command
func runDoctor(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	var results []checkResult

	root, rootErr := git.FindRoot(cwd)
	if rootErr != nil {
		root = cwd
		results = append(results, checkResult{"warn", "repository: not inside a git repository"})
	} else {
		results = append(results, checkResult{"ok", "repository: " + root})
	}

	cfg, cfgErr := loadConfig(root)
	if cfgErr != nil {
		results = append(results, checkResult{"fail", "config: " + cfgErr.Error()})
	} else {
		results = append(results, checkResult{"ok", "config: loaded"})
	}

	if cfg != nil {
		cs, err := completion.New(completion.Config{
			Provider: cfg.Endpoint.Provider,
			BaseURL:  cfg.Endpoint.BaseURL,
			APIKey:   cfg.Endpoint.APIKey,
			Model:    cfg.Model.Name,
			Timeout:  cfg.Endpoint.Timeout,
		}, nil)
		if err != nil {
			results = append(results, checkResult{"fail", "endpoint: " + err.Error()})
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			if err := cs.Ping(ctx); err != nil {
				results = append(results, checkResult{"fail",
					fmt.Sprintf("endpoint: %s unreachable: %v", cfg.Endpoint.BaseURL, err)})
			} else {
				results = append(results, checkResult{"ok",
					fmt.Sprintf("endpoint: %s reachable (%s, model %s)",
						cfg.Endpoint.BaseURL, cfg.Endpoint.Provider, cfg.Model.Name)})
			}
			cancel()
		}
	}

	if path, err := exec.LookPath("git"); err != nil {
		results = append(results, checkResult{"warn", "git: binary not found; staged diff context is unavailable"})
	} else {
		results = append(results, checkResult{"ok", "git: " + path})
	}

	if _, err := exec.LookPath("recommit"); err != nil {
		results = append(results, checkResult{"warn", "recommit: not on PATH; the installed hook cannot run"})
	} else {
		results = append(results, checkResult{"ok", "recommit: on PATH"})
	}

	if rootErr == nil {
		installed, err := hook.Installed(root)
		switch {
		case err != nil:
			results = append(results, checkResult{"warn", "hook: " + err.Error()})
		case installed:
			results = append(results, checkResult{"ok", "hook: installed"})
		default:
			results = append(results, checkResult{"warn", "hook: not installed (run: recommit install)"})
		}
	}

	var commandOverride []string
	if cfg != nil {
		commandOverride = cfg.Validator.Command
	}
	results = append(results, checkerResult(root, commandOverride))

	failures := 0
	for _, r := range results {
		fmt.Printf("[%s] %s\n", r.status, r.detail)
		if r.status == "fail" {
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	return nil
}

// checkerResult reports the detected message-format checker and whether its
// tool is runnable.
func checkerResult(root string, override []string) checkResult {
	v := validate.Detect(root, validate.Options{})
	if v == nil {
		return checkResult{"ok", "checker: none detected; messages are rewritten without validation"}
	}

	tool := checkerTool(v.Name(), override)
	if tool == "" {
		return checkResult{"ok", "checker: " + v.Name()}
	}
	if _, err := exec.LookPath(tool); err != nil {
		return checkResult{"warn",
			fmt.Sprintf("checker: %s configured but %s is missing; validation will be skipped", v.Name(), tool)}
	}
	return checkResult{"ok", fmt.Sprintf("checker: %s (%s present)", v.Name(), tool)}
}

// checkerTool names the binary a checker needs, honoring a configured
// command override.
func checkerTool(name string, override []string) string {
	if len(override) > 0 {
		return override[0]
	}
	switch name {
	case "commitlint":
		return "npx"
	case "gitlint":
		return "gitlint"
	case "commitizen":
		return "cz"
	}
	return ""
}
