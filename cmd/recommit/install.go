package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recommit/internal/hook"
	"github.com/fyrsmithlabs/recommit/pkg/git"
)

var installForce bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the commit-msg hook in the current repository",
	Long: `Install the recommit commit-msg hook for the repository containing the
current directory. The hook location honors core.hooksPath and linked
worktrees.

An existing hook that recommit did not install is refused; --force moves it
aside as commit-msg.pre-recommit and uninstall restores it.

Examples:
  recommit install
  recommit install --force`,
	RunE: runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the commit-msg hook from the current repository",
	Long: `Remove the recommit commit-msg hook. A hook displaced by install --force
is restored.

Examples:
  recommit uninstall`,
	RunE: runUninstall,
}

func init() {
	installCmd.Flags().BoolVar(&installForce, "force", false, "back up and replace an existing commit-msg hook")
}

// runInstall handles the install command
func runInstall(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}

	path, err := hook.Install(root, installForce)
	if err != nil {
		if errors.Is(err, hook.ErrForeignHook) {
			return fmt.Errorf("%w (re-run with --force to back it up and replace it)", err)
		}
		return err
	}

	fmt.Printf("Installed commit-msg hook at %s\n", path)

	if _, err := exec.LookPath("recommit"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: recommit is not on PATH; the hook will fail until it is")
	}
	return nil
}

// runUninstall handles the uninstall command
func runUninstall(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}

	if err := hook.Uninstall(root); err != nil {
		if errors.Is(err, hook.ErrNotInstalled) {
			fmt.Println("No recommit commit-msg hook installed.")
			return nil
		}
		return err
	}

	fmt.Println("Removed commit-msg hook.")
	return nil
}

// repoRoot resolves the enclosing repository root for commands that require
// one.
func repoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return git.FindRoot(cwd)
}
