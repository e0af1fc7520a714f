package hook

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/recommit/pkg/git"
)

var (
	// ErrForeignHook means a commit-msg hook not managed by recommit is
	// already installed.
	ErrForeignHook = errors.New("existing commit-msg hook was not installed by recommit")

	// ErrNotInstalled means no recommit hook is present.
	ErrNotInstalled = errors.New("no recommit commit-msg hook installed")
)

const (
	hookName   = "commit-msg"
	backupName = "commit-msg.pre-recommit"

	// hookMarker identifies hooks this tool wrote.
	hookMarker = "Installed by recommit"
)

// hookScript relies on the binary being on PATH so the hook survives a
// committed core.hooksPath directory shared across machines.
const hookScript = `#!/bin/sh
# Installed by recommit. Run "recommit uninstall" to remove.
exec recommit rewrite "$1"
`

// Install writes the commit-msg hook for the repository rooted at root and
// returns its path. Reinstalling over a recommit-managed hook is a no-op
// overwrite; a foreign hook is refused unless force is set, in which case it
// is kept as a backup next to the new hook.
func Install(root string, force bool) (string, error) {
	hooksDir, err := git.HooksDir(root)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create hooks directory: %w", err)
	}

	hookPath := filepath.Join(hooksDir, hookName)
	existing, err := os.ReadFile(hookPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Fresh install.
	case err != nil:
		return "", fmt.Errorf("failed to inspect existing hook: %w", err)
	case isManagedHook(existing):
		// Overwriting our own hook keeps install idempotent.
	case !force:
		return "", fmt.Errorf("%s: %w", hookPath, ErrForeignHook)
	default:
		if err := os.Rename(hookPath, filepath.Join(hooksDir, backupName)); err != nil {
			return "", fmt.Errorf("failed to back up existing hook: %w", err)
		}
	}

	if err := os.WriteFile(hookPath, []byte(hookScript), 0755); err != nil {
		return "", fmt.Errorf("failed to write hook: %w", err)
	}
	return hookPath, nil
}

// Uninstall removes the recommit hook and restores any backed-up hook that
// was displaced by a forced install.
func Uninstall(root string) error {
	hooksDir, err := git.HooksDir(root)
	if err != nil {
		return err
	}

	hookPath := filepath.Join(hooksDir, hookName)
	content, err := os.ReadFile(hookPath)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotInstalled
	}
	if err != nil {
		return fmt.Errorf("failed to inspect hook: %w", err)
	}
	if !isManagedHook(content) {
		return fmt.Errorf("%s: %w", hookPath, ErrForeignHook)
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("failed to remove hook: %w", err)
	}

	backupPath := filepath.Join(hooksDir, backupName)
	if _, err := os.Stat(backupPath); err == nil {
		if err := os.Rename(backupPath, hookPath); err != nil {
			return fmt.Errorf("failed to restore backed-up hook: %w", err)
		}
	}
	return nil
}

// Installed reports whether the repository's commit-msg hook is one of ours.
func Installed(root string) (bool, error) {
	hooksDir, err := git.HooksDir(root)
	if err != nil {
		return false, err
	}

	content, err := os.ReadFile(filepath.Join(hooksDir, hookName))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect hook: %w", err)
	}
	return isManagedHook(content), nil
}

func isManagedHook(content []byte) bool {
	return bytes.Contains(content, []byte(hookMarker))
}
