// Package git resolves repository paths and staged-change context for the
// commit hook.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

// ErrNotRepository is returned when a path is not inside a git worktree.
var ErrNotRepository = errors.New("not a git repository")

// FindRoot walks up from dir to the enclosing worktree root.
func FindRoot(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to hook into.
		return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
	}
	return wt.Filesystem.Root(), nil
}

// Branch returns the current branch name, or empty when the repository has
// no commits yet or HEAD is detached.
func Branch(dir string) string {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return ""
}

// HooksDir resolves the directory git consults for hooks in the repository
// rooted at root. A core.hooksPath override wins; otherwise linked worktrees
// are followed to the shared .git directory, since hooks always live in the
// common directory.
func HooksDir(root string) (string, error) {
	gitDir, err := resolveGitDir(root)
	if err != nil {
		return "", err
	}
	commonDir := resolveCommonDir(gitDir)

	if override := hooksPathOverride(commonDir); override != "" {
		if !filepath.IsAbs(override) {
			override = filepath.Join(root, override)
		}
		return filepath.Clean(override), nil
	}

	return filepath.Join(commonDir, "hooks"), nil
}

// resolveGitDir returns the .git directory for a worktree root, following
// the gitdir pointer file that linked worktrees and submodules use.
func resolveGitDir(root string) (string, error) {
	path := filepath.Join(root, ".git")
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", root, ErrNotRepository)
	}
	if info.IsDir() {
		return path, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	line := strings.TrimSpace(string(content))
	const prefix = "gitdir:"
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("unrecognized .git file at %s", path)
	}
	dir := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Clean(dir), nil
}

// resolveCommonDir follows a linked worktree's commondir file to the shared
// .git directory. The gitdir itself is the common directory in an ordinary
// checkout.
func resolveCommonDir(gitDir string) string {
	content, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	if err != nil {
		return gitDir
	}
	dir := strings.TrimSpace(string(content))
	if dir == "" {
		return gitDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(gitDir, dir)
	}
	return filepath.Clean(dir)
}

// hooksPathOverride reads core.hooksPath from the repository config.
// Errors mean no override.
func hooksPathOverride(commonDir string) string {
	f, err := os.Open(filepath.Join(commonDir, "config"))
	if err != nil {
		return ""
	}
	defer f.Close()

	cfg := format.New()
	if err := format.NewDecoder(f).Decode(cfg); err != nil {
		return ""
	}
	return cfg.Section("core").Option("hooksPath")
}
