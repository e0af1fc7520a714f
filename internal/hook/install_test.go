package hook

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func hookPath(root string) string {
	return filepath.Join(root, ".git", "hooks", "commit-msg")
}

func TestInstall_Fresh(t *testing.T) {
	root := initRepo(t)

	path, err := Install(root, false)
	require.NoError(t, err)
	assert.Equal(t, hookPath(root), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), hookMarker)
	assert.Contains(t, string(content), "recommit rewrite")
	assert.True(t, strings.HasPrefix(string(content), "#!/bin/sh"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&0111, "hook must be executable")
	}
}

func TestInstall_Idempotent(t *testing.T) {
	root := initRepo(t)

	_, err := Install(root, false)
	require.NoError(t, err)
	_, err = Install(root, false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, ".git", "hooks", backupName))
	assert.True(t, errors.Is(err, os.ErrNotExist), "reinstall must not create a backup")
}

func TestInstall_ForeignRefused(t *testing.T) {
	root := initRepo(t)
	foreign := "#!/bin/sh\nexit 0\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(hookPath(root)), 0755))
	require.NoError(t, os.WriteFile(hookPath(root), []byte(foreign), 0755))

	_, err := Install(root, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForeignHook))

	content, err := os.ReadFile(hookPath(root))
	require.NoError(t, err)
	assert.Equal(t, foreign, string(content), "refused install must not touch the hook")
}

func TestInstall_ForceBacksUp(t *testing.T) {
	root := initRepo(t)
	foreign := "#!/bin/sh\necho custom\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(hookPath(root)), 0755))
	require.NoError(t, os.WriteFile(hookPath(root), []byte(foreign), 0755))

	_, err := Install(root, true)
	require.NoError(t, err)

	content, err := os.ReadFile(hookPath(root))
	require.NoError(t, err)
	assert.Contains(t, string(content), hookMarker)

	backup, err := os.ReadFile(filepath.Join(root, ".git", "hooks", backupName))
	require.NoError(t, err)
	assert.Equal(t, foreign, string(backup))
}

func TestUninstall_RestoresBackup(t *testing.T) {
	root := initRepo(t)
	foreign := "#!/bin/sh\necho custom\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(hookPath(root)), 0755))
	require.NoError(t, os.WriteFile(hookPath(root), []byte(foreign), 0755))

	_, err := Install(root, true)
	require.NoError(t, err)
	require.NoError(t, Uninstall(root))

	content, err := os.ReadFile(hookPath(root))
	require.NoError(t, err)
	assert.Equal(t, foreign, string(content), "displaced hook must come back")

	_, err = os.Stat(filepath.Join(root, ".git", "hooks", backupName))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUninstall_NoBackup(t *testing.T) {
	root := initRepo(t)

	_, err := Install(root, false)
	require.NoError(t, err)
	require.NoError(t, Uninstall(root))

	_, err = os.Stat(hookPath(root))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUninstall_NothingInstalled(t *testing.T) {
	root := initRepo(t)

	err := Uninstall(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInstalled))
}

func TestUninstall_ForeignHookLeftAlone(t *testing.T) {
	root := initRepo(t)
	foreign := "#!/bin/sh\nexit 0\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(hookPath(root)), 0755))
	require.NoError(t, os.WriteFile(hookPath(root), []byte(foreign), 0755))

	err := Uninstall(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForeignHook))

	content, err := os.ReadFile(hookPath(root))
	require.NoError(t, err)
	assert.Equal(t, foreign, string(content))
}

func TestInstalled(t *testing.T) {
	root := initRepo(t)

	ok, err := Installed(root)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Install(root, false)
	require.NoError(t, err)

	ok, err = Installed(root)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestInstall_HooksPathOverride verifies the installer follows a
// core.hooksPath override instead of .git/hooks.
func TestInstall_HooksPathOverride(t *testing.T) {
	root := initRepo(t)
	cfg := filepath.Join(root, ".git", "config")
	f, err := os.OpenFile(cfg, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("[core]\n\thooksPath = .githooks\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	path, err := Install(root, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".githooks", "commit-msg"), path)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
