package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix namespaces recommit's environment variables.
	envPrefix = "RECOMMIT_"

	// RepoFileName is the per-repository config file, looked up at the
	// repository root.
	RepoFileName = ".recommit.yaml"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// DefaultUserPath returns the default user config file path
// (~/.config/recommit/config.yaml).
func DefaultUserPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "recommit", "config.yaml"), nil
}

// Load builds the effective configuration.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (RECOMMIT_MODEL_NAME, RECOMMIT_REWRITE_MAX_RETRIES, ...)
//  2. Repository file (<repoRoot>/.recommit.yaml), when repoRoot is non-empty
//  3. User file (userPath, default ~/.config/recommit/config.yaml)
//  4. Built-in defaults
//
// A missing file at either location is not an error. The user file is
// rejected when it stores an api_key but is readable by group or others;
// the repository file is committed alongside the project, so no permission
// requirement applies to it.
//
// # Environment Variable Mapping
//
// Variables are uppercased with an underscore separator. The transformer
// splits on the first underscore after the prefix: section, then field.
//
//	RECOMMIT_ENDPOINT_BASE_URL    -> endpoint.base_url
//	RECOMMIT_MODEL_MAX_TOKENS     -> model.max_tokens
//	RECOMMIT_REWRITE_MAX_RETRIES  -> rewrite.max_retries
//	RECOMMIT_LOGGING_LEVEL        -> logging.level
func Load(userPath, repoRoot string) (*Config, error) {
	k := koanf.New(".")

	// Defaults first, as a YAML layer, so that file and env layers only
	// override what they actually set.
	if err := k.Load(rawbytes.Provider([]byte(defaultsYAML)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if userPath == "" {
		var err error
		userPath, err = DefaultUserPath()
		if err != nil {
			return nil, err
		}
	}

	userPerm, err := loadFileLayer(k, userPath)
	if err != nil {
		return nil, err
	}

	if repoRoot != "" {
		if _, err := loadFileLayer(k, filepath.Join(repoRoot, RepoFileName)); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// An api_key in a group- or world-readable user file is a credential
	// leak. Skip on Windows (different permission model).
	if cfg.Endpoint.APIKey != "" && userPerm != 0 && runtime.GOOS != "windows" {
		if userPerm&0o077 != 0 {
			return nil, fmt.Errorf(
				"config file %s stores an api_key but has permissions %v (want 0600 or 0400)",
				userPath, userPerm)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFileLayer merges one YAML file into k if it exists. Returns the file's
// permission bits, or 0 when the file is absent.
func loadFileLayer(k *koanf.Koanf, path string) (os.FileMode, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}
	if info.Size() > maxConfigFileSize {
		return 0, fmt.Errorf("config file %s too large: %d bytes (max %d)",
			path, info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return 0, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return info.Mode().Perm(), nil
}

// envTransformer maps an environment variable name to a koanf key.
// The prefix is stripped, the rest is lowercased and split on the first
// underscore into section.field_name.
func envTransformer(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}
