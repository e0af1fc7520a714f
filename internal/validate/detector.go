package validate

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Options tunes the validator a detection constructs.
type Options struct {
	// Command overrides the argv of the detected tool. The candidate
	// message is supplied on stdin.
	Command []string

	// Timeout bounds one checker invocation. Zero means the default.
	Timeout time.Duration
}

// marker pairs a detection predicate with the validator it constructs.
type marker struct {
	detect    func(dir string) bool
	construct func(dir string, opts Options) Validator
}

// markers are evaluated in fixed order; the first match wins. Detection is
// deterministic: the same directory contents always select the same
// validator.
var markers = []marker{
	{
		detect:    hasCommitlintMarker,
		construct: func(dir string, opts Options) Validator { return newCommitlintValidator(dir, opts) },
	},
	{
		detect:    hasGitlintMarker,
		construct: func(dir string, opts Options) Validator { return newGitlintValidator(dir, opts) },
	},
	{
		detect:    hasCommitizenMarker,
		construct: func(dir string, opts Options) Validator { return newCommitizenValidator(dir, opts) },
	},
}

// Detect scans the project directory for validator configuration markers
// and returns the first matching validator, fully initialized from that
// configuration. Returns nil when no marker is found.
func Detect(dir string, opts Options) Validator {
	for _, m := range markers {
		if m.detect(dir) {
			return m.construct(dir, opts)
		}
	}
	return nil
}

func hasCommitlintMarker(dir string) bool {
	for _, name := range commitlintConfigFiles {
		if fileExists(filepath.Join(dir, name)) {
			return true
		}
	}
	return packageJSONHasCommitlint(filepath.Join(dir, "package.json"))
}

func hasGitlintMarker(dir string) bool {
	return fileExists(filepath.Join(dir, ".gitlint"))
}

func hasCommitizenMarker(dir string) bool {
	if fileExists(filepath.Join(dir, ".cz.toml")) || fileExists(filepath.Join(dir, "cz.toml")) {
		return true
	}
	return pyprojectHasCommitizen(filepath.Join(dir, "pyproject.toml"))
}

// packageJSONHasCommitlint reports whether package.json declares a
// top-level "commitlint" key.
func packageJSONHasCommitlint(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return false
	}
	return k.Exists("commitlint")
}

// pyprojectHasCommitizen reports whether pyproject.toml declares a
// [tool.commitizen] table.
func pyprojectHasCommitizen(path string) bool {
	var doc map[string]interface{}
	md, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return false
	}
	return md.IsDefined("tool", "commitizen")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
