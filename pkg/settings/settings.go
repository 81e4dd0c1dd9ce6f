// Package settings assembles tspack's runtime configuration from, in
// rising priority: built-in defaults, the user-level tspack.toml, the
// project's tspack.yml, TSPACK_* environment variables, and flags.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// Settings holds the resolved configuration for a run.
type Settings struct {
	Project  string   `koanf:"project"`
	OutDir   string   `koanf:"out-dir"`
	TypesDir string   `koanf:"types-dir"`
	Args     []string `koanf:"args"`
	Linter   string   `koanf:"linter"`
	LintArgs []string `koanf:"lint-args"`
	SkipLint bool     `koanf:"skip-lint"`
	Verbose  bool     `koanf:"verbose"`
	NoColor  bool     `koanf:"no-color"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"project":   ".",
		"out-dir":   "dist-src",
		"types-dir": "dist-types",
		"args":      []string{},
		"linter":    "eslint",
		"lint-args": []string{},
		"skip-lint": false,
		"verbose":   false,
		"no-color":  false,
	}
}

// UserConfigPath returns the location of the user-level settings file,
// e.g. ~/.config/tspack/tspack.toml on Linux.
func UserConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, "tspack", "tspack.toml"), nil
}

// Load resolves settings for the project selected by the flag set (or the
// current directory). The project's tspack.yml is layered between the
// user config file and the environment.
func Load(f *pflag.FlagSet) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// User config file is optional.
	if userPath, err := UserConfigPath(); err == nil {
		_ = k.Load(file.Provider(userPath), toml.Parser())
	}

	// The project directory itself may come from env or flags, so peek at
	// those layers before loading the project file.
	projectDir := peekProject(f, k.String("project"))

	fileCfg, err := LoadFile(projectDir)
	if err != nil {
		return nil, err
	}
	if fileCfg != nil {
		if err := k.Load(makeMapProvider(fileCfg.flatten()), nil); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", PipelineFileName, err)
		}
	}

	// Environment variables: TSPACK_OUT_DIR=lib becomes out-dir=lib.
	if err := k.Load(env.Provider("TSPACK_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "TSPACK_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &s, nil
}

// peekProject resolves the project directory early, before the project's
// own config file can be read. Flags beat env beats the fallthrough.
func peekProject(f *pflag.FlagSet, fallback string) string {
	if f != nil {
		if flag := f.Lookup("project"); flag != nil && flag.Changed {
			return flag.Value.String()
		}
	}
	if v := os.Getenv("TSPACK_PROJECT"); v != "" {
		return v
	}
	return fallback
}

// WriteDefault writes a settings file populated with the built-in
// defaults. Used by `tspack config init`.
func WriteDefault(path string) error {
	data, err := gotoml.Marshal(defaults())
	if err != nil {
		return fmt.Errorf("failed to marshal default settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
