// Package config loads the engine configuration: installation root,
// record writing, interrupt timeout, reconciliation rules and variable
// bindings. Sources are layered: built-in defaults, then an optional
// unpakt.toml, then UNPAKT_* environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	uerrors "github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/types"
)

// Config is the fully resolved engine configuration
type Config struct {
	// InstallRoot is the absolute installation directory
	InstallRoot string `koanf:"install_root"`

	// WriteRecord toggles the installation record writer
	WriteRecord bool `koanf:"write_record"`

	// InterruptTimeoutMs bounds the convergence wait when cancelling
	// all sessions.
	InterruptTimeoutMs int `koanf:"interrupt_timeout_ms"`

	// DetectCycles enables the symlink-cycle guard during
	// reconciliation. Off by default.
	DetectCycles bool `koanf:"detect_cycles"`

	// Variables are the run's variable bindings
	Variables map[string]string `koanf:"variables"`

	// UpdateChecks are the reconciliation rules
	UpdateChecks []types.UpdateCheck `koanf:"update_checks"`
}

// InterruptTimeout returns the convergence wait bound as a duration
func (c *Config) InterruptTimeout() time.Duration {
	return time.Duration(c.InterruptTimeoutMs) * time.Millisecond
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"write_record":         true,
		"interrupt_timeout_ms": 10000,
		"detect_cycles":        false,
	}
}

// Load resolves the configuration. path points at an unpakt.toml; an
// empty path or a missing file just skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, uerrors.Wrap(err, uerrors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Config file, if present
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, uerrors.Wrapf(err, uerrors.ErrConfigParse, "failed to load config from %s", path)
			}
		}
	}

	// 3. Environment overrides: UNPAKT_INSTALL_ROOT -> install_root
	if err := k.Load(env.Provider("UNPAKT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "UNPAKT_"))
	}), nil); err != nil {
		return nil, uerrors.Wrap(err, uerrors.ErrConfigLoad, "failed to load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, uerrors.Wrap(err, uerrors.ErrConfigParse, "failed to unmarshal config")
	}
	return &cfg, nil
}
