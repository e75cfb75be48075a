package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// systemConfigPath is the optional, installation-wide override file.
const systemConfigPath = "/etc/pkgpsm/pkgpsm.toml"

const envPrefix = "PKGPSM_"

// Load builds a Config by layering, in increasing order of precedence:
// the compiled-in defaults, an optional /etc/pkgpsm/pkgpsm.toml, an
// optional per-invocation TOML file, and PKGPSM_* environment variables.
// invocationPath may be empty, in which case that layer is skipped.
func Load(invocationPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("loading compiled-in defaults: %w", err)
	}

	if _, err := os.Stat(systemConfigPath); err == nil {
		if err := k.Load(file.Provider(systemConfigPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", systemConfigPath, err)
		}
	}

	if invocationPath != "" {
		if _, err := os.Stat(invocationPath); err != nil {
			return nil, fmt.Errorf("invocation config %s: %w", invocationPath, err)
		}
		if err := k.Load(file.Provider(invocationPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", invocationPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		trimmed := strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(trimmed), "_", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	return &cfg, nil
}
