package config

import "github.com/arthur-debert/pkgpsm/pkg/logging"

// globalConfig is the process-wide configuration, lazily loaded on first
// Get() unless Initialize is called explicitly first (e.g. by a CLI
// driver that wants to pass an --config flag through as invocationPath).
var globalConfig *Config

// Initialize sets up the global configuration. Passing nil loads it from
// disk/environment via Load(""), falling back to Default() if that fails.
func Initialize(cfg *Config) {
	if cfg == nil {
		loaded, err := Load("")
		if err != nil {
			logging.GetLogger("config").Warn().Err(err).Msg("configuration load failed, using hardcoded defaults")
			cfg = Default()
		} else {
			cfg = loaded
		}
	}
	globalConfig = cfg
}

// Get returns the current configuration, initializing it on first use.
func Get() *Config {
	if globalConfig == nil {
		Initialize(nil)
	}
	return globalConfig
}
