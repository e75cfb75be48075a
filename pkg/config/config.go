// Package config implements the layered configuration loader (spec.md §6
// "to the transaction set", SPEC_FULL.md Configuration): compiled-in
// defaults, an optional system-wide file, an optional per-invocation
// file, and PKGPSM_* environment variables, producing the default
// transaction flags, database path, chroot root, and script timeout a
// CLI driver wires into a txn.Transaction.
package config

import (
	"time"

	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
)

// TransactionConfig holds the default per-run flag settings (spec.md §6,
// §4.1/§4.2's no{pre,preun,post,postun,trigger*} flags).
type TransactionConfig struct {
	Test   bool `koanf:"test"`
	JustDB bool `koanf:"justdb"`

	// NoScripts and NoTriggers are shorthands that, when set, override
	// the individual flags below regardless of their own value.
	NoScripts  bool `koanf:"noscripts"`
	NoTriggers bool `koanf:"notriggers"`

	NoPre    bool `koanf:"nopre"`
	NoPreUn  bool `koanf:"nopreun"`
	NoPost   bool `koanf:"nopost"`
	NoPostUn bool `koanf:"nopostun"`

	NoTriggerPrein  bool `koanf:"notriggerprein"`
	NoTriggerIn     bool `koanf:"notriggerin"`
	NoTriggerUn     bool `koanf:"notriggerun"`
	NoTriggerPostun bool `koanf:"notriggerpostun"`
}

// Flags converts the configured booleans into the bitmask psm.Run
// expects.
func (t TransactionConfig) Flags() pkgtype.TransFlags {
	var f pkgtype.TransFlags
	if t.Test {
		f |= pkgtype.FlagTest
	}
	if t.JustDB {
		f |= pkgtype.FlagJustDB
	}

	if t.NoScripts || t.NoPre {
		f |= pkgtype.FlagNoPre
	}
	if t.NoScripts || t.NoPreUn {
		f |= pkgtype.FlagNoPreUn
	}
	if t.NoScripts || t.NoPost {
		f |= pkgtype.FlagNoPost
	}
	if t.NoScripts || t.NoPostUn {
		f |= pkgtype.FlagNoPostUn
	}

	if t.NoTriggers || t.NoTriggerPrein {
		f |= pkgtype.FlagNoTriggerPrein
	}
	if t.NoTriggers || t.NoTriggerIn {
		f |= pkgtype.FlagNoTriggerIn
	}
	if t.NoTriggers || t.NoTriggerUn {
		f |= pkgtype.FlagNoTriggerUn
	}
	if t.NoTriggers || t.NoTriggerPostun {
		f |= pkgtype.FlagNoTriggerPostun
	}
	return f
}

// DatabaseConfig holds the installed-package database location.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// ChrootConfig holds the root a transaction runs against.
type ChrootConfig struct {
	Root string `koanf:"root"`
}

// ScriptConfig holds scriptlet execution limits.
type ScriptConfig struct {
	TimeoutSeconds int `koanf:"timeoutseconds"`
}

// Timeout returns the configured scriptlet timeout, zero meaning no
// timeout (script.ShellInterpreter's own zero-value convention).
func (s ScriptConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Config is the fully resolved, layered configuration.
type Config struct {
	Transaction TransactionConfig `koanf:"transaction"`
	Database    DatabaseConfig    `koanf:"database"`
	Chroot      ChrootConfig      `koanf:"chroot"`
	Script      ScriptConfig      `koanf:"script"`
}

// Default returns the hardcoded fallback configuration used when no
// configuration file can be loaded at all.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "/var/lib/pkgpsm/pkgpsm.db"},
		Chroot:   ChrootConfig{Root: "/"},
	}
}
