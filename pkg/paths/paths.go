// Package paths centralizes pkgpsm's on-disk layout: the installed-package
// database location, the default chroot root, and the log file, all
// resolved against the XDG Base Directory spec with environment overrides,
// the way the teacher's own pkg/paths resolves its data/config/cache/state
// directories.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "pkgpsm"

// Environment variable names overriding the XDG-derived defaults.
const (
	EnvDataDir  = "PKGPSM_DATA_DIR"
	EnvStateDir = "PKGPSM_STATE_DIR"
	EnvRoot     = "PKGPSM_ROOT"
)

const (
	databaseFileName = "pkgpsm.db"
	logFileName      = "pkgpsm.log"
)

// Paths resolves pkgpsm's on-disk locations.
type Paths struct {
	xdgData  string
	xdgState string
	root     string
}

// New builds a Paths instance, respecting PKGPSM_DATA_DIR, PKGPSM_STATE_DIR
// and PKGPSM_ROOT when set.
func New() *Paths {
	p := &Paths{root: "/"}

	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, appDirName)
	}

	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		p.xdgState = expandHome(stateDir)
	} else if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		p.xdgState = filepath.Join(xdgState, appDirName)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			p.xdgState = filepath.Join(home, ".local", "state", appDirName)
		}
	}

	if root := os.Getenv(EnvRoot); root != "" {
		p.root = expandHome(root)
	}

	return p
}

// DataDir returns the XDG data directory for pkgpsm.
func (p *Paths) DataDir() string {
	return p.xdgData
}

// StateDir returns the XDG state directory for pkgpsm.
func (p *Paths) StateDir() string {
	return p.xdgState
}

// DatabasePath returns the default installed-package database path.
func (p *Paths) DatabasePath() string {
	return filepath.Join(p.xdgData, databaseFileName)
}

// LogFilePath returns the default log file path.
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.xdgState, logFileName)
}

// Root returns the default chroot root, "/" unless overridden.
func (p *Paths) Root() string {
	return p.root
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	return path
}
