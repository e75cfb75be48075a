// Package header implements the typed tag store the PSM reads package
// metadata from and writes installation facts back to (spec.md §1 "Out of
// scope: Header/tag-data accessors... consumed only by interface"). Headers
// are TOML-serializable, grounded on the teacher's use of
// github.com/pelletier/go-toml/v2 for its own on-disk structured data
// (pkg/config/koanf.go's layered TOML loading, here repurposed as a
// standalone header codec).
package header

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
)

// Script is one scriptlet slot: an interpreter line plus its body. The
// install prefixes passed to scriptlets are stored once per header, in
// Header.InstPrefixes.
type Script struct {
	Interpreter string `toml:"interpreter"`
	Body        string `toml:"body"`
}

// TriggerEntry is one row of a package's TRIGGERNAME/TRIGGERFLAGS/
// TRIGGERINDEX parallel arrays (spec.md §4.3).
type TriggerEntry struct {
	Name  string       `toml:"name"`
	Sense pkgtype.Sense `toml:"sense"`
	Index uint32       `toml:"index"`
}

// Header is a package's typed tag store. All fields are exported so the
// TOML codec can round-trip them; packages outside this one should prefer
// the accessor methods. The accessors return stored values as they are:
// defaults such as the "fake up" archive size are applied by the stage
// driver, not here.
type Header struct {
	Name    string `toml:"name"`
	Epoch   string `toml:"epoch"`
	Version string `toml:"version"`
	Release string `toml:"release"`
	Arch    string `toml:"arch"`
	OS      string `toml:"os"`

	IsSourcePackage bool `toml:"is_source_package"`
	SpecFileIndex   int  `toml:"spec_file_index"` // -1 if absent

	LongArchiveSize uint64 `toml:"long_archive_size"`
	InstallTime     uint32 `toml:"install_time"`
	InstallColor    uint32 `toml:"install_color"`
	InstallTID      string `toml:"install_tid"`
	Cookie          string `toml:"cookie"`

	FileStates []byte `toml:"file_states"`

	Scripts        map[pkgtype.ScriptTag]*Script   `toml:"scripts"`
	TriggerScripts map[uint32]*Script              `toml:"trigger_scripts"`
	Triggers       []TriggerEntry                  `toml:"triggers"`
	InstPrefixes   []string                         `toml:"inst_prefixes"`
	RequiredRpmlib []string                         `toml:"required_rpmlib"`
	Provides       []string                         `toml:"provides"`
}

// AnyProvides reports whether this header provides the given dependency
// name. spec.md §4.3 step 3 calls for "any-provides, version-aware"
// matching; full version-range comparison belongs to dependency solving,
// which is an explicit Non-goal (spec.md §1), so this checks the provides
// list by name only — sufficient for trigger firing, which rpm itself only
// evaluates by name in the common case.
func (h *Header) AnyProvides(name string) bool {
	if h.Name == name {
		return true
	}
	for _, p := range h.Provides {
		if p == name {
			return true
		}
	}
	return false
}

// New returns an empty header for the given NEVRA coordinates.
func New(name, epoch, version, release, arch, osName string) *Header {
	return &Header{
		Name: name, Epoch: epoch, Version: version, Release: release, Arch: arch, OS: osName,
		SpecFileIndex:  -1,
		Scripts:        make(map[pkgtype.ScriptTag]*Script),
		TriggerScripts: make(map[uint32]*Script),
	}
}

// NEVR renders the name-epoch:version-release label used in log lines
// (spec.md §4.1 INIT: "<goal_name>: <NEVR> has <fc> files").
func (h *Header) NEVR() string {
	if h.Epoch != "" && h.Epoch != "0" {
		return fmt.Sprintf("%s-%s:%s-%s", h.Name, h.Epoch, h.Version, h.Release)
	}
	return fmt.Sprintf("%s-%s-%s", h.Name, h.Version, h.Release)
}

// TotalArchiveSize returns LONGARCHIVESIZE, or 0 if unset; the stage
// driver is responsible for the "fake up 100" substitution (spec.md
// §4.1 INIT), not the header itself.
func (h *Header) TotalArchiveSize() uint64 {
	return h.LongArchiveSize
}

// HasInstallTID reports whether RPMTAG_INSTALLTID is already present
// (spec.md §4.1 RPMDB_ADD: "If the header lacks INSTALLTID, stamp it").
func (h *Header) HasInstallTID() bool {
	return h.InstallTID != ""
}

// ScriptFor returns the scriptlet for a lifecycle tag, or nil if absent.
func (h *Header) ScriptFor(tag pkgtype.ScriptTag) *Script {
	return h.Scripts[tag]
}

// TriggerScriptAt returns the scriptlet stored at a TRIGGERINDEX position,
// or nil if absent.
func (h *Header) TriggerScriptAt(index uint32) *Script {
	return h.TriggerScripts[index]
}

// Marshal serializes the header to TOML.
func (h *Header) Marshal() ([]byte, error) {
	return toml.Marshal(h)
}

// Unmarshal populates a header from its TOML encoding.
func Unmarshal(data []byte) (*Header, error) {
	h := &Header{}
	if err := toml.Unmarshal(data, h); err != nil {
		return nil, err
	}
	if h.Scripts == nil {
		h.Scripts = make(map[pkgtype.ScriptTag]*Script)
	}
	if h.TriggerScripts == nil {
		h.TriggerScripts = make(map[uint32]*Script)
	}
	return h, nil
}
