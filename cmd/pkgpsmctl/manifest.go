// Package main implements pkgpsmctl, a CLI driver exercising the PSM
// against a package described by a manifest file rather than a real RPM
// payload: actual header/tag-data parsing is out of scope (spec.md §1),
// so the manifest stands in for it the same way header.Header is itself
// TOML-serializable for tests and tools.
package main

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/errors"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
)

// manifestFile is one entry of a manifest's file list.
type manifestFile struct {
	Path  string `toml:"path"`
	State string `toml:"state"`
}

// manifestSource carries the signature-check outcome a real package
// reader would derive from the payload's signature block
// (sourcepkg.SignatureResult), since signature verification itself is
// out of scope.
type manifestSource struct {
	Signature string `toml:"signature"`
}

// manifest is the on-disk description of one element: its header plus
// its file snapshot and replaced-file list, the pieces a real package
// reader would otherwise populate from the payload and the RPMDB.
type manifest struct {
	Header   header.Header        `toml:"header"`
	Files    []manifestFile       `toml:"files"`
	Replaced []element.SharedFile `toml:"replaced"`
	Source   manifestSource       `toml:"source"`
}

// fileState maps a manifest's human-readable state name to the byte the
// element/payload package expects.
func fileState(name string) byte {
	switch name {
	case "create":
		return byte(payloadFileStateCreate)
	case "replace":
		return byte(payloadFileStateReplace)
	case "remove":
		return byte(payloadFileStateRemove)
	default:
		return 0
	}
}

// These mirror payload.FileState's values without importing payload here,
// keeping manifest decoding free of a dependency on the engine package.
const (
	payloadFileStateCreate  = 'c'
	payloadFileStateReplace = 'r'
	payloadFileStateRemove  = 'x'
)

// parseManifest decodes manifest TOML bytes, filling the nil-map
// defaults header.Unmarshal itself applies.
func parseManifest(data []byte) (*manifest, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Header.Scripts == nil {
		m.Header.Scripts = make(map[pkgtype.ScriptTag]*header.Script)
	}
	if m.Header.TriggerScripts == nil {
		m.Header.TriggerScripts = make(map[uint32]*header.Script)
	}
	return &m, nil
}

// elementFromManifest builds the element.Element a manifest describes.
func elementFromManifest(m *manifest) *element.Element {
	h := m.Header
	el := element.New(&h)
	for _, f := range m.Files {
		el.Files = append(el.Files, element.FileInfo{Path: f.Path, State: fileState(f.State)})
	}
	el.Replaced = m.Replaced
	return el
}

// loadManifest reads a manifest file and builds the element.Element the
// PSM runs against.
func loadManifest(path string) (*element.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "reading manifest %s", path)
	}
	m, err := parseManifest(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestLoad, "parsing manifest %s", path)
	}
	return elementFromManifest(m), nil
}
