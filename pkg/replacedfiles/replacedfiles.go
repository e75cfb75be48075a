// Package replacedfiles implements markReplacedFiles (spec.md §4.4):
// after a successful install, every file the new package replaces in an
// already-installed package gets that other package's FILESTATES entry
// updated.
package replacedfiles

import (
	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/pkgdb"
)

// Mark walks e's replaced-file list and rewrites the FILESTATES array of
// every other package it names. It has no return value: failures along
// the way are logged but non-fatal (spec.md §4.4).
func Mark(db pkgdb.Database, e *element.Element) {
	logger := logging.GetLogger("replacedfiles")
	if len(e.Replaced) == 0 {
		return
	}

	offsets := distinctOffsetsInOrder(e.Replaced)
	it, err := db.IterateOffsets(offsets)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to open iterator for replaced packages")
		return
	}
	defer it.Close()

	cursor := 0
	for it.Next() {
		h := it.Header()
		if h == nil {
			continue
		}
		offset := it.Offset()
		states := h.FileStates
		changed := false
		for cursor < len(e.Replaced) && e.Replaced[cursor].OtherPkg == offset {
			entry := e.Replaced[cursor]
			if entry.OtherFileNum >= 0 && entry.OtherFileNum < len(states) {
				if states[entry.OtherFileNum] != entry.NewState {
					states[entry.OtherFileNum] = entry.NewState
					changed = true
				}
			}
			cursor++
		}
		if changed {
			h.FileStates = states
			it.SetModified()
		}
	}
}

// distinctOffsetsInOrder collects the distinct OtherPkg offsets from a
// replaced-file list already grouped by OtherPkg (spec.md §4.4 step 1:
// "the list is already grouped by other_pkg, so uniqueness is a simple
// adjacent-check").
func distinctOffsetsInOrder(replaced []element.SharedFile) []uint64 {
	var offsets []uint64
	for i, r := range replaced {
		if i == 0 || replaced[i-1].OtherPkg != r.OtherPkg {
			offsets = append(offsets, r.OtherPkg)
		}
	}
	return offsets
}
