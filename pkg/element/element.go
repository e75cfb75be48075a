// Package element defines the transaction element ("te" in the original
// rpm source): one package's presence in a transaction, carrying its
// header, its file snapshot, and the mutable database-instance slot the
// stage driver flips across RPMDB_ADD/RPMDB_REMOVE. An element is borrowed
// by the PSM for the run's lifetime and must outlive it (spec.md §3
// "element (borrowed, not owned; lifetime = the transaction)", §9
// "te not refcounted yet").
package element

import (
	"io"
	"sync/atomic"

	"github.com/arthur-debert/pkgpsm/pkg/header"
)

// SharedFile is one row of the element's replaced-file list: "file at
// index OtherFileNum of database package at offset OtherPkg should be
// transitioned to NewState" (spec.md §3). The list is expected to already
// be grouped by OtherPkg, as markReplacedFiles (pkg/replacedfiles) relies
// on adjacency to deduplicate.
type SharedFile struct {
	OtherPkg     uint64
	OtherFileNum int
	NewState     byte
}

// FileInfo is one payload entry: its path and current file-state byte.
type FileInfo struct {
	Path  string
	State byte
}

// Element is one package's presence in a transaction.
type Element struct {
	Header *header.Header

	// Files is the file snapshot the PSM owns for its run (spec.md §3
	// "files — a snapshot of the element's file info; owned by the PSM
	// for its lifetime"). It is populated by the caller before Run and
	// consumed read-only by the stage driver and payload engine.
	Files []FileInfo

	// Replaced is the element's replaced-file list, consumed by
	// markReplacedFiles after a successful install (spec.md §4.4).
	Replaced []SharedFile

	// Fd is the payload/package file descriptor, used by
	// installSourcePackage (spec.md §4.5) and by the payload engine
	// during PROCESS.
	Fd io.ReadCloser

	dbInstance uint64 // atomic: element's current database-instance offset, 0 if none
}

// New wraps a header into a fresh transaction element with no files and
// no recorded database instance.
func New(h *header.Header) *Element {
	return &Element{Header: h}
}

// FileCount returns the number of files the element's snapshot has, i.e.
// "fc" in spec.md §4.1.
func (e *Element) FileCount() int {
	return len(e.Files)
}

// DBInstance returns the element's current database-instance offset, or 0
// if the package is not (yet, or no longer) present in the database under
// this element's identity.
func (e *Element) DBInstance() uint64 {
	return atomic.LoadUint64(&e.dbInstance)
}

// SetDBInstance records the database-instance offset for this element.
// Called by RPMDB_ADD (to the new offset), RPMDB_REMOVE (to 0), and
// markReplacedInstance (to the offset being replaced).
func (e *Element) SetDBInstance(offset uint64) {
	atomic.StoreUint64(&e.dbInstance, offset)
}

// FileStates returns the parallel file-state byte array for the element's
// snapshot, in payload order.
func (e *Element) FileStates() []byte {
	states := make([]byte, len(e.Files))
	for i, f := range e.Files {
		states[i] = f.State
	}
	return states
}

// SetFileCreateAll marks every file in the snapshot for installation, used
// by installSourcePackage to force a full unpack (spec.md §4.5 step 5).
func (e *Element) SetFileCreateAll(state byte) {
	for i := range e.Files {
		e.Files[i].State = state
	}
}
