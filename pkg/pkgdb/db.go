// Package pkgdb defines the installed-package database interface the PSM
// consumes (spec.md §1 "Out of scope: the installed-package database
// (lookup, iteration, add, remove, count)", §6). It ships two
// implementations: an in-memory fake for deterministic tests, and a
// SQLite-backed database for real use.
package pkgdb

import "github.com/arthur-debert/pkgpsm/pkg/header"

// Iterator walks a set of database rows, optionally allowing a row to be
// rewritten in place (spec.md §4.4 "rewrite-on-modify").
type Iterator interface {
	// Next advances the iterator. It returns false once exhausted.
	Next() bool
	// Header returns the current row's header.
	Header() *header.Header
	// Offset returns the current row's database offset.
	Offset() uint64
	// SetModified marks the current row to be rewritten with its
	// (possibly mutated) Header() value no later than Close.
	SetModified()
	// Close releases the iterator, flushing any rows marked modified.
	Close() error
}

// Database is the installed-package database the PSM queries and mutates.
// Offsets are opaque, stable identifiers for a row, assigned by Add and
// never reused after Remove within the same process generation.
type Database interface {
	// CountByName returns the number of installed rows with this name.
	// Negative is never a valid count; implementations return (0, err)
	// instead, letting spec.md §4.1's "Fail on negative" check be driven
	// by the error rather than a sentinel.
	CountByName(name string) (int, error)

	// IterateByName iterates all rows with the given name
	// (RPMDBI_NAME).
	IterateByName(name string) (Iterator, error)

	// IterateByTriggerName iterates all rows whose TRIGGERNAME array
	// contains name (RPMDBI_TRIGGERNAME).
	IterateByTriggerName(name string) (Iterator, error)

	// IterateOffsets iterates exactly the given offsets, in the order
	// given (RPMDBI_PACKAGES + rpmdbAppendIterator), used by
	// markReplacedFiles.
	IterateOffsets(offsets []uint64) (Iterator, error)

	// FindReplaceable looks up a row with the given name/epoch/version/
	// release, additionally matching arch/os when matchColor is true
	// (spec.md §4.6 markReplacedInstance). Returns ok=false if no row
	// matches.
	FindReplaceable(name, epoch, version, release, arch, osName string, matchColor bool) (offset uint64, ok bool, err error)

	// Add inserts h as a new row and returns its assigned offset.
	Add(h *header.Header) (offset uint64, err error)

	// Remove deletes the row at offset.
	Remove(offset uint64) error
}
