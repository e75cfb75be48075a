package pkgdb

import (
	"sort"
	"sync"

	"github.com/arthur-debert/pkgpsm/pkg/header"
)

// MemoryDB is an in-memory Database, used by the PSM's own tests and
// suitable as a --test/--justdb style database for callers that don't
// need persistence across process runs.
type MemoryDB struct {
	mu     sync.Mutex
	rows   map[uint64]*header.Header
	nextID uint64
}

// NewMemoryDB returns an empty in-memory database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{rows: make(map[uint64]*header.Header), nextID: 1}
}

func (db *MemoryDB) CountByName(name string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, h := range db.rows {
		if h.Name == name {
			n++
		}
	}
	return n, nil
}

// memoryIterator walks a fixed offset list. MemoryDB stores header
// pointers directly, so a mutation made through Header() is already
// visible to the database; SetModified is kept only to satisfy the
// Iterator contract other backends (e.g. SQLite) need for real.
type memoryIterator struct {
	db      *MemoryDB
	offsets []uint64
	pos     int
}

func (it *memoryIterator) Next() bool {
	it.pos++
	return it.pos < len(it.offsets)
}

func (it *memoryIterator) Header() *header.Header {
	if it.pos < 0 || it.pos >= len(it.offsets) {
		return nil
	}
	it.db.mu.Lock()
	defer it.db.mu.Unlock()
	return it.db.rows[it.offsets[it.pos]]
}

func (it *memoryIterator) Offset() uint64 {
	if it.pos < 0 || it.pos >= len(it.offsets) {
		return 0
	}
	return it.offsets[it.pos]
}

func (it *memoryIterator) SetModified() {}

func (it *memoryIterator) Close() error { return nil }

func newMemoryIterator(db *MemoryDB, offsets []uint64) *memoryIterator {
	return &memoryIterator{db: db, offsets: offsets, pos: -1}
}

func (db *MemoryDB) IterateByName(name string) (Iterator, error) {
	db.mu.Lock()
	var offsets []uint64
	for off, h := range db.rows {
		if h.Name == name {
			offsets = append(offsets, off)
		}
	}
	db.mu.Unlock()
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return newMemoryIterator(db, offsets), nil
}

func (db *MemoryDB) IterateByTriggerName(name string) (Iterator, error) {
	db.mu.Lock()
	var offsets []uint64
	for off, h := range db.rows {
		for _, te := range h.Triggers {
			if te.Name == name {
				offsets = append(offsets, off)
				break
			}
		}
	}
	db.mu.Unlock()
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return newMemoryIterator(db, offsets), nil
}

func (db *MemoryDB) IterateOffsets(offsets []uint64) (Iterator, error) {
	cp := append([]uint64(nil), offsets...)
	return newMemoryIterator(db, cp), nil
}

func (db *MemoryDB) FindReplaceable(name, epoch, version, release, arch, osName string, matchColor bool) (uint64, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var offsets []uint64
	for off := range db.rows {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	for _, off := range offsets {
		h := db.rows[off]
		if h.Name != name || h.Epoch != epoch || h.Version != version || h.Release != release {
			continue
		}
		if matchColor && (h.Arch != arch || h.OS != osName) {
			continue
		}
		return off, true, nil
	}
	return 0, false, nil
}

func (db *MemoryDB) Add(h *header.Header) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.nextID
	db.nextID++
	db.rows[id] = h
	return id, nil
}

func (db *MemoryDB) Remove(offset uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.rows, offset)
	return nil
}

// Len reports the number of rows currently in the database, used by tests
// asserting spec.md §8's "database contains exactly one row" properties.
func (db *MemoryDB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.rows)
}
