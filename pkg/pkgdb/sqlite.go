package pkgdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/arthur-debert/pkgpsm/pkg/errors"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
)

// lockTimeout bounds how long a writer waits for the advisory file lock
// before giving up, rather than blocking a transaction run forever on a
// wedged external holder.
const lockTimeout = 2 * time.Second

// SQLiteDB is a Database backed by a CGO-free modernc.org/sqlite file,
// guarded against concurrent external writers with a github.com/gofrs/flock
// advisory lock on a sibling ".lock" file — the rest of the module assumes
// a single PSM runs at a time (spec.md §5), but the database file itself
// may be shared with other tools on the host.
type SQLiteDB struct {
	db   *sql.DB
	lock *flock.Flock
}

// OpenSQLiteDB opens (creating if necessary) the installed-package
// database at path.
func OpenSQLiteDB(path string) (*SQLiteDB, error) {
	logger := logging.GetLogger("pkgdb.sqlite")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDBIterator, "opening database at %s", path)
	}
	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS headers (
		offset INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		epoch TEXT NOT NULL,
		version TEXT NOT NULL,
		release TEXT NOT NULL,
		arch TEXT NOT NULL,
		os TEXT NOT NULL,
		data BLOB NOT NULL
	)`); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, errors.ErrDBIterator, "creating headers table")
	}

	logger.Debug().Str("path", path).Msg("opened installed-package database")
	return &SQLiteDB{db: sqlDB, lock: flock.New(path + ".lock")}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) withWriteLock(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return errors.Wrap(err, errors.ErrDBIterator, "acquiring database lock")
	}
	if !locked {
		return errors.New(errors.ErrDBIterator, "database is locked by another process")
	}
	defer s.lock.Unlock()
	return fn()
}

func (s *SQLiteDB) CountByName(name string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM headers WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDBCount, "counting installed packages")
	}
	return n, nil
}

func (s *SQLiteDB) loadRows(query string, args ...interface{}) ([]uint64, []*header.Header, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrDBIterator, "querying headers")
	}
	defer rows.Close()

	var offsets []uint64
	var headers []*header.Header
	for rows.Next() {
		var offset uint64
		var data []byte
		if err := rows.Scan(&offset, &data); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrDBIterator, "scanning header row")
		}
		h, err := header.Unmarshal(data)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrDBIterator, "decoding stored header")
		}
		offsets = append(offsets, offset)
		headers = append(headers, h)
	}
	return offsets, headers, rows.Err()
}

func (s *SQLiteDB) IterateByName(name string) (Iterator, error) {
	offsets, headers, err := s.loadRows(`SELECT offset, data FROM headers WHERE name = ? ORDER BY offset`, name)
	if err != nil {
		return nil, err
	}
	return newSQLiteIterator(s, offsets, headers), nil
}

func (s *SQLiteDB) IterateByTriggerName(name string) (Iterator, error) {
	offsets, headers, err := s.loadRows(`SELECT offset, data FROM headers ORDER BY offset`)
	if err != nil {
		return nil, err
	}
	var outOffsets []uint64
	var outHeaders []*header.Header
	for i, h := range headers {
		for _, te := range h.Triggers {
			if te.Name == name {
				outOffsets = append(outOffsets, offsets[i])
				outHeaders = append(outHeaders, h)
				break
			}
		}
	}
	return newSQLiteIterator(s, outOffsets, outHeaders), nil
}

func (s *SQLiteDB) IterateOffsets(offsets []uint64) (Iterator, error) {
	if len(offsets) == 0 {
		return newSQLiteIterator(s, nil, nil), nil
	}
	placeholders := make([]string, len(offsets))
	args := make([]interface{}, len(offsets))
	byOffset := make(map[uint64]*header.Header, len(offsets))
	for i, off := range offsets {
		placeholders[i] = "?"
		args[i] = off
	}
	gotOffsets, headers, err := s.loadRows(
		fmt.Sprintf(`SELECT offset, data FROM headers WHERE offset IN (%s)`, strings.Join(placeholders, ",")),
		args...)
	if err != nil {
		return nil, err
	}
	for i, off := range gotOffsets {
		byOffset[off] = headers[i]
	}
	// Preserve caller-supplied order, matching rpmdbAppendIterator.
	ordered := make([]*header.Header, 0, len(offsets))
	orderedOffsets := make([]uint64, 0, len(offsets))
	for _, off := range offsets {
		if h, ok := byOffset[off]; ok {
			ordered = append(ordered, h)
			orderedOffsets = append(orderedOffsets, off)
		}
	}
	return newSQLiteIterator(s, orderedOffsets, ordered), nil
}

func (s *SQLiteDB) FindReplaceable(name, epoch, version, release, arch, osName string, matchColor bool) (uint64, bool, error) {
	query := `SELECT offset FROM headers WHERE name = ? AND epoch = ? AND version = ? AND release = ?`
	args := []interface{}{name, epoch, version, release}
	if matchColor {
		query += ` AND arch = ? AND os = ?`
		args = append(args, arch, osName)
	}
	query += ` ORDER BY offset LIMIT 1`

	var offset uint64
	err := s.db.QueryRow(query, args...).Scan(&offset)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrDBIterator, "looking up replaceable instance")
	}
	return offset, true, nil
}

func (s *SQLiteDB) Add(h *header.Header) (uint64, error) {
	var offset uint64
	err := s.withWriteLock(func() error {
		data, err := h.Marshal()
		if err != nil {
			return errors.Wrap(err, errors.ErrDBAdd, "encoding header")
		}
		res, err := s.db.Exec(
			`INSERT INTO headers (name, epoch, version, release, arch, os, data) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.Name, h.Epoch, h.Version, h.Release, h.Arch, h.OS, data)
		if err != nil {
			return errors.Wrap(err, errors.ErrDBAdd, "inserting header")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, errors.ErrDBAdd, "reading assigned offset")
		}
		offset = uint64(id)
		return nil
	})
	return offset, err
}

func (s *SQLiteDB) Remove(offset uint64) error {
	return s.withWriteLock(func() error {
		_, err := s.db.Exec(`DELETE FROM headers WHERE offset = ?`, offset)
		if err != nil {
			return errors.Wrap(err, errors.ErrDBRemove, "deleting header")
		}
		return nil
	})
}

func (s *SQLiteDB) rewrite(offset uint64, h *header.Header) error {
	return s.withWriteLock(func() error {
		data, err := h.Marshal()
		if err != nil {
			return errors.Wrap(err, errors.ErrDBIterator, "encoding header for rewrite")
		}
		_, err = s.db.Exec(`UPDATE headers SET data = ? WHERE offset = ?`, data, offset)
		if err != nil {
			return errors.Wrap(err, errors.ErrDBIterator, "rewriting header")
		}
		return nil
	})
}

type sqliteIterator struct {
	db       *SQLiteDB
	offsets  []uint64
	headers  []*header.Header
	pos      int
	modified map[int]bool
}

func newSQLiteIterator(db *SQLiteDB, offsets []uint64, headers []*header.Header) *sqliteIterator {
	return &sqliteIterator{db: db, offsets: offsets, headers: headers, pos: -1, modified: make(map[int]bool)}
}

func (it *sqliteIterator) Next() bool {
	it.pos++
	return it.pos < len(it.offsets)
}

func (it *sqliteIterator) Header() *header.Header {
	if it.pos < 0 || it.pos >= len(it.headers) {
		return nil
	}
	return it.headers[it.pos]
}

func (it *sqliteIterator) Offset() uint64 {
	if it.pos < 0 || it.pos >= len(it.offsets) {
		return 0
	}
	return it.offsets[it.pos]
}

func (it *sqliteIterator) SetModified() {
	if it.pos >= 0 && it.pos < len(it.offsets) {
		it.modified[it.pos] = true
	}
}

// Close rewrites every row marked modified, matching "rewrite on modify"
// (spec.md §4.4).
func (it *sqliteIterator) Close() error {
	for i := range it.modified {
		if err := it.db.rewrite(it.offsets[i], it.headers[i]); err != nil {
			return err
		}
	}
	return nil
}
