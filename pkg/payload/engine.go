// Package payload implements the payload unpacker / file-operation engine
// boundary (spec.md §6 "to the payload engine") plus a concrete
// implementation backed by the teacher's own file-operation library,
// github.com/arthur-debert/synthfs.
package payload

import (
	"io/fs"
	"time"

	"github.com/arthur-debert/pkgpsm/pkg/element"
)

// FileState mirrors the file-state byte the PSM reads off an element's
// file snapshot (spec.md §3 shared-file record, §4.5 "mark every
// file-state as CREATE").
type FileState byte

const (
	FileStateNormal  FileState = 0
	FileStateCreate  FileState = 'c'
	FileStateReplace FileState = 'r'
	FileStateRemove  FileState = 'x'
)

// Engine installs or removes an element's files (spec.md §6): "install(ts,
// te, files, payload_fd, psm, &failed_file) -> int" and "remove(ts, te,
// files, psm, &failed_file) -> int", reshaped into idiomatic Go.
type Engine interface {
	// Install unpacks e's payload onto root. It returns the path of the
	// first file that failed to install, if any, alongside the error.
	Install(e *element.Element, root string) (failedFile string, err error)
	// Remove deletes e's files from root. Same failedFile contract as
	// Install.
	Remove(e *element.Element, root string) (failedFile string, err error)
}

// fileItem adapts one of the element's files to the minimal item
// interface synthfs operations need, grounded on
// arthur-debert-dodot/pkg/synthfs/synthfs_executor.go's fileItem.
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }
