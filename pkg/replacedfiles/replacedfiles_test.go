package replacedfiles_test

import (
	"testing"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/pkgdb"
	"github.com/arthur-debert/pkgpsm/pkg/replacedfiles"
)

func TestMarkUpdatesFileStates(t *testing.T) {
	db := pkgdb.NewMemoryDB()
	other := header.New("other", "0", "1.0", "1", "x86_64", "linux")
	other.FileStates = []byte{0, 0, 0}
	offset, err := db.Add(other)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	h := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	e := element.New(h)
	e.Replaced = []element.SharedFile{
		{OtherPkg: offset, OtherFileNum: 1, NewState: 'r'},
	}

	replacedfiles.Mark(db, e)

	it, err := db.IterateOffsets([]uint64{offset})
	if err != nil {
		t.Fatalf("IterateOffsets() error = %v", err)
	}
	defer it.Close()
	if !it.Next() {
		t.Fatal("expected one row")
	}
	got := it.Header().FileStates
	want := []byte{0, 'r', 0}
	if string(got) != string(want) {
		t.Errorf("FileStates = %v, want %v", got, want)
	}
}

func TestMarkNoopWithoutReplacedFiles(t *testing.T) {
	db := pkgdb.NewMemoryDB()
	h := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	e := element.New(h)
	replacedfiles.Mark(db, e) // must not panic
}

func TestMarkGroupsByOtherPkg(t *testing.T) {
	db := pkgdb.NewMemoryDB()
	a := header.New("a", "0", "1.0", "1", "x86_64", "linux")
	a.FileStates = []byte{0, 0}
	aOff, _ := db.Add(a)
	b := header.New("b", "0", "1.0", "1", "x86_64", "linux")
	b.FileStates = []byte{0, 0}
	bOff, _ := db.Add(b)

	h := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	e := element.New(h)
	e.Replaced = []element.SharedFile{
		{OtherPkg: aOff, OtherFileNum: 0, NewState: 'r'},
		{OtherPkg: aOff, OtherFileNum: 1, NewState: 'r'},
		{OtherPkg: bOff, OtherFileNum: 0, NewState: 'r'},
	}

	replacedfiles.Mark(db, e)

	it, _ := db.IterateOffsets([]uint64{aOff, bOff})
	defer it.Close()
	it.Next()
	if string(it.Header().FileStates) != string([]byte{'r', 'r'}) {
		t.Errorf("package a FileStates = %v, want [r r]", it.Header().FileStates)
	}
	it.Next()
	if string(it.Header().FileStates) != string([]byte{'r', 0}) {
		t.Errorf("package b FileStates = %v, want [r 0]", it.Header().FileStates)
	}
}
