package payload_test

import (
	"testing"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/payload"
)

// fakeEngine is an in-memory Engine exercised by this package's tests
// (spec.md §1 "ambient stack... test tooling... in-memory fake payload
// engine"). Being in a _test.go file it is not importable; the stage
// driver's and source-package driver's tests declare their own fakes.
type fakeEngine struct {
	installed []string
	removed   []string
	failOn    string
}

func (f *fakeEngine) Install(e *element.Element, root string) (string, error) {
	for _, file := range e.Files {
		if file.Path == f.failOn {
			return file.Path, errUnpack
		}
		f.installed = append(f.installed, file.Path)
	}
	return "", nil
}

func (f *fakeEngine) Remove(e *element.Element, root string) (string, error) {
	for _, file := range e.Files {
		if file.Path == f.failOn {
			return file.Path, errUnpack
		}
		f.removed = append(f.removed, file.Path)
	}
	return "", nil
}

var errUnpack = &fakeErr{"simulated unpack failure"}

type fakeErr struct{ msg string }

func (e *fakeErr) Error() string { return e.msg }

func TestFakeEngineSatisfiesInterface(t *testing.T) {
	var _ payload.Engine = (*fakeEngine)(nil)
}

func TestFakeEngineInstall(t *testing.T) {
	h := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	e := element.New(h)
	e.Files = []element.FileInfo{{Path: "/usr/bin/foo", State: byte(payload.FileStateCreate)}}

	fe := &fakeEngine{}
	failedFile, err := fe.Install(e, "/")
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if failedFile != "" {
		t.Errorf("failedFile = %q, want empty", failedFile)
	}
	if len(fe.installed) != 1 || fe.installed[0] != "/usr/bin/foo" {
		t.Errorf("installed = %v, want [/usr/bin/foo]", fe.installed)
	}
}

func TestFakeEngineInstallFailure(t *testing.T) {
	h := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	e := element.New(h)
	e.Files = []element.FileInfo{{Path: "/usr/bin/bad", State: byte(payload.FileStateCreate)}}

	fe := &fakeEngine{failOn: "/usr/bin/bad"}
	failedFile, err := fe.Install(e, "/")
	if err == nil {
		t.Fatal("expected an error")
	}
	if failedFile != "/usr/bin/bad" {
		t.Errorf("failedFile = %q, want /usr/bin/bad", failedFile)
	}
}
