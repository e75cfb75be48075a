package script_test

import (
	"context"
	"io"
	"testing"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/script"
)

type fakeInterpreter struct {
	rc       pkgtype.RC
	err      error
	lastArg1 int64
	lastArg2 int64
}

func (f *fakeInterpreter) Run(_ context.Context, _ *header.Script, arg1, arg2 int64, _ []string, _ io.Writer) (pkgtype.RC, error) {
	f.lastArg1, f.lastArg2 = arg1, arg2
	return f.rc, f.err
}

func TestRunnerBlockingFailurePropagates(t *testing.T) {
	fi := &fakeInterpreter{rc: pkgtype.RCFail, err: context.DeadlineExceeded}
	r := script.NewRunner(fi, nil, nil)

	rc, err := r.Run(context.Background(), pkgtype.TagPrein, &header.Script{Body: "exit 1"}, 1, -1, nil, nil)
	if rc != pkgtype.RCFail {
		t.Errorf("rc = %v, want FAIL for blocking tag", rc)
	}
	if err == nil {
		t.Error("expected error for blocking failure")
	}
}

func TestRunnerAdvisoryFailureDemotedToOK(t *testing.T) {
	fi := &fakeInterpreter{rc: pkgtype.RCFail, err: context.DeadlineExceeded}
	r := script.NewRunner(fi, nil, nil)

	rc, err := r.Run(context.Background(), pkgtype.TagPostin, &header.Script{Body: "exit 1"}, 1, -1, nil, nil)
	if rc != pkgtype.RCOK {
		t.Errorf("rc = %v, want OK (advisory failure must be demoted)", rc)
	}
	if err != nil {
		t.Errorf("err = %v, want nil for demoted advisory failure", err)
	}
}

func TestRunInstScriptNoOpWithoutScript(t *testing.T) {
	h := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	e := element.New(h)
	fi := &fakeInterpreter{rc: pkgtype.RCOK}
	r := script.NewRunner(fi, nil, nil)

	rc, err := r.RunInstScript(context.Background(), e, pkgtype.TagPrein, 1, nil)
	if rc != pkgtype.RCOK || err != nil {
		t.Errorf("RunInstScript with no script = (%v, %v), want (OK, nil)", rc, err)
	}
}

func TestRunInstScriptPassesArgs(t *testing.T) {
	h := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	h.Scripts[pkgtype.TagPrein] = &header.Script{Body: "true"}
	e := element.New(h)
	fi := &fakeInterpreter{rc: pkgtype.RCOK}
	r := script.NewRunner(fi, nil, nil)

	rc, err := r.RunInstScript(context.Background(), e, pkgtype.TagPrein, 3, nil)
	if rc != pkgtype.RCOK || err != nil {
		t.Fatalf("RunInstScript() = (%v, %v), want (OK, nil)", rc, err)
	}
	if fi.lastArg1 != 3 || fi.lastArg2 != -1 {
		t.Errorf("args = (%d, %d), want (3, -1)", fi.lastArg1, fi.lastArg2)
	}
}
