package trigger_test

import (
	"context"
	"io"
	"testing"

	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/pkgdb"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/script"
	"github.com/arthur-debert/pkgpsm/pkg/trigger"
)

type countingInterpreter struct {
	runs map[string]int
}

func newCountingInterpreter() *countingInterpreter {
	return &countingInterpreter{runs: make(map[string]int)}
}

func (c *countingInterpreter) Run(_ context.Context, s *header.Script, _, _ int64, _ []string, _ io.Writer) (pkgtype.RC, error) {
	if s != nil {
		c.runs[s.Body]++
	}
	return pkgtype.RCOK, nil
}

func TestOutboundNegativeArg2ReturnsNotFound(t *testing.T) {
	db := pkgdb.NewMemoryDB()
	interp := newCountingInterpreter()
	runner := script.NewRunner(interp, nil, nil)
	eng := trigger.NewEngine(db, runner)

	source := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	rc, err := eng.RunOutbound(context.Background(), source, 0, -1, pkgtype.SenseTriggerUn)
	if err != nil {
		t.Fatalf("RunOutbound() error = %v", err)
	}
	if rc != pkgtype.RCNotFound {
		t.Errorf("RunOutbound() rc = %v, want NOTFOUND for negative arg2", rc)
	}
}

func TestInboundNoTriggersReturnsOK(t *testing.T) {
	db := pkgdb.NewMemoryDB()
	interp := newCountingInterpreter()
	runner := script.NewRunner(interp, nil, nil)
	eng := trigger.NewEngine(db, runner)

	target := header.New("foo", "0", "1.0", "1", "x86_64", "linux")
	rc, err := eng.RunInbound(context.Background(), target, 0, pkgtype.SenseTriggerIn)
	if err != nil {
		t.Fatalf("RunInbound() error = %v", err)
	}
	if rc != pkgtype.RCOK {
		t.Errorf("RunInbound() with no triggers = %v, want OK", rc)
	}
}

// TestInboundDedupFiresOncePerIndex exercises spec.md §8's concrete
// trigger-dedup scenario: two TRIGGERNAME entries referencing the same
// TRIGGERINDEX, two installed packages providing that name — the
// triggered scriptlet must run exactly once.
func TestInboundDedupFiresOncePerIndex(t *testing.T) {
	db := pkgdb.NewMemoryDB()
	interp := newCountingInterpreter()
	runner := script.NewRunner(interp, nil, nil)
	eng := trigger.NewEngine(db, runner)

	target := header.New("myapp", "0", "1.0", "1", "x86_64", "linux")
	target.Triggers = []header.TriggerEntry{
		{Name: "libfoo", Sense: pkgtype.SenseTriggerIn, Index: 5},
		{Name: "libfoo", Sense: pkgtype.SenseTriggerIn, Index: 5},
	}
	target.TriggerScripts[5] = &header.Script{Body: "echo triggered"}

	if _, err := db.Add(header.New("libfoo", "0", "1.0", "1", "x86_64", "linux")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	h2 := header.New("libfoo", "0", "2.0", "1", "x86_64", "linux")
	if _, err := db.Add(h2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	rc, err := eng.RunInbound(context.Background(), target, 0, pkgtype.SenseTriggerIn)
	if err != nil {
		t.Fatalf("RunInbound() error = %v", err)
	}
	if rc != pkgtype.RCOK {
		t.Fatalf("RunInbound() rc = %v, want OK", rc)
	}
	if got := interp.runs["echo triggered"]; got != 1 {
		t.Errorf("trigger script ran %d times, want exactly 1", got)
	}
}

func TestOutboundFiresForEachMatchingDatabasePackage(t *testing.T) {
	db := pkgdb.NewMemoryDB()
	interp := newCountingInterpreter()
	runner := script.NewRunner(interp, nil, nil)
	eng := trigger.NewEngine(db, runner)

	source := header.New("myapp", "0", "1.0", "1", "x86_64", "linux")

	watcher := header.New("watcher", "0", "1.0", "1", "x86_64", "linux")
	watcher.Triggers = []header.TriggerEntry{{Name: "myapp", Sense: pkgtype.SenseTriggerIn, Index: 0}}
	watcher.TriggerScripts[0] = &header.Script{Body: "echo watched"}
	if _, err := db.Add(watcher); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	rc, err := eng.RunOutbound(context.Background(), source, 0, 0, pkgtype.SenseTriggerIn)
	if err != nil {
		t.Fatalf("RunOutbound() error = %v", err)
	}
	if rc != pkgtype.RCOK {
		t.Fatalf("RunOutbound() rc = %v, want OK", rc)
	}
	if got := interp.runs["echo watched"]; got != 1 {
		t.Errorf("outbound trigger ran %d times, want exactly 1", got)
	}
}

func TestHandleOneTriggerSkipsWrongSense(t *testing.T) {
	db := pkgdb.NewMemoryDB()
	interp := newCountingInterpreter()
	runner := script.NewRunner(interp, nil, nil)
	eng := trigger.NewEngine(db, runner)

	source := header.New("myapp", "0", "1.0", "1", "x86_64", "linux")
	watcher := header.New("watcher", "0", "1.0", "1", "x86_64", "linux")
	watcher.Triggers = []header.TriggerEntry{{Name: "myapp", Sense: pkgtype.SenseTriggerUn, Index: 0}}
	watcher.TriggerScripts[0] = &header.Script{Body: "echo watched"}
	if _, err := db.Add(watcher); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Firing with TRIGGERIN sense should not match a TRIGGERUN-only entry.
	rc, err := eng.RunOutbound(context.Background(), source, 0, 0, pkgtype.SenseTriggerIn)
	if err != nil {
		t.Fatalf("RunOutbound() error = %v", err)
	}
	if rc != pkgtype.RCOK {
		t.Fatalf("RunOutbound() rc = %v, want OK", rc)
	}
	if got := interp.runs["echo watched"]; got != 0 {
		t.Errorf("trigger ran %d times, want 0 (sense mismatch)", got)
	}
}
