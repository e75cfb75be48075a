// Package psm implements the stage driver (spec.md §4.1): the per-run
// context that dispatches on a stage identifier, performs that stage's
// work, and recursively requests the next stage. One PSM is created per
// (transaction, element, goal) and driven through a fixed stage sequence
// by the top-level entry in run.go.
package psm

import (
	"context"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/replacedfiles"
	"github.com/arthur-debert/pkgpsm/pkg/script"
	"github.com/arthur-debert/pkgpsm/pkg/trigger"
	"github.com/arthur-debert/pkgpsm/pkg/txn"
)

// PSM is the per-run context (spec.md §3). It is not reused across
// elements or goals; a fresh one is built by New for each run.
type PSM struct {
	Txn     *txn.Transaction // borrowed
	Element *element.Element // borrowed
	Goal    pkgtype.Goal
	Root    string // chroot-relative filesystem root the payload engine operates under

	// Files is the PSM's own snapshot of the element's file info, taken
	// at construction time (spec.md §3 "files — a snapshot... owned by
	// the PSM for its lifetime").
	Files []element.FileInfo

	InstalledCount  int64
	ScriptArg       int64
	Sense           pkgtype.Sense
	CountCorrection int64

	Amount uint64
	Total  uint64
	What   pkgtype.CallbackKind

	FailedFile string
	Stage      pkgtype.Stage

	// RunRC and RunErr carry the pipeline's accumulated result into FINI,
	// which reports on the run as a whole rather than on any one stage
	// (spec.md §4.1 FINI).
	RunRC  pkgtype.RC
	RunErr error

	Runner  *script.Runner
	Trigger *trigger.Engine
}

// New builds a PSM for one (transaction, element, goal) run. The
// transaction and element are borrowed and must outlive the PSM
// (spec.md §9 "te not refcounted yet").
func New(t *txn.Transaction, e *element.Element, goal pkgtype.Goal, root string) *PSM {
	runner := script.NewRunner(t.Interpreter, t.NotifyAdapter, t)
	p := &PSM{
		Txn:     t,
		Element: e,
		Goal:    goal,
		Root:    root,
		Files:   append([]element.FileInfo(nil), e.Files...),
		Runner:  runner,
		Trigger: trigger.NewEngine(t.DB, runner),
	}
	// PRETRANS/POSTTRANS/VERIFY never run INIT, which is the only stage
	// that otherwise computes ScriptArg; rpm itself always passes these
	// scriptlets arg1 = 1, independent of install count.
	if goal != pkgtype.GoalInstall && goal != pkgtype.GoalErase {
		p.ScriptArg = 1
	}
	return p
}

// Run dispatches on stage, performs that stage's work, and returns its
// result (spec.md §4.1: "given a PSM and a stage id, perform that stage
// and return OK or fail"). CREATE, DESTROY, UNDO and UNKNOWN are
// reserved names with empty bodies (spec.md §9).
func (p *PSM) Run(ctx context.Context, stage pkgtype.Stage) pkgtype.RC {
	p.Stage = stage
	switch stage {
	case pkgtype.StageInit:
		return p.init(ctx)
	case pkgtype.StagePre:
		return p.pre(ctx)
	case pkgtype.StageProcess:
		return p.process(ctx)
	case pkgtype.StagePost:
		return p.post(ctx)
	case pkgtype.StageFini:
		return p.fini(ctx)
	case pkgtype.StageTriggers:
		return p.triggers(ctx)
	case pkgtype.StageImmedTriggers:
		return p.immedTriggers(ctx)
	case pkgtype.StageRPMDBAdd:
		return p.rpmdbAdd(ctx)
	case pkgtype.StageRPMDBRemove:
		return p.rpmdbRemove(ctx)
	default:
		return pkgtype.RCOK
	}
}

func (p *PSM) notify(what pkgtype.CallbackKind, amount, total uint64) {
	p.What = what
	p.Amount = amount
	if p.Txn.NotifyAdapter != nil {
		p.Txn.NotifyAdapter.Notify(what, amount, total)
	}
}

func (p *PSM) fail(err error) pkgtype.RC {
	p.RunErr = err
	return pkgtype.RCFail
}

func (p *PSM) triggers(ctx context.Context) pkgtype.RC {
	rc, err := p.Trigger.RunOutbound(ctx, p.Element.Header, p.InstalledCount, p.CountCorrection, p.Sense)
	if rc != pkgtype.RCOK {
		return p.fail(err)
	}
	return rc
}

func (p *PSM) immedTriggers(ctx context.Context) pkgtype.RC {
	rc, err := p.Trigger.RunInbound(ctx, p.Element.Header, p.CountCorrection, p.Sense)
	if rc != pkgtype.RCOK {
		return p.fail(err)
	}
	return rc
}

func (p *PSM) rpmdbAdd(ctx context.Context) pkgtype.RC {
	_ = ctx
	logger := logging.GetLogger("psm")
	h := p.Element.Header
	if !h.HasInstallTID() {
		h.InstallTID = p.Txn.TID
	}

	var offset uint64
	err := p.Txn.Time(pkgtype.OpDBAdd, func() error {
		var addErr error
		offset, addErr = p.Txn.DB.Add(h)
		return addErr
	})
	if err != nil {
		logger.Error().Err(err).Str("nevr", h.NEVR()).Msg("database add failed")
		return p.fail(err)
	}
	p.Element.SetDBInstance(offset)
	return pkgtype.RCOK
}

func (p *PSM) rpmdbRemove(ctx context.Context) pkgtype.RC {
	_ = ctx
	logger := logging.GetLogger("psm")
	offset := p.Element.DBInstance()
	err := p.Txn.Time(pkgtype.OpDBRemove, func() error {
		return p.Txn.DB.Remove(offset)
	})
	if err != nil {
		logger.Error().Err(err).Uint64("offset", offset).Msg("database remove failed")
		return p.fail(err)
	}
	p.Element.SetDBInstance(0)
	return pkgtype.RCOK
}

// markReplacedFiles runs the replaced-files marker (spec.md §4.4) after a
// successful install POST.
func (p *PSM) markReplacedFiles() {
	replacedfiles.Mark(p.Txn.DB, p.Element)
}
