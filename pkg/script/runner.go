package script

import (
	"context"
	"io"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/notify"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
)

// OpTimer times a block of work against one of the transaction's op
// counters (spec.md §4.2 "time the execution under the SCRIPTLETS op
// counter"). Defined here, rather than importing the transaction package,
// to keep script a leaf in the dependency order (spec.md §2).
type OpTimer interface {
	Time(op pkgtype.OpCounter, fn func() error) error
}

// Runner adapts a package-header scriptlet to an Interpreter, applying
// the advisory/blocking result-mapping rules of spec.md §4.2.
type Runner struct {
	Interpreter Interpreter
	Notify      *notify.Adapter
	Timer       OpTimer
}

// NewRunner builds a Runner. notifyAdapter and timer may be nil, in which
// case notifications and timing are skipped (used by tests exercising the
// runner in isolation).
func NewRunner(interp Interpreter, notifyAdapter *notify.Adapter, timer OpTimer) *Runner {
	return &Runner{Interpreter: interp, Notify: notifyAdapter, Timer: timer}
}

// Run executes one scriptlet under the given tag, implementing spec.md
// §4.2's SCRIPT_START/STOP/ERROR emission, advisory-vs-blocking result
// mapping, and SCRIPTLETS op timing. Output goes to capture as given; the
// SCRIPT_START notification cannot substitute another sink.
func (r *Runner) Run(ctx context.Context, tag pkgtype.ScriptTag, s *header.Script, arg1, arg2 int64, prefixes []string, capture io.Writer) (pkgtype.RC, error) {
	logger := logging.GetLogger("script.runner")

	r.notify(pkgtype.CallbackScriptStart, 0, 0)

	var rc pkgtype.RC
	var runErr error
	timed := func() error {
		rc, runErr = r.Interpreter.Run(ctx, s, arg1, arg2, prefixes, capture)
		return runErr
	}
	if r.Timer != nil {
		_ = r.Timer.Time(pkgtype.OpScriptlets, timed)
	} else {
		_ = timed()
	}

	if rc != pkgtype.RCOK {
		logger.Warn().Str("tag", string(tag)).Err(runErr).Msg("scriptlet returned non-OK")
		r.notify(pkgtype.CallbackScriptError, 0, 0)
	}

	stopStatus := rc
	if rc != pkgtype.RCOK && !tag.IsBlocking() {
		// spec.md §4.2: "SCRIPT_STOP... status is NOTFOUND if the script
		// failed but is advisory, else the real rc." §9 calls this
		// load-bearing: do not collapse it to plain OK.
		stopStatus = pkgtype.RCNotFound
	}
	r.notifyStop(stopStatus)

	if rc != pkgtype.RCOK && !tag.IsBlocking() {
		return pkgtype.RCOK, nil
	}
	return rc, runErr
}

func (r *Runner) notify(kind pkgtype.CallbackKind, amount, total uint64) {
	if r.Notify != nil {
		r.Notify.Notify(kind, amount, total)
	}
}

// notifyStop carries the mapped stop status as the "amount" channel is
// unused for script callbacks; SCRIPT_STOP's payload is the status, not a
// progress amount, so it is threaded through as total.
func (r *Runner) notifyStop(status pkgtype.RC) {
	if r.Notify != nil {
		r.Notify.Notify(pkgtype.CallbackScriptStop, 0, uint64(status))
	}
}

// RunInstScript is the runInstScript convenience wrapper from spec.md
// §4.2: reads the named script from the element header along with its
// install prefixes, runs it with arg1 = scriptArg, arg2 = -1, and is a
// no-op if the tag has no script.
func (r *Runner) RunInstScript(ctx context.Context, e *element.Element, tag pkgtype.ScriptTag, scriptArg int64, capture io.Writer) (pkgtype.RC, error) {
	s := e.Header.ScriptFor(tag)
	if s == nil {
		return pkgtype.RCOK, nil
	}
	return r.Run(ctx, tag, s, scriptArg, -1, e.Header.InstPrefixes, capture)
}
