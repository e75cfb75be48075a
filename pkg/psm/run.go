package psm

import (
	"context"

	"github.com/arthur-debert/pkgpsm/pkg/chroot"
	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/plugin"
	"github.com/arthur-debert/pkgpsm/pkg/txn"
)

// Run is the top-level entry (spec.md §4.8, §6): "run(ts, te, goal) ->
// rc", the sole lifecycle entry for an in-transaction element.
func Run(ctx context.Context, t *txn.Transaction, e *element.Element, goal pkgtype.Goal, root string) pkgtype.RC {
	if t.Flags.Has(pkgtype.FlagTest) {
		return pkgtype.RCOK
	}

	scope := chroot.NewScope(root)
	if err := scope.Enter(); err != nil {
		logging.GetLogger("psm.run").Error().Err(err).Str("root", root).Msg("chroot enter failed")
		return pkgtype.RCFail
	}
	defer func() {
		if err := scope.Exit(); err != nil {
			logging.GetLogger("psm.run").Error().Err(err).Str("root", root).Msg("chroot exit failed")
		}
	}()

	// Once the scope is entered the target root is "/" as seen by this
	// process, so that is the root the payload engine works under.
	p := New(t, e, goal, "/")

	switch goal {
	case pkgtype.GoalInstall, pkgtype.GoalErase:
		return runPipeline(ctx, t, p, e, goal)
	case pkgtype.GoalPretrans:
		rc, _ := p.Runner.RunInstScript(ctx, e, pkgtype.TagPretrans, p.ScriptArg, t.ScriptFD)
		return rc
	case pkgtype.GoalPosttrans:
		rc, _ := p.Runner.RunInstScript(ctx, e, pkgtype.TagPosttrans, p.ScriptArg, t.ScriptFD)
		return rc
	case pkgtype.GoalVerify:
		rc, _ := p.Runner.RunInstScript(ctx, e, pkgtype.TagVerify, p.ScriptArg, t.ScriptFD)
		return rc
	default:
		return pkgtype.RCOK
	}
}

// runPipeline drives INIT -> PRE -> PROCESS -> POST, short-circuiting on
// the first failure, then unconditionally runs FINI, all wrapped in the
// plugin pre/post hooks and timed under the goal's op counter (spec.md
// §4.8 step 2).
func runPipeline(ctx context.Context, t *txn.Transaction, p *PSM, e *element.Element, goal pkgtype.Goal) pkgtype.RC {
	plugins := t.Plugins
	if plugins == nil {
		plugins = plugin.NewLoggingRegistry()
	}

	if rc := plugins.PSMPre(e, goal); rc != pkgtype.RCOK {
		plugins.PSMPost(e, goal, rc)
		return rc
	}

	opCounter := pkgtype.OpInstall
	if goal == pkgtype.GoalErase {
		opCounter = pkgtype.OpErase
	}

	var rc pkgtype.RC
	_ = t.Time(opCounter, func() error {
		rc = stagePipeline(ctx, p)
		return nil
	})

	p.RunRC = rc
	p.Run(ctx, pkgtype.StageFini)

	plugins.PSMPost(e, goal, rc)
	return rc
}

func stagePipeline(ctx context.Context, p *PSM) pkgtype.RC {
	for _, stage := range []pkgtype.Stage{
		pkgtype.StageInit,
		pkgtype.StagePre,
		pkgtype.StageProcess,
		pkgtype.StagePost,
	} {
		if rc := p.Run(ctx, stage); rc != pkgtype.RCOK {
			return rc
		}
	}
	return pkgtype.RCOK
}
