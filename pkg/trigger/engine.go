// Package trigger implements the trigger engine (spec.md §4.3): the two
// dual operations that fire outbound triggers (other packages' triggers
// this element activates) and inbound triggers (this element's own
// triggers, fired by already-installed packages), plus the shared
// handleOneTrigger matching logic.
package trigger

import (
	"context"

	"github.com/arthur-debert/pkgpsm/pkg/errors"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/pkgdb"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/script"
)

// Engine fires trigger scriptlets against the installed-package database.
type Engine struct {
	DB     pkgdb.Database
	Runner *script.Runner
}

// NewEngine builds a trigger Engine.
func NewEngine(db pkgdb.Database, runner *script.Runner) *Engine {
	return &Engine{DB: db, Runner: runner}
}

// RunOutbound fires other installed packages' triggers that this
// element's state change activates (spec.md §4.3 runTriggers).
//
// installedCount is this element's own installed-count (captured at
// INIT); countCorrection is the PSM's current count_correction. Per
// spec.md §4.3/§9, nested handleOneTrigger calls made from here must see
// count_correction as 0 ("nested trigger scripts see themselves at their
// true install counts") — RunOutbound takes care of that internally, so
// the caller always passes its real count_correction.
func (e *Engine) RunOutbound(ctx context.Context, source *header.Header, installedCount int64, countCorrection int64, sense pkgtype.Sense) (pkgtype.RC, error) {
	logger := logging.GetLogger("trigger.outbound")

	arg2 := installedCount + countCorrection
	if arg2 < 0 {
		return pkgtype.RCNotFound, nil
	}

	it, err := e.DB.IterateByTriggerName(source.Name)
	if err != nil {
		return pkgtype.RCFail, errors.Wrap(err, errors.ErrTriggerRun, "iterating by trigger name")
	}
	defer it.Close()

	overall := pkgtype.RCOK
	for it.Next() {
		target := it.Header()
		rc, err := e.handleOneTrigger(ctx, source, target, sense, arg2, 0, nil)
		if rc != pkgtype.RCOK {
			logger.Warn().Err(err).Str("target", target.Name).Msg("outbound trigger invocation failed")
			overall = rc
		}
	}
	return overall, nil
}

// RunInbound fires this element's own triggers, activated by packages
// already present in the database (spec.md §4.3 runImmedTriggers).
func (e *Engine) RunInbound(ctx context.Context, target *header.Header, countCorrection int64, sense pkgtype.Sense) (pkgtype.RC, error) {
	if len(target.Triggers) == 0 {
		return pkgtype.RCOK, nil
	}

	maxIndex := uint32(0)
	for _, te := range target.Triggers {
		if te.Index+1 > maxIndex {
			maxIndex = te.Index + 1
		}
	}
	triggersRun := make([]bool, maxIndex)

	overall := pkgtype.RCOK
	var lastErr error
	for _, entry := range target.Triggers {
		if triggersRun[entry.Index] {
			continue
		}
		count, err := e.DB.CountByName(entry.Name)
		if err != nil {
			return pkgtype.RCFail, errors.Wrap(err, errors.ErrTriggerRun, "counting trigger source packages")
		}
		it, err := e.DB.IterateByName(entry.Name)
		if err != nil {
			return pkgtype.RCFail, errors.Wrap(err, errors.ErrTriggerRun, "iterating trigger source packages")
		}
		for it.Next() {
			source := it.Header()
			rc, invokeErr := e.handleOneTrigger(ctx, source, target, sense, int64(count), countCorrection, triggersRun)
			if rc != pkgtype.RCOK {
				overall = rc
				lastErr = invokeErr
			}
		}
		it.Close()
	}
	return overall, lastErr
}

// handleOneTrigger walks target's trigger dependency list looking for an
// entry matching source, firing at most one scriptlet (spec.md §4.3
// handleOneTrigger, steps 1-9).
func (e *Engine) handleOneTrigger(ctx context.Context, source, target *header.Header, sense pkgtype.Sense, arg2, countCorrection int64, bitmap []bool) (pkgtype.RC, error) {
	for _, entry := range target.Triggers {
		if entry.Sense&sense == 0 {
			continue
		}
		if entry.Name != source.Name {
			continue
		}
		if !source.AnyProvides(entry.Name) {
			continue
		}
		tix := entry.Index
		if bitmap != nil {
			if int(tix) >= len(bitmap) {
				continue
			}
			if bitmap[tix] {
				continue
			}
		}

		count, err := e.DB.CountByName(target.Name)
		if err != nil {
			return pkgtype.RCFail, errors.Wrap(err, errors.ErrTriggerCount, "counting target installs")
		}
		arg1 := int64(count) + countCorrection
		if arg1 < 0 {
			return pkgtype.RCFail, errors.Newf(errors.ErrTriggerCount, "negative trigger arg1 for %s", target.Name)
		}

		s := target.TriggerScriptAt(tix)
		tag := pkgtype.TriggerTag(sense)
		rc, runErr := e.Runner.Run(ctx, tag, s, arg1, arg2, target.InstPrefixes, nil)

		if bitmap != nil && int(tix) < len(bitmap) {
			bitmap[tix] = true
		}
		// Break after the first firing: each (source, target) pair fires
		// at most once (spec.md §4.3 step 9).
		return rc, runErr
	}
	return pkgtype.RCOK, nil
}
