package psm

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/txn"
)

// init is the INIT stage (spec.md §4.1): logs the run header, queries the
// installed count, and computes ScriptArg/Total for the goal.
func (p *PSM) init(ctx context.Context) pkgtype.RC {
	_ = ctx
	logger := logging.GetLogger("psm")
	h := p.Element.Header
	logger.Info().Msgf("%s: %s has %d files", p.Goal.Name(), h.NEVR(), len(p.Files))

	count, err := p.Txn.DB.CountByName(h.Name)
	if err != nil {
		logger.Error().Err(err).Str("name", h.Name).Msg("installed-count query failed")
		return p.fail(err)
	}
	p.InstalledCount = int64(count)

	switch p.Goal {
	case pkgtype.GoalInstall:
		p.ScriptArg = p.InstalledCount + 1
		total := h.TotalArchiveSize()
		if total == 0 {
			total = 100
		}
		p.Total = total
		if p.Txn.Filter.Has(pkgtype.FilterReplacePkg) {
			MarkReplacedInstance(p.Txn, p.Element)
		}
	case pkgtype.GoalErase:
		p.ScriptArg = p.InstalledCount - 1
		fc := uint64(len(p.Files))
		if fc == 0 {
			fc = 100
		}
		p.Total = fc
	}
	return pkgtype.RCOK
}

// pre is the PRE stage (spec.md §4.1): fires the sense-appropriate
// triggers then the sense-appropriate primary scriptlet, in the order
// dictated by goal.
func (p *PSM) pre(ctx context.Context) pkgtype.RC {
	switch p.Goal {
	case pkgtype.GoalInstall:
		p.Sense = pkgtype.SenseTriggerPrein
		p.CountCorrection = 0
		if !p.Txn.Flags.Has(pkgtype.FlagNoTriggerPrein) {
			if rc := p.Run(ctx, pkgtype.StageTriggers); rc != pkgtype.RCOK {
				return rc
			}
			if rc := p.Run(ctx, pkgtype.StageImmedTriggers); rc != pkgtype.RCOK {
				return rc
			}
		}
		if !p.Txn.Flags.Has(pkgtype.FlagNoPre) {
			rc, err := p.Runner.RunInstScript(ctx, p.Element, pkgtype.TagPrein, p.ScriptArg, p.Txn.ScriptFD)
			if rc != pkgtype.RCOK {
				return p.fail(err)
			}
		}
	case pkgtype.GoalErase:
		p.Sense = pkgtype.SenseTriggerUn
		p.CountCorrection = -1
		if !p.Txn.Flags.Has(pkgtype.FlagNoTriggerUn) {
			if rc := p.Run(ctx, pkgtype.StageImmedTriggers); rc != pkgtype.RCOK {
				return rc
			}
			if rc := p.Run(ctx, pkgtype.StageTriggers); rc != pkgtype.RCOK {
				return rc
			}
		}
		if !p.Txn.Flags.Has(pkgtype.FlagNoPreUn) {
			rc, err := p.Runner.RunInstScript(ctx, p.Element, pkgtype.TagPreun, p.ScriptArg, p.Txn.ScriptFD)
			if rc != pkgtype.RCOK {
				return p.fail(err)
			}
		}
	}
	return pkgtype.RCOK
}

// process is the PROCESS stage (spec.md §4.1): hands the element's files
// to the payload engine and emits the install/uninstall progress
// callback sequence around it.
func (p *PSM) process(ctx context.Context) pkgtype.RC {
	_ = ctx
	logger := logging.GetLogger("psm")

	switch p.Goal {
	case pkgtype.GoalInstall:
		p.notify(pkgtype.CallbackInstStart, 0, p.Total)
		p.notify(pkgtype.CallbackInstProgress, 0, p.Total)

		if len(p.Files) > 0 && !p.Txn.Flags.Has(pkgtype.FlagJustDB) {
			var failedFile string
			err := p.Txn.Time(pkgtype.OpUncompress, func() error {
				var installErr error
				failedFile, installErr = p.Txn.Payload.Install(p.Element, p.Root)
				return installErr
			})
			if err != nil {
				p.FailedFile = failedFile
				if failedFile != "" {
					logger.Error().Err(err).Str("file", failedFile).Msg("unpacking of archive failed on file")
				} else {
					logger.Error().Err(err).Msg("unpacking of archive failed")
				}
				p.notify(pkgtype.CallbackUnpackError, 0, 0)
				return p.fail(err)
			}
		}

		p.notify(pkgtype.CallbackInstProgress, p.Total, p.Total)
		p.notify(pkgtype.CallbackInstStop, p.Total, p.Total)

	case pkgtype.GoalErase:
		if p.Txn.Flags.Has(pkgtype.FlagJustDB) {
			return pkgtype.RCOK
		}
		p.notify(pkgtype.CallbackUninstStart, 0, p.Total)
		p.notify(pkgtype.CallbackUninstProgress, 0, p.Total)

		var failedFile string
		err := p.Txn.Time(pkgtype.OpDigest, func() error {
			var removeErr error
			failedFile, removeErr = p.Txn.Payload.Remove(p.Element, p.Root)
			return removeErr
		})
		if err != nil {
			p.FailedFile = failedFile
			logger.Error().Err(err).Str("file", failedFile).Msg("removing archive contents failed")
			return p.fail(err)
		}

		p.notify(pkgtype.CallbackUninstProgress, p.Total, p.Total)
		p.notify(pkgtype.CallbackUninstStop, p.Total, p.Total)
	}
	return pkgtype.RCOK
}

// post is the POST stage (spec.md §4.1): writes file-state facts back to
// the header, mutates the database, then fires the sense-appropriate
// primary scriptlet and triggers.
func (p *PSM) post(ctx context.Context) pkgtype.RC {
	switch p.Goal {
	case pkgtype.GoalInstall:
		h := p.Element.Header
		h.FileStates = p.Element.FileStates()
		h.InstallTime = uint32(time.Now().Unix())
		h.InstallColor = p.Txn.Color

		if p.Element.DBInstance() != 0 {
			if rc := p.Run(ctx, pkgtype.StageRPMDBRemove); rc != pkgtype.RCOK {
				return rc
			}
		}
		if rc := p.Run(ctx, pkgtype.StageRPMDBAdd); rc != pkgtype.RCOK {
			return rc
		}

		p.Sense = pkgtype.SenseTriggerIn
		p.CountCorrection = 0
		if !p.Txn.Flags.Has(pkgtype.FlagNoPost) {
			rc, err := p.Runner.RunInstScript(ctx, p.Element, pkgtype.TagPostin, p.ScriptArg, p.Txn.ScriptFD)
			if rc != pkgtype.RCOK {
				return p.fail(err)
			}
		}
		if !p.Txn.Flags.Has(pkgtype.FlagNoTriggerIn) {
			if rc := p.Run(ctx, pkgtype.StageTriggers); rc != pkgtype.RCOK {
				return rc
			}
			if rc := p.Run(ctx, pkgtype.StageImmedTriggers); rc != pkgtype.RCOK {
				return rc
			}
		}
		p.markReplacedFiles()

	case pkgtype.GoalErase:
		p.Sense = pkgtype.SenseTriggerPostun
		p.CountCorrection = -1
		if !p.Txn.Flags.Has(pkgtype.FlagNoPostUn) {
			rc, err := p.Runner.RunInstScript(ctx, p.Element, pkgtype.TagPostun, p.ScriptArg, p.Txn.ScriptFD)
			if rc != pkgtype.RCOK {
				return p.fail(err)
			}
		}
		if !p.Txn.Flags.Has(pkgtype.FlagNoTriggerPostun) {
			if rc := p.Run(ctx, pkgtype.StageTriggers); rc != pkgtype.RCOK {
				return rc
			}
		}
		if rc := p.Run(ctx, pkgtype.StageRPMDBRemove); rc != pkgtype.RCOK {
			return rc
		}
	}
	return pkgtype.RCOK
}

// fini is the FINI stage (spec.md §4.1): always runs, reports the final
// error if the run failed, and clears FailedFile. It never itself fails.
func (p *PSM) fini(ctx context.Context) pkgtype.RC {
	_ = ctx
	if p.RunRC != pkgtype.RCOK {
		logger := logging.GetLogger("psm")
		msg := fmt.Sprintf("%s failed", p.Goal.Name())
		if p.FailedFile != "" {
			msg = fmt.Sprintf("%s failed on file %s", p.Goal.Name(), p.FailedFile)
		}
		if p.RunErr != nil {
			msg = fmt.Sprintf("%s: %v", msg, p.RunErr)
		}
		logger.Error().Msg(msg)
		p.notify(pkgtype.CallbackCpioError, 0, 0)
	}
	p.FailedFile = ""
	return pkgtype.RCOK
}

// MarkReplacedInstance implements markReplacedInstance (spec.md §4.6):
// for an install with the REPLACEPKG filter, locate the existing row for
// the exact same NEVR (refined by arch/os when the transaction carries a
// color) and record it as the element's current database instance so
// POST removes it before adding the new header.
func MarkReplacedInstance(t *txn.Transaction, e *element.Element) {
	h := e.Header
	offset, ok, err := t.DB.FindReplaceable(h.Name, h.Epoch, h.Version, h.Release, h.Arch, h.OS, t.HasColor())
	if err != nil {
		logging.GetLogger("psm").Warn().Err(err).Str("name", h.Name).Msg("markReplacedInstance lookup failed")
		return
	}
	if !ok {
		return
	}
	e.SetDBInstance(offset)
}
