package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/arthur-debert/pkgpsm/pkg/audit"
	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/errors"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/txn"
)

// printSummary renders a one-row transaction summary table, grounded on
// the teacher's use of github.com/jedib0t/go-pretty/v6/table for its own
// status output (pkg/commands/status.go's table renderers), generalized
// from pack status rows to a single package-transaction outcome.
func printSummary(goal pkgtype.Goal, el *element.Element, t *txn.Transaction, rc pkgtype.RC) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Package", "Goal", "Files", "Size", "Result"})
	tw.AppendRow(table.Row{
		el.Header.NEVR(),
		goal.Name(),
		el.FileCount(),
		humanize.Bytes(el.Header.TotalArchiveSize()),
		rc.String(),
	})
	tw.Render()

	opCounter := pkgtype.OpInstall
	if goal == pkgtype.GoalErase {
		opCounter = pkgtype.OpErase
	}
	fmt.Printf("elapsed: %s\n", t.OpTiming(opCounter))
}

// writeAuditReport exports the run's audit.Record as XML to path, used
// behind the --report flag.
func writeAuditReport(path string, tid string, goal pkgtype.Goal, el *element.Element, rc pkgtype.RC, t *txn.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrReportWrite, "creating report file %s", path)
	}
	defer f.Close()

	rec := audit.Record{
		TID:  tid,
		Goal: goal.Name(),
		NEVR: el.Header.NEVR(),
		RC:   rc,
		OpTimings: map[pkgtype.OpCounter]time.Duration{
			pkgtype.OpInstall:    t.OpTiming(pkgtype.OpInstall),
			pkgtype.OpErase:      t.OpTiming(pkgtype.OpErase),
			pkgtype.OpScriptlets: t.OpTiming(pkgtype.OpScriptlets),
		},
	}
	if err := (audit.XMLExporter{}).Export(f, rec); err != nil {
		return errors.Wrap(err, errors.ErrReportWrite, "exporting transaction report")
	}
	return nil
}
