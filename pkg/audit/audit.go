// Package audit implements the transaction audit export (SPEC_FULL.md
// Domain Stack): a record of one PSM run's outcome and op-counter timings,
// serialized to XML for external tooling to consume.
package audit

import (
	"io"
	"sort"
	"time"

	"github.com/beevik/etree"

	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
)

// Record summarizes one top-level PSM run (spec.md §4.8) for export.
type Record struct {
	TID       string
	Goal      string
	NEVR      string
	RC        pkgtype.RC
	OpTimings map[pkgtype.OpCounter]time.Duration
}

// Exporter writes a Record out in some external format.
type Exporter interface {
	Export(w io.Writer, rec Record) error
}

// XMLExporter renders a Record as an indented XML document.
type XMLExporter struct{}

// Export implements Exporter.
func (XMLExporter) Export(w io.Writer, rec Record) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("transaction")
	root.CreateAttr("tid", rec.TID)
	root.CreateAttr("goal", rec.Goal)

	pkg := root.CreateElement("package")
	pkg.CreateAttr("nevr", rec.NEVR)
	pkg.CreateAttr("rc", rec.RC.String())

	timings := root.CreateElement("timings")
	ops := make([]pkgtype.OpCounter, 0, len(rec.OpTimings))
	for op := range rec.OpTimings {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	for _, op := range ops {
		entry := timings.CreateElement("op")
		entry.CreateAttr("name", op.String())
		entry.CreateAttr("duration", rec.OpTimings[op].String())
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}
