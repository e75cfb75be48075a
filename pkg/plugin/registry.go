// Package plugin implements the plugin dispatch layer boundary (spec.md
// §6 "to plugins") — the hooks the top-level entry calls around a PSM
// run.
package plugin

import (
	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
)

// Registry notifies registered plugins of lifecycle events around a PSM
// run (spec.md §4.8 top-level entry): "psmPre(plugins, te) -> rc" and
// "psmPost(plugins, te, rc)".
type Registry interface {
	PSMPre(e *element.Element, goal pkgtype.Goal) pkgtype.RC
	PSMPost(e *element.Element, goal pkgtype.Goal, rc pkgtype.RC)
}

// LoggingRegistry is a Registry that only logs lifecycle events; it never
// fails a run, which is the right default when no richer plugin chain is
// configured.
type LoggingRegistry struct{}

// NewLoggingRegistry returns a Registry that logs but never intervenes.
func NewLoggingRegistry() *LoggingRegistry {
	return &LoggingRegistry{}
}

func (r *LoggingRegistry) PSMPre(e *element.Element, goal pkgtype.Goal) pkgtype.RC {
	logging.GetLogger("plugin.registry").Debug().
		Str("nevr", e.Header.NEVR()).
		Str("goal", goal.String()).
		Msg("psmPre")
	return pkgtype.RCOK
}

func (r *LoggingRegistry) PSMPost(e *element.Element, goal pkgtype.Goal, rc pkgtype.RC) {
	logging.GetLogger("plugin.registry").Debug().
		Str("nevr", e.Header.NEVR()).
		Str("goal", goal.String()).
		Str("rc", rc.String()).
		Msg("psmPost")
}

// Chain runs multiple registries in order, short-circuiting PSMPre on the
// first non-OK result and always calling PSMPost on every member.
type Chain []Registry

func (c Chain) PSMPre(e *element.Element, goal pkgtype.Goal) pkgtype.RC {
	for _, r := range c {
		if rc := r.PSMPre(e, goal); rc != pkgtype.RCOK {
			return rc
		}
	}
	return pkgtype.RCOK
}

func (c Chain) PSMPost(e *element.Element, goal pkgtype.Goal, rc pkgtype.RC) {
	for _, r := range c {
		r.PSMPost(e, goal, rc)
	}
}
