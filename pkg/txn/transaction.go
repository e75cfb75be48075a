// Package txn implements the transaction set boundary the PSM consumes
// (spec.md §6 "to the transaction set"): flags, filter flags, the
// database handle, color, transaction id, the op-counter table, the
// plugin registry, the script fd, and the notification callback. The
// transaction set as a full container of elements (spec.md §1 Non-goal)
// is not modeled; this type carries only the fields a single PSM run
// reads from it.
package txn

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arthur-debert/pkgpsm/pkg/notify"
	"github.com/arthur-debert/pkgpsm/pkg/pkgdb"
	"github.com/arthur-debert/pkgpsm/pkg/payload"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/plugin"
	"github.com/arthur-debert/pkgpsm/pkg/script"
)

// Transaction is the per-operation context a PSM run is driven against.
type Transaction struct {
	Flags  pkgtype.TransFlags
	Filter pkgtype.FilterFlags

	// Color is 0 for "no color set"; a non-zero value gates the
	// arch/os match refinement in markReplacedInstance (spec.md §4.6).
	Color uint32

	// TID is the transaction id stamped into RPMTAG_INSTALLTID on
	// install (spec.md §4.1 RPMDB_ADD), generated once per Transaction by
	// New unless the caller overwrites it.
	TID string

	DB          pkgdb.Database
	Payload     payload.Engine
	Interpreter script.Interpreter
	Plugins     plugin.Registry

	// ScriptFD is the output sink the stage driver hands to the primary
	// scriptlets it runs (spec.md §4.2). The notification callback cannot
	// supply a different sink, and trigger scriptlets are run with no
	// output sink.
	ScriptFD io.Writer

	NotifyAdapter *notify.Adapter

	mu       sync.Mutex
	opTiming map[pkgtype.OpCounter]time.Duration
}

// New builds a Transaction with a freshly generated TID and zeroed op
// timers. Callers fill in DB/Payload/Interpreter/Plugins/NotifyAdapter
// themselves; New does not pick defaults. A nil DB, Payload or
// Interpreter panics when the PSM first uses it; a nil Plugins is
// replaced by a plugin.LoggingRegistry in psm.Run, and a nil
// NotifyAdapter drops every notification.
func New() *Transaction {
	return &Transaction{
		TID:      uuid.NewString(),
		opTiming: make(map[pkgtype.OpCounter]time.Duration),
	}
}

// HasColor reports whether a transaction-level color has been set,
// gating markReplacedInstance's arch/os match refinement (spec.md §4.6).
func (t *Transaction) HasColor() bool {
	return t.Color != 0
}

// Time runs fn, recording its wall-clock duration against op (spec.md
// §4.1 "time the add under the DB-add op counter", §4.2 "time the
// execution under the SCRIPTLETS op counter"). It implements
// script.OpTimer.
func (t *Transaction) Time(op pkgtype.OpCounter, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	t.mu.Lock()
	t.opTiming[op] += elapsed
	t.mu.Unlock()
	return err
}

// OpTiming returns the accumulated duration recorded against op.
func (t *Transaction) OpTiming(op pkgtype.OpCounter) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opTiming[op]
}
