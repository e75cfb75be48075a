// Package notify implements the progress/notification adapter (spec.md
// §4.7): it coalesces the stage driver's progress callbacks down to one
// emission per meaningful delta, and hands the result to a
// transaction-supplied callback.
package notify

import "github.com/arthur-debert/pkgpsm/pkg/pkgtype"

// Callback is the transaction's notification sink, invoked once per
// meaningful change.
type Callback func(what pkgtype.CallbackKind, amount, total uint64)

// Adapter tracks the last (what, amount) pair emitted and suppresses
// repeats, per spec.md §4.7: "a notification is emitted only when amount
// or what actually changed."
type Adapter struct {
	cb       Callback
	prevWhat pkgtype.CallbackKind
	prevAmt  uint64
	started  bool
}

// New returns an Adapter that forwards changed events to cb. A nil cb is
// valid and simply discards every notification.
func New(cb Callback) *Adapter {
	return &Adapter{cb: cb}
}

// Notify reports a progress event. Per spec.md §4.7 and §8 ("amount is
// non-decreasing by contract; calls with a smaller amount are silently
// ignored in their amount-delta but may still update what"), a smaller
// amount never re-triggers emission on its own, but a genuine change of
// what still does.
func (a *Adapter) Notify(what pkgtype.CallbackKind, amount, total uint64) {
	changed := !a.started || amount > a.prevAmt || (what != pkgtype.CallbackNone && what != a.prevWhat)
	if !changed {
		return
	}
	a.started = true
	if amount > a.prevAmt {
		a.prevAmt = amount
	}
	a.prevWhat = what
	if a.cb != nil {
		a.cb(what, a.prevAmt, total)
	}
}

// Reset clears the adapter's memory of prior emissions, used between
// successive PSM runs sharing one transaction-level callback so each
// run's "amount resets to zero" is observable again.
func (a *Adapter) Reset() {
	a.started = false
	a.prevAmt = 0
	a.prevWhat = pkgtype.CallbackNone
}
