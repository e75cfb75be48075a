package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/arthur-debert/pkgpsm/pkg/notify"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
)

// newCLINotifyAdapter wires a notify.Adapter into a terminal progress
// bar when stdout is a TTY; otherwise it returns an adapter with no
// callback, which discards every notification. This is how a CLI driver
// narrates a long-running install/erase without depending on the renderer
// abstraction the teacher builds for dotfiles output.
func newCLINotifyAdapter(label string, isTTY func() bool) *notify.Adapter {
	if !isTTY() {
		return notify.New(nil)
	}

	var bar *progressbar.ProgressBar
	return notify.New(func(what pkgtype.CallbackKind, amount, total uint64) {
		switch what {
		case pkgtype.CallbackInstStart, pkgtype.CallbackUninstStart:
			bar = progressbar.NewOptions64(int64(total),
				progressbar.OptionSetDescription(label),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowCount(),
			)
		case pkgtype.CallbackInstProgress, pkgtype.CallbackUninstProgress:
			if bar != nil {
				_ = bar.Set64(int64(amount))
			}
		case pkgtype.CallbackInstStop, pkgtype.CallbackUninstStop:
			if bar != nil {
				_ = bar.Finish()
			}
		}
	})
}

func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
