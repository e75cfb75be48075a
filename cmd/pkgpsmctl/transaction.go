package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pkgpsm/pkg/payload"
	"github.com/arthur-debert/pkgpsm/pkg/pkgdb"
	"github.com/arthur-debert/pkgpsm/pkg/script"
	"github.com/arthur-debert/pkgpsm/pkg/txn"
)

// buildTransaction assembles a txn.Transaction from the resolved
// configuration: a SQLite-backed database at the configured path, a
// shell interpreter bounded by the configured timeout, and the synthfs
// payload engine, the concrete collaborators every pkgpsmctl subcommand
// drives the PSM with.
func buildTransaction(label string) (*txn.Transaction, func(), error) {
	_, cfg := defaultPathsConfig()

	db, err := pkgdb.OpenSQLiteDB(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	t := txn.New()
	t.Flags = cfg.Transaction.Flags()
	t.DB = db
	t.Payload = payload.NewSynthfsEngine()
	t.Interpreter = script.NewShellInterpreter(cfg.Script.Timeout())
	t.ScriptFD = os.Stdout
	t.NotifyAdapter = newCLINotifyAdapter(label, stdoutIsTTY)

	return t, func() { _ = db.Close() }, nil
}

func chrootRoot() string {
	_, cfg := defaultPathsConfig()
	return cfg.Chroot.Root
}

func reportFlag(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("report")
	return v
}
