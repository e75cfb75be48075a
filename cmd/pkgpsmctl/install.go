package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/psm"
)

// newInstallCmd builds the "install" subcommand: drive psm.Run with
// GoalInstall against a manifest-described element.
func newInstallCmd(flags *runtimeFlags) *cobra.Command {
	var replacePkg bool

	cmd := &cobra.Command{
		Use:     "install <manifest.toml>",
		Short:   "Install the package described by a manifest file",
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			el, err := loadManifest(args[0])
			if err != nil {
				return err
			}

			t, closeTxn, err := buildTransaction(el.Header.NEVR())
			if err != nil {
				return err
			}
			defer closeTxn()
			if replacePkg {
				t.Filter |= pkgtype.FilterReplacePkg
			}

			root := flags.root
			if root == "" {
				root = chrootRoot()
			}

			rc := psm.Run(context.Background(), t, el, pkgtype.GoalInstall, root)
			printSummary(pkgtype.GoalInstall, el, t, rc)

			if report := reportFlag(cmd); report != "" {
				if err := writeAuditReport(report, t.TID, pkgtype.GoalInstall, el, rc, t); err != nil {
					return err
				}
			}

			if rc != pkgtype.RCOK {
				return fmt.Errorf("install failed: %s", rc)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&replacePkg, "replace-pkg", false, "allow reinstalling the exact same NEVR, replacing its existing database row")
	cmd.Flags().String("report", "", "write an XML transaction report to this path")

	return cmd
}
