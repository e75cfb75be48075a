package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/psm"
)

// newEraseCmd builds the "erase" subcommand: drive psm.Run with
// GoalErase against a manifest-described element.
func newEraseCmd(flags *runtimeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "erase <manifest.toml>",
		Short:   "Erase the package described by a manifest file",
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

			root := flags.root
			if root == "" {
				root = chrootRoot()
			}

			rc := psm.Run(context.Background(), t, el, pkgtype.GoalErase, root)
			printSummary(pkgtype.GoalErase, el, t, rc)

			if report := reportFlag(cmd); report != "" {
				if err := writeAuditReport(report, t.TID, pkgtype.GoalErase, el, rc, t); err != nil {
					return err
				}
			}

			if rc != pkgtype.RCOK {
				return fmt.Errorf("erase failed: %s", rc)
			}
			return nil
		},
	}

	cmd.Flags().String("report", "", "write an XML transaction report to this path")

	return cmd
}
