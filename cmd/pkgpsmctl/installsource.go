package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/sourcepkg"
)

// manifestSourceReader implements sourcepkg.Reader by parsing its fd as
// a manifest file, the same stand-in used by loadManifest for a binary
// package reader (spec.md §1 leaves header/tag-data accessors out of
// scope).
type manifestSourceReader struct{}

func (manifestSourceReader) Read(fd io.ReadCloser) (*header.Header, []string, sourcepkg.SignatureResult, error) {
	data, err := io.ReadAll(fd)
	if err != nil {
		return nil, nil, sourcepkg.SignatureBad, err
	}
	m, err := parseManifest(data)
	if err != nil {
		return nil, nil, sourcepkg.SignatureBad, err
	}

	files := make([]string, len(m.Files))
	for i, f := range m.Files {
		files[i] = f.Path
	}

	h := m.Header
	return &h, files, signatureFromString(m.Source.Signature), nil
}

func signatureFromString(s string) sourcepkg.SignatureResult {
	switch s {
	case "not_trusted":
		return sourcepkg.SignatureNotTrusted
	case "no_key":
		return sourcepkg.SignatureNoKey
	case "bad":
		return sourcepkg.SignatureBad
	default:
		return sourcepkg.SignatureOK
	}
}

// newInstallSourceCmd builds the "install-source" subcommand, driving
// sourcepkg.Install (spec.md §4.5) against a manifest standing in for a
// source package's header and file list.
func newInstallSourceCmd(flags *runtimeFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "install-source <manifest.toml>",
		Short:   "Install a source package described by a manifest file",
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}

			t, closeTxn, err := buildTransaction("source package")
			if err != nil {
				_ = f.Close()
				return err
			}
			defer closeTxn()

			root := flags.root
			if root == "" {
				root = chrootRoot()
			}

			specFile, cookie, rc, err := sourcepkg.Install(context.Background(), t, manifestSourceReader{}, f, root)
			if err != nil {
				return err
			}
			if rc != pkgtype.RCOK {
				return fmt.Errorf("install-source failed: %s", rc)
			}
			fmt.Printf("spec file: %s\ncookie: %s\n", specFile, cookie)
			return nil
		},
	}
}
