// Package sourcepkg implements installSourcePackage (spec.md §4.5): a
// specialized top-level entry that validates a source package, synthesizes
// a single install element for it, and runs only the payload stage.
package sourcepkg

import (
	"context"
	"io"

	"github.com/arthur-debert/pkgpsm/pkg/element"
	"github.com/arthur-debert/pkgpsm/pkg/errors"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/payload"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
	"github.com/arthur-debert/pkgpsm/pkg/psm"
	"github.com/arthur-debert/pkgpsm/pkg/txn"
)

// SignatureResult is the outcome of reading a package's signature block.
// Source-package install tolerates a package with no trusted key, but
// not one that fails verification outright (spec.md §4.5 step 1).
type SignatureResult int

const (
	SignatureOK SignatureResult = iota
	SignatureNotTrusted
	SignatureNoKey
	SignatureBad
)

// Reader reads a package from a file descriptor, returning its header,
// the paths of the files its payload carries, and the signature check
// result. This is the "Header/tag-data accessors" collaborator spec.md
// §1 places out of scope, consumed here only by interface.
type Reader interface {
	Read(fd io.ReadCloser) (h *header.Header, files []string, sig SignatureResult, err error)
}

// BuiltinFeatures returns the rpmlib(...) feature set this implementation
// satisfies, checked against a source package's required-features list
// (spec.md §4.5 step 3).
func BuiltinFeatures() map[string]bool {
	return map[string]bool{
		"rpmlib(CompressedFileNames)":    true,
		"rpmlib(PayloadFilesHavePrefix)": true,
		"rpmlib(VersionedDependencies)":  true,
		"rpmlib(PayloadIsXz)":            true,
	}
}

// Install implements installSourcePackage end to end (spec.md §4.5).
// On success it returns the spec file's path and the header's COOKIE.
func Install(ctx context.Context, t *txn.Transaction, reader Reader, fd io.ReadCloser, root string) (specFile, cookie string, rc pkgtype.RC, err error) {
	logger := logging.GetLogger("sourcepkg")

	h, files, sig, err := reader.Read(fd)
	if err != nil {
		return "", "", pkgtype.RCFail, errors.Wrap(err, errors.ErrSourcePkgRead, "reading source package")
	}
	if sig == SignatureBad {
		return "", "", pkgtype.RCFail, errors.New(errors.ErrSourcePkgRead, "signature verification failed")
	}

	if !h.IsSourcePackage {
		return "", "", pkgtype.RCFail, errors.New(errors.ErrSourcePkgNotSource, "package is not a source package")
	}

	builtin := BuiltinFeatures()
	var missing []string
	for _, feat := range h.RequiredRpmlib {
		if !builtin[feat] {
			missing = append(missing, feat)
		}
	}
	if len(missing) > 0 {
		for _, feat := range missing {
			logger.Error().Str("feature", feat).Msg("source package requires unavailable rpmlib feature")
		}
		return "", "", pkgtype.RCFail, errors.Newf(errors.ErrSourcePkgRpmlib, "missing rpmlib features: %v", missing)
	}

	if h.SpecFileIndex < 0 || h.SpecFileIndex >= len(files) {
		return "", "", pkgtype.RCFail, errors.New(errors.ErrSourcePkgNoSpecFile, "source package has no spec file")
	}

	e := element.New(h)
	e.Fd = fd
	e.Files = make([]element.FileInfo, len(files))
	for i, path := range files {
		e.Files[i] = element.FileInfo{Path: path}
	}
	e.SetFileCreateAll(byte(payload.FileStateCreate))

	p := psm.New(t, e, pkgtype.GoalInstall, root)
	total := h.TotalArchiveSize()
	if total == 0 {
		total = 100
	}
	p.Total = total

	processRC := p.Run(ctx, pkgtype.StageProcess)
	p.RunRC = processRC
	p.Run(ctx, pkgtype.StageFini)

	if processRC != pkgtype.RCOK {
		return "", "", processRC, p.RunErr
	}

	return e.Files[h.SpecFileIndex].Path, h.Cookie, pkgtype.RCOK, nil
}
