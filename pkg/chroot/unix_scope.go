//go:build unix

package chroot

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/arthur-debert/pkgpsm/pkg/errors"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
)

// UnixScope chroots into a directory for the run's duration, grounded on
// gravitational-gravity/lib/system/chroot.go's unix.Chroot +
// unix.Chdir("/") pair.
type UnixScope struct {
	root    string
	prevDir string
}

// Enter chroots into root and changes the working directory to the new
// root, remembering the caller's prior working directory for Exit.
func (s *UnixScope) Enter() error {
	logger := logging.GetLogger("chroot")
	wd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrChrootEnter, "reading current directory before chroot")
	}
	s.prevDir = wd

	if err := unix.Chroot(s.root); err != nil {
		return errors.Wrap(err, errors.ErrChrootEnter, "entering chroot")
	}
	if err := unix.Chdir("/"); err != nil {
		return errors.Wrap(err, errors.ErrChrootEnter, "changing to new root")
	}
	logger.Debug().Str("root", s.root).Msg("entered chroot")
	return nil
}

// Exit chroots back to the real root and restores the caller's working
// directory. This only works while still privileged, same caveat the
// original rpm chroot dance carries.
func (s *UnixScope) Exit() error {
	logger := logging.GetLogger("chroot")
	if err := unix.Chroot("."); err != nil {
		return errors.Wrap(err, errors.ErrChrootExit, "exiting chroot")
	}
	if s.prevDir != "" {
		if err := os.Chdir(s.prevDir); err != nil {
			return errors.Wrap(err, errors.ErrChrootExit, "restoring working directory")
		}
	}
	logger.Debug().Str("root", s.root).Msg("exited chroot")
	return nil
}
