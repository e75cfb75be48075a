//go:build !unix

package chroot

import "github.com/arthur-debert/pkgpsm/pkg/errors"

// UnixScope is unavailable on non-unix platforms; Enter/Exit always fail
// rather than silently skipping the chroot.
type UnixScope struct {
	root string
}

func (s *UnixScope) Enter() error {
	return errors.New(errors.ErrChrootEnter, "chroot is only supported on unix platforms")
}

func (s *UnixScope) Exit() error {
	return errors.New(errors.ErrChrootExit, "chroot is only supported on unix platforms")
}
