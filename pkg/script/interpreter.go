// Package script implements the scriptlet invocation contract (spec.md
// §4.2): the external interpreter boundary plus the runner that adapts a
// package-header scriptlet to it, mapping the interpreter's result to OK
// or fail according to whether the tag is advisory or blocking.
package script

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/arthur-debert/pkgpsm/pkg/errors"
	"github.com/arthur-debert/pkgpsm/pkg/header"
	"github.com/arthur-debert/pkgpsm/pkg/logging"
	"github.com/arthur-debert/pkgpsm/pkg/pkgtype"
)

// Interpreter compiles and runs a scriptlet, given its invocation
// arguments (spec.md §6 "to the scriptlet engine"). It is the PSM's only
// way to execute a package-supplied shell fragment.
type Interpreter interface {
	Run(ctx context.Context, s *header.Script, arg1, arg2 int64, prefixes []string, out io.Writer) (pkgtype.RC, error)
}

// ShellInterpreter runs a scriptlet's body through its declared
// interpreter (defaulting to /bin/sh), passing arg1/arg2 as positional
// parameters the way rpm's scriptlets expect them.
type ShellInterpreter struct {
	// Timeout bounds how long a single scriptlet may run before it is
	// killed and treated as a failure. Zero means no timeout.
	Timeout time.Duration
}

// NewShellInterpreter returns a ShellInterpreter with the given timeout.
func NewShellInterpreter(timeout time.Duration) *ShellInterpreter {
	return &ShellInterpreter{Timeout: timeout}
}

func (si *ShellInterpreter) Run(ctx context.Context, s *header.Script, arg1, arg2 int64, prefixes []string, out io.Writer) (pkgtype.RC, error) {
	logger := logging.GetLogger("script.shell")
	if s == nil || s.Body == "" {
		return pkgtype.RCOK, nil
	}

	interp := s.Interpreter
	if interp == "" {
		interp = "/bin/sh"
	}

	if si.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, si.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, interp, "-c", s.Body, interp,
		strconv.FormatInt(arg1, 10), strconv.FormatInt(arg2, 10))
	cmd.Env = append(os.Environ(), "RPM_INSTALL_PREFIX0=")
	for i, p := range prefixes {
		cmd.Env = append(cmd.Env, envName(i)+"="+p)
	}
	if out != nil {
		cmd.Stdout = out
		cmd.Stderr = out
	}

	err := cmd.Run()
	if err != nil {
		logger.Debug().Err(err).Str("interpreter", interp).Msg("scriptlet exited non-zero")
		return pkgtype.RCFail, errors.Wrap(err, errors.ErrScriptRun, "scriptlet execution failed")
	}
	return pkgtype.RCOK, nil
}

func envName(i int) string {
	return "RPM_INSTALL_PREFIX" + strconv.Itoa(i)
}
