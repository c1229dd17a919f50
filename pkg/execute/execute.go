// Package execute runs generated scripts with a local shell or over SSH.
//
// Scripts are never written to the target machine. The bundle (helper
// library plus script) is streamed to `<shell> -s` on standard input and
// extra arguments become the script's positional parameters.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultShell runs scripts when none is configured.
const DefaultShell = "bash"

// waitDelay bounds how long a cancelled run waits for children of the shell
// that still hold its output open.
const waitDelay = 2 * time.Second

// Executor runs a script.
type Executor interface {
	Run(ctx context.Context, script []byte, args []string) error
}

// ErrNoHost is returned when a remote run has no host to connect to.
var ErrNoHost = errors.New("no host given")

// ShellArgs returns the arguments that make a shell read its script from
// standard input and pass args through as positional parameters.
func ShellArgs(args []string) []string {
	return append([]string{"-s", "--"}, args...)
}

// Command returns the remote command line for shell and args, with every
// argument single-quoted.
func Command(shell string, args []string) string {
	if shell == "" {
		shell = DefaultShell
	}
	parts := make([]string, 0, len(args)+3)
	parts = append(parts, shell, "-s", "--")
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Local runs scripts with a shell on this machine.
type Local struct {
	// Shell defaults to DefaultShell.
	Shell string

	// Dir is the working directory. Empty means the current one.
	Dir string

	// Env is appended to the process environment.
	Env []string

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run pipes script to `<shell> -s -- args...` and waits for it to exit.
func (l *Local) Run(ctx context.Context, script []byte, args []string) error {
	shell := l.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, ShellArgs(args)...)
	cmd.Stdin = bytes.NewReader(script)
	cmd.Stdout = writerOr(l.Stdout, os.Stdout)
	cmd.Stderr = writerOr(l.Stderr, os.Stderr)
	cmd.Dir = l.Dir
	cmd.WaitDelay = waitDelay
	if len(l.Env) > 0 {
		cmd.Env = append(os.Environ(), l.Env...)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("run %s: %w", shell, ctx.Err())
		}
		return fmt.Errorf("run %s: %w", shell, err)
	}
	return nil
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
