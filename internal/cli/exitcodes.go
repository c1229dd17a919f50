package cli

import (
	"errors"
	"os/exec"

	"golang.org/x/crypto/ssh"

	"github.com/tehprofessor/corg/internal/configloader"
	"github.com/tehprofessor/corg/pkg/fsutil"
	"github.com/tehprofessor/corg/pkg/runner"
)

// Exit codes for corg.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates a runbook failed to convert or a script failed.
	ExitFailure = 1

	// ExitStaleScripts indicates `convert --check` found out-of-date scripts.
	ExitStaleScripts = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// Sentinel errors that select an exit code.
var (
	// ErrStaleScripts is returned by `convert --check` when scripts differ
	// from their runbooks.
	ErrStaleScripts = errors.New("scripts are out of date")

	// ErrConversionFailed is returned when at least one runbook failed.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrConfig is returned when configuration cannot be loaded.
	ErrConfig = errors.New("failed to load configuration")

	// ErrInvalidUsage is returned for bad arguments.
	ErrInvalidUsage = errors.New("invalid usage")
)

// ExitCode maps an error returned by a command to a process exit code.
// A script that exits non-zero passes its own status through.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}

	var sshErr *ssh.ExitError
	if errors.As(err, &sshErr) && sshErr.ExitStatus() > 0 {
		return sshErr.ExitStatus()
	}

	var validationErr *configloader.ValidationError

	switch {
	case errors.Is(err, ErrStaleScripts):
		return ExitStaleScripts
	case errors.Is(err, ErrConversionFailed):
		return ExitFailure
	case errors.Is(err, ErrConfig), errors.As(err, &validationErr):
		return ExitConfigError
	case errors.Is(err, ErrInvalidUsage), errors.Is(err, runner.ErrDocumentNotFound):
		return ExitInvalidUsage
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory):
		return ExitIOError
	default:
		return ExitFailure
	}
}

// IsReported reports whether err has already been shown to the user and
// only selects the exit code.
func IsReported(err error) bool {
	return errors.Is(err, ErrStaleScripts) || errors.Is(err, ErrConversionFailed)
}
