// Package helper ships the shell library that generated scripts call into.
//
// Scripts emit corg_announce, corg_debug and corg_info calls but never
// define them. The definitions live in corg-logger.sh, which is written next
// to the scripts and prepended to a script before it is run.
package helper

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/tehprofessor/corg/pkg/fsutil"
)

// DefaultPath is where the helper is written, relative to the script
// directory.
const DefaultPath = "utils/corg-logger.sh"

const (
	frameBegin = "\n# - start logger:\n"
	frameEnd   = "\n# - end logger:\n"
)

//go:embed corg-logger.sh
var logger []byte

// Functions lists the logging functions the helper defines.
var Functions = []string{
	"corg_announce",
	"corg_debug",
	"corg_info",
	"corg_success",
	"corg_warning",
	"corg_error",
	"corg_trace",
}

// Script returns the helper library framed by its begin and end markers.
func Script() []byte {
	var b bytes.Buffer
	b.Grow(len(frameBegin) + len(logger) + len(frameEnd))
	b.WriteString(frameBegin)
	b.Write(logger)
	b.WriteString(frameEnd)
	return b.Bytes()
}

// Write writes the helper library to path, creating parent directories.
// It reports whether the file changed.
func Write(ctx context.Context, path string) (bool, error) {
	written, err := fsutil.WriteAtomicIfChanged(ctx, path, Script(), fsutil.DefaultFileMode)
	if err != nil {
		return false, fmt.Errorf("write helper %s: %w", path, err)
	}
	return written, nil
}

// Bundle returns script with the helper library in front of it, ready to
// be fed to a shell.
func Bundle(script []byte) []byte {
	helper := Script()
	out := make([]byte, 0, len(helper)+len(script)+1)
	out = append(out, helper...)
	out = append(out, '\n')
	return append(out, script...)
}
