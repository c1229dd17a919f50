// Package runner finds runbooks and converts them in batches.
package runner

import "github.com/tehprofessor/corg/pkg/convert"

// Options controls discovery and batch conversion.
type Options struct {
	// Paths are the files or directories to process. Defaults to the
	// working directory.
	Paths []string

	// WorkingDir resolves relative Paths and is the base for glob matching.
	// Defaults to the process working directory.
	WorkingDir string

	// Extensions are the runbook file extensions, lowercase with a leading
	// dot. Defaults to DefaultExtensions().
	Extensions []string

	// ExcludeGlobs skip matching files and directories.
	ExcludeGlobs []string

	// FollowSymlinks walks into symlinked directories.
	FollowSymlinks bool

	// Jobs is the number of concurrent conversions. 0 or negative means
	// runtime.NumCPU().
	Jobs int

	// Convert is passed to every conversion.
	Convert convert.Options
}

// DefaultExtensions returns the default runbook extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
