// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldConfig  = "config"
	FieldFlavor  = "flavor"
	FieldCheck   = "check"
	FieldDryRun  = "dry_run"
	FieldJobs    = "jobs"
	FieldBackup  = "backup"
	FieldWarning = "warning"

	// Conversion fields.
	FieldFunctions = "functions"
	FieldFootnotes = "footnotes"
	FieldLang      = "lang"
	FieldDetected  = "detected"
	FieldBlock     = "block"
	FieldStale     = "stale"
	FieldWritten   = "written"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesConverted  = "files_converted"
	FieldFilesWritten    = "files_written"
	FieldFilesStale      = "files_stale"
	FieldFilesErrored    = "files_errored"
	FieldElapsed         = "elapsed"

	// Execution fields.
	FieldScript = "script"
	FieldHost   = "host"
	FieldShell  = "shell"
	FieldArgs   = "args"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
