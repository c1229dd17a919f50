package runner

import "github.com/tehprofessor/corg/pkg/convert"

// FileOutcome is the conversion result of one runbook.
type FileOutcome struct {
	// Path is the runbook path.
	Path string

	// Outcome is nil when Error is set.
	Outcome *convert.Outcome

	// Error is set if the runbook could not be converted.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the number of runbooks found.
	FilesDiscovered int

	// FilesConverted is the number of runbooks transpiled without error.
	FilesConverted int

	// FilesWritten is the number of scripts that changed on disk.
	FilesWritten int

	// FilesUnchanged is the number of scripts already up to date.
	FilesUnchanged int

	// FilesStale is the number of out-of-date scripts found in check mode.
	FilesStale int

	// FilesErrored is the number of runbooks that failed.
	FilesErrored int

	// Functions is the total number of generated functions.
	Functions int
}

// Result is the overall runner result.
type Result struct {
	// Files holds one outcome per runbook, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasErrors reports whether any runbook failed to convert.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// HasStale reports whether check mode found out-of-date scripts.
func (r *Result) HasStale() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesStale > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Outcome == nil {
		return
	}

	r.Stats.FilesConverted++
	r.Stats.Functions += len(outcome.Outcome.Functions)

	switch {
	case outcome.Outcome.Stale:
		r.Stats.FilesStale++
	case outcome.Outcome.Written:
		r.Stats.FilesWritten++
	default:
		r.Stats.FilesUnchanged++
	}
}
