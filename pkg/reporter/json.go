package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/tehprofessor/corg/pkg/runner"
)

// jsonVersion is the version of the JSON output schema.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single runbook's result.
type JSONFileResult struct {
	Path      string   `json:"path"`
	Script    string   `json:"script,omitempty"`
	Functions []string `json:"functions"`
	Written   bool     `json:"written"`
	BackedUp  bool     `json:"backedUp,omitempty"`
	Stale     bool     `json:"stale,omitempty"`
	Diff      string   `json:"diff,omitempty"`
	Output    string   `json:"output,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered int `json:"filesDiscovered"`
	FilesConverted  int `json:"filesConverted"`
	FilesWritten    int `json:"filesWritten"`
	FilesUnchanged  int `json:"filesUnchanged"`
	FilesStale      int `json:"filesStale"`
	FilesErrored    int `json:"filesErrored"`
	Functions       int `json:"functions"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(r.buildOutput(result)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: jsonVersion,
		Files:   make([]JSONFileResult, 0),
	}
	if result == nil {
		return output
	}

	output.Files = make([]JSONFileResult, 0, len(result.Files))
	for _, file := range result.Files {
		entry := JSONFileResult{
			Path:      relativePath(file.Path, r.opts.WorkingDir),
			Functions: make([]string, 0),
		}

		if file.Error != nil {
			entry.Error = file.Error.Error()
		}

		if out := file.Outcome; out != nil {
			entry.Script = relativePath(out.Script, r.opts.WorkingDir)
			entry.Functions = append(entry.Functions, out.Functions...)
			entry.Written = out.Written
			entry.BackedUp = out.BackedUp
			entry.Stale = out.Stale
			entry.Diff = out.Diff
			if r.opts.Scripts {
				entry.Output = string(out.Output)
			}
		}

		output.Files = append(output.Files, entry)
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesDiscovered: stats.FilesDiscovered,
		FilesConverted:  stats.FilesConverted,
		FilesWritten:    stats.FilesWritten,
		FilesUnchanged:  stats.FilesUnchanged,
		FilesStale:      stats.FilesStale,
		FilesErrored:    stats.FilesErrored,
		Functions:       stats.Functions,
	}

	return output
}
