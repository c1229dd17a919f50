package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/tehprofessor/corg/internal/ui/pretty"
	"github.com/tehprofessor/corg/pkg/runner"
)

// TextReporter writes generated scripts or diffs of stale scripts, followed
// by a one-line summary.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		result = &runner.Result{}
	}

	many := len(result.Files) > 1
	for _, file := range result.Files {
		if file.Outcome == nil {
			continue
		}
		switch {
		case r.opts.Scripts:
			r.writeScript(file, many)
		case file.Outcome.Stale:
			fmt.Fprint(r.bw, r.styles.FormatDiff(file.Outcome.Diff))
		}
	}

	if r.opts.ShowSummary {
		if err := r.bw.Flush(); err != nil {
			return err
		}
		if _, err := fmt.Fprint(r.opts.ErrorWriter, r.styles.FormatSummaryOneLine(result.Stats)); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	return nil
}

// writeScript writes one generated script. With more than one runbook each
// script is preceded by a comment naming it.
func (r *TextReporter) writeScript(file runner.FileOutcome, many bool) {
	if many {
		fmt.Fprintf(r.bw, "# ==> %s <==\n", relativePath(file.Outcome.Script, r.opts.WorkingDir))
	}
	r.bw.Write(file.Outcome.Output)
	if many {
		r.bw.WriteString("\n")
	}
}

// SummaryReporter writes a summary block of the run.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) error {
	var stats runner.Stats
	if result != nil {
		stats = result.Stats
	}
	if _, err := fmt.Fprint(r.opts.Writer, r.styles.FormatSummary(stats)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
