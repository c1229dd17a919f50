package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tehprofessor/corg/pkg/runner"
)

const summaryDividerWidth = 40

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "2 scripts written, 1 unchanged (3 runbooks, 7 functions)".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	counts := s.Dim.Render(fmt.Sprintf(" (%d %s, %d %s)",
		stats.FilesDiscovered, plural(stats.FilesDiscovered, "runbook", "runbooks"),
		stats.Functions, plural(stats.Functions, "function", "functions")))

	if stats.FilesDiscovered == 0 {
		return s.Warning.Render("No runbooks found") + "\n"
	}

	var parts []string
	if stats.FilesWritten > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d %s written",
			stats.FilesWritten, plural(stats.FilesWritten, "script", "scripts"))))
	}
	if stats.FilesStale > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d stale", stats.FilesStale)))
	}
	if stats.FilesUnchanged > 0 {
		parts = append(parts, fmt.Sprintf("%d unchanged", stats.FilesUnchanged))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}

	return strings.Join(parts, ", ") + counts + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row := func(label string, value int, style func(...string) string) {
		builder.WriteString(fmt.Sprintf("  %-18s %s\n", label+":", style(strconv.Itoa(value))))
	}

	row("Runbooks", stats.FilesDiscovered, s.SummaryValue.Render)
	row("Functions", stats.Functions, s.SummaryValue.Render)
	if stats.FilesWritten > 0 {
		row("Scripts written", stats.FilesWritten, s.Success.Render)
	}
	if stats.FilesUnchanged > 0 {
		row("Unchanged", stats.FilesUnchanged, s.SummaryValue.Render)
	}
	if stats.FilesStale > 0 {
		row("Stale", stats.FilesStale, s.Warning.Render)
	}
	if stats.FilesErrored > 0 {
		row("Failed", stats.FilesErrored, s.Failure.Render)
	}

	builder.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Conversion failed"))
	case stats.FilesStale > 0:
		builder.WriteString(s.Warning.Render("Scripts are out of date"))
	default:
		builder.WriteString(s.Success.Render("Scripts are up to date"))
	}
	builder.WriteString("\n")

	return builder.String()
}
