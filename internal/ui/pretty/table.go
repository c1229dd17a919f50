package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Table formatting constants.
const (
	tablePadding      = 2
	tableColumnCount  = 6 // RUNBOOK, FUNCS, MODIFIED, SIZE, HASH, STATUS
	minDocumentWidth  = 20
	functionsWidth    = 5
	minModifiedWidth  = 14
	minSizeWidth      = 6
	hashWidth         = 12
	statusWidth       = 7
	heavySeparator    = "="
	lightSeparator    = "-"
	ellipsis          = "..."
	minTruncateLength = 4
)

// ScriptStatus describes how a generated script relates to its runbook.
type ScriptStatus string

const (
	// StatusOK means the script matches what the runbook generates.
	StatusOK ScriptStatus = "ok"
	// StatusStale means the script differs from what the runbook generates.
	StatusStale ScriptStatus = "stale"
	// StatusMissing means no script has been generated yet.
	StatusMissing ScriptStatus = "missing"
	// StatusError means the runbook could not be converted.
	StatusError ScriptStatus = "error"
)

// DocumentRow represents a single runbook in the document table.
type DocumentRow struct {
	Document  string
	Functions int
	Modified  time.Time
	Size      int64
	Hash      string
	Status    ScriptStatus
}

// TableFormatter formats runbooks as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

type columnWidths struct {
	document int
	modified int
	size     int
}

// FormatDocuments formats runbooks as a table. Modification times are shown
// relative to now.
func (t *TableFormatter) FormatDocuments(rows []DocumentRow, now time.Time) string {
	if len(rows) == 0 {
		return ""
	}

	modified := make([]string, len(rows))
	sizes := make([]string, len(rows))
	widths := columnWidths{
		document: minDocumentWidth,
		modified: minModifiedWidth,
		size:     minSizeWidth,
	}

	for i, row := range rows {
		modified[i] = humanize.RelTime(row.Modified, now, "ago", "from now")
		sizes[i] = humanize.Bytes(uint64(max(row.Size, 0)))

		widths.document = max(widths.document, len(row.Document))
		widths.modified = max(widths.modified, len(modified[i]))
		widths.size = max(widths.size, len(sizes[i]))
	}

	if total := t.calculateTotalWidth(widths); total > t.termWidth {
		widths.document = max(minDocumentWidth, widths.document-(total-t.termWidth))
	}

	var builder strings.Builder

	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	for i, row := range rows {
		builder.WriteString(t.formatRow(row, modified[i], sizes[i], widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths, lightSeparator))
	builder.WriteString("\n")
	builder.WriteString(t.formatFooter(rows))
	builder.WriteString("\n")

	return builder.String()
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.document + functionsWidth + widths.modified + widths.size +
		hashWidth + statusWidth + tablePadding*tableColumnCount
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %*s  %-*s  %*s  %-*s  %-*s",
		widths.document, "RUNBOOK",
		functionsWidth, "FUNCS",
		widths.modified, "MODIFIED",
		widths.size, "SIZE",
		hashWidth, "HASH",
		statusWidth, "STATUS",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, t.calculateTotalWidth(widths)))
}

func (t *TableFormatter) formatRow(row DocumentRow, modified, size string, widths columnWidths) string {
	content := fmt.Sprintf(" %-*s  %*s  %-*s  %*s  %-*s  ",
		widths.document, truncateFilePath(row.Document, widths.document),
		functionsWidth, strconv.Itoa(row.Functions),
		widths.modified, modified,
		widths.size, size,
		hashWidth, truncateString(row.Hash, hashWidth),
	)
	return content + t.statusStyle(row.Status).Render(string(row.Status))
}

func (t *TableFormatter) statusStyle(status ScriptStatus) lipgloss.Style {
	switch status {
	case StatusOK:
		return t.styles.StatusOK
	case StatusStale:
		return t.styles.StatusStale
	case StatusMissing, StatusError:
		return t.styles.StatusMissing
	default:
		return t.styles.Dim
	}
}

// formatFooter counts rows per status.
func (t *TableFormatter) formatFooter(rows []DocumentRow) string {
	counts := make(map[ScriptStatus]int)
	functions := 0
	for _, row := range rows {
		counts[row.Status]++
		functions += row.Functions
	}

	parts := []string{
		fmt.Sprintf("%d runbooks", len(rows)),
		fmt.Sprintf("%d functions", functions),
	}
	for _, status := range []ScriptStatus{StatusOK, StatusStale, StatusMissing, StatusError} {
		if n := counts[status]; n > 0 {
			parts = append(parts, t.statusStyle(status).Render(fmt.Sprintf("%d %s", n, status)))
		}
	}
	return " " + strings.Join(parts, " | ")
}

// truncateString shortens s to maxLen, ending with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < minTruncateLength {
		return s[:maxLen]
	}
	return s[:maxLen-len(ellipsis)] + ellipsis
}

// truncateFilePath shortens a path from the left so the file name stays
// visible.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen < minTruncateLength {
		return path[len(path)-maxLen:]
	}
	return ellipsis + path[len(path)-(maxLen-len(ellipsis)):]
}
