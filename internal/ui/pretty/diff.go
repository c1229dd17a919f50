package pretty

import "strings"

// FormatDiff colors a unified diff line by line.
func (s *Styles) FormatDiff(diff string) string {
	if diff == "" {
		return ""
	}

	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		nl := line[len(text):]

		switch {
		case strings.HasPrefix(text, "---"), strings.HasPrefix(text, "+++"):
			b.WriteString(s.DiffHeader.Render(text))
		case strings.HasPrefix(text, "@@"):
			b.WriteString(s.DiffHunk.Render(text))
		case strings.HasPrefix(text, "+"):
			b.WriteString(s.DiffAdd.Render(text))
		case strings.HasPrefix(text, "-"):
			b.WriteString(s.DiffRemove.Render(text))
		default:
			b.WriteString(s.DiffContext.Render(text))
		}
		b.WriteString(nl)
	}
	return b.String()
}
