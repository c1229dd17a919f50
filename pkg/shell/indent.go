package shell

import "strings"

// Indent prefixes every non-empty line of a code block with a tab and pads
// quoted heredoc delimiters to match.
//
// A quoted heredoc delimiter must match its terminator line exactly. Once the
// terminator line "EOF" has been indented to "\tEOF", the declaration
// `<< "EOF"` is rewritten to `<< "\tEOF"` so both agree byte for byte. Both
// single- and double-quoted delimiters are rewritten, with the original
// spacing kept. Tab-stripping heredocs (`<<-`) and here-strings (`<<<`) are
// left untouched.
//
// Lines are joined with line feeds and no line feed is added after the last
// line, so text ending in "\n" yields output ending in "\n".
func Indent(text string) string {
	lines := strings.Split(text, "\n")

	var b strings.Builder
	b.Grow(len(text) + len(lines))

	for i, line := range lines {
		if line != "" {
			b.WriteByte('\t')
		}
		b.WriteString(padHeredocs(line))
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// padHeredocs inserts a tab after the opening quote of every quoted heredoc
// delimiter on line.
func padHeredocs(line string) string {
	if !strings.Contains(line, "<<") {
		return line
	}

	var b strings.Builder
	b.Grow(len(line) + 2)

	pos := 0
	for {
		idx := strings.Index(line[pos:], "<<")
		if idx < 0 {
			b.WriteString(line[pos:])
			return b.String()
		}
		op := pos + idx
		next := op + 2

		// Here-strings and tab-stripping heredocs.
		if (op > 0 && line[op-1] == '<') || (next < len(line) && (line[next] == '<' || line[next] == '-')) {
			b.WriteString(line[pos:next])
			pos = next
			continue
		}

		quote := next
		for quote < len(line) && (line[quote] == ' ' || line[quote] == '\t') {
			quote++
		}

		if quote < len(line) && (line[quote] == '"' || line[quote] == '\'') {
			closing := strings.IndexByte(line[quote+1:], line[quote])
			if closing > 0 {
				b.WriteString(line[pos : quote+1])
				b.WriteByte('\t')
				pos = quote + 1
				continue
			}
		}

		b.WriteString(line[pos:next])
		pos = next
	}
}
