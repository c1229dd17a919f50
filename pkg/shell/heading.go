package shell

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fixed output emitted around headings.
const (
	functionClose = "}\n# - end function\n"
	functionBegin = "\n# - begin function:\n"
	sectionBegin  = "\n# - start section:\n"
	announceBegin = "corg_announce \"Running Document: "
	announceEnd   = "\"\n\n"
)

// Heading is a document heading as seen by the scope tracker.
type Heading struct {
	// Level is the heading depth, 1 for the document title.
	Level int

	// CloseBeforeStart reports whether the function opened by the previous
	// heading must be closed before this heading is emitted.
	CloseBeforeStart bool

	// Text is the heading text, known once the heading scope ends.
	Text    string
	hasText bool
}

// NewHeading creates the heading that follows previous.
//
// Only a level-2 heading that directly follows another level-2 heading closes
// the open function. A level-2 heading after a level-1 or deeper heading does
// not.
func NewHeading(level int, previous *Heading) *Heading {
	return &Heading{
		Level:            level,
		CloseBeforeStart: level == 2 && previous != nil && previous.Level == 2,
	}
}

// SetText records the heading text. Only the first call has an effect.
func (h *Heading) SetText(text string) {
	if h.hasText {
		return
	}
	h.Text = text
	h.hasText = true
}

// HasText reports whether SetText has been called.
func (h *Heading) HasText() bool {
	return h.hasText
}

// Slug returns the shell function name derived from the heading text.
func (h *Heading) Slug() string {
	return Slug(h.Text)
}

// Open returns the text emitted when the heading starts.
func (h *Heading) Open() string {
	var b strings.Builder
	if h.CloseBeforeStart {
		b.WriteString(functionClose)
	}
	switch h.Level {
	case 1:
		b.WriteString(announceBegin)
	case 2:
		b.WriteString(functionBegin)
	default:
		b.WriteString(sectionBegin)
	}
	return b.String()
}

// Close returns the text emitted once the heading text is known: the end of
// the announce statement for a title, the function header for a level-2
// heading, nothing otherwise.
func (h *Heading) Close() string {
	switch h.Level {
	case 1:
		return h.Text + announceEnd
	case 2:
		return "function " + h.Slug() + " {\n"
	default:
		return ""
	}
}

// Slug lowercases text and replaces every space with a hyphen. No other
// characters are touched.
func Slug(text string) string {
	lower := cases.Lower(language.Und).String(text)
	return strings.ReplaceAll(lower, " ", "-")
}
