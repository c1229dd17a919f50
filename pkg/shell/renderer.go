package shell

import (
	"strings"

	"github.com/tehprofessor/corg/pkg/mdevent"
)

const (
	codeBegin      = "# - begin code:\n"
	paragraphBegin = "\n# - paragraph:\ncorg_debug \""
	paragraphEnd   = "\"\n\n"
)

// RendererKind selects the variant of a Renderer.
type RendererKind int

const (
	// RenderPassthrough emits only fixed markers and never becomes active.
	RenderPassthrough RendererKind = iota
	// RenderHeading delegates to a Heading.
	RenderHeading
	// RenderCodeBlock indents code and pads heredoc delimiters.
	RenderCodeBlock
	// RenderParagraph wraps text in a corg_debug call.
	RenderParagraph
)

var rendererKindNames = [...]string{
	RenderPassthrough: "passthrough",
	RenderHeading:     "heading",
	RenderCodeBlock:   "code_block",
	RenderParagraph:   "paragraph",
}

// String returns the variant name.
func (k RendererKind) String() string {
	if k >= 0 && int(k) < len(rendererKindNames) {
		return rendererKindNames[k]
	}
	return "unknown"
}

// Renderer is the closed set of tag renderers. Only the fields relevant to
// Kind are set.
type Renderer struct {
	Kind RendererKind

	// Heading backs a RenderHeading renderer.
	Heading *Heading

	// Lang is the first word of a code block's info string and Info the
	// whole string. Neither changes the rendered output.
	Lang string
	Info string

	// Tag is the sub-kind of a RenderPassthrough renderer.
	Tag mdevent.TagKind
}

// HeadingRenderer returns a renderer for h.
func HeadingRenderer(h *Heading) *Renderer {
	return &Renderer{Kind: RenderHeading, Heading: h}
}

// CodeBlockRenderer returns a renderer for a code block with the given info
// string.
func CodeBlockRenderer(info string) *Renderer {
	lang, _, _ := strings.Cut(info, " ")
	return &Renderer{Kind: RenderCodeBlock, Lang: lang, Info: info}
}

// ParagraphRenderer returns a paragraph renderer.
func ParagraphRenderer() *Renderer {
	return &Renderer{Kind: RenderParagraph}
}

// PassthroughRenderer returns a renderer for a tag that only emits markers.
func PassthroughRenderer(kind mdevent.TagKind) *Renderer {
	return &Renderer{Kind: RenderPassthrough, Tag: kind}
}

// Start returns the text emitted when the scope opens. atLineStart reports
// whether the output currently ends with a line feed; some passthrough
// markers add one when it does not.
func (r *Renderer) Start(atLineStart bool) string {
	switch r.Kind {
	case RenderHeading:
		return r.Heading.Open()
	case RenderCodeBlock:
		return codeBegin
	case RenderParagraph:
		return paragraphBegin
	default:
		return passthroughStart(r.Tag, atLineStart)
	}
}

// Render transforms text written while the renderer is active. Heading text
// is collected by the writer until the heading ends, so a heading renderer
// only sees text that follows its heading and passes it through.
func (r *Renderer) Render(body string) string {
	if r.Kind == RenderCodeBlock {
		return Indent(body)
	}
	return body
}

// End returns the text emitted when the scope closes.
func (r *Renderer) End() string {
	if r.Kind == RenderParagraph {
		return paragraphEnd
	}
	return ""
}

const ruleLine = "# **************************************************************************** #"

func passthroughStart(kind mdevent.TagKind, atLineStart bool) string {
	switch kind {
	case mdevent.TagRule:
		if atLineStart {
			return ruleLine
		}
		return ruleLine + "\n"
	case mdevent.TagBlockQuote:
		if atLineStart {
			return "# block quotecorg_info \n"
		}
		return "# block quote\ncorg_info \n"
	case mdevent.TagItem:
		if atLineStart {
			return "# -"
		}
		return "\n# -"
	default:
		return ""
	}
}

// listStart returns the marker opening a list.
func listStart(tag mdevent.Tag, atLineStart bool) string {
	switch {
	case tag.Ordered && tag.Start == 1:
		if atLineStart {
			return "# List \n"
		}
		return "\n# List\n"
	case tag.Ordered:
		return "#"
	case atLineStart:
		return "# List (None)\n"
	default:
		return "\n# List (None)\n"
	}
}
