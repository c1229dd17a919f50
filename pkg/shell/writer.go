// Package shell turns a Markdown event stream into a runnable shell script.
//
// Every level-2 heading becomes a shell function named after the heading,
// code blocks become the function body, paragraphs become corg_debug calls
// and a level-1 heading announces the document. The script ends with a
// trailer that calls every function in document order. The corg_* logging
// functions are provided by the helper library in package helper.
package shell

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/tehprofessor/corg/pkg/mdevent"
)

const (
	finalClose   = "\n}\n"
	trailerLabel = "\n# - run doc: \n"
)

// CodeBlock is a code block seen during a pass, before indentation.
type CodeBlock struct {
	Lang string
	Info string
	Body string
}

// Summary describes what a pass produced.
type Summary struct {
	// Functions holds one name per level-2 heading, in document order.
	// Duplicates are kept.
	Functions []string

	// Footnotes holds footnote names in the order they were numbered.
	Footnotes []string

	// CodeBlocks holds the raw code blocks in document order.
	CodeBlocks []CodeBlock
}

// Write transpiles events to w in a single pass.
//
// The only error Write returns is the first write failure of w, after which
// the pass stops and the output written so far should be discarded.
func Write(w io.Writer, events iter.Seq[mdevent.Event]) (*Summary, error) {
	s := newState(w)

	for ev := range events {
		s.handle(ev)
		if s.err != nil {
			return nil, fmt.Errorf("write script: %w", s.err)
		}
	}

	s.finish()
	if s.err != nil {
		return nil, fmt.Errorf("write script: %w", s.err)
	}

	return s.summary(), nil
}

// String transpiles events into a string.
func String(events iter.Seq[mdevent.Event]) (string, *Summary) {
	var b strings.Builder
	// strings.Builder never fails.
	summary, _ := Write(&b, events)
	return b.String(), summary
}

// state is the mutable context of one pass.
type state struct {
	w   io.Writer
	err error

	heading   *Heading
	function  string
	functions []string

	active *Renderer

	footnotes Footnotes
	table     Table

	// endNewline reports whether the last non-empty write ended in a line
	// feed.
	endNewline bool

	// Heading text is collected until the heading ends. Output produced in
	// the meantime, such as footnote references, follows the heading.
	inHeading   bool
	headingSeen bool
	headingText strings.Builder
	deferred    strings.Builder

	code       *CodeBlock
	codeBlocks []CodeBlock
}

func newState(w io.Writer) *state {
	return &state{w: w, endNewline: true}
}

func (s *state) write(text string) {
	if s.err != nil || text == "" {
		return
	}
	if _, err := io.WriteString(s.w, text); err != nil {
		s.err = err
		return
	}
	s.endNewline = strings.HasSuffix(text, "\n")
}

// emit writes text, or holds it back while a heading is open.
func (s *state) emit(text string) {
	if s.inHeading {
		s.deferred.WriteString(text)
		return
	}
	s.write(text)
}

func (s *state) handle(ev mdevent.Event) {
	switch ev.Kind {
	case mdevent.KindStart:
		s.start(ev.Tag)
	case mdevent.KindEnd:
		s.end(ev.Tag)
	case mdevent.KindText:
		s.text(ev.Text)
	case mdevent.KindCode:
		if s.inHeading {
			s.headingText.WriteString(ev.Text)
			s.headingSeen = true
			return
		}
		s.write(ev.Text)
	case mdevent.KindHTML, mdevent.KindInlineHTML:
		if s.inHeading {
			return
		}
		s.write(ev.Text)
	case mdevent.KindSoftBreak:
		if s.inHeading {
			s.headingText.WriteByte(' ')
			return
		}
		s.write("\n")
	case mdevent.KindHardBreak:
		if s.inHeading {
			s.headingText.WriteByte(' ')
			return
		}
		s.write("\n\n")
	case mdevent.KindFootnoteReference:
		n := s.footnotes.Number(ev.Text)
		s.emit("# -- note:\n# " + ev.Text + " #" + strconv.Itoa(n))
	case mdevent.KindTaskListMarker:
		// Task markers produce no output.
	}
}

func (s *state) text(text string) {
	if s.inHeading {
		s.headingText.WriteString(text)
		s.headingSeen = true
		return
	}
	if s.code != nil {
		s.code.Body += text
	}
	if s.active != nil {
		text = s.active.Render(text)
	}
	s.write(text)
}

func (s *state) start(tag mdevent.Tag) {
	switch tag.Kind {
	case mdevent.TagParagraph:
		s.active = ParagraphRenderer()
		s.endNewline = false
		s.write(s.active.Start(s.endNewline))
	case mdevent.TagHeading:
		s.beginHeading(tag.Level)
	case mdevent.TagCodeBlock:
		if !s.endNewline {
			s.write("\n")
		}
		s.active = CodeBlockRenderer(tag.Info)
		s.code = &CodeBlock{Lang: s.active.Lang, Info: tag.Info}
		s.write(s.active.Start(s.endNewline))
	case mdevent.TagList:
		s.write(listStart(tag, s.endNewline))
	case mdevent.TagFootnoteDefinition:
		prefix := "\n# "
		if s.endNewline {
			prefix = "# "
		}
		n := s.footnotes.Number(tag.Label)
		s.write(prefix + tag.Label + " - " + strconv.Itoa(n) + "\n")
	case mdevent.TagTable:
		s.table.Begin(tag.Alignments)
	case mdevent.TagTableHead:
		s.table.StartHead()
	case mdevent.TagTableRow:
		s.table.StartRow()
	default:
		s.write(PassthroughRenderer(tag.Kind).Start(s.endNewline))
	}
}

func (s *state) end(tag mdevent.Tag) {
	switch tag.Kind {
	case mdevent.TagParagraph:
		if s.active != nil {
			s.write(s.active.End())
		}
	case mdevent.TagHeading:
		s.endHeading()
	case mdevent.TagCodeBlock:
		if s.code != nil {
			s.codeBlocks = append(s.codeBlocks, *s.code)
			s.code = nil
		}
		if s.active != nil {
			s.write(s.active.End())
		}
	case mdevent.TagTableHead:
		s.table.EndHead()
	case mdevent.TagTableCell:
		s.table.EndCell()
	}
}

func (s *state) beginHeading(level int) {
	// An unbalanced stream can start a heading inside another one.
	s.endHeading()

	h := NewHeading(level, s.heading)
	s.heading = h
	s.function = ""
	s.active = HeadingRenderer(h)

	s.inHeading = true
	s.headingSeen = false
	s.headingText.Reset()
	s.deferred.Reset()

	s.endNewline = true
	s.write(h.Open())
}

func (s *state) endHeading() {
	h := s.heading
	if h == nil || !s.inHeading {
		return
	}
	s.inHeading = false

	if s.headingSeen {
		h.SetText(s.headingText.String())
	}
	if h.Level == 2 {
		s.function = h.Slug()
		s.functions = append(s.functions, s.function)
	}

	s.write(h.Close())
	s.write(s.deferred.String())
	s.deferred.Reset()
}

func (s *state) finish() {
	// A heading left open by a truncated stream still gets its header.
	s.endHeading()

	s.write(finalClose)
	s.write(trailerLabel + strings.Join(s.functions, "\n"))
}

func (s *state) summary() *Summary {
	return &Summary{
		Functions:  append([]string(nil), s.functions...),
		Footnotes:  s.footnotes.Names(),
		CodeBlocks: s.codeBlocks,
	}
}
