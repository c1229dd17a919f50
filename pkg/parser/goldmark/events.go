package goldmark

import (
	"iter"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/tehprofessor/corg/pkg/mdevent"
)

// events returns the event stream of a parsed goldmark document.
func events(root ast.Node, source []byte) iter.Seq[mdevent.Event] {
	return func(yield func(mdevent.Event) bool) {
		e := &emitter{
			source:    source,
			footnotes: footnoteLabels(root),
			yield:     yield,
		}
		// The walker never returns an error.
		_ = ast.Walk(root, e.visit)
	}
}

// footnoteLabels maps goldmark's footnote indexes back to their labels.
func footnoteLabels(root ast.Node) map[int]string {
	labels := make(map[int]string)
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fn, ok := n.(*east.Footnote); ok && entering {
			labels[fn.Index] = string(fn.Ref)
		}
		return ast.WalkContinue, nil
	})
	return labels
}

// emitter converts goldmark nodes into events as the walk visits them.
type emitter struct {
	source    []byte
	footnotes map[int]string
	yield     func(mdevent.Event) bool
}

// send yields events until the consumer stops.
func (e *emitter) send(events ...mdevent.Event) ast.WalkStatus {
	for _, ev := range events {
		if !e.yield(ev) {
			return ast.WalkStop
		}
	}
	return ast.WalkContinue
}

// leaf sends events for a node whose children have already been consumed.
func (e *emitter) leaf(events ...mdevent.Event) ast.WalkStatus {
	if e.send(events...) == ast.WalkStop {
		return ast.WalkStop
	}
	return ast.WalkSkipChildren
}

//nolint:gocyclo,cyclop // one case per node type
func (e *emitter) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	// Containers without a scope of their own.
	case *ast.Document, *ast.TextBlock, *east.FootnoteList, *east.FootnoteBacklink:
		return ast.WalkContinue, nil

	case *ast.FencedCodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		info := ""
		if node.Info != nil {
			info = string(node.Info.Segment.Value(e.source))
		}
		return e.codeBlock(info, node.Lines()), nil

	case *ast.CodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		return e.codeBlock("", node.Lines()), nil

	case *ast.HTMLBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		return e.htmlBlock(node), nil

	case *ast.ThematicBreak:
		if !entering {
			return ast.WalkContinue, nil
		}
		return e.leaf(mdevent.Start(mdevent.Rule()), mdevent.End(mdevent.Rule())), nil

	case *ast.Text:
		if !entering {
			return ast.WalkContinue, nil
		}
		return e.text(node), nil

	case *ast.String:
		if !entering || len(node.Value) == 0 {
			return ast.WalkContinue, nil
		}
		return e.send(mdevent.Text(string(node.Value))), nil

	case *ast.CodeSpan:
		if !entering {
			return ast.WalkContinue, nil
		}
		return e.leaf(mdevent.Code(e.codeSpan(node))), nil

	case *ast.RawHTML:
		if !entering {
			return ast.WalkContinue, nil
		}
		return e.leaf(mdevent.InlineHTML(e.segments(node.Segments))), nil

	case *ast.AutoLink:
		if !entering {
			return ast.WalkContinue, nil
		}
		tag := mdevent.Tag{
			Kind:        mdevent.TagLink,
			LinkType:    mdevent.LinkAutolink,
			Destination: string(node.URL(e.source)),
		}
		if node.AutoLinkType == ast.AutoLinkEmail {
			tag.LinkType = mdevent.LinkEmail
		}
		return e.leaf(
			mdevent.Start(tag),
			mdevent.Text(string(node.Label(e.source))),
			mdevent.End(tag),
		), nil

	case *east.TaskCheckBox:
		if !entering {
			return ast.WalkContinue, nil
		}
		return e.leaf(mdevent.TaskListMarker(node.IsChecked)), nil

	case *east.FootnoteLink:
		if !entering {
			return ast.WalkContinue, nil
		}
		return e.leaf(mdevent.FootnoteReference(e.footnotes[node.Index])), nil
	}

	tag, ok := scopeTag(n)
	if !ok {
		return ast.WalkContinue, nil
	}
	if entering {
		return e.send(mdevent.Start(tag)), nil
	}
	return e.send(mdevent.End(tag)), nil
}

// scopeTag returns the tag for nodes that map to a Start/End pair.
func scopeTag(n ast.Node) (mdevent.Tag, bool) {
	switch node := n.(type) {
	case *ast.Heading:
		return mdevent.Heading(node.Level), true
	case *ast.Paragraph:
		return mdevent.Paragraph(), true
	case *ast.Blockquote:
		return mdevent.BlockQuote(), true
	case *ast.List:
		if node.IsOrdered() {
			return mdevent.OrderedList(node.Start), true
		}
		return mdevent.BulletList(), true
	case *ast.ListItem:
		return mdevent.Item(), true
	case *ast.Emphasis:
		if node.Level == 2 {
			return mdevent.Simple(mdevent.TagStrong), true
		}
		return mdevent.Simple(mdevent.TagEmphasis), true
	case *ast.Link:
		return mdevent.Tag{
			Kind:        mdevent.TagLink,
			LinkType:    mdevent.LinkInline,
			Destination: string(node.Destination),
			Title:       string(node.Title),
		}, true
	case *ast.Image:
		return mdevent.Tag{
			Kind:        mdevent.TagImage,
			LinkType:    mdevent.LinkInline,
			Destination: string(node.Destination),
			Title:       string(node.Title),
		}, true
	case *east.Strikethrough:
		return mdevent.Simple(mdevent.TagStrikethrough), true
	case *east.Table:
		aligns := make([]mdevent.Alignment, len(node.Alignments))
		for i, a := range node.Alignments {
			aligns[i] = alignment(a)
		}
		return mdevent.Table(aligns...), true
	case *east.TableHeader:
		return mdevent.Simple(mdevent.TagTableHead), true
	case *east.TableRow:
		return mdevent.Simple(mdevent.TagTableRow), true
	case *east.TableCell:
		return mdevent.Simple(mdevent.TagTableCell), true
	case *east.Footnote:
		return mdevent.FootnoteDefinition(string(node.Ref)), true
	default:
		return mdevent.Tag{}, false
	}
}

func alignment(a east.Alignment) mdevent.Alignment {
	switch a {
	case east.AlignLeft:
		return mdevent.AlignLeft
	case east.AlignCenter:
		return mdevent.AlignCenter
	case east.AlignRight:
		return mdevent.AlignRight
	default:
		return mdevent.AlignNone
	}
}

// text sends a text run followed by the line break that ends it, if any.
func (e *emitter) text(node *ast.Text) ast.WalkStatus {
	var evs []mdevent.Event
	if value := node.Segment.Value(e.source); len(value) > 0 {
		if !node.IsRaw() {
			value = decode(value)
		}
		evs = append(evs, mdevent.Text(string(value)))
	}
	switch {
	case node.HardLineBreak():
		evs = append(evs, mdevent.HardBreak())
	case node.SoftLineBreak():
		evs = append(evs, mdevent.SoftBreak())
	}
	return e.send(evs...)
}

// decode resolves backslash escapes and entity references, which goldmark
// leaves in the source for its renderer.
func decode(value []byte) []byte {
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	return util.ResolveEntityNames(value)
}

// codeBlock sends a code block as a single text event.
func (e *emitter) codeBlock(info string, lines *text.Segments) ast.WalkStatus {
	tag := mdevent.CodeBlock(info)
	evs := []mdevent.Event{mdevent.Start(tag)}
	if body := e.segments(lines); body != "" {
		evs = append(evs, mdevent.Text(body))
	}
	evs = append(evs, mdevent.End(tag))
	return e.leaf(evs...)
}

// htmlBlock sends one HTML event per line.
func (e *emitter) htmlBlock(node *ast.HTMLBlock) ast.WalkStatus {
	tag := mdevent.Simple(mdevent.TagHTMLBlock)
	evs := []mdevent.Event{mdevent.Start(tag)}

	lines := node.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		evs = append(evs, mdevent.HTML(string(seg.Value(e.source))))
	}
	if node.HasClosure() {
		evs = append(evs, mdevent.HTML(string(node.ClosureLine.Value(e.source))))
	}

	evs = append(evs, mdevent.End(tag))
	return e.leaf(evs...)
}

func (e *emitter) codeSpan(node *ast.CodeSpan) string {
	var buf []byte
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf = append(buf, c.Segment.Value(e.source)...)
		case *ast.String:
			buf = append(buf, c.Value...)
		}
	}
	return string(buf)
}

func (e *emitter) segments(segs *text.Segments) string {
	var buf []byte
	for i := range segs.Len() {
		seg := segs.At(i)
		buf = append(buf, seg.Value(e.source)...)
	}
	return string(buf)
}
