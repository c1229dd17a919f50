// Package goldmark turns Markdown into the event stream consumed by the shell
// transpiler, using the goldmark library.
package goldmark

import (
	"context"
	"fmt"
	"iter"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/tehprofessor/corg/pkg/mdevent"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Parser produces event streams using goldmark.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "gfm" and "commonmark". Footnotes are enabled for
// both. Invalid flavors default to "gfm".
func New(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Document is a parsed Markdown document.
type Document struct {
	Path    string
	Content []byte

	root ast.Node
}

// Events returns the document's event stream. It can be iterated more than
// once.
func (d *Document) Events() iter.Seq[mdevent.Event] {
	return events(d.root, d.Content)
}

// Parse parses content into a Document. The content is copied.
//
// Returns nil and an error if the context is cancelled.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	doc := &Document{
		Path:    path,
		Content: copyContent(content),
	}

	reader := text.NewReader(doc.Content)
	doc.root = p.md.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	return doc, nil
}

// Events parses content and returns its event stream.
func (p *Parser) Events(content []byte) iter.Seq[mdevent.Event] {
	doc, err := p.Parse(context.Background(), "", content)
	if err != nil {
		// Background contexts are never cancelled.
		return mdevent.Slice()
	}
	return doc.Events()
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to GFM.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorGFM
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	exts := []goldmark.Extender{extension.Footnote}
	if flavor == FlavorGFM {
		exts = append(exts, extension.GFM)
	}
	return goldmark.New(goldmark.WithExtensions(exts...))
}

// copyContent creates a copy of the content slice to ensure immutability.
func copyContent(content []byte) []byte {
	if content == nil {
		return nil
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp
}
