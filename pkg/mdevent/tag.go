package mdevent

// TagKind identifies the kind of scope a Tag opens or closes.
type TagKind int

const (
	TagParagraph TagKind = iota
	TagHeading
	TagBlockQuote
	TagCodeBlock
	TagList
	TagItem
	TagFootnoteDefinition
	TagHTMLBlock
	TagTable
	TagTableHead
	TagTableRow
	TagTableCell
	TagEmphasis
	TagStrong
	TagStrikethrough
	TagLink
	TagImage
	TagRule
)

var tagKindNames = [...]string{
	TagParagraph:          "paragraph",
	TagHeading:            "heading",
	TagBlockQuote:         "block_quote",
	TagCodeBlock:          "code_block",
	TagList:               "list",
	TagItem:               "item",
	TagFootnoteDefinition: "footnote_definition",
	TagHTMLBlock:          "html_block",
	TagTable:              "table",
	TagTableHead:          "table_head",
	TagTableRow:           "table_row",
	TagTableCell:          "table_cell",
	TagEmphasis:           "emphasis",
	TagStrong:             "strong",
	TagStrikethrough:      "strikethrough",
	TagLink:               "link",
	TagImage:              "image",
	TagRule:               "rule",
}

// String returns a readable name for the tag kind.
func (k TagKind) String() string {
	if k >= 0 && int(k) < len(tagKindNames) {
		return tagKindNames[k]
	}
	return "unknown"
}

// Alignment is the alignment hint of a table column.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// LinkType discriminates the syntax a link or image was written with.
type LinkType int

const (
	LinkInline LinkType = iota
	LinkReference
	LinkAutolink
	LinkEmail
)

// Tag describes a scope. Only the fields relevant to Kind are populated.
type Tag struct {
	// Kind identifies the scope.
	Kind TagKind

	// Level is the heading level (1-6).
	Level int

	// Info is the code block info string. Empty for indented code blocks.
	Info string

	// Ordered reports whether a list is ordered; Start is its first number.
	Ordered bool
	Start   int

	// Alignments holds the per-column alignment of a table.
	Alignments []Alignment

	// Label is the footnote definition label.
	Label string

	// LinkType, Destination and Title describe links and images.
	LinkType    LinkType
	Destination string
	Title       string
}

// Paragraph returns a paragraph tag.
func Paragraph() Tag { return Tag{Kind: TagParagraph} }

// Heading returns a heading tag with the given level.
func Heading(level int) Tag { return Tag{Kind: TagHeading, Level: level} }

// CodeBlock returns a code block tag with the given info string.
func CodeBlock(info string) Tag { return Tag{Kind: TagCodeBlock, Info: info} }

// BulletList returns an unordered list tag.
func BulletList() Tag { return Tag{Kind: TagList} }

// OrderedList returns an ordered list tag starting at start.
func OrderedList(start int) Tag { return Tag{Kind: TagList, Ordered: true, Start: start} }

// Item returns a list item tag.
func Item() Tag { return Tag{Kind: TagItem} }

// BlockQuote returns a block quote tag.
func BlockQuote() Tag { return Tag{Kind: TagBlockQuote} }

// Rule returns a thematic break tag.
func Rule() Tag { return Tag{Kind: TagRule} }

// FootnoteDefinition returns a footnote definition tag for label.
func FootnoteDefinition(label string) Tag {
	return Tag{Kind: TagFootnoteDefinition, Label: label}
}

// Table returns a table tag with column alignments.
func Table(alignments ...Alignment) Tag {
	return Tag{Kind: TagTable, Alignments: alignments}
}

// Simple returns a tag that carries no attributes.
func Simple(kind TagKind) Tag { return Tag{Kind: kind} }
