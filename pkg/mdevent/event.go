// Package mdevent defines the structural event stream produced by a Markdown
// parser and consumed by the shell transpiler.
//
// A document is a flat, ordered sequence of events: Start/End pairs delimit
// scopes (headings, code blocks, lists, tables, ...) and leaf events carry
// text, inline code, raw markup, line breaks, footnote references, and task
// list markers.
package mdevent

import "iter"

// Kind identifies the type of an Event.
type Kind int

const (
	// KindStart opens the scope described by Event.Tag.
	KindStart Kind = iota
	// KindEnd closes the scope described by Event.Tag.
	KindEnd
	// KindText is a run of text.
	KindText
	// KindCode is an inline code span.
	KindCode
	// KindHTML is a line of a raw HTML block.
	KindHTML
	// KindInlineHTML is raw inline HTML.
	KindInlineHTML
	// KindSoftBreak is a soft line break.
	KindSoftBreak
	// KindHardBreak is a hard line break.
	KindHardBreak
	// KindFootnoteReference references a footnote by label.
	KindFootnoteReference
	// KindTaskListMarker is a task list checkbox.
	KindTaskListMarker
)

var kindNames = [...]string{
	KindStart:             "start",
	KindEnd:               "end",
	KindText:              "text",
	KindCode:              "code",
	KindHTML:              "html",
	KindInlineHTML:        "inline_html",
	KindSoftBreak:         "soft_break",
	KindHardBreak:         "hard_break",
	KindFootnoteReference: "footnote_reference",
	KindTaskListMarker:    "task_list_marker",
}

// String returns a readable name for the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is a single element of the structural event stream.
type Event struct {
	// Kind identifies the event type.
	Kind Kind

	// Tag describes the scope for KindStart and KindEnd events.
	Tag Tag

	// Text holds the payload of text, code, HTML and footnote reference
	// events. For footnote references it is the footnote label.
	Text string

	// Checked is the state of a task list marker.
	Checked bool
}

// Start returns an event opening tag.
func Start(tag Tag) Event {
	return Event{Kind: KindStart, Tag: tag}
}

// End returns an event closing tag.
func End(tag Tag) Event {
	return Event{Kind: KindEnd, Tag: tag}
}

// Text returns a text event.
func Text(s string) Event {
	return Event{Kind: KindText, Text: s}
}

// Code returns an inline code event.
func Code(s string) Event {
	return Event{Kind: KindCode, Text: s}
}

// HTML returns a raw HTML block line event.
func HTML(s string) Event {
	return Event{Kind: KindHTML, Text: s}
}

// InlineHTML returns a raw inline HTML event.
func InlineHTML(s string) Event {
	return Event{Kind: KindInlineHTML, Text: s}
}

// SoftBreak returns a soft line break event.
func SoftBreak() Event {
	return Event{Kind: KindSoftBreak}
}

// HardBreak returns a hard line break event.
func HardBreak() Event {
	return Event{Kind: KindHardBreak}
}

// FootnoteReference returns a reference to the footnote with the given label.
func FootnoteReference(label string) Event {
	return Event{Kind: KindFootnoteReference, Text: label}
}

// TaskListMarker returns a task list checkbox event.
func TaskListMarker(checked bool) Event {
	return Event{Kind: KindTaskListMarker, Checked: checked}
}

// Slice adapts an in-memory list of events to an iterator.
func Slice(events ...Event) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range events {
			if !yield(ev) {
				return
			}
		}
	}
}

// Collect drains an event iterator into a slice.
func Collect(seq iter.Seq[Event]) []Event {
	var events []Event
	for ev := range seq {
		events = append(events, ev)
	}
	return events
}
