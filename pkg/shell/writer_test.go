package shell_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tehprofessor/corg/internal/testutil"
	"github.com/tehprofessor/corg/pkg/mdevent"
	"github.com/tehprofessor/corg/pkg/shell"
)

func heading(level int, text string) []mdevent.Event {
	return []mdevent.Event{
		mdevent.Start(mdevent.Heading(level)),
		mdevent.Text(text),
		mdevent.End(mdevent.Heading(level)),
	}
}

func paragraph(text string) []mdevent.Event {
	return []mdevent.Event{
		mdevent.Start(mdevent.Paragraph()),
		mdevent.Text(text),
		mdevent.End(mdevent.Paragraph()),
	}
}

func codeBlock(info, body string) []mdevent.Event {
	return []mdevent.Event{
		mdevent.Start(mdevent.CodeBlock(info)),
		mdevent.Text(body),
		mdevent.End(mdevent.CodeBlock(info)),
	}
}

func doc(parts ...[]mdevent.Event) []mdevent.Event {
	var events []mdevent.Event
	for _, p := range parts {
		events = append(events, p...)
	}
	return events
}

func transpile(events []mdevent.Event) (string, *shell.Summary) {
	return shell.String(mdevent.Slice(events...))
}

func TestWrite_EmptyDocument(t *testing.T) {
	t.Parallel()

	out, summary := transpile(nil)
	testutil.EqualScript(t, "empty", "\n}\n\n# - run doc: \n", out)
	assert.Empty(t, summary.Functions)
	assert.NotContains(t, out, "# - begin function:")
}

func TestWrite_ConsecutiveFunctionsClose(t *testing.T) {
	t.Parallel()

	out, summary := transpile(doc(
		heading(2, "A"),
		paragraph("hello"),
		heading(2, "B"),
	))

	want := "\n# - begin function:\nfunction a {\n" +
		"\n# - paragraph:\ncorg_debug \"hello\"\n\n" +
		"}\n# - end function\n" +
		"\n# - begin function:\nfunction b {\n" +
		"\n}\n\n# - run doc: \na\nb"
	testutil.EqualScript(t, "consecutive", want, out)
	assert.Equal(t, []string{"a", "b"}, summary.Functions)
}

func TestWrite_SubsectionDoesNotClose(t *testing.T) {
	t.Parallel()

	out, summary := transpile(doc(
		heading(2, "A"),
		heading(3, "sub"),
		heading(2, "B"),
	))

	want := "\n# - begin function:\nfunction a {\n" +
		"\n# - start section:\n" +
		"\n# - begin function:\nfunction b {\n" +
		"\n}\n\n# - run doc: \na\nb"
	testutil.EqualScript(t, "subsection", want, out)
	assert.NotContains(t, out, "# - end function")
	assert.Equal(t, []string{"a", "b"}, summary.Functions)
}

func TestWrite_TitleAnnounces(t *testing.T) {
	t.Parallel()

	out, summary := transpile(doc(
		heading(1, "Title"),
		paragraph("Body"),
	))

	want := "corg_announce \"Running Document: Title\"\n\n" +
		"\n# - paragraph:\ncorg_debug \"Body\"\n\n" +
		"\n}\n\n# - run doc: \n"
	testutil.EqualScript(t, "title", want, out)
	assert.Empty(t, summary.Functions)
}

func TestWrite_CodeBlockInFunction(t *testing.T) {
	t.Parallel()

	out, summary := transpile(doc(
		heading(2, "Setup"),
		codeBlock("bash", "echo hi\n"),
	))

	want := "\n# - begin function:\nfunction setup {\n" +
		"# - begin code:\n\techo hi\n" +
		"\n}\n\n# - run doc: \nsetup"
	testutil.EqualScript(t, "code", want, out)
	require.Len(t, summary.CodeBlocks, 1)
	assert.Equal(t, shell.CodeBlock{Lang: "bash", Info: "bash", Body: "echo hi\n"}, summary.CodeBlocks[0])
}

func TestWrite_CodeBlockAfterTextStartsNewLine(t *testing.T) {
	t.Parallel()

	out, _ := transpile(doc(
		[]mdevent.Event{mdevent.Text("loose")},
		codeBlock("", "ls\n"),
	))

	assert.True(t, strings.HasPrefix(out, "loose\n# - begin code:\n\tls\n"), out)
}

func TestWrite_HeredocInCodeBlock(t *testing.T) {
	t.Parallel()

	out, _ := transpile(codeBlock("sh", "foo\ncat << \"EOF\"\nhello\nEOF\n"))
	assert.Contains(t, out, "\tfoo\n\tcat << \"\tEOF\"\n\thello\n\tEOF\n")
}

func TestWrite_FootnoteNumbering(t *testing.T) {
	t.Parallel()

	out, summary := transpile([]mdevent.Event{
		mdevent.Start(mdevent.Paragraph()),
		mdevent.FootnoteReference("x"),
		mdevent.FootnoteReference("y"),
		mdevent.FootnoteReference("x"),
		mdevent.End(mdevent.Paragraph()),
		mdevent.Start(mdevent.FootnoteDefinition("y")),
		mdevent.End(mdevent.FootnoteDefinition("y")),
		mdevent.Start(mdevent.FootnoteDefinition("z")),
		mdevent.End(mdevent.FootnoteDefinition("z")),
	})

	want := "\n# - paragraph:\ncorg_debug \"" +
		"# -- note:\n# x #1# -- note:\n# y #2# -- note:\n# x #1" +
		"\"\n\n" +
		"# y - 2\n" +
		"# z - 3\n" +
		"\n}\n\n# - run doc: \n"
	testutil.EqualScript(t, "footnotes", want, out)
	assert.Equal(t, []string{"x", "y", "z"}, summary.Footnotes)
}

func TestWrite_Lists(t *testing.T) {
	t.Parallel()

	item := func(text string) []mdevent.Event {
		return []mdevent.Event{mdevent.Start(mdevent.Item()), mdevent.Text(text), mdevent.End(mdevent.Item())}
	}

	tests := []struct {
		name string
		list mdevent.Tag
		want string
	}{
		{"bullet", mdevent.BulletList(), "# List (None)\n# -one\n# -two"},
		{"ordered from one", mdevent.OrderedList(1), "# List \n# -one\n# -two"},
		{"ordered from three", mdevent.OrderedList(3), "#\n# -one\n# -two"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, _ := transpile(doc(
				[]mdevent.Event{mdevent.Start(tc.list)},
				item("one"),
				item("two"),
				[]mdevent.Event{mdevent.End(tc.list)},
			))
			testutil.EqualScript(t, tc.name, tc.want+"\n}\n\n# - run doc: \n", out)
		})
	}
}

func TestWrite_ListAfterText(t *testing.T) {
	t.Parallel()

	out, _ := transpile([]mdevent.Event{
		mdevent.Text("intro"),
		mdevent.Start(mdevent.BulletList()),
		mdevent.End(mdevent.BulletList()),
	})
	assert.True(t, strings.HasPrefix(out, "intro\n# List (None)\n"), out)
}

func TestWrite_RuleAndBlockQuote(t *testing.T) {
	t.Parallel()

	rule := "# " + strings.Repeat("*", 76) + " #"

	out, _ := transpile([]mdevent.Event{
		mdevent.Start(mdevent.Rule()),
		mdevent.End(mdevent.Rule()),
		mdevent.Start(mdevent.BlockQuote()),
		mdevent.End(mdevent.BlockQuote()),
		mdevent.Text("x\n"),
		mdevent.Start(mdevent.BlockQuote()),
		mdevent.End(mdevent.BlockQuote()),
	})

	want := rule +
		"# block quote\ncorg_info \n" +
		"x\n" +
		"# block quotecorg_info \n" +
		"\n}\n\n# - run doc: \n"
	testutil.EqualScript(t, "rule", want, out)
}

func TestWrite_SoftAndHardBreaks(t *testing.T) {
	t.Parallel()

	out, _ := transpile([]mdevent.Event{
		mdevent.Start(mdevent.Paragraph()),
		mdevent.Text("a"),
		mdevent.SoftBreak(),
		mdevent.Text("b"),
		mdevent.HardBreak(),
		mdevent.Text("c"),
		mdevent.End(mdevent.Paragraph()),
	})

	assert.Contains(t, out, "corg_debug \"a\nb\n\nc\"\n\n")
}

func TestWrite_InlineMarkupIsTransparent(t *testing.T) {
	t.Parallel()

	link := mdevent.Tag{Kind: mdevent.TagLink, Destination: "https://example.com"}

	out, _ := transpile([]mdevent.Event{
		mdevent.Start(mdevent.Paragraph()),
		mdevent.Start(mdevent.Simple(mdevent.TagEmphasis)),
		mdevent.Text("em"),
		mdevent.End(mdevent.Simple(mdevent.TagEmphasis)),
		mdevent.Start(link),
		mdevent.Text("link"),
		mdevent.End(link),
		mdevent.Code("make"),
		mdevent.InlineHTML("<br>"),
		mdevent.TaskListMarker(true),
		mdevent.End(mdevent.Paragraph()),
	})

	assert.Contains(t, out, "corg_debug \"emlinkmake<br>\"\n\n")
}

func TestWrite_TableEmitsCellText(t *testing.T) {
	t.Parallel()

	cell := func(text string) []mdevent.Event {
		return []mdevent.Event{
			mdevent.Start(mdevent.Simple(mdevent.TagTableCell)),
			mdevent.Text(text),
			mdevent.End(mdevent.Simple(mdevent.TagTableCell)),
		}
	}
	table := mdevent.Table(mdevent.AlignLeft, mdevent.AlignNone)

	out, _ := transpile(doc(
		[]mdevent.Event{mdevent.Start(table), mdevent.Start(mdevent.Simple(mdevent.TagTableHead))},
		cell("h1"), cell("h2"),
		[]mdevent.Event{mdevent.End(mdevent.Simple(mdevent.TagTableHead)), mdevent.Start(mdevent.Simple(mdevent.TagTableRow))},
		cell("b1"), cell("b2"),
		[]mdevent.Event{mdevent.End(mdevent.Simple(mdevent.TagTableRow)), mdevent.End(table)},
	))

	testutil.EqualScript(t, "table", "h1h2b1b2\n}\n\n# - run doc: \n", out)
}

func TestWrite_HeadingWithInlineCodeAndNote(t *testing.T) {
	t.Parallel()

	out, summary := transpile([]mdevent.Event{
		mdevent.Start(mdevent.Heading(2)),
		mdevent.Text("Run "),
		mdevent.Code("make"),
		mdevent.FootnoteReference("n"),
		mdevent.End(mdevent.Heading(2)),
	})

	want := "\n# - begin function:\nfunction run-make {\n" +
		"# -- note:\n# n #1" +
		"\n}\n\n# - run doc: \nrun-make"
	testutil.EqualScript(t, "heading", want, out)
	assert.Equal(t, []string{"run-make"}, summary.Functions)
}

func TestWrite_EmptyLevelTwoHeadingStillCounts(t *testing.T) {
	t.Parallel()

	out, summary := transpile([]mdevent.Event{
		mdevent.Start(mdevent.Heading(2)),
		mdevent.End(mdevent.Heading(2)),
		mdevent.Start(mdevent.Paragraph()),
		mdevent.Text("not a name"),
		mdevent.End(mdevent.Paragraph()),
	})

	assert.Equal(t, []string{""}, summary.Functions)
	assert.Contains(t, out, "function  {\n")
}

func TestWrite_UnclosedHeadingStillRecorded(t *testing.T) {
	t.Parallel()

	out, summary := transpile([]mdevent.Event{
		mdevent.Start(mdevent.Heading(2)),
		mdevent.Text("First"),
		mdevent.Start(mdevent.Heading(2)),
		mdevent.Text("Second"),
		mdevent.End(mdevent.Heading(2)),
	})

	assert.Equal(t, []string{"first", "second"}, summary.Functions)
	first := strings.Index(out, "function first {\n")
	second := strings.Index(out, "function second {\n")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, out[first:second], "}\n# - end function\n")
}

func TestWrite_DuplicateHeadingsKept(t *testing.T) {
	t.Parallel()

	out, summary := transpile(doc(heading(2, "Step"), heading(2, "Step")))
	assert.Equal(t, []string{"step", "step"}, summary.Functions)
	assert.True(t, strings.HasSuffix(out, "# - run doc: \nstep\nstep"))
}

func TestWrite_FunctionCountMatchesLevelTwoHeadings(t *testing.T) {
	t.Parallel()

	docs := [][]mdevent.Event{
		doc(heading(1, "T"), heading(2, "a"), heading(3, "b"), heading(2, "c")),
		doc(heading(2, "a"), paragraph("p"), codeBlock("", "x\n"), heading(2, "b"), heading(2, "c")),
		doc(heading(3, "only section"), paragraph("p")),
		doc(heading(1, "x"), heading(1, "y")),
	}

	for _, events := range docs {
		levelTwo := 0
		for _, ev := range events {
			if ev.Kind == mdevent.KindStart && ev.Tag.Kind == mdevent.TagHeading && ev.Tag.Level == 2 {
				levelTwo++
			}
		}

		out, summary := transpile(events)
		assert.Equal(t, levelTwo, strings.Count(out, "# - begin function:"))
		assert.Len(t, summary.Functions, levelTwo)
	}
}

func TestWrite_Deterministic(t *testing.T) {
	t.Parallel()

	events := doc(
		heading(1, "Runbook"),
		heading(2, "Install Deps"),
		codeBlock("bash", "cat << 'EOF'\nx\nEOF\n"),
		paragraph("done"),
		heading(2, "Verify"),
	)

	first, _ := transpile(events)
	second, _ := transpile(events)
	assert.Equal(t, first, second)
}

type failingWriter struct {
	budget int
}

var errSinkFull = errors.New("sink full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.budget <= 0 {
		return 0, errSinkFull
	}
	w.budget--
	return len(p), nil
}

func TestWrite_StopsOnFirstWriteError(t *testing.T) {
	t.Parallel()

	consumed := 0
	events := func(yield func(mdevent.Event) bool) {
		for _, ev := range doc(heading(2, "a"), heading(2, "b"), heading(2, "c")) {
			consumed++
			if !yield(ev) {
				return
			}
		}
	}

	summary, err := shell.Write(&failingWriter{budget: 1}, events)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSinkFull)
	assert.Contains(t, err.Error(), "write script")
	assert.Nil(t, summary)
	assert.Less(t, consumed, 9)
}

func TestWrite_ErrorDuringTrailer(t *testing.T) {
	t.Parallel()

	_, err := shell.Write(&failingWriter{budget: 0}, mdevent.Slice())
	assert.ErrorIs(t, err, errSinkFull)
}
