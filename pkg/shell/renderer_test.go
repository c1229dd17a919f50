package shell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tehprofessor/corg/pkg/mdevent"
	"github.com/tehprofessor/corg/pkg/shell"
)

func TestCodeBlockRenderer_Lang(t *testing.T) {
	t.Parallel()

	r := shell.CodeBlockRenderer("bash title=setup")
	assert.Equal(t, shell.RenderCodeBlock, r.Kind)
	assert.Equal(t, "bash", r.Lang)
	assert.Equal(t, "bash title=setup", r.Info)
	assert.Equal(t, "# - begin code:\n", r.Start(true))
	assert.Equal(t, "\tls", r.Render("ls"))
	assert.Empty(t, r.End())

	assert.Empty(t, shell.CodeBlockRenderer("").Lang)
}

func TestParagraphRenderer(t *testing.T) {
	t.Parallel()

	r := shell.ParagraphRenderer()
	assert.Equal(t, "\n# - paragraph:\ncorg_debug \"", r.Start(false))
	assert.Equal(t, "as is", r.Render("as is"))
	assert.Equal(t, "\"\n\n", r.End())
}

func TestHeadingRenderer_PassesTextThrough(t *testing.T) {
	t.Parallel()

	h := shell.NewHeading(2, nil)
	r := shell.HeadingRenderer(h)
	assert.Equal(t, "\n# - begin function:\n", r.Start(true))
	assert.Equal(t, "after", r.Render("after"))
	assert.Empty(t, r.End())
}

func TestPassthroughRenderer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind        mdevent.TagKind
		atLineStart bool
		want        string
	}{
		{mdevent.TagItem, true, "# -"},
		{mdevent.TagItem, false, "\n# -"},
		{mdevent.TagBlockQuote, true, "# block quotecorg_info \n"},
		{mdevent.TagEmphasis, false, ""},
		{mdevent.TagImage, true, ""},
		{mdevent.TagTableCell, true, ""},
	}

	for _, tc := range tests {
		r := shell.PassthroughRenderer(tc.kind)
		assert.Equal(t, tc.want, r.Start(tc.atLineStart), tc.kind.String())
		assert.Empty(t, r.End())
	}
}

func TestRendererKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "code_block", shell.RenderCodeBlock.String())
	assert.Equal(t, "unknown", shell.RendererKind(42).String())
}
