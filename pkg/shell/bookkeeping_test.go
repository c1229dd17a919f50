package shell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tehprofessor/corg/pkg/mdevent"
	"github.com/tehprofessor/corg/pkg/shell"
)

func TestFootnotes_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	var f shell.Footnotes
	assert.Equal(t, 1, f.Number("x"))
	assert.Equal(t, 2, f.Number("y"))
	assert.Equal(t, 1, f.Number("x"))
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"x", "y"}, f.Names())
}

func TestTable_Cursor(t *testing.T) {
	t.Parallel()

	var table shell.Table
	table.Begin([]mdevent.Alignment{mdevent.AlignLeft, mdevent.AlignRight})

	table.StartHead()
	assert.Equal(t, shell.TableHead, table.Section)
	assert.Equal(t, mdevent.AlignLeft, table.Alignment())
	table.EndCell()
	assert.Equal(t, mdevent.AlignRight, table.Alignment())
	table.EndCell()
	assert.Equal(t, mdevent.AlignNone, table.Alignment())
	table.EndHead()
	assert.Equal(t, shell.TableBody, table.Section)

	table.StartRow()
	assert.Equal(t, 0, table.CellIndex)
	table.EndCell()
	assert.Equal(t, 1, table.CellIndex)
	assert.Equal(t, shell.TableBody, table.Section)
}
