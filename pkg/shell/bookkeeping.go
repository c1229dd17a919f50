package shell

import "github.com/tehprofessor/corg/pkg/mdevent"

// Footnotes assigns stable numbers to footnote names in first-seen order.
// The zero value is ready to use.
type Footnotes struct {
	numbers map[string]int
	order   []string
}

// Number returns the number assigned to name, assigning the next free number
// on first sight. Lookups never miss.
func (f *Footnotes) Number(name string) int {
	if n, ok := f.numbers[name]; ok {
		return n
	}
	if f.numbers == nil {
		f.numbers = make(map[string]int)
	}
	n := len(f.order) + 1
	f.numbers[name] = n
	f.order = append(f.order, name)
	return n
}

// Names returns the registered footnote names in first-seen order.
func (f *Footnotes) Names() []string {
	names := make([]string, len(f.order))
	copy(names, f.order)
	return names
}

// Len returns the number of distinct footnote names seen.
func (f *Footnotes) Len() int {
	return len(f.order)
}

// TableSection is the part of a table the cursor is in.
type TableSection int

const (
	TableHead TableSection = iota
	TableBody
)

// Table tracks the position inside the current table.
//
// Column alignments are kept for each table but do not change the output.
type Table struct {
	Section    TableSection
	CellIndex  int
	Alignments []mdevent.Alignment
}

// Begin records the alignments of a new table.
func (t *Table) Begin(alignments []mdevent.Alignment) {
	t.Alignments = alignments
}

// StartHead moves the cursor into the header section.
func (t *Table) StartHead() {
	t.Section = TableHead
	t.CellIndex = 0
}

// EndHead moves the cursor into the body for the rest of the table.
func (t *Table) EndHead() {
	t.Section = TableBody
}

// StartRow resets the cell index for a new row.
func (t *Table) StartRow() {
	t.CellIndex = 0
}

// EndCell advances to the next cell.
func (t *Table) EndCell() {
	t.CellIndex++
}

// Alignment returns the alignment of the current cell's column.
func (t *Table) Alignment() mdevent.Alignment {
	if t.CellIndex < 0 || t.CellIndex >= len(t.Alignments) {
		return mdevent.AlignNone
	}
	return t.Alignments[t.CellIndex]
}
