package host

import (
	"fmt"
	"strings"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

// StretchFiller is written into empty cells by Prepare so that every
// addressable cell renders some text.
const StretchFiller = " "

// LayoutCell is one physical cell of a table row.
type LayoutCell struct {
	// Text is the cell text; paragraphs are separated by "\r".
	Text string
	// GridSpan is the number of grid columns the cell covers (0 means 1).
	GridSpan int
	// Continue marks a vertical-merge continuation. Continuations are not
	// addressable and render as an empty slot in the raw text.
	Continue bool
	// Width is the measured width.
	Width float64
	// Format carries font and paragraph facts.
	Format models.CellFormat
	// Inaccessible makes CellAt fail for this cell.
	Inaccessible bool
}

func (c LayoutCell) span() int {
	if c.GridSpan < 1 {
		return 1
	}
	return c.GridSpan
}

// Layout is the physical description of a table, row by row.
type Layout struct {
	Rows [][]LayoutCell
}

// GridWidth returns the number of grid columns of row r (0-based).
func (l Layout) GridWidth(r int) int {
	n := 0
	for _, c := range l.Rows[r] {
		n += c.span()
	}
	return n
}

// Columns returns the widest row's grid width.
func (l Layout) Columns() int {
	max := 0
	for r := range l.Rows {
		if n := l.GridWidth(r); n > max {
			max = n
		}
	}
	return max
}

func (l Layout) clone() Layout {
	rows := make([][]LayoutCell, len(l.Rows))
	for i, row := range l.Rows {
		rows[i] = append([]LayoutCell(nil), row...)
	}
	return Layout{Rows: rows}
}

// LayoutTable serves a Layout through the Table interface the way the host
// application does: structural queries fail once cells are merged, vertical
// continuations cannot be addressed, and the raw text carries delimiters.
type LayoutTable struct {
	layout   Layout
	refs     []cellRef
	revealed bool
}

type cellRef struct {
	row, col, index int
}

// NewLayoutTable wraps a copy of l.
func NewLayoutTable(l Layout) *LayoutTable {
	t := &LayoutTable{layout: l.clone()}
	t.index()
	return t
}

func (t *LayoutTable) index() {
	t.refs = t.refs[:0]
	for r, row := range t.layout.Rows {
		for c, cell := range row {
			if cell.Continue {
				continue
			}
			t.refs = append(t.refs, cellRef{row: r + 1, col: c + 1, index: c})
		}
	}
}

// Layout returns a copy of the current physical layout.
func (t *LayoutTable) Layout() Layout {
	return t.layout.clone()
}

func (t *LayoutTable) hasVerticalMerge() bool {
	for _, row := range t.layout.Rows {
		for _, c := range row {
			if c.Continue {
				return true
			}
		}
	}
	return false
}

func (t *LayoutTable) hasMixedWidths() bool {
	for r, row := range t.layout.Rows {
		if t.layout.GridWidth(r) != t.layout.GridWidth(0) {
			return true
		}
		for _, c := range row {
			if c.span() > 1 {
				return true
			}
		}
	}
	return false
}

// RowCount implements Table.
func (t *LayoutTable) RowCount() (int, error) {
	return len(t.layout.Rows), nil
}

// ColumnCount implements Table.
func (t *LayoutTable) ColumnCount() (int, error) {
	if len(t.layout.Rows) == 0 {
		return 0, nil
	}
	if t.hasMixedWidths() {
		return 0, ErrMixedCellWidths
	}
	return t.layout.GridWidth(0), nil
}

// ProbeStructure implements Table.
func (t *LayoutTable) ProbeStructure() error {
	if len(t.layout.Rows) == 0 {
		return ErrNoRows
	}
	if t.hasVerticalMerge() {
		return ErrVerticallyMerged
	}
	if t.hasMixedWidths() {
		return ErrMixedCellWidths
	}
	return nil
}

// CellCount implements Table.
func (t *LayoutTable) CellCount() (int, error) {
	return len(t.refs), nil
}

// CellAt implements Table.
func (t *LayoutTable) CellAt(i int) (Cell, error) {
	if i < 1 || i > len(t.refs) {
		return nil, fmt.Errorf("cell %d: %w", i, ErrCellInaccessible)
	}
	ref := t.refs[i-1]
	cell := t.layout.Rows[ref.row-1][ref.index]
	if cell.Inaccessible {
		return nil, fmt.Errorf("cell (%d,%d): %w", ref.row, ref.col, ErrCellInaccessible)
	}
	return layoutCell{row: ref.row, col: ref.col, cell: cell}, nil
}

// RangeText implements Table.
func (t *LayoutTable) RangeText() (string, error) {
	var b strings.Builder
	for _, row := range t.layout.Rows {
		for _, c := range row {
			if !c.Continue {
				b.WriteString(c.Text)
			}
			b.WriteString(CellDelimiter)
		}
		b.WriteString(CellDelimiter)
	}
	return b.String(), nil
}

// Prepare implements Preparer. The table is fixed to 100 percent width,
// every grid column gets the same share and empty cells are stretched.
func (t *LayoutTable) Prepare() error {
	cols := t.layout.Columns()
	if cols == 0 {
		return nil
	}
	unit := 100.0 / float64(cols)
	for r, row := range t.layout.Rows {
		for c := range row {
			cell := &t.layout.Rows[r][c]
			cell.Width = float64(cell.span()) * unit
			if !cell.Continue && cell.Text == "" {
				cell.Text = StretchFiller
			}
		}
	}
	return nil
}

// Split implements Splitter. row is 1-based and becomes lower's first row.
func (t *LayoutTable) Split(row int) (Table, Table, error) {
	if row < 2 || row > len(t.layout.Rows) {
		return nil, nil, fmt.Errorf("split at row %d of %d: out of range", row, len(t.layout.Rows))
	}
	for _, c := range t.layout.Rows[row-1] {
		if c.Continue {
			return nil, nil, fmt.Errorf("split at row %d: %w", row, ErrSplitInsideMerge)
		}
	}
	upper := NewLayoutTable(Layout{Rows: t.layout.Rows[:row-1]})
	lower := NewLayoutTable(Layout{Rows: t.layout.Rows[row-1:]})
	return upper, lower, nil
}

// Reveal implements Revealer.
func (t *LayoutTable) Reveal() error {
	t.revealed = true
	return nil
}

// Revealed reports whether Reveal was called.
func (t *LayoutTable) Revealed() bool {
	return t.revealed
}

type layoutCell struct {
	row, col int
	cell     LayoutCell
}

func (c layoutCell) RowIndex() int             { return c.row }
func (c layoutCell) ColumnIndex() int          { return c.col }
func (c layoutCell) Text() (string, error)     { return c.cell.Text, nil }
func (c layoutCell) Width() (float64, error)   { return c.cell.Width, nil }
func (c layoutCell) Format() models.CellFormat { return c.cell.Format }
func (c layoutCell) GridSpan() int            { return c.cell.span() }
