// Package host defines the table abstraction the grid analyzer consumes and
// the adapters that expose DOCX and XLSX tables through it.
package host

import (
	"errors"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

// CellDelimiter ends every cell in a table's raw text. A row ends with one
// more delimiter, so the row separator is the delimiter doubled.
const CellDelimiter = "\r\a"

var (
	// ErrMixedCellWidths is returned by structural queries on tables whose
	// rows do not share one column layout.
	ErrMixedCellWidths = errors.New("cannot access individual columns because the table has mixed cell widths")
	// ErrVerticallyMerged is returned by row access on tables with
	// vertically merged cells.
	ErrVerticallyMerged = errors.New("cannot access individual rows because the table has vertically merged cells")
	// ErrCellInaccessible is returned for a cell the host refuses to expose.
	ErrCellInaccessible = errors.New("the requested member of the collection does not exist")
	// ErrSplitInsideMerge is returned when a split row cuts a merged region.
	ErrSplitInsideMerge = errors.New("split point lies inside a merged region")
	// ErrNoRows is returned by probes on a table without rows.
	ErrNoRows = errors.New("table has no rows")
)

// Table is one host table. Structural queries are best-effort: they fail
// on tables the host cannot describe as a plain grid.
type Table interface {
	// RowCount returns the number of rows.
	RowCount() (int, error)
	// ColumnCount returns the number of grid columns.
	ColumnCount() (int, error)
	// ProbeStructure touches the first row and column.
	ProbeStructure() error
	// CellCount returns the number of addressable cells.
	CellCount() (int, error)
	// CellAt returns the i-th addressable cell (1-based, row-major).
	CellAt(i int) (Cell, error)
	// RangeText returns the table text with embedded cell delimiters.
	RangeText() (string, error)
}

// Cell is one addressable host cell.
type Cell interface {
	RowIndex() int
	ColumnIndex() int
	Text() (string, error)
	Width() (float64, error)
	Format() models.CellFormat
}

// Spanner is implemented by cells that report how many grid columns they
// cover.
type Spanner interface {
	GridSpan() int
}

// Preparer normalizes a table before widths are measured: zero padding and
// spacing, a percentage table width and content stretched so auto-fit
// yields uniform columns.
type Preparer interface {
	Prepare() error
}

// Splitter cuts a table so that row becomes the first row of lower.
type Splitter interface {
	Split(row int) (upper, lower Table, err error)
}

// Revealer surfaces the owning document for manual inspection.
type Revealer interface {
	Reveal() error
}
