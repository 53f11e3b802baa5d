package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergedLayout() Layout {
	return Layout{Rows: [][]LayoutCell{
		{{Text: "a", GridSpan: 2, Width: 20}, {Text: "b", Width: 10}},
		{{Continue: true, GridSpan: 2, Width: 20}, {Text: "", Width: 10}},
		{{Text: "c", Width: 10}, {Text: "d", Width: 10, Inaccessible: true}, {Text: "e", Width: 10}},
	}}
}

func TestLayoutTableStructure(t *testing.T) {
	table := NewLayoutTable(mergedLayout())

	rows, err := table.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	_, err = table.ColumnCount()
	assert.ErrorIs(t, err, ErrMixedCellWidths)
	assert.ErrorIs(t, table.ProbeStructure(), ErrVerticallyMerged)
	assert.ErrorIs(t, NewLayoutTable(Layout{}).ProbeStructure(), ErrNoRows)

	plain := NewLayoutTable(Layout{Rows: [][]LayoutCell{{{Text: "x"}, {Text: "y"}}}})
	assert.NoError(t, plain.ProbeStructure())
	cols, err := plain.ColumnCount()
	require.NoError(t, err)
	assert.Equal(t, 2, cols)
}

func TestLayoutTableCells(t *testing.T) {
	table := NewLayoutTable(mergedLayout())

	n, err := table.CellCount()
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	c, err := table.CellAt(3)
	require.NoError(t, err)
	assert.Equal(t, 2, c.RowIndex())
	assert.Equal(t, 2, c.ColumnIndex())

	_, err = table.CellAt(5)
	assert.True(t, errors.Is(err, ErrCellInaccessible))
	_, err = table.CellAt(7)
	assert.ErrorIs(t, err, ErrCellInaccessible)
}

func TestLayoutTableRangeText(t *testing.T) {
	text, err := NewLayoutTable(mergedLayout()).RangeText()
	require.NoError(t, err)
	d := CellDelimiter
	assert.Equal(t, "a"+d+"b"+d+d+d+d+d+"c"+d+"d"+d+"e"+d+d, text)
}

func TestLayoutTablePrepare(t *testing.T) {
	table := NewLayoutTable(mergedLayout())
	require.NoError(t, table.Prepare())

	l := table.Layout()
	assert.InDelta(t, 200.0/3, l.Rows[0][0].Width, 1e-9)
	assert.InDelta(t, 100.0/3, l.Rows[0][1].Width, 1e-9)
	assert.Equal(t, StretchFiller, l.Rows[1][1].Text)
	assert.Equal(t, "", l.Rows[1][0].Text)
}

func TestLayoutTableSplit(t *testing.T) {
	table := NewLayoutTable(mergedLayout())

	_, _, err := table.Split(2)
	assert.ErrorIs(t, err, ErrSplitInsideMerge)
	_, _, err = table.Split(1)
	assert.Error(t, err)

	upper, lower, err := table.Split(3)
	require.NoError(t, err)
	ur, _ := upper.RowCount()
	lr, _ := lower.RowCount()
	assert.Equal(t, 2, ur)
	assert.Equal(t, 1, lr)
	assert.NoError(t, lower.ProbeStructure())
}

func TestLayoutTableReveal(t *testing.T) {
	table := NewLayoutTable(mergedLayout())
	assert.False(t, table.Revealed())
	require.NoError(t, table.Reveal())
	assert.True(t, table.Revealed())
}
