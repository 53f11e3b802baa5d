package reconcile

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/host"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/parser"
)

func cell(text string) host.LayoutCell {
	return host.LayoutCell{Text: text}
}

func spanning(text string, span int) host.LayoutCell {
	return host.LayoutCell{Text: text, GridSpan: span}
}

func cont(span int) host.LayoutCell {
	return host.LayoutCell{Continue: true, GridSpan: span}
}

// reconcileLayout runs the slow pipeline over a prepared layout table.
func reconcileLayout(t *testing.T, rows ...[]host.LayoutCell) (*models.CellGrid, VerticalResult, error) {
	t.Helper()
	table := host.NewLayoutTable(host.Layout{Rows: rows})
	require.NoError(t, table.Prepare())

	scan, err := parser.ScanCells(table, nil)
	require.NoError(t, err)
	raw, err := table.RangeText()
	require.NoError(t, err)
	text := parser.ParseTextMarkers(raw, scan.ColumnEstimate, host.CellDelimiter)
	cells, info := parser.NormalizeWidths(scan.Observations, text, parser.WidthOptions{
		SpanTolerance: parser.DefaultSpanTolerance,
		Columns:       scan.ColumnEstimate,
		Rows:          len(rows),
	})

	if _, err := Horizontal(cells, text, info.Columns, nil); err != nil {
		return cells, VerticalResult{}, err
	}
	res := Vertical(cells, text, info.Columns, nil)
	return cells, res, Finalize(cells, info.Columns, 0)
}

func TestReconcileLayouts(t *testing.T) {
	tests := []struct {
		name string
		rows [][]host.LayoutCell
		want string
	}{
		{
			name: "vertical merge in first column",
			rows: [][]host.LayoutCell{
				{cell("X"), cell("b")},
				{cont(1), cell("d")},
			},
			want: "M[1,1] | M[1,2]\n*[1,1] | M[2,2]",
		},
		{
			name: "horizontal merge",
			rows: [][]host.LayoutCell{
				{spanning("x", 2), cell("y")},
				{cell("a"), cell("b"), cell("c")},
			},
			want: "M[1,1] | *[1,1] | M[1,3]\nM[2,1] | M[2,2] | M[2,3]",
		},
		{
			name: "vertical merge in the middle of a row",
			rows: [][]host.LayoutCell{
				{cell("a"), cell("b"), cell("c")},
				{cell("d"), cont(1), cell("f")},
			},
			want: "M[1,1] | M[1,2] | M[1,3]\nM[2,1] | *[1,2] | M[2,3]",
		},
		{
			name: "vertical merge in the last column",
			rows: [][]host.LayoutCell{
				{cell("a"), cell("b")},
				{cell("c"), cont(1)},
				{cell("e"), cell("f")},
			},
			want: "M[1,1] | M[1,2]\nM[2,1] | *[1,2]\nM[3,1] | M[3,2]",
		},
		{
			name: "block merged in both directions",
			rows: [][]host.LayoutCell{
				{spanning("H", 2), cell("c")},
				{cont(2), cell("f")},
				{cell("g"), cell("h"), cell("i")},
			},
			want: "M[1,1] | *[1,1] | M[1,3]\n*[1,1] | *[1,1] | M[2,3]\nM[3,1] | M[3,2] | M[3,3]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, res, err := reconcileLayout(t, tt.rows...)
			require.NoError(t, err, models.DumpCells(cells))
			assert.Empty(t, res.Open)
			assert.Equal(t, tt.want, models.DumpCells(cells))
			assert.Zero(t, models.CountKind(cells, models.KindGhost))
		})
	}
}

func TestVerticalMergeGrowsRowSpan(t *testing.T) {
	cells, _, err := reconcileLayout(t,
		[]host.LayoutCell{cell("X"), cell("b")},
		[]host.LayoutCell{cont(1), cell("d")},
	)
	require.NoError(t, err)

	anchor := cells.At(1, 1)
	assert.Equal(t, 2, anchor.RowSpan)
	assert.Equal(t, 1, anchor.ColSpan)
	merged := cells.At(2, 1)
	require.True(t, merged.IsMerged())
	assert.Same(t, anchor, merged.Anchor)
}

func TestBlockMergeSpans(t *testing.T) {
	cells, _, err := reconcileLayout(t,
		[]host.LayoutCell{spanning("H", 2), cell("c")},
		[]host.LayoutCell{cont(2), cell("f")},
		[]host.LayoutCell{cell("g"), cell("h"), cell("i")},
	)
	require.NoError(t, err)
	anchor := cells.At(1, 1)
	assert.Equal(t, 2, anchor.RowSpan)
	assert.Equal(t, 2, anchor.ColSpan)
	assert.Equal(t, "H", anchor.Text)
}

func TestWideAndTallMergeSpans(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]host.LayoutCell
		want    string
		anchor  models.Coordinate
		rowSpan int
		colSpan int
	}{
		{
			name: "single column over three rows",
			rows: [][]host.LayoutCell{
				{cell("X"), cell("a")},
				{cont(1), cell("b")},
				{cont(1), cell("c")},
				{cell("d"), cell("e")},
			},
			want:    "M[1,1] | M[1,2]\n*[1,1] | M[2,2]\n*[1,1] | M[3,2]\nM[4,1] | M[4,2]",
			anchor:  models.Coordinate{Row: 1, Col: 1},
			rowSpan: 3,
			colSpan: 1,
		},
		{
			name: "two columns over three rows",
			rows: [][]host.LayoutCell{
				{spanning("X", 2), cell("a")},
				{cont(2), cell("b")},
				{cont(2), cell("c")},
				{cell("d"), cell("e"), cell("f")},
			},
			want:    "M[1,1] | *[1,1] | M[1,3]\n*[1,1] | *[1,1] | M[2,3]\n*[1,1] | *[1,1] | M[3,3]\nM[4,1] | M[4,2] | M[4,3]",
			anchor:  models.Coordinate{Row: 1, Col: 1},
			rowSpan: 3,
			colSpan: 2,
		},
		{
			name: "two by two block in the middle",
			rows: [][]host.LayoutCell{
				{cell("a"), cell("b"), cell("c"), cell("d")},
				{cell("e"), spanning("X", 2), cell("f")},
				{cell("g"), cont(2), cell("h")},
				{cell("i"), cell("j"), cell("k"), cell("l")},
			},
			want:    "M[1,1] | M[1,2] | M[1,3] | M[1,4]\nM[2,1] | M[2,2] | *[2,2] | M[2,4]\nM[3,1] | *[2,2] | *[2,2] | M[3,4]\nM[4,1] | M[4,2] | M[4,3] | M[4,4]",
			anchor:  models.Coordinate{Row: 2, Col: 2},
			rowSpan: 2,
			colSpan: 2,
		},
		{
			name: "wide block beside an empty cell",
			rows: [][]host.LayoutCell{
				{spanning("X", 2), cell("a"), cell("b")},
				{cont(2), cell(""), cell("c")},
				{cont(2), cell("d"), cell("e")},
				{cell("f"), cell("g"), cell("h"), cell("i")},
			},
			want:    "M[1,1] | *[1,1] | M[1,3] | M[1,4]\n*[1,1] | *[1,1] | M[2,3] | M[2,4]\n*[1,1] | *[1,1] | M[3,3] | M[3,4]\nM[4,1] | M[4,2] | M[4,3] | M[4,4]",
			anchor:  models.Coordinate{Row: 1, Col: 1},
			rowSpan: 3,
			colSpan: 2,
		},
		{
			name: "wide continuation after the first column",
			rows: [][]host.LayoutCell{
				{cell(""), spanning("X", 2), cell("c")},
				{cell("d"), cont(2), cell("f")},
				{cell("g"), cell("h"), cell("i"), cell("j")},
			},
			want:    "M[1,1] | M[1,2] | *[1,2] | M[1,4]\nM[2,1] | *[1,2] | *[1,2] | M[2,4]\nM[3,1] | M[3,2] | M[3,3] | M[3,4]",
			anchor:  models.Coordinate{Row: 1, Col: 2},
			rowSpan: 2,
			colSpan: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells, res, err := reconcileLayout(t, tt.rows...)
			require.NoError(t, err, models.DumpCells(cells))
			assert.Empty(t, res.Open)
			assert.Equal(t, tt.want, models.DumpCells(cells))

			anchor := cells.At(tt.anchor.Row, tt.anchor.Col)
			require.True(t, anchor.IsAnchor())
			assert.Equal(t, tt.rowSpan, anchor.RowSpan)
			assert.Equal(t, tt.colSpan, anchor.ColSpan)
			assert.Equal(t, "X", anchor.Text)
			assert.NoError(t, Validate(cells))
		})
	}
}

func TestHorizontalKeepsNextRowContinuation(t *testing.T) {
	x := models.NewAnchor(1, 1, "X", models.Fingerprint{})
	x.ColSpan = 2
	a := models.NewAnchor(1, 3, "a", models.Fingerprint{})
	b := models.NewAnchor(2, 1, "b", models.Fingerprint{})
	c := models.NewAnchor(3, 1, "c", models.Fingerprint{})
	cells := models.GridFromRows([][]*models.CellDescriptor{
		{x, models.NewMerged(x), a, models.NewRowEnd()},
		{b, models.NewGhost(), models.NewGhost(), models.NewRowEnd()},
		{c, models.NewGhost(), models.NewGhost(), models.NewRowEnd()},
	})
	text := models.GridFromRows([][]models.Token{
		{{Text: "X"}, {Text: "a"}, models.EndToken()},
		{models.MergeToken(), {Text: "b"}, models.EndToken()},
		{models.MergeToken(), {Text: "c"}, models.EndToken()},
	})

	stats, err := Horizontal(cells, text, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.GhostsInserted)
	assert.Equal(t, []string{
		"G[???] | G[???] | M[2,1] | [END]",
		"G[???] | G[???] | M[3,1] | [END]",
	}, strings.Split(models.DumpCells(cells), "\n")[1:])
	assert.Equal(t, []string{
		`~ | ~ | "b" | [END]`,
		`~ | ~ | "c" | [END]`,
	}, strings.Split(models.DumpTokens(text), "\n")[1:])
}

func TestHorizontalFlattenMismatch(t *testing.T) {
	a, b := models.NewAnchor(1, 1, "a", models.Fingerprint{}), models.NewAnchor(1, 2, "b", models.Fingerprint{})
	cells := models.GridFromRows([][]*models.CellDescriptor{{a, b, models.NewRowEnd()}})
	text := models.GridFromRows([][]models.Token{{{Text: "a"}, {Text: "b"}, {Text: "c"}, models.EndToken()}})

	_, err := Horizontal(cells, text, 2, nil)
	assert.True(t, errors.Is(err, ErrFlattenMismatch), "got %v", err)
}

func TestHorizontalAnchorPastText(t *testing.T) {
	a, b := models.NewAnchor(1, 1, "a", models.Fingerprint{}), models.NewAnchor(1, 2, "b", models.Fingerprint{})
	cells := models.GridFromRows([][]*models.CellDescriptor{{a, b, models.NewRowEnd()}})
	text := models.GridFromRows([][]models.Token{{{Text: "a"}, models.EndToken()}})

	_, err := Horizontal(cells, text, 2, nil)
	assert.ErrorIs(t, err, ErrContradiction)
}

func TestHorizontalAdoptsSkippedCell(t *testing.T) {
	a := models.NewAnchor(1, 1, "a", models.Fingerprint{})
	cells := models.GridFromRows([][]*models.CellDescriptor{{a, models.NewGhost(), models.NewRowEnd()}})
	text := models.GridFromRows([][]models.Token{{{Text: "a"}, {Text: "b"}, models.EndToken()}})

	stats, err := Horizontal(cells, text, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GhostsAdopted)
	assert.True(t, cells.At(1, 2).IsAnchor())
	assert.Equal(t, "b", cells.At(1, 2).Text)
}

func TestVerticalTopRowGhostIsOpen(t *testing.T) {
	a := models.NewAnchor(1, 1, "a", models.Fingerprint{})
	cells := models.GridFromRows([][]*models.CellDescriptor{{a, models.NewGhost(), models.NewRowEnd()}})
	text := models.GridFromRows([][]models.Token{{{Text: "a"}, models.MergeToken(), models.EndToken()}})

	_, err := Horizontal(cells, text, 2, nil)
	require.NoError(t, err)
	res := Vertical(cells, text, 2, nil)
	require.Len(t, res.Open, 1)
	assert.Equal(t, models.Coordinate{Row: 1, Col: 2}, res.Open[0].Coord)
	assert.Equal(t, "G[???]", cells.At(1, 2).Label())

	assert.ErrorIs(t, Finalize(cells, 2, 0), ErrGhostCell)
}

func TestFinalizeSpanCoverage(t *testing.T) {
	a := models.NewAnchor(1, 1, "a", models.Fingerprint{})
	a.RowSpan = 2
	b := models.NewAnchor(1, 2, "b", models.Fingerprint{})
	c := models.NewAnchor(2, 1, "c", models.Fingerprint{})
	d := models.NewAnchor(2, 2, "d", models.Fingerprint{})
	cells := models.GridFromRows([][]*models.CellDescriptor{{a, b}, {c, d}})

	assert.ErrorIs(t, Finalize(cells, 2, 0), ErrSpanCoverage)
}

func TestFinalizeRagged(t *testing.T) {
	a := models.NewAnchor(1, 1, "a", models.Fingerprint{})
	b := models.NewAnchor(1, 2, "b", models.Fingerprint{})
	c := models.NewAnchor(2, 1, "c", models.Fingerprint{})
	cells := models.GridFromRows([][]*models.CellDescriptor{{a, b, models.NewRowEnd()}, {c, models.NewRowEnd()}})

	assert.ErrorIs(t, Finalize(cells, 2, 0), ErrRaggedGrid)
}

func TestFinalizeAppliesRowOffset(t *testing.T) {
	a := models.NewAnchor(1, 1, "a", models.Fingerprint{})
	a.RowSpan = 2
	b := models.NewAnchor(1, 2, "b", models.Fingerprint{})
	m := models.NewMerged(a)
	m.Coord = models.Coordinate{Row: 2, Col: 1}
	d := models.NewAnchor(2, 2, "d", models.Fingerprint{})
	cells := models.GridFromRows([][]*models.CellDescriptor{{a, b, models.NewRowEnd()}, {m, d, models.NewRowEnd()}})

	require.NoError(t, Finalize(cells, 2, 3))
	assert.Equal(t, "M[4,1] | M[4,2]\n*[4,1] | M[5,2]", models.DumpCells(cells))
	assert.NoError(t, Validate(cells))
}
