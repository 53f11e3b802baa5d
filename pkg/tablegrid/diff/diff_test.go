package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

func grid(rows ...[]string) *models.CellGrid {
	g := models.NewJaggedGrid[*models.CellDescriptor]()
	for r, row := range rows {
		cells := make([]*models.CellDescriptor, len(row))
		for c, text := range row {
			cells[c] = models.NewAnchor(r+1, c+1, text, models.FingerprintText(text))
		}
		g.AppendRow(cells...)
	}
	return g
}

func merged() *models.CellGrid {
	g := grid([]string{"h", "", "i"}, []string{"a", "b", "c"})
	h := g.At(1, 1)
	h.ColSpan = 2
	m := models.NewMerged(h)
	m.Coord = models.Coordinate{Row: 1, Col: 2}
	g.Set(1, 2, m)
	return g
}

func kinds(changes []models.GridChange) []models.ChangeKind {
	out := make([]models.ChangeKind, len(changes))
	for i, c := range changes {
		out[i] = c.Kind
	}
	return out
}

func TestDiffGridsIdempotent(t *testing.T) {
	for _, g := range []*models.CellGrid{
		grid(),
		grid([]string{"a", "b"}, []string{"c", "d"}),
		merged(),
	} {
		assert.Empty(t, DiffGrids(g, g))
		assert.Empty(t, DiffGrids(g, models.CloneCells(g)))
	}
}

func TestDiffGridsRowInserted(t *testing.T) {
	before := grid([]string{"a", "b"}, []string{"c", "d"}, []string{"e", "f"})
	after := grid([]string{"a", "b"}, []string{"x", "y"}, []string{"c", "d"}, []string{"e", "f"})

	changes := DiffGrids(before, after)
	require.NotEmpty(t, changes)
	assert.Equal(t, models.RowInserted, changes[0].Kind)
	assert.Equal(t, 2, changes[0].Row)
	// The insertion is reported once; shifted rows show up as cell changes.
	for _, c := range changes[1:] {
		assert.Equal(t, models.CellModified, c.Kind)
		assert.GreaterOrEqual(t, c.Row, 2)
	}
}

func TestDiffGridsRowDeleted(t *testing.T) {
	before := grid([]string{"a"}, []string{"b"}, []string{"c"})
	after := grid([]string{"a"}, []string{"b"})

	changes := DiffGrids(before, after)
	assert.Equal(t, []models.ChangeKind{models.RowDeleted}, kinds(changes))
	assert.Equal(t, 3, changes[0].Row)
}

func TestDiffGridsColumnChanges(t *testing.T) {
	before := grid([]string{"a", "b"}, []string{"c", "d"})
	after := grid([]string{"a", "n", "b"}, []string{"c", "m", "d"})

	changes := DiffGrids(before, after)
	require.NotEmpty(t, changes)
	assert.Equal(t, models.ColumnInserted, changes[0].Kind)
	assert.Equal(t, 2, changes[0].Col)

	back := DiffGrids(after, before)
	assert.Equal(t, models.ColumnDeleted, back[0].Kind)
	assert.Equal(t, 2, back[0].Col)
}

func TestDiffGridsCellModified(t *testing.T) {
	before := grid([]string{"a", "b"}, []string{"c", "d"})
	after := grid([]string{"a", "b"}, []string{"c", "D"})

	changes := DiffGrids(before, after)
	require.Len(t, changes, 1)
	assert.Equal(t, models.CellModified, changes[0].Kind)
	assert.Equal(t, 2, changes[0].Row)
	assert.Equal(t, 2, changes[0].Col)
	assert.Equal(t, "d", changes[0].Before.Text)
	assert.Equal(t, "D", changes[0].After.Text)
}

func TestDiffGridsMergeChange(t *testing.T) {
	changes := DiffGrids(grid([]string{"h", "", "i"}, []string{"a", "b", "c"}), merged())
	assert.Equal(t, []models.ChangeKind{models.CellModified, models.CellModified}, kinds(changes))
	assert.Equal(t, "cell_modified [1,2] M[1,2] -> *[1,1]", changes[1].String())
}

func TestUnifiedDump(t *testing.T) {
	before := grid([]string{"a", "b"})
	after := grid([]string{"a", "b"}, []string{"c", "d"})

	out, err := UnifiedDump(before, after, "old", "new")
	require.NoError(t, err)
	assert.Contains(t, out, "--- old")
	assert.Contains(t, out, "+++ new")
	assert.Contains(t, out, "+M[2,1] | M[2,2]")

	same, err := UnifiedDump(before, before, "old", "new")
	require.NoError(t, err)
	assert.Empty(t, same)

	added, err := UnifiedDump(nil, before, "old", "new")
	require.NoError(t, err)
	assert.Contains(t, added, "+M[1,1] | M[1,2]")
}
