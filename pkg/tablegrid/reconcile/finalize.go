package reconcile

import (
	"fmt"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

// Finalize strips row ends, enforces the final-grid invariants and shifts
// every coordinate down by rowOffset. A grid that fails a check is left
// untouched.
func Finalize(cells *models.CellGrid, columns, rowOffset int) error {
	for r := 1; r <= cells.RowCount(); r++ {
		row := cells.Row(r)
		for len(row) > 0 && row[len(row)-1].IsRowEnd() {
			row = row[:len(row)-1]
		}
		cells.SetRow(r, row)
	}

	if err := Validate(cells); err != nil {
		return err
	}
	if cells.RowCount() > 0 && cells.RowLen(1) != columns {
		return fmt.Errorf("%w: %d columns, want %d", ErrRaggedGrid, cells.RowLen(1), columns)
	}

	if rowOffset != 0 {
		for _, cell := range cells.Flatten() {
			cell.Coord.Row += rowOffset
		}
	}
	return nil
}

// Validate checks a finalized grid: no ghosts or row ends, equal row
// lengths, coordinates matching positions, and every anchor span covered
// by the anchor's own descriptors.
func Validate(cells *models.CellGrid) error {
	base := 0
	if cells.RowCount() > 0 && cells.RowLen(1) > 0 {
		base = cells.At(1, 1).Coord.Row - 1
	}
	for r := 1; r <= cells.RowCount(); r++ {
		if cells.RowLen(r) != cells.RowLen(1) {
			return fmt.Errorf("%w: row %d has %d cells, row 1 has %d", ErrRaggedGrid, r, cells.RowLen(r), cells.RowLen(1))
		}
		for c, cell := range cells.Row(r) {
			switch {
			case cell == nil || cell.IsRowEnd():
				return fmt.Errorf("%w: no cell at [%d,%d]", ErrRaggedGrid, r, c+1)
			case cell.IsGhost():
				return fmt.Errorf("%w at [%d,%d]", ErrGhostCell, r, c+1)
			}
			if want := (models.Coordinate{Row: base + r, Col: c + 1}); cell.Coord != want {
				return fmt.Errorf("%w: cell at %s carries coordinate %s", ErrRaggedGrid, want, cell.Coord)
			}
		}
	}

	for r := 1; r <= cells.RowCount(); r++ {
		for c, cell := range cells.Row(r) {
			owner := cell.Owner()
			if owner == nil || !owner.Covers(cell.Coord.Row, cell.Coord.Col) {
				return fmt.Errorf("%w: %s at [%d,%d] lies outside its anchor", ErrSpanCoverage, cell.Label(), r, c+1)
			}
			if !cell.IsAnchor() {
				continue
			}
			for rr := r; rr < r+cell.RowSpan; rr++ {
				for cc := c + 1; cc < c+1+cell.ColSpan; cc++ {
					got, ok := cells.Get(rr, cc)
					if !ok || got.Owner() != cell {
						return fmt.Errorf("%w: %s does not reach [%d,%d]", ErrSpanCoverage, cell.Label(), rr, cc)
					}
				}
			}
		}
	}
	return nil
}
