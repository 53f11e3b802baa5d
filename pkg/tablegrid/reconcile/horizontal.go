package reconcile

import (
	"fmt"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"go.uber.org/zap"
)

// HorizontalStats counts the patches applied by Horizontal.
type HorizontalStats struct {
	GhostsInserted  int
	GhostsDropped   int
	GhostsAdopted   int
	MarkersInserted int
	RowsJoined      int
	TokensMigrated  int
}

// Horizontal walks the width grid and the text grid row by row and patches
// both until every position agrees. cells and text are modified in place;
// callers hand in private copies. columns is the expected row width.
//
// Text row boundaries are treated as soft: a row separator may have
// swallowed the slot of a vertical continuation, so rows are joined where
// the grid shows the row continues. Slots are never taken from the next
// text row, since a leading merge marker there belongs to that row.
func Horizontal(cells *models.CellGrid, text *models.TextGrid, columns int, logger *zap.Logger) (HorizontalStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := horizontal{cells: cells, text: text, columns: columns, logger: logger}
	for r := 1; r <= cells.RowCount(); r++ {
		if err := h.row(r); err != nil {
			return h.stats, err
		}
	}

	if text.RowCount() != cells.RowCount() {
		return h.stats, fmt.Errorf("%w: %d text rows for %d grid rows", ErrFlattenMismatch, text.RowCount(), cells.RowCount())
	}
	if nt, nc := text.Count(), cells.Count(); nt != nc {
		return h.stats, fmt.Errorf("%w: %d text slots for %d grid cells", ErrFlattenMismatch, nt, nc)
	}
	return h.stats, nil
}

type horizontal struct {
	cells   *models.CellGrid
	text    *models.TextGrid
	columns int
	logger  *zap.Logger
	stats   HorizontalStats
}

func (h *horizontal) row(r int) error {
	if h.text.RowCount() < r {
		h.text.AppendRow(models.EndToken())
	}

	for c := 1; c <= h.cells.RowLen(r); {
		cell := h.cells.At(r, c)
		tok := h.text.At(r, c)

		switch {
		case cell.IsGhost() && c > h.columns:
			h.cells.Remove(r, c)
			h.stats.GhostsDropped++

		case cell.IsRowEnd():
			if !tok.End {
				h.migrate(r, c)
			}
			c++

		case cell.IsMerged():
			// Horizontally merged positions own no text slot.
			h.text.Insert(r, c, models.MergeToken())
			h.stats.MarkersInserted++
			c++

		case tok.End:
			if err := h.shortText(r, c, cell); err != nil {
				return err
			}

		case cell.IsAnchor() && tok.IsMerge():
			// A continuation leaves one slot however many columns it covers.
			w := h.continuationWidth(r, c)
			ghosts := make([]*models.CellDescriptor, w)
			for i := range ghosts {
				ghosts[i] = models.NewGhost()
			}
			h.cells.Insert(r, c, ghosts...)
			for range w - 1 {
				h.text.Insert(r, c, models.MergeToken())
			}
			h.stats.GhostsInserted += w
			h.stats.MarkersInserted += w - 1
			h.logger.Debug("ghosts inserted for merge marker", zap.Int("row", r), zap.Int("col", c), zap.Int("width", w))
			c += w

		case cell.IsGhost() && !tok.IsMerge():
			h.cells.Set(r, c, models.NewAnchor(r, c, tok.Text, models.NewFingerprint(tok.Text, models.CellFormat{})))
			h.stats.GhostsAdopted++
			h.logger.Debug("ghost adopted text slot", zap.Int("row", r), zap.Int("col", c))
			c++

		default:
			c++
		}
	}
	return nil
}

// shortText handles a text row that ends before the grid row does.
func (h *horizontal) shortText(r, c int, cell *models.CellDescriptor) error {
	hasNext := r < h.text.RowCount()
	switch {
	case cell.IsAnchor() && hasNext:
		h.join(r, c)
	case cell.IsAnchor():
		return fmt.Errorf("%w: anchor %s faces the end of text row %d", ErrContradiction, cell.Label(), r)
	case hasNext && h.text.RowLen(r+1) == 1:
		h.join(r, c)
	default:
		h.text.Insert(r, c, models.MergeToken())
		h.stats.MarkersInserted++
	}
	return nil
}

// continuationWidth returns the number of columns covered by the
// continuation starting at (r, c): the rest of the span, from column c, of
// the first resolved cell above it. Rows above r are already aligned.
func (h *horizontal) continuationWidth(r, c int) int {
	for k := r - 1; k >= 1; k-- {
		above, ok := h.cells.Get(k, c)
		if !ok || above.IsRowEnd() {
			return 1
		}
		if above.IsGhost() {
			continue
		}
		owner, w := above.Owner(), 0
		for _, cell := range h.cells.Row(k)[c-1:] {
			if cell.Owner() != owner {
				break
			}
			w++
		}
		return max(w, 1)
	}
	return 1
}

// join replaces the end token at (r, c) with the slot it swallowed and
// appends the next text row.
func (h *horizontal) join(r, c int) {
	next := h.text.RemoveRow(r + 1)
	h.text.Set(r, c, models.MergeToken())
	h.text.Append(r, next...)
	h.stats.RowsJoined++
	h.logger.Debug("text rows joined", zap.Int("row", r), zap.Int("col", c))
}

// migrate moves the tokens from (r, c) up to the end token into the front
// of the next text row and closes row r at c.
func (h *horizontal) migrate(r, c int) {
	n := h.text.RowLen(r)
	moved := h.text.Truncate(r, c-1)
	moved = moved[:n-c]
	h.text.Append(r, models.EndToken())
	if r < h.text.RowCount() {
		h.text.Insert(r+1, 1, moved...)
	} else {
		h.text.AppendRow(append(moved, models.EndToken())...)
	}
	h.stats.TokensMigrated += len(moved)
	h.logger.Debug("tokens migrated to next row", zap.Int("row", r), zap.Int("count", len(moved)))
}
