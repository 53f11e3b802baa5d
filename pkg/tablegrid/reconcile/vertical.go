package reconcile

import (
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"go.uber.org/zap"
)

// OpenItem is a ghost the vertical pass could not resolve.
type OpenItem struct {
	Coord  models.Coordinate `json:"coord"`
	Reason string            `json:"reason"`
}

// VerticalResult reports what Vertical did.
type VerticalResult struct {
	Resolved int
	Open     []OpenItem
	Warnings int
}

// Vertical resolves the ghosts left by Horizontal. Rows are visited top to
// bottom, so every column is scanned top-down and the cell above a ghost is
// final when the ghost is reached. A ghost inherits the owner of the cell
// above: it becomes a merged descriptor, the owner's row span grows to
// reach it, and the owner's remaining column span is filled with merged
// descriptors. Ghosts without a usable cell above stay as open items.
//
// Trailing ghosts beyond columns are dropped together with their text
// slots, and every descriptor gets its final coordinate.
func Vertical(cells *models.CellGrid, text *models.TextGrid, columns int, logger *zap.Logger) VerticalResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res VerticalResult
	for r := 1; r <= cells.RowCount(); r++ {
		for c := 1; c <= cells.RowLen(r); c++ {
			cell := cells.At(r, c)
			if !cell.IsGhost() {
				continue
			}
			owner, _ := ownerAbove(cells, r, c)
			if owner == nil {
				continue
			}
			cells.Set(r, c, models.NewMerged(owner))
			owner.RowSpan = max(owner.RowSpan, r-owner.Coord.Row+1)
			res.Resolved++
			fill(cells, text, owner, r, c)
		}

		trimGhosts(cells, text, r, columns)
		for c, cell := range cells.Row(r) {
			if cell.IsRowEnd() {
				continue
			}
			if cell.IsGhost() {
				_, reason := ownerAbove(cells, r, c+1)
				res.Open = append(res.Open, OpenItem{Coord: models.Coordinate{Row: r, Col: c + 1}, Reason: reason})
				logger.Warn("ghost cell left unresolved", zap.Int("row", r), zap.Int("col", c+1), zap.String("reason", reason))
			}
			cell.Coord = models.Coordinate{Row: r, Col: c + 1}
		}
		res.Warnings += checkRow(cells, text, r, logger)
	}
	return res
}

// ownerAbove returns the anchor owning the cell directly above (r, c).
func ownerAbove(cells *models.CellGrid, r, c int) (*models.CellDescriptor, string) {
	if r == 1 {
		return nil, "top row has no cell above"
	}
	above, ok := cells.Get(r-1, c)
	if !ok || above.IsRowEnd() {
		return nil, "no cell above"
	}
	if above.IsGhost() {
		return nil, "cell above is unresolved"
	}
	if above.Owner() == nil {
		return nil, "cell above has no anchor"
	}
	return above.Owner(), ""
}

// fill covers the rest of owner's column span on row r, starting after c.
// Ghosts standing on merge slots are consumed; otherwise merged
// descriptors are inserted together with their text slots.
func fill(cells *models.CellGrid, text *models.TextGrid, owner *models.CellDescriptor, r, c int) {
	n := owner.Coord.Col + owner.ColSpan - c
	for i := 1; i < n; i++ {
		next, ok := cells.Get(r, c+i)
		if ok && next.IsGhost() {
			if tok, ok := text.Get(r, c+i); ok && tok.IsMerge() {
				cells.Set(r, c+i, models.NewMerged(owner))
				continue
			}
		}
		cells.Insert(r, c+i, models.NewMerged(owner))
		text.Insert(r, c+i, models.MergeToken())
	}
}

// trimGhosts drops ghosts standing beyond columns at the end of row r.
func trimGhosts(cells *models.CellGrid, text *models.TextGrid, r, columns int) {
	for c := cells.RowLen(r); c > columns; c-- {
		cell := cells.At(r, c)
		if cell.IsRowEnd() {
			continue
		}
		if !cell.IsGhost() {
			return
		}
		cells.Remove(r, c)
		text.Remove(r, c)
	}
}

// checkRow logs positions where a descriptor and its text slot disagree.
func checkRow(cells *models.CellGrid, text *models.TextGrid, r int, logger *zap.Logger) int {
	warnings := 0
	for c, cell := range cells.Row(r) {
		tok, ok := text.Get(r, c+1)
		if !ok {
			break
		}
		var msg string
		switch {
		case cell.IsAnchor() && (tok.IsMerge() || tok.End):
			msg = "anchor stands on an empty slot"
		case cell.IsMerged() && !tok.IsMerge():
			msg = "merged cell stands on a text slot"
		case cell.IsRowEnd() && !tok.End:
			msg = "row end does not match text"
		}
		if msg != "" {
			warnings++
			logger.Warn(msg, zap.Int("row", r), zap.Int("col", c+1), zap.String("cell", cell.Label()), zap.String("token", tok.Label()))
		}
	}
	return warnings
}
