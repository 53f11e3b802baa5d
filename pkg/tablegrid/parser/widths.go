package parser

import (
	"math"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

// DefaultSpanTolerance is subtracted from a width ratio before rounding so
// that measurement noise just above a half column does not add a span.
const DefaultSpanTolerance = 0.05

// WidthOptions tunes NormalizeWidths.
type WidthOptions struct {
	// SpanTolerance is subtracted from width/normal before rounding.
	SpanTolerance float64
	// FallbackReferenceRow is used when no row qualifies as reference.
	FallbackReferenceRow int
	// Columns is a lower bound on the column count, usually the scanner's
	// estimate.
	Columns int
	// Rows is a lower bound on the row count.
	Rows int
}

// WidthInfo describes how the width grid was derived.
type WidthInfo struct {
	NormalWidth  float64
	ReferenceRow int
	Columns      int
}

// NormalizeWidths builds the width grid: every observed cell becomes an
// anchor followed by span-1 merged descriptors, where span is the cell
// width in units of the normal column width. Rows are padded with ghosts to
// the common column count and closed with a row end.
//
// The normal width comes from a reference row; see referenceRow for the
// ranking.
func NormalizeWidths(obs []models.RawCellObservation, text *models.TextGrid, opts WidthOptions) (*models.CellGrid, WidthInfo) {
	rows := GroupByRow(obs, opts.Rows)
	ref := referenceRow(rows, text, opts.FallbackReferenceRow)

	info := WidthInfo{ReferenceRow: ref}
	if ref > 0 {
		total := 0.0
		for _, o := range rows[ref-1] {
			total += o.Width
		}
		info.NormalWidth = total / float64(len(rows[ref-1]))
	}

	g := models.NewJaggedGrid[*models.CellDescriptor]()
	columns := max(opts.Columns, 1)
	if ref > 0 {
		columns = max(columns, len(rows[ref-1]))
	}
	for r, row := range rows {
		cells := make([]*models.CellDescriptor, 0, len(row)+1)
		for _, o := range row {
			span := spanOf(o.Width, info.NormalWidth, opts.SpanTolerance)
			a := models.NewAnchor(r+1, len(cells)+1, o.Text, o.Identity())
			a.ColSpan = span
			cells = append(cells, a)
			for range span - 1 {
				cells = append(cells, models.NewMerged(a))
			}
		}
		columns = max(columns, len(cells))
		g.AppendRow(cells...)
	}

	for r := 1; r <= g.RowCount(); r++ {
		g.Pad(r, columns, models.NewGhost)
		g.Append(r, models.NewRowEnd())
	}
	info.Columns = columns
	return g, info
}

func spanOf(width, normal, tolerance float64) int {
	if normal <= 0 || width <= 0 {
		return 1
	}
	span := int(math.Floor(width/normal + 0.5 - tolerance))
	return max(span, 1)
}

// referenceRow picks the row the normal width is measured on. Candidates
// are rows whose observations match their text slots one to one. Among
// them the most cells win, equal counts go to the larger total width, and
// remaining ties to the earlier row. When the text has a different number
// of rows than the grid, a separator was swallowed and text rows cannot be
// matched by index, so every observed row is a candidate. Without any
// candidate the fallback row is used, then the row with the most cells.
func referenceRow(rows [][]models.RawCellObservation, text *models.TextGrid, fallback int) int {
	best, bestCells, bestWidth := 0, 0, 0.0
	aligned := text.RowCount() == len(rows)
	for i, row := range rows {
		if len(row) == 0 || text.RowCount() == 0 {
			continue
		}
		if aligned && len(row) != realTokens(text, i+1) {
			continue
		}
		total := 0.0
		for _, o := range row {
			total += o.Width
		}
		if len(row) > bestCells || (len(row) == bestCells && total > bestWidth) {
			best, bestCells, bestWidth = i+1, len(row), total
		}
	}
	if best > 0 {
		return best
	}
	if fallback >= 1 && fallback <= len(rows) && len(rows[fallback-1]) > 0 {
		return fallback
	}
	for i, row := range rows {
		if len(row) > bestCells {
			best, bestCells = i+1, len(row)
		}
	}
	return best
}

// realTokens counts the text-bearing tokens of row r.
func realTokens(text *models.TextGrid, r int) int {
	n := 0
	for _, t := range text.Row(r) {
		if !t.End && !t.IsMerge() {
			n++
		}
	}
	return n
}
