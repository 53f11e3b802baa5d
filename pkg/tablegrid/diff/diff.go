// Package diff compares two grid snapshots of the same logical table.
package diff

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

// DiffGrids lists the structural changes between two grids. A row count
// change is reported once, at the first row that differs, and so is a
// column count change. Every overlapping position whose descriptor
// differs is reported as a modified cell. Neither grid is modified.
func DiffGrids(before, after *models.CellGrid) []models.GridChange {
	var changes []models.GridChange

	if nb, na := before.RowCount(), after.RowCount(); nb != na {
		r := firstDifference(nb, na, func(i int) bool { return sameRow(before, after, i) })
		kind := models.RowInserted
		if na < nb {
			kind = models.RowDeleted
		}
		changes = append(changes, models.GridChange{Kind: kind, Row: r})
	}

	if cb, ca := before.MaxRowLen(), after.MaxRowLen(); cb != ca {
		c := firstDifference(cb, ca, func(i int) bool { return sameColumn(before, after, i) })
		kind := models.ColumnInserted
		if ca < cb {
			kind = models.ColumnDeleted
		}
		changes = append(changes, models.GridChange{Kind: kind, Col: c})
	}

	for r := 1; r <= min(before.RowCount(), after.RowCount()); r++ {
		for c := 1; c <= min(before.RowLen(r), after.RowLen(r)); c++ {
			b, a := before.At(r, c), after.At(r, c)
			if !b.Equal(a) {
				changes = append(changes, models.GridChange{Kind: models.CellModified, Row: r, Col: c, Before: b, After: a})
			}
		}
	}
	return changes
}

// firstDifference returns the first index in 1..min(n, m) for which same
// reports false, or min(n, m)+1 when the common prefix matches.
func firstDifference(n, m int, same func(int) bool) int {
	i := 1
	for ; i <= min(n, m); i++ {
		if !same(i) {
			break
		}
	}
	return i
}

func sameRow(before, after *models.CellGrid, r int) bool {
	b, a := before.Row(r), after.Row(r)
	if len(b) != len(a) {
		return false
	}
	for i := range b {
		if !sameCell(b[i], a[i]) {
			return false
		}
	}
	return true
}

func sameColumn(before, after *models.CellGrid, c int) bool {
	if before.RowCount() != after.RowCount() {
		return false
	}
	for r := 1; r <= before.RowCount(); r++ {
		b, okb := before.Get(r, c)
		a, oka := after.Get(r, c)
		if okb != oka || !sameCell(b, a) {
			return false
		}
	}
	return true
}

// sameCell compares content and shape but not position, so a shifted row
// or column still matches its old self.
func sameCell(b, a *models.CellDescriptor) bool {
	if b == nil || a == nil {
		return b == a
	}
	if b.Kind != a.Kind {
		return false
	}
	bo, ao := b.Owner(), a.Owner()
	if bo == nil || ao == nil {
		return bo == ao
	}
	return bo.RowSpan == ao.RowSpan && bo.ColSpan == ao.ColSpan && bo.Identity.Equal(ao.Identity)
}

// UnifiedDump renders a unified diff of the two grid dumps. It returns an
// empty string when the dumps are identical.
func UnifiedDump(before, after *models.CellGrid, beforeName, afterName string) (string, error) {
	u := difflib.UnifiedDiff{
		A:        splitLines(models.DumpCells(before)),
		B:        splitLines(models.DumpCells(after)),
		FromFile: beforeName,
		ToFile:   afterName,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(u)
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s+"\n", "\n")
	return lines[:len(lines)-1]
}
