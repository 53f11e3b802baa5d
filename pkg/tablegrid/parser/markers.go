package parser

import (
	"strings"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

// ParseTextMarkers splits the raw text of a table into logical rows of
// tokens. Rows are separated by the doubled delimiter and cells by the
// single one; every row is closed with an end token. columns is the
// expected column count used to rebalance rows whose tokens spilled over a
// separator; values below 1 skip the rebalancing.
//
// A row separator may swallow the slot of a vertical continuation. Such
// slots either show up as a leading empty token of the following row or
// are restored later by the horizontal reconciler.
func ParseTextMarkers(text string, columns int, delim string) *models.TextGrid {
	g := models.NewJaggedGrid[models.Token]()
	if text == "" {
		return g
	}

	pieces := strings.Split(text, delim+delim)
	tail := 0
	if last := pieces[len(pieces)-1]; last == "" {
		pieces = pieces[:len(pieces)-1]
	} else if len(pieces) > 1 && strings.ReplaceAll(last, delim, "") == "" {
		// A tail of bare delimiters: the last separator matched early and
		// the slots in between belong to the final row.
		pieces = pieces[:len(pieces)-1]
		tail = strings.Count(last, delim)
	}

	for _, piece := range pieces {
		parts := strings.Split(piece, delim)
		row := make([]models.Token, 0, len(parts)+1)
		for _, p := range parts {
			row = append(row, models.Token{Text: p})
		}
		row = append(row, models.EndToken())
		g.AppendRow(row...)
	}
	if r := g.RowCount(); r > 0 {
		for range tail {
			g.Insert(r, g.RowLen(r), models.MergeToken())
		}
	}

	if columns > 0 {
		rebalance(g, columns)
	}
	return g
}

// rebalance moves tokens across row boundaries so that no row holds more
// than columns slots while a neighbour can absorb the excess. Leading merge
// markers go back to a short previous row first; any remaining overflow is
// shifted to the front of the next row.
func rebalance(g *models.TextGrid, columns int) {
	for r := 1; r <= g.RowCount(); r++ {
		for r > 1 && slots(g, r) > columns && slots(g, r-1) < columns && g.At(r, 1).IsMerge() {
			tok := g.Remove(r, 1)
			g.Insert(r-1, g.RowLen(r-1), tok)
		}
		if over := slots(g, r) - columns; over > 0 && r < g.RowCount() && slots(g, r+1)+over <= columns {
			n := g.RowLen(r)
			tail := g.Truncate(r, n-1-over)
			g.Insert(r+1, 1, tail[:over]...)
			g.Append(r, models.EndToken())
		}
	}
}

// slots counts the tokens of row r that are not the end token.
func slots(g *models.TextGrid, r int) int {
	n := g.RowLen(r)
	if n > 0 && g.At(r, n).End {
		n--
	}
	return n
}
