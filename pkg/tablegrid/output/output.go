// Package output serializes analysis results.
package output

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CellView is the serialized form of a descriptor.
type CellView struct {
	Row      int                `json:"row"`
	Col      int                `json:"col"`
	Kind     models.Kind        `json:"kind"`
	Anchor   *models.Coordinate `json:"anchor,omitempty"`
	RowSpan  int                `json:"row_span,omitempty"`
	ColSpan  int                `json:"col_span,omitempty"`
	Text     string             `json:"text,omitempty"`
	Identity string             `json:"identity,omitempty"`
}

// GridView is the serialized form of one analyzed table.
type GridView struct {
	Source  string       `json:"source,omitempty"`
	Table   int          `json:"table"`
	Rows    int          `json:"rows"`
	Columns int          `json:"columns"`
	Cells   [][]CellView `json:"cells"`
}

// ChangeView is the serialized form of a GridChange.
type ChangeView struct {
	Kind   models.ChangeKind `json:"kind"`
	Row    int               `json:"row,omitempty"`
	Col    int               `json:"col,omitempty"`
	Before string            `json:"before,omitempty"`
	After  string            `json:"after,omitempty"`
}

// NewGridView converts a finalized grid.
func NewGridView(source string, table int, g *models.CellGrid) GridView {
	v := GridView{Source: source, Table: table, Rows: g.RowCount(), Columns: g.MaxRowLen()}
	v.Cells = make([][]CellView, g.RowCount())
	for r := 1; r <= g.RowCount(); r++ {
		row := g.Row(r)
		v.Cells[r-1] = make([]CellView, len(row))
		for i, c := range row {
			v.Cells[r-1][i] = newCellView(c)
		}
	}
	return v
}

func newCellView(c *models.CellDescriptor) CellView {
	v := CellView{Row: c.Coord.Row, Col: c.Coord.Col, Kind: c.Kind}
	switch c.Kind {
	case models.KindAnchor:
		v.RowSpan, v.ColSpan, v.Text = c.RowSpan, c.ColSpan, c.Text
		if !c.Identity.IsZero() {
			v.Identity = c.Identity.String()
		}
	case models.KindMerged:
		if c.Anchor != nil {
			at := c.Anchor.Coord
			v.Anchor = &at
		}
	}
	return v
}

// NewChangeViews converts a diff result.
func NewChangeViews(changes []models.GridChange) []ChangeView {
	out := make([]ChangeView, len(changes))
	for i, c := range changes {
		out[i] = ChangeView{Kind: c.Kind, Row: c.Row, Col: c.Col}
		if c.Before != nil {
			out[i].Before = c.Before.Label()
		}
		if c.After != nil {
			out[i].After = c.After.Label()
		}
	}
	return out
}

// ToJSON serializes v to JSON.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// GridToJSON serializes an analyzed table.
func GridToJSON(source string, table int, g *models.CellGrid, pretty bool) ([]byte, error) {
	return ToJSON(NewGridView(source, table, g), pretty)
}

// ChangesToJSON serializes a diff result.
func ChangesToJSON(changes []models.GridChange, pretty bool) ([]byte, error) {
	return ToJSON(NewChangeViews(changes), pretty)
}
