package models

// CellGrid is the descriptor grid produced by analysis.
type CellGrid = JaggedGrid[*CellDescriptor]

// TextGrid is the grid produced by the text-marker parser.
type TextGrid = JaggedGrid[Token]

// DumpCells renders a descriptor grid with M/*/G/[END] labels.
func DumpCells(g *CellGrid) string {
	return g.Dump((*CellDescriptor).Label)
}

// DumpTokens renders a text grid.
func DumpTokens(g *TextGrid) string {
	return g.Dump(Token.Label)
}

// CloneCells deep-copies a descriptor grid, remapping every anchor
// reference to the copied anchor.
func CloneCells(g *CellGrid) *CellGrid {
	if g == nil {
		return nil
	}
	remap := make(map[*CellDescriptor]*CellDescriptor)
	var copyOf func(c *CellDescriptor) *CellDescriptor
	copyOf = func(c *CellDescriptor) *CellDescriptor {
		if c == nil {
			return nil
		}
		if n, ok := remap[c]; ok {
			return n
		}
		n := *c
		remap[c] = &n
		if c.Anchor != nil {
			n.Anchor = copyOf(c.Anchor)
		}
		return &n
	}
	out := NewJaggedGrid[*CellDescriptor]()
	for r := 1; r <= g.RowCount(); r++ {
		row := g.Row(r)
		cells := make([]*CellDescriptor, len(row))
		for i, c := range row {
			cells[i] = copyOf(c)
		}
		out.AppendRow(cells...)
	}
	return out
}

// CountKind counts descriptors of one kind.
func CountKind(g *CellGrid, k Kind) int {
	n := 0
	for _, c := range g.Flatten() {
		if c != nil && c.Kind == k {
			n++
		}
	}
	return n
}
