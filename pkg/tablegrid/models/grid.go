package models

import "strings"

// JaggedGrid is a 1-indexed, row-major container whose rows may have
// different lengths. Callers finalize it into a rectangle.
type JaggedGrid[T any] struct {
	rows [][]T
}

// NewJaggedGrid creates an empty grid.
func NewJaggedGrid[T any]() *JaggedGrid[T] {
	return &JaggedGrid[T]{}
}

// GridFromRows wraps rows (0-indexed slices) without copying them.
func GridFromRows[T any](rows [][]T) *JaggedGrid[T] {
	return &JaggedGrid[T]{rows: rows}
}

// RowCount returns the number of rows.
func (g *JaggedGrid[T]) RowCount() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// RowLen returns the length of row r, or 0 when r is out of range.
func (g *JaggedGrid[T]) RowLen(r int) int {
	if r < 1 || r > g.RowCount() {
		return 0
	}
	return len(g.rows[r-1])
}

// Row returns row r. The slice aliases the grid.
func (g *JaggedGrid[T]) Row(r int) []T {
	if r < 1 || r > g.RowCount() {
		return nil
	}
	return g.rows[r-1]
}

// SetRow replaces row r.
func (g *JaggedGrid[T]) SetRow(r int, cells []T) {
	g.rows[r-1] = cells
}

// Get returns the element at (r, c) and whether it exists.
func (g *JaggedGrid[T]) Get(r, c int) (T, bool) {
	var zero T
	if c < 1 || c > g.RowLen(r) {
		return zero, false
	}
	return g.rows[r-1][c-1], true
}

// At returns the element at (r, c). It panics when out of range.
func (g *JaggedGrid[T]) At(r, c int) T {
	return g.rows[r-1][c-1]
}

// Set stores v at (r, c). It panics when out of range.
func (g *JaggedGrid[T]) Set(r, c int, v T) {
	g.rows[r-1][c-1] = v
}

// AppendRow adds a row and returns its index.
func (g *JaggedGrid[T]) AppendRow(cells ...T) int {
	row := make([]T, len(cells))
	copy(row, cells)
	g.rows = append(g.rows, row)
	return len(g.rows)
}

// InsertRow inserts a row so that it becomes row r.
func (g *JaggedGrid[T]) InsertRow(r int, cells ...T) {
	row := make([]T, len(cells))
	copy(row, cells)
	g.rows = append(g.rows, nil)
	copy(g.rows[r:], g.rows[r-1:])
	g.rows[r-1] = row
}

// Append adds values at the end of row r.
func (g *JaggedGrid[T]) Append(r int, v ...T) {
	g.rows[r-1] = append(g.rows[r-1], v...)
}

// Insert places values so that the first becomes (r, c). c may be
// RowLen(r)+1 to append.
func (g *JaggedGrid[T]) Insert(r, c int, v ...T) {
	row := g.rows[r-1]
	out := make([]T, 0, len(row)+len(v))
	out = append(out, row[:c-1]...)
	out = append(out, v...)
	out = append(out, row[c-1:]...)
	g.rows[r-1] = out
}

// Remove deletes (r, c) and returns it.
func (g *JaggedGrid[T]) Remove(r, c int) T {
	row := g.rows[r-1]
	v := row[c-1]
	g.rows[r-1] = append(row[:c-1:c-1], row[c:]...)
	return v
}

// Pad extends row r to n elements using fill.
func (g *JaggedGrid[T]) Pad(r, n int, fill func() T) {
	for len(g.rows[r-1]) < n {
		g.rows[r-1] = append(g.rows[r-1], fill())
	}
}

// Truncate shortens row r to n elements and returns what was cut.
func (g *JaggedGrid[T]) Truncate(r, n int) []T {
	row := g.rows[r-1]
	if len(row) <= n {
		return nil
	}
	cut := append([]T(nil), row[n:]...)
	g.rows[r-1] = row[:n:n]
	return cut
}

// Flatten returns every element in row-major order.
func (g *JaggedGrid[T]) Flatten() []T {
	if g == nil {
		return nil
	}
	out := make([]T, 0, g.Count())
	for _, row := range g.rows {
		out = append(out, row...)
	}
	return out
}

// Count returns the total number of elements.
func (g *JaggedGrid[T]) Count() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, row := range g.rows {
		n += len(row)
	}
	return n
}

// MaxRowLen returns the length of the longest row.
func (g *JaggedGrid[T]) MaxRowLen() int {
	max := 0
	for r := 1; r <= g.RowCount(); r++ {
		if n := g.RowLen(r); n > max {
			max = n
		}
	}
	return max
}

// IsRectangular reports whether every row has the same length.
func (g *JaggedGrid[T]) IsRectangular() bool {
	for r := 2; r <= g.RowCount(); r++ {
		if g.RowLen(r) != g.RowLen(1) {
			return false
		}
	}
	return true
}

// Clone copies the row structure. Elements are copied by value. A nil grid
// clones to nil.
func (g *JaggedGrid[T]) Clone() *JaggedGrid[T] {
	if g == nil {
		return nil
	}
	out := &JaggedGrid[T]{rows: make([][]T, len(g.rows))}
	for i, row := range g.rows {
		out.rows[i] = append([]T(nil), row...)
	}
	return out
}

// Concat appends the rows of other after the rows of g, sharing elements.
func (g *JaggedGrid[T]) Concat(other *JaggedGrid[T]) {
	if g == nil {
		return
	}
	for r := 1; r <= other.RowCount(); r++ {
		g.rows = append(g.rows, append([]T(nil), other.Row(r)...))
	}
}

// Dump renders the grid one row per line with cells joined by " | ".
func (g *JaggedGrid[T]) Dump(label func(T) string) string {
	if g == nil {
		return ""
	}
	lines := make([]string, 0, g.RowCount())
	for _, row := range g.rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = label(v)
		}
		lines = append(lines, strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}

// RemoveRow deletes row r and returns it.
func (g *JaggedGrid[T]) RemoveRow(r int) []T {
	row := g.rows[r-1]
	g.rows = append(g.rows[:r-1:r-1], g.rows[r:]...)
	return row
}
