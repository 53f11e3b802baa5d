package models

import "fmt"

// Area is a rectangular cell range of a worksheet.
type Area struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Contains reports whether (row, col) lies inside the area.
func (a Area) Contains(row, col int) bool {
	return row >= a.R1 && row <= a.R2 && col >= a.C1 && col <= a.C2
}

// Clip intersects a with b.
func (a Area) Clip(b Area) (Area, bool) {
	out := Area{R1: max(a.R1, b.R1), C1: max(a.C1, b.C1), R2: min(a.R2, b.R2), C2: min(a.C2, b.C2)}
	if out.R1 > out.R2 || out.C1 > out.C2 {
		return Area{}, false
	}
	return out, true
}

func (a Area) String() string {
	return fmt.Sprintf("R%dC%d:R%dC%d", a.R1, a.C1, a.R2, a.C2)
}
