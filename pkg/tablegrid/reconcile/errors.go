// Package reconcile aligns the width grid with the text grid and resolves
// the placeholders left behind, producing a finalized descriptor grid.
package reconcile

import "errors"

var (
	// ErrContradiction is returned when text and widths disagree in a way
	// no patch can absorb.
	ErrContradiction = errors.New("unresolvable reconciliation contradiction")
	// ErrFlattenMismatch is returned when the reconciled grids do not hold
	// the same number of slots.
	ErrFlattenMismatch = errors.New("flattened grid sizes differ")
	// ErrGhostCell is returned when a ghost survives reconciliation.
	ErrGhostCell = errors.New("unresolved ghost cell")
	// ErrRaggedGrid is returned when a finalized grid is not rectangular.
	ErrRaggedGrid = errors.New("grid is not rectangular")
	// ErrSpanCoverage is returned when an anchor's span is not covered by
	// its own merged descriptors.
	ErrSpanCoverage = errors.New("span not covered by anchor")
)
