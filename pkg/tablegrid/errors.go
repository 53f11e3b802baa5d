package tablegrid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/reconcile"
)

var (
	// ErrGhostCell indicates a ghost survived reconciliation.
	ErrGhostCell = reconcile.ErrGhostCell
	// ErrFlattenMismatch indicates the reconciled grids differ in size.
	ErrFlattenMismatch = reconcile.ErrFlattenMismatch
	// ErrRaggedGrid indicates a finalized grid is not rectangular.
	ErrRaggedGrid = reconcile.ErrRaggedGrid
	// ErrSpanCoverage indicates an anchor span with gaps.
	ErrSpanCoverage = reconcile.ErrSpanCoverage
	// ErrContradiction indicates text and widths disagree beyond repair.
	ErrContradiction = reconcile.ErrContradiction
	// ErrEmptyTable indicates the table has no addressable cells.
	ErrEmptyTable = errors.New("table has no addressable cells")
)

// Stage names a slow-path step.
type Stage string

const (
	StagePrepare    Stage = "prepare"
	StageScan       Stage = "scan"
	StageText       Stage = "text"
	StageHorizontal Stage = "horizontal"
	StageVertical   Stage = "vertical"
	StageFinalize   Stage = "finalize"
)

// Diagnostics captures the state of a failed slow path so the failure can
// be reproduced offline.
type Diagnostics struct {
	ID           uuid.UUID                   `json:"id"`
	Depth        int                         `json:"depth"`
	RowOffset    int                         `json:"row_offset"`
	Observations []models.RawCellObservation `json:"observations"`
	Skipped      int                         `json:"skipped"`
	RawText      string                      `json:"raw_text"`
	NormalWidth  float64                     `json:"normal_width"`
	ReferenceRow int                         `json:"reference_row"`
	Columns      int                         `json:"columns"`
	TextDump     string                      `json:"text_dump"`
	WidthDump    string                      `json:"width_dump"`
	// HorizontalDump and HorizontalText are the grids after horizontal
	// reconciliation; VerticalDump is the grid after the vertical pass.
	HorizontalDump string               `json:"horizontal_dump"`
	HorizontalText string               `json:"horizontal_text"`
	VerticalDump   string               `json:"vertical_dump"`
	OpenItems      []reconcile.OpenItem `json:"open_items,omitempty"`
}

func newDiagnostics(depth, rowOffset int) *Diagnostics {
	return &Diagnostics{ID: uuid.New(), Depth: depth, RowOffset: rowOffset}
}

// String renders a plain-text report.
func (d *Diagnostics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "diagnostics %s\n", d.ID)
	fmt.Fprintf(&b, "depth %d, row offset %d\n", d.Depth, d.RowOffset)
	fmt.Fprintf(&b, "normal width %.4f, reference row %d, columns %d\n", d.NormalWidth, d.ReferenceRow, d.Columns)
	fmt.Fprintf(&b, "\n== observations (%d, %d skipped)\n", len(d.Observations), d.Skipped)
	for _, o := range d.Observations {
		fmt.Fprintf(&b, "[%d,%d] width=%.4f text=%q\n", o.Row, o.Col, o.Width, o.Text)
	}
	fmt.Fprintf(&b, "\n== raw text\n%q\n", d.RawText)
	section := func(name, dump string) {
		if dump != "" {
			fmt.Fprintf(&b, "\n== %s\n%s\n", name, dump)
		}
	}
	section("text grid", d.TextDump)
	section("width grid", d.WidthDump)
	section("horizontal grid", d.HorizontalDump)
	section("horizontal text", d.HorizontalText)
	section("vertical grid", d.VerticalDump)
	if len(d.OpenItems) > 0 {
		b.WriteString("\n== open items\n")
		for _, item := range d.OpenItems {
			fmt.Fprintf(&b, "%s %s\n", item.Coord, item.Reason)
		}
	}
	return b.String()
}

// ReconcileError represents a fatal slow-path failure.
type ReconcileError struct {
	Stage       Stage
	Err         error
	Diagnostics *Diagnostics
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("grid reconciliation failed at %s (diagnostics %s): %v", e.Stage, e.Diagnostics.ID, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

func newReconcileError(stage Stage, err error, diag *Diagnostics) *ReconcileError {
	return &ReconcileError{
		Stage:       stage,
		Err:         err,
		Diagnostics: diag,
	}
}
