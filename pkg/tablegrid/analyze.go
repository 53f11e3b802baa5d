package tablegrid

import (
	"errors"
	"fmt"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/host"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/parser"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/reconcile"
	"go.uber.org/zap"
)

// state is a step of the analysis state machine.
type state int

const (
	stateEntry state = iota
	stateFast
	stateSplit
	stateSlow
)

func (s state) String() string {
	switch s {
	case stateEntry:
		return "entry"
	case stateFast:
		return "fast"
	case stateSplit:
		return "split"
	case stateSlow:
		return "slow"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// outcome is the result of a terminal-capable step.
type outcome int

const (
	done outcome = iota
	fallback
	fatal
)

// Analyzer resolves host tables into logical grids.
type Analyzer struct {
	opts   Options
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer. An unset SplitThreshold, SpanTolerance
// or FallbackReferenceRow takes its default; a MaxDepth of 0 disables
// splitting.
func NewAnalyzer(opts Options) *Analyzer {
	def := DefaultOptions()
	if opts.SplitThreshold <= 0 {
		opts.SplitThreshold = def.SplitThreshold
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}
	if opts.SpanTolerance == 0 {
		opts.SpanTolerance = def.SpanTolerance
	}
	if opts.FallbackReferenceRow <= 0 {
		opts.FallbackReferenceRow = def.FallbackReferenceRow
	}
	if opts.Retrier.Logger == nil {
		opts.Retrier.Logger = opts.logger()
	}
	return &Analyzer{opts: opts, logger: opts.logger()}
}

// Analyze resolves t with opts.
func Analyze(t host.Table, opts Options) (*models.CellGrid, error) {
	return NewAnalyzer(opts).AnalyzeTableRecursively(t, 0)
}

// AnalyzeTableRecursively resolves t into a rectangular grid whose rows are
// numbered from rowOffset+1. Merge-free tables take the fast path; large
// tables are split and their halves analyzed recursively; everything else,
// including a split whose halves fail, runs the full reconciliation. A
// fatal reconciliation returns a *ReconcileError carrying diagnostics, and
// t is revealed when it supports it.
func (a *Analyzer) AnalyzeTableRecursively(t host.Table, rowOffset int) (*models.CellGrid, error) {
	g, err := a.analyze(t, rowOffset, 0)
	var rerr *ReconcileError
	if errors.As(err, &rerr) {
		a.logger.Error("grid reconciliation failed",
			zap.String("diagnostics", rerr.Diagnostics.ID.String()),
			zap.String("stage", string(rerr.Stage)),
			zap.Error(rerr.Err))
		if r, ok := t.(host.Revealer); ok {
			if rv := r.Reveal(); rv != nil {
				a.logger.Warn("reveal failed", zap.Error(rv))
			}
		}
	}
	return g, err
}

func (a *Analyzer) analyze(t host.Table, rowOffset, depth int) (*models.CellGrid, error) {
	key, cacheable := a.lookupKey(t, rowOffset)
	if cacheable {
		if g, ok := a.opts.Cache.Get(key); ok {
			a.logger.Debug("grid cache hit", zap.Stringer("table", key.Identity))
			return g, nil
		}
	}

	g, err := a.run(t, rowOffset, depth)
	if err == nil && cacheable {
		a.opts.Cache.Add(key, g)
	}
	return g, err
}

func (a *Analyzer) lookupKey(t host.Table, rowOffset int) (TableKey, bool) {
	if a.opts.Cache == nil {
		return TableKey{}, false
	}
	key, err := KeyOf(t, rowOffset)
	if err != nil {
		a.logger.Debug("table not cacheable", zap.Error(err))
		return TableKey{}, false
	}
	return key, true
}

func (a *Analyzer) run(t host.Table, rowOffset, depth int) (*models.CellGrid, error) {
	st := stateEntry
	for {
		a.logger.Debug("analysis step", zap.Stringer("state", st), zap.Int("depth", depth), zap.Int("row_offset", rowOffset))
		switch st {
		case stateEntry:
			st = a.entry(t, depth)

		case stateFast:
			g, res, err := a.fastPath(t, rowOffset)
			switch res {
			case done:
				return g, nil
			case fatal:
				return nil, err
			}
			a.logger.Info("fast path unavailable, falling back", zap.Error(err))
			st = stateSlow

		case stateSplit:
			g, res, err := a.split(t, rowOffset, depth)
			if res == done {
				return g, nil
			}
			a.logger.Info("split unavailable, falling back", zap.Error(err))
			st = stateSlow

		case stateSlow:
			return a.slowPath(t, rowOffset, depth)
		}
	}
}

// entry probes the table and picks the next state.
func (a *Analyzer) entry(t host.Table, depth int) state {
	err := t.ProbeStructure()
	if err == nil {
		a.logger.Info("structural probe succeeded", zap.Int("depth", depth))
		return stateFast
	}
	a.logger.Info("structural probe failed", zap.Int("depth", depth), zap.Error(err))

	n, err := t.CellCount()
	if err != nil {
		return stateSlow
	}
	if _, ok := t.(host.Splitter); ok && n > a.opts.SplitThreshold && depth < a.opts.MaxDepth {
		return stateSplit
	}
	return stateSlow
}

// fastPath emits an identity grid straight from the row and column counts.
func (a *Analyzer) fastPath(t host.Table, rowOffset int) (*models.CellGrid, outcome, error) {
	rows, err := t.RowCount()
	if err != nil {
		return nil, fallback, err
	}
	cols, err := t.ColumnCount()
	if err != nil {
		return nil, fallback, err
	}
	if rows == 0 || cols == 0 {
		return nil, fatal, ErrEmptyTable
	}

	// Identities are best effort; the layout does not depend on them.
	seen := make(map[models.Coordinate]models.RawCellObservation)
	if scan, err := parser.ScanCells(t, a.logger); err == nil {
		for _, o := range scan.Observations {
			seen[models.Coordinate{Row: o.Row, Col: o.Col}] = o
		}
	}

	g := models.NewJaggedGrid[*models.CellDescriptor]()
	for r := 1; r <= rows; r++ {
		cells := make([]*models.CellDescriptor, cols)
		for c := 1; c <= cols; c++ {
			o, ok := seen[models.Coordinate{Row: r, Col: c}]
			var id models.Fingerprint
			if ok {
				id = o.Identity()
			}
			cells[c-1] = models.NewAnchor(r, c, o.Text, id)
		}
		g.AppendRow(cells...)
	}
	if err := reconcile.Finalize(g, cols, rowOffset); err != nil {
		return nil, fallback, err
	}
	return g, done, nil
}

// split cuts the table at its middle row and concatenates the halves. A
// half that fails sends the whole table to the slow path.
func (a *Analyzer) split(t host.Table, rowOffset, depth int) (*models.CellGrid, outcome, error) {
	rows, err := t.RowCount()
	if err != nil {
		return nil, fallback, err
	}
	if rows < 2 {
		return nil, fallback, fmt.Errorf("cannot split %d rows", rows)
	}
	mid := rows/2 + 1
	upper, lower, err := t.(host.Splitter).Split(mid)
	if err != nil {
		return nil, fallback, err
	}
	a.logger.Info("table split", zap.Int("row", mid), zap.Int("depth", depth))

	top, err := a.analyze(upper, rowOffset, depth+1)
	if err != nil {
		return nil, fallback, fmt.Errorf("upper half: %w", err)
	}
	bottom, err := a.analyze(lower, rowOffset+mid-1, depth+1)
	if err != nil {
		return nil, fallback, fmt.Errorf("lower half: %w", err)
	}
	if top.RowLen(1) != bottom.RowLen(1) {
		return nil, fallback, fmt.Errorf("%w: halves have %d and %d columns", ErrRaggedGrid, top.RowLen(1), bottom.RowLen(1))
	}
	top.Concat(bottom)
	return top, done, nil
}

// slowPath runs the full reconciliation pipeline.
func (a *Analyzer) slowPath(t host.Table, rowOffset, depth int) (*models.CellGrid, error) {
	diag := newDiagnostics(depth, rowOffset)

	if p, ok := t.(host.Preparer); ok && a.opts.ShouldPrepare() {
		if err := a.opts.Retrier.Do("prepare table", p.Prepare); err != nil {
			return nil, newReconcileError(StagePrepare, err, diag)
		}
	}

	scan, err := parser.ScanCells(t, a.logger)
	if err != nil {
		return nil, newReconcileError(StageScan, err, diag)
	}
	diag.Observations, diag.Skipped = scan.Observations, scan.Skipped
	if len(scan.Observations) == 0 {
		return nil, ErrEmptyTable
	}

	raw, err := host.Retry(a.opts.Retrier, "read table text", t.RangeText)
	if err != nil {
		return nil, newReconcileError(StageText, err, diag)
	}
	diag.RawText = raw
	text := parser.ParseTextMarkers(raw, scan.ColumnEstimate, a.opts.delimiter())
	diag.TextDump = models.DumpTokens(text)

	rows := scan.RowEstimate
	if n, err := t.RowCount(); err == nil {
		rows = max(rows, n)
	}
	widths, info := parser.NormalizeWidths(scan.Observations, text, parser.WidthOptions{
		SpanTolerance:        a.opts.SpanTolerance,
		FallbackReferenceRow: a.opts.FallbackReferenceRow,
		Columns:              scan.ColumnEstimate,
		Rows:                 rows,
	})
	diag.WidthDump = models.DumpCells(widths)
	diag.NormalWidth, diag.ReferenceRow, diag.Columns = info.NormalWidth, info.ReferenceRow, info.Columns
	a.logger.Debug("widths normalized",
		zap.Float64("normal_width", info.NormalWidth),
		zap.Int("reference_row", info.ReferenceRow),
		zap.Int("columns", info.Columns))

	cells, hText := models.CloneCells(widths), text.Clone()
	stats, err := reconcile.Horizontal(cells, hText, info.Columns, a.logger)
	diag.HorizontalDump, diag.HorizontalText = models.DumpCells(cells), models.DumpTokens(hText)
	if err != nil {
		return nil, newReconcileError(StageHorizontal, err, diag)
	}
	a.logger.Debug("horizontal reconciliation",
		zap.Int("ghosts_inserted", stats.GhostsInserted),
		zap.Int("markers_inserted", stats.MarkersInserted),
		zap.Int("rows_joined", stats.RowsJoined))

	final, vText := models.CloneCells(cells), hText.Clone()
	res := reconcile.Vertical(final, vText, info.Columns, a.logger)
	diag.VerticalDump = models.DumpCells(final)
	diag.OpenItems = res.Open
	if len(res.Open) > 0 {
		return nil, newReconcileError(StageVertical, fmt.Errorf("%w: %d left open", ErrGhostCell, len(res.Open)), diag)
	}

	if err := reconcile.Finalize(final, info.Columns, rowOffset); err != nil {
		return nil, newReconcileError(StageFinalize, err, diag)
	}
	a.logger.Info("slow path finished",
		zap.Int("rows", final.RowCount()),
		zap.Int("columns", info.Columns),
		zap.Int("resolved", res.Resolved))
	return final, nil
}
