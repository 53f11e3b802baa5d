// Package parser turns a host table into the intermediate grids the
// reconcilers work on: raw observations, the text-marker grid and the
// width-normalized grid.
package parser

import (
	"fmt"

	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/host"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"go.uber.org/zap"
)

// ScanResult holds the addressable cells of a table.
type ScanResult struct {
	// Observations are in host order: row-major, column ascending.
	Observations []models.RawCellObservation
	// Skipped counts cells the host refused to expose.
	Skipped int
	// ColumnEstimate is the highest column index the host reported.
	ColumnEstimate int
	// RowEstimate is the highest row index the host reported.
	RowEstimate int
}

// ScanCells enumerates every addressable cell of t. A cell that fails on
// access is skipped; only a failure to enumerate at all is an error.
func ScanCells(t host.Table, logger *zap.Logger) (ScanResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	n, err := t.CellCount()
	if err != nil {
		return ScanResult{}, fmt.Errorf("count cells: %w", err)
	}

	var res ScanResult
	for i := 1; i <= n; i++ {
		obs, err := observe(t, i)
		if err != nil {
			res.Skipped++
			logger.Debug("skipping inaccessible cell", zap.Int("index", i), zap.Error(err))
			continue
		}
		res.Observations = append(res.Observations, obs)
		res.ColumnEstimate = max(res.ColumnEstimate, obs.Col)
		res.RowEstimate = max(res.RowEstimate, obs.Row)
	}
	return res, nil
}

func observe(t host.Table, i int) (models.RawCellObservation, error) {
	cell, err := t.CellAt(i)
	if err != nil {
		return models.RawCellObservation{}, err
	}
	text, err := cell.Text()
	if err != nil {
		return models.RawCellObservation{}, err
	}
	width, err := cell.Width()
	if err != nil {
		return models.RawCellObservation{}, err
	}
	return models.RawCellObservation{
		Row:    cell.RowIndex(),
		Col:    cell.ColumnIndex(),
		Text:   text,
		Width:  width,
		Format: cell.Format(),
	}, nil
}

// GroupByRow buckets observations by reported row. Index 0 holds row 1;
// rows without observations are empty.
func GroupByRow(obs []models.RawCellObservation, rows int) [][]models.RawCellObservation {
	for _, o := range obs {
		rows = max(rows, o.Row)
	}
	out := make([][]models.RawCellObservation, rows)
	for _, o := range obs {
		if o.Row < 1 {
			continue
		}
		out[o.Row-1] = append(out[o.Row-1], o)
	}
	return out
}
