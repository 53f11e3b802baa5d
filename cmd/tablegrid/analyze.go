package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/models"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/output"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type analyzedTable struct {
	source string
	table  int
	grid   *models.CellGrid
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		sel    selection
		format string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Print the logical grid of every table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("format") {
				a.cfg.Output.Format = format
			}
			if cmd.Flags().Changed("pretty") {
				a.cfg.Output.Pretty = pretty
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			results, err := a.analyzeFiles(cmd.Context(), args, sel)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), results)
		},
	}
	addSelectionFlags(cmd, &sel, 0)
	cmd.Flags().StringVar(&format, "format", "dump", "Output format: dump or json")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

// analyzeFiles analyzes the files concurrently. Results keep the argument
// order.
func (a *app) analyzeFiles(ctx context.Context, paths []string, sel selection) ([]analyzedTable, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	perFile := make([][]analyzedTable, len(paths))
	analyzer := tablegrid.NewAnalyzer(a.options())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			res, err := a.analyzeFile(ctx, analyzer, path, sel)
			perFile[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []analyzedTable
	for _, res := range perFile {
		results = append(results, res...)
	}
	if a.cache != nil {
		hits, misses := a.cache.Stats()
		a.logger.Debug("grid cache", zap.Int("hits", hits), zap.Int("misses", misses), zap.Int("entries", a.cache.Len()))
	}
	return results, nil
}

func (a *app) analyzeFile(ctx context.Context, analyzer *tablegrid.Analyzer, path string, sel selection) ([]analyzedTable, error) {
	tables, err := loadTables(path, sel)
	if err != nil {
		return nil, err
	}
	results := make([]analyzedTable, 0, len(tables))
	for i, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		number := tableNumber(sel, i)
		grid, err := analyzer.AnalyzeTableRecursively(t, 0)
		if err != nil {
			return nil, a.tableError(path, number, err)
		}
		a.logger.Info("table analyzed",
			zap.String("file", path),
			zap.Int("table", number),
			zap.Int("rows", grid.RowCount()),
			zap.Int("columns", grid.MaxRowLen()))
		results = append(results, analyzedTable{source: path, table: number, grid: grid})
	}
	return results, nil
}

// tableError wraps an analysis failure and persists its diagnostics.
func (a *app) tableError(path string, table int, err error) error {
	var rerr *tablegrid.ReconcileError
	if errors.As(err, &rerr) {
		report, werr := a.writeDiagnostics(rerr)
		if werr != nil {
			a.logger.Warn("diagnostics not written", zap.Error(werr))
		} else {
			a.logger.Error("diagnostics written", zap.String("path", report))
		}
	}
	return fmt.Errorf("%s table %d: %w", path, table, err)
}

func (a *app) render(w io.Writer, results []analyzedTable) error {
	if a.cfg.Output.Format == "json" {
		views := make([]output.GridView, len(results))
		for i, r := range results {
			views[i] = output.NewGridView(r.source, r.table, r.grid)
		}
		data, err := output.ToJSON(views, a.cfg.Output.Pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s table %d (%dx%d)\n", r.source, r.table, r.grid.RowCount(), r.grid.MaxRowLen())
		if _, err := fmt.Fprintln(w, models.DumpCells(r.grid)); err != nil {
			return err
		}
	}
	return nil
}
