// Package main provides the CLI entry point for tablegrid.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/tablegrid-go/internal/config"
	"github.com/ukaji3/tablegrid-go/internal/observability"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/host"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
	cache  *tablegrid.GridCache
}

// selection picks the tables of an input file.
type selection struct {
	table int
	sheet string
	ref   string
}

func main() {
	err := newRootCmd().Execute()
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "tablegrid",
		Short: "Reconstruct the logical grid of merged tables",
		Long: `tablegrid rebuilds the rectangular cell grid of Word and Excel tables
whose merged cells hide the row and column structure.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./tablegrid.yaml or ~/.tablegrid/tablegrid.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override logger.level")

	rootCmd.AddCommand(newAnalyzeCmd(a), newDiffCmd(a))
	return rootCmd
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logger.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = observability.Initialize(cfg.Logger, zapcore.Lock(zapcore.AddSync(stderr)))
	if cfg.Cache.Size > 0 {
		a.cache = tablegrid.NewGridCache(cfg.Cache.Size)
	}
	return nil
}

func (a *app) options() tablegrid.Options {
	prepare := a.cfg.Analysis.Prepare
	return tablegrid.Options{
		SplitThreshold:       a.cfg.Analysis.SplitThreshold,
		MaxDepth:             a.cfg.Analysis.MaxDepth,
		SpanTolerance:        a.cfg.Analysis.SpanTolerance,
		FallbackReferenceRow: a.cfg.Analysis.FallbackReferenceRow,
		Delimiter:            a.cfg.Analysis.CellDelimiter,
		Prepare:              &prepare,
		Retrier: host.Retrier{
			Attempts: a.cfg.Retry.Attempts,
			Delay:    a.cfg.Retry.Delay,
			Logger:   a.logger.Named("host"),
		},
		Logger: a.logger.Named("analyzer"),
		Cache:  a.cache,
	}
}

// loadTables opens path by extension. Table numbers are 1-based; 0 keeps
// every table.
func loadTables(path string, sel selection) ([]*host.LayoutTable, error) {
	var (
		tables []*host.LayoutTable
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		tables, err = host.LoadDOCX(path)
	case ".xlsx", ".xlsm":
		tables, err = host.LoadXLSX(path, sel.sheet, sel.ref)
	default:
		return nil, fmt.Errorf("%s: unsupported file type", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sel.table == 0 {
		return tables, nil
	}
	if sel.table < 0 || sel.table > len(tables) {
		return nil, fmt.Errorf("%s: table %d not found (%d tables)", path, sel.table, len(tables))
	}
	return tables[sel.table-1 : sel.table], nil
}

// tableNumber maps an index into loadTables' result back to the table's
// number in the file.
func tableNumber(sel selection, i int) int {
	if sel.table > 0 {
		return sel.table
	}
	return i + 1
}

// writeDiagnostics stores the report of a fatal reconciliation and returns
// its path.
func (a *app) writeDiagnostics(rerr *tablegrid.ReconcileError) (string, error) {
	dir := a.cfg.Output.DiagnosticsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, rerr.Diagnostics.ID.String()+".txt")
	if err := os.WriteFile(path, []byte(rerr.Diagnostics.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func addSelectionFlags(cmd *cobra.Command, sel *selection, defaultTable int) {
	cmd.Flags().IntVar(&sel.table, "table", defaultTable, "Table number within the file (0: all tables)")
	cmd.Flags().StringVar(&sel.sheet, "sheet", "", "Worksheet name for Excel input (default: first sheet)")
	cmd.Flags().StringVar(&sel.ref, "range", "", "Cell range for Excel input, e.g. A1:D10")
}
