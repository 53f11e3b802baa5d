package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/diff"
	"github.com/ukaji3/tablegrid-go/pkg/tablegrid/output"
)

func newDiffCmd(a *app) *cobra.Command {
	var (
		sel    selection
		format string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare the same table in two files",
		Args:  cobra.ExactArgs(2),
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
			if sel.table < 1 {
				return fmt.Errorf("--table must select a single table")
			}
			results, err := a.analyzeFiles(cmd.Context(), args, sel)
			if err != nil {
				return err
			}
			return a.renderDiff(cmd.OutOrStdout(), results[0], results[1])
		},
	}
	addSelectionFlags(cmd, &sel, 1)
	cmd.Flags().StringVar(&format, "format", "dump", "Output format: dump or json")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func (a *app) renderDiff(w io.Writer, before, after analyzedTable) error {
	changes := diff.DiffGrids(before.grid, after.grid)

	if a.cfg.Output.Format == "json" {
		data, err := output.ChangesToJSON(changes, a.cfg.Output.Pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "no changes")
		return err
	}
	for _, c := range changes {
		fmt.Fprintln(w, c.String())
	}
	unified, err := diff.UnifiedDump(before.grid, after.grid, label(before), label(after))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, "\n"+unified)
	return err
}

func label(t analyzedTable) string {
	return fmt.Sprintf("%s#%d", t.source, t.table)
}
