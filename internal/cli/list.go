package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

type listOptions struct {
	sort string
	desc bool
	json bool
}

func newListCmd(flags *globalFlags) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the process table once",
		Long: `Fetch the process table once and print it, ordered.

Sort keys: pid, name, status, memory_percent (alias memory).

Examples:
  hivedeck-monitor list
  hivedeck-monitor list --sort memory --desc
  hivedeck-monitor list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := process.ParseSortKey(opts.sort)
			if err != nil {
				return err
			}
			spec := process.SortSpec{Key: key, Direction: process.Ascending}
			if opts.desc {
				spec.Direction = process.Descending
			}

			cfg, client, err := loadClient(flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if cfg.RequestTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()
			}

			snap, err := client.Fetch(ctx)
			if err != nil {
				return err
			}

			rows := process.Order(snap, spec)
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return writeTable(cmd.OutOrStdout(), rows, spec)
		},
	}

	cmd.Flags().StringVar(&opts.sort, "sort", string(process.SortByPID), "sort key")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")

	return cmd
}

func writeJSON(w io.Writer, rows []process.Record) error {
	if rows == nil {
		rows = []process.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

var listHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var listCellStyle = lipgloss.NewStyle().Padding(0, 1)

func writeTable(w io.Writer, rows []process.Record, spec process.SortSpec) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(
			"PID"+spec.Indicator(process.SortByPID),
			"NAME"+spec.Indicator(process.SortByName),
			"STATUS"+spec.Indicator(process.SortByStatus),
			"MEM %"+spec.Indicator(process.SortByMemory),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			return listCellStyle
		})

	for _, r := range rows {
		t.Row(
			strconv.FormatInt(int64(r.PID), 10),
			r.Name,
			r.Status,
			process.FormatMemory(r.MemoryPercent),
		)
	}

	_, err := fmt.Fprintf(w, "%s\n%d processes\n", t.Render(), len(rows))
	return err
}
