package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func listCmd(c *cli) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Print one page of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			ops, err := c.resolve(args[0])
			if err != nil {
				return err
			}
			if opts.PageSize <= 0 {
				opts.PageSize = c.store.PageSize(ops.name, c.cfg.UI.PageSize)
			}
			view, err := ops.list(cmd.Context(), opts)
			if err != nil {
				return err
			}
			renderPage(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "filter text")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "column to sort by")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "rows per page (default: saved preference)")
	return cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderPage(w io.Writer, view pageView) {
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, "No records")
	} else {
		t := ltable.New().
			Border(lipgloss.NormalBorder()).
			Headers(view.Headers...).
			Rows(view.Rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == ltable.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		fmt.Fprintln(w, t.Render())
	}

	info := view.Info
	fmt.Fprintf(w, "page %d / %d · %d of %d rows\n", info.Page, info.TotalPages, info.Filtered, info.Total)
}
