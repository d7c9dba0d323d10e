package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/stockroom/internal/bulk"
)

type exportResult struct {
	name     string
	count    int
	location string
	err      error
}

func exportCmd(c *cli) *cobra.Command {
	var (
		query     string
		clipboard bool
		dir       string
	)
	cmd := &cobra.Command{
		Use:   "export <resource>...",
		Short: "Export the filtered records of one or more resources as CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			if clipboard && len(args) > 1 {
				return errors.New("--clipboard takes a single resource")
			}

			ops := make([]resourceOps, len(args))
			for i, name := range args {
				o, err := c.resolve(name)
				if err != nil {
					return err
				}
				ops[i] = o
			}

			var saver bulk.Saver = bulk.DirSaver{Dir: c.cfg.ExportDir()}
			if dir != "" {
				saver = bulk.DirSaver{Dir: dir}
			}
			if clipboard {
				saver = bulk.NewClipboardSaver()
			}

			results := make([]exportResult, len(ops))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, o := range ops {
				g.Go(func() error {
					n, loc, err := o.export(ctx, query, saver)
					results[i] = exportResult{name: o.name, count: n, location: loc, err: err}
					if errors.Is(err, bulk.ErrEmptySelection) {
						return nil
					}
					return err
				})
			}
			err := g.Wait()

			out := cmd.OutOrStdout()
			for _, r := range results {
				switch {
				case errors.Is(r.err, bulk.ErrEmptySelection):
					fmt.Fprintf(out, "%s: no matching rows\n", r.name)
				case r.err == nil && r.location != "":
					fmt.Fprintf(out, "%s: exported %d rows to %s\n", r.name, r.count, r.location)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter text applied before export")
	cmd.Flags().BoolVar(&clipboard, "clipboard", false, "copy to the clipboard instead of a file")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default: export.dir)")
	return cmd
}
