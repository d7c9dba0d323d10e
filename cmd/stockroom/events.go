package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abelbrown/stockroom/internal/journal"
)

func eventsCmd(c *cli) *cobra.Command {
	var (
		tail   int
		filter journal.Filter
		level  string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent requests, bulk actions and sign-ins from the activity journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Level = journal.Level(level)

			// setup has already created the file.
			f, err := os.Open(journal.Path(c.cfg.DataDir))
			if err != nil {
				return err
			}
			defer f.Close()

			events, err := journal.Tail(f, tail, filter)
			if err != nil {
				return err
			}
			for _, e := range events {
				fmt.Fprintln(cmd.OutOrStdout(), journal.Format(e))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&tail, "tail", "n", 50, "number of recent events")
	cmd.Flags().StringVar(&filter.Kind, "kind", "", "event kind prefix, e.g. bulk or api")
	cmd.Flags().StringVar(&level, "level", "", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&filter.Resource, "resource", "", "only events for this resource")
	return cmd
}
