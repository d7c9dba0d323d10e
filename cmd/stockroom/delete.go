package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/abelbrown/stockroom/internal/bulk"
)

func deleteCmd(c *cli) *cobra.Command {
	var (
		ids []string
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "delete <resource> --ids 1,2",
		Short: "Batch delete records by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			ids = uniqueIDs(ids)
			if len(ids) == 0 {
				return errors.New("--ids is required")
			}
			ops, err := c.resolve(args[0])
			if err != nil {
				return err
			}

			confirm := bulk.AlwaysConfirm
			if !yes {
				confirm = huhConfirm(cmd.InOrStdin(), cmd.ErrOrStderr())
			}
			n, err := ops.delete(cmd.Context(), ids, confirm)
			if errors.Is(err, bulk.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			if n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d %s\n", n, ops.name)
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "comma-separated record ids")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// uniqueIDs trims ids and drops blanks and repeats, keeping order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// huhConfirm asks the prompt as a yes/no form. Aborting the form counts as no.
func huhConfirm(in io.Reader, out io.Writer) bulk.Confirmer {
	return bulk.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		var ok bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		)).WithInput(in).WithOutput(out)
		if err := form.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return false, nil
			}
			return false, err
		}
		return ok, nil
	})
}
