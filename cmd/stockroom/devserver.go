package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abelbrown/stockroom/internal/devapi"
)

func devserverCmd() *cobra.Command {
	var (
		addr  string
		token string
	)
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve seeded fixture data on a local API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := devapi.New(token)
			fmt.Fprintf(cmd.OutOrStdout(), "serving http://%s%s (token %q)\n", addr, devapi.BasePath, token)
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8000", "listen address")
	cmd.Flags().StringVar(&token, "token", "dev-token", "bearer token clients must send")
	return cmd
}
