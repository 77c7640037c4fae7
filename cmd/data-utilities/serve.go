package main

import (
	"github.com/gsaikiranchary/DataUtilitiesAcolyte/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API used by the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.NewServer(a.cfg, a.logger).Serve(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr from config)")
	return cmd
}
