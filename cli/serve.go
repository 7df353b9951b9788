package cli

import (
	"github.com/spf13/cobra"

	"autoPallet/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			r, closeStore, err := a.runner(true)
			if err != nil {
				return err
			}
			defer closeStore()

			a.logger.Debug("config", "db", a.cfg.DBPath, "output", a.cfg.OutputDir, "cap", a.cfg.MaxItemsPerLayer)
			return server.New(r, a.logger).Run(a.cfg.HTTPAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http_addr)")
	return cmd
}
