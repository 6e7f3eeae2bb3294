package main

import (
	"github.com/spf13/cobra"

	"github.com/openshelf/library-system/internal/app"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the library API and the ops listener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			log.Info().Str("addr", cfg.Addr).Str("ops_addr", cfg.OpsAddr).Msg("starting")
			return a.Run(ctx)
		},
	}
}
