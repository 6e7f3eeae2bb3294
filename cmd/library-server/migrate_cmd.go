package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshelf/library-system/internal/app"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed the administrator, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			db, err := app.OpenStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", cfg.DB.Path)
			return err
		},
	}
}
