package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshelf/library-system/internal/core/service"
)

func newDigestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "digest <password>",
		Short: "Print the ADMIN_PASSWORD_DIGEST value for a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), service.Digest(args[0]))
			return err
		},
	}
}
