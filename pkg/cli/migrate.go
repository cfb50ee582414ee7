package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/signup/pkg/storage"
)

// migrate: apply all pending schema migrations
func migrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := storage.Open(cmd.Context(), opts.storageConfig())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := storage.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
