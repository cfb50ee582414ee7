package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/storage"
)

// seed <file>: upsert the catalog described by a YAML seed file
func seedCmd(opts *globalOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load plans, add-ons and the default plan from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.ReadSeedFile(args[0])
			if err != nil {
				return err
			}

			db, err := storage.Open(cmd.Context(), opts.storageConfig())
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := storage.Migrate(db); err != nil {
					return err
				}
			}

			if err := catalog.Seed(cmd.Context(), db, cat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d plans and %d add-ons\n", len(cat.Plans()), len(cat.AddOns()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations first")
	return cmd
}
