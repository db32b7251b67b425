package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func backfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Migrate a legacy single-table database into the item/work model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			// openStore runs the backfill; this command exists so the
			// migration can be done ahead of the first serve.
			store, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "backfill complete")
			return nil
		},
	}
}
