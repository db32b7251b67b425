package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/beatrove/catalog/internal/export"
)

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := export.NewService(store, logger).ExportCollectionXLSX(ctx)
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("catalog-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default catalog-<date>.xlsx)")
	return cmd
}
