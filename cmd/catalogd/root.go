package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/beatrove/catalog/internal/common"
	"github.com/beatrove/catalog/internal/repository"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalogd",
		Short:         "Vinyl catalog daemon and tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), exportCmd(), backfillCmd())
	return cmd
}

// bootstrap loads .env (best effort), the environment config, and a JSON
// slog logger shared by every subcommand.
func bootstrap() (*common.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore opens the database and replays the legacy single-table rows
// into the item/work model on first start against an old database file.
func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.Store, error) {
	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	migrated, err := store.BackfillLegacyWorks(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if migrated > 0 {
		logger.Info("storage.legacy_backfill", "migrated", migrated)
	}
	return store, nil
}
