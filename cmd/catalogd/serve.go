package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beatrove/catalog/internal/export"
	"github.com/beatrove/catalog/internal/llm"
	"github.com/beatrove/catalog/internal/metadata"
	"github.com/beatrove/catalog/internal/ocr"
	"github.com/beatrove/catalog/internal/pipeline"
	"github.com/beatrove/catalog/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			chain := ocr.NewChain(cfg.OCR, logger)
			enricher := metadata.NewEnricher(llm.NewProvider(cfg.LLM, logger), cfg.LLM.MaxRetries, logger)
			processor := pipeline.NewProcessor(chain, enricher, store, cfg.Server.UploadDir, logger)

			srv := server.New(server.Config{
				Addr:      cfg.Server.Addr,
				Processor: processor,
				Repo:      store,
				Exporter:  export.NewService(store, logger),
				Logger:    logger,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
