package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/doccatalog/internal/catalog"
	"github.com/lehigh-university-libraries/doccatalog/internal/config"
	"github.com/lehigh-university-libraries/doccatalog/internal/handlers"
	"github.com/lehigh-university-libraries/doccatalog/internal/suggest"
	"github.com/spf13/cobra"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the import form",
		Long: `Starts the import form on the specified port.

The form walks through the same queue as "doccatalog import": each new document
is shown with a preview and can be added with a title, description and
category, or skipped. The manifest is written when you save at the end.`,
		Example: `  # Start server on default port 8888
  doccatalog serve

  # Start server on custom port
  doccatalog serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sg handlers.Suggester
			if cfg.SuggestProvider != "" {
				provider, err := suggest.NewProvider(cfg.SuggestProvider)
				if err != nil {
					return err
				}
				sg = suggest.NewService(provider, cfg.SuggestModel)
			}

			handler := handlers.New(catalog.Open(*cfg), sg)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Import form available", "addr", addr, "url", "http://localhost"+addr,
					"manifest", cfg.ManifestPath, "source", cfg.SourceDir)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped; open import sessions were discarded")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringP("port", "p", "8888", "Port to listen on (env PORT)")

	return cmd
}
