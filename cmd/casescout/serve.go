package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/casescout/internal/api"
	"github.com/hoanghai1803/casescout/internal/enrich"
	"github.com/hoanghai1803/casescout/internal/pipeline"
	"github.com/hoanghai1803/casescout/internal/source"
	"github.com/hoanghai1803/casescout/internal/storage"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction API and the case archive over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("validating options: %w", err)
			}
			return runServe(cmd.Context(), a)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (localhost only)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg

	// The server always keeps an archive so refreshes can be listed later.
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer store.Close()

	fetcher := source.NewFetcher(source.FetcherOptions{
		Timeout:   cfg.Source.Timeout(),
		UserAgent: cfg.Source.UserAgent,
	})
	runner := pipeline.NewRunner(
		source.NewLoader(fetcher),
		enrich.New(fetcher, enrich.Options{MaxConcurrent: cfg.Enrich.MaxConcurrent}),
		store,
	)

	// Determine server address (localhost only for security).
	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(store, runner, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://"+addr, "archive", cfg.Storage.Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
