package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"TodoAPI/internal/app"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			logger.Info("config loaded, connecting to DB", "driver", cfg.DB.Driver, "env", cfg.App.Env)

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("app init", "err", err)
				return err
			}
			server := application.Server()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server listening", "addr", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				logger.Error("HTTP server error", "err", err)
				_ = application.Close()
				return err
			case sig := <-quit:
				logger.Info("shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout.Duration())
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logger.Error("HTTP shutdown", "err", err)
			}
			return application.Close()
		},
	}
}
