package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/errs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the yard monitoring server",
	Long:  "Starts the detection monitor and serves the dashboard API and websocket stream until interrupted.",
	RunE: withApp(func(cmd *cobra.Command, c appComponents) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := c.App.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "init schema")
		}

		if err := c.Monitor.Start(ctx); err != nil {
			return errs.Wrap(err, "start detection monitor")
		}
		defer func() {
			if err := c.Monitor.Stop(context.Background()); err != nil {
				logging.Error(ctx, "detection monitor stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		addr := c.App.Config.HTTP.Addr
		server := &http.Server{
			Addr:              addr,
			Handler:           c.Server,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("addr", addr))
			serveErr <- server.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			return errs.Wrap(err, "serve http")
		case <-ctx.Done():
		}

		logging.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
