package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"yardwatch/internal/bootstrap"
	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/errs"
	httpapi "yardwatch/internal/transport/http"
	"yardwatch/internal/usecase/ingest"
)

// appComponents is everything a subcommand may need once the container is up.
type appComponents struct {
	App     *bootstrap.App
	Pipe    *ingest.Pipeline
	Monitor *ingest.Monitor
	Server  *httpapi.Server
}

func withApp(run func(cmd *cobra.Command, c appComponents) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var c appComponents
		fxApp := fx.New(
			bootstrap.Module,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&c.App, &c.Pipe, &c.Monitor, &c.Server),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		if err := run(cmd, c); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
