package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"yardwatch/internal/bootstrap/config"
	"yardwatch/internal/bootstrap/database"
	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/errs"
	"yardwatch/internal/infrastructure/notify"
	sqliterepo "yardwatch/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "yardwatch/internal/infrastructure/persistence/sqlite/uow"
	"yardwatch/internal/ports"
	httpapi "yardwatch/internal/transport/http"
	"yardwatch/internal/usecase/dashboard"
	"yardwatch/internal/usecase/ingest"
	"yardwatch/internal/usecase/report"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewYardRepository,
			fx.As(new(ports.YardRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(httpapi.NewHub),
	fx.Provide(provideNotifier),
	fx.Provide(ingest.NewService),
	fx.Provide(providePipeline),
	fx.Provide(provideMonitor),
	fx.Provide(dashboard.NewService),
	fx.Provide(report.NewService),
	fx.Provide(httpapi.NewServer),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

// provideNotifier always fans out to the websocket hub; the NATS bridge is
// added only when configured and reachable. A bus that cannot be reached at
// startup degrades to hub-only operation instead of failing boot.
func provideNotifier(lc fx.Lifecycle, ctx context.Context, cfg config.Config, hub *httpapi.Hub) ports.Notifier {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			hub.Close()
			return nil
		},
	})

	if cfg.Notify.NATSURL == "" {
		return hub
	}

	publisher, err := notify.NewNATSPublisher(logCtx, cfg.Notify.NATSURL, cfg.Notify.AlertSubject, cfg.Notify.EventSubject)
	if err != nil {
		logging.Warn(logCtx, "nats unavailable, live updates limited to websocket",
			slog.Any("err", errs.Loggable(err)))
		return hub
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			publisher.Close()
			return nil
		},
	})

	return notify.Fanout{hub, publisher}
}

func providePipeline(svc *ingest.Service, cfg config.Config) *ingest.Pipeline {
	return ingest.NewPipeline(svc, cfg.Ingest.WatchDir)
}

func provideMonitor(pipeline *ingest.Pipeline, cfg config.Config) *ingest.Monitor {
	return ingest.NewMonitor(pipeline, ingest.MonitorConfig{
		PollInterval: cfg.Ingest.PollInterval(),
		ErrorBackoff: cfg.Ingest.ErrorBackoff(),
		StopTimeout:  cfg.Ingest.StopTimeout(),
	})
}
