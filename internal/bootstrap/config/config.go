package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type IngestConfig struct {
	WatchDir            string `mapstructure:"watch_dir"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
	ErrorBackoffSeconds int    `mapstructure:"error_backoff_seconds"`
	StopTimeoutSeconds  int    `mapstructure:"stop_timeout_seconds"`
}

func (c IngestConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c IngestConfig) ErrorBackoff() time.Duration {
	return time.Duration(c.ErrorBackoffSeconds) * time.Second
}

func (c IngestConfig) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutSeconds) * time.Second
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// NotifyConfig wires the optional NATS fan-out. An empty URL disables the bus
// and leaves only the in-process websocket hub.
type NotifyConfig struct {
	NATSURL      string `mapstructure:"nats_url"`
	AlertSubject string `mapstructure:"alert_subject"`
	EventSubject string `mapstructure:"event_subject"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(logCtx, v)

	v.SetEnvPrefix("YW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Ingest.WatchDir == "" {
		return Config{}, errors.New("ingest.watch_dir is required")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("watch_dir", cfg.Ingest.WatchDir),
	)

	return cfg, nil
}

func setDefaults(ctx context.Context, v *viper.Viper) {
	if ctx == nil {
		return
	}

	v.SetDefault("app.name", "yardwatch")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/yardwatch.sqlite")
	v.SetDefault("ingest.watch_dir", "data/detections")
	v.SetDefault("ingest.poll_interval_seconds", 2)
	v.SetDefault("ingest.error_backoff_seconds", 5)
	v.SetDefault("ingest.stop_timeout_seconds", 5)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("notify.nats_url", "")
	v.SetDefault("notify.alert_subject", "yard.alerts")
	v.SetDefault("notify.event_subject", "yard.events")
}
