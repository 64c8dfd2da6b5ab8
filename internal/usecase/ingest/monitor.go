package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/errs"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultErrorBackoff = 5 * time.Second
	defaultStopTimeout  = 5 * time.Second
)

type MonitorConfig struct {
	PollInterval time.Duration
	ErrorBackoff time.Duration
	StopTimeout  time.Duration
}

// Monitor runs the ingestion pipeline on a fixed interval from a single
// background worker. Start while running is a logged no-op; Stop prevents the
// next iteration and waits a bounded time for the in-flight scan to finish.
// The loop never terminates itself on error.
type Monitor struct {
	pipeline *Pipeline
	cfg      MonitorConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewMonitor(pipeline *Pipeline, cfg MonitorConfig) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = defaultErrorBackoff
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	return &Monitor{
		pipeline: pipeline,
		cfg:      cfg,
	}
}

func (m *Monitor) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if m.pipeline == nil {
		return errors.New("pipeline is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		logging.Warn(ctx, "detection monitor already running")
		return nil
	}

	// The worker outlives the caller's request scope but keeps its logger.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go m.loop(runCtx, done)

	logging.Info(ctx, "detection monitor started",
		slog.Duration("poll_interval", m.cfg.PollInterval),
		slog.Duration("error_backoff", m.cfg.ErrorBackoff),
	)
	return nil
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Stop cancels ctx to prevent the next iteration, never to interrupt the
	// scan itself: a cancellable working context would fail repository writes
	// mid-file and misfile records that were never applied.
	scanCtx := context.WithoutCancel(ctx)

	for {
		if ctx.Err() != nil {
			return
		}

		wait := m.cfg.PollInterval
		if _, err := m.pipeline.ScanAndProcess(scanCtx); err != nil {
			logging.Error(ctx, "detection scan failed", slog.Any("err", errs.Loggable(err)))
			wait = m.cfg.ErrorBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// Stop signals the worker and waits up to the configured timeout for it to
// drain. It returns regardless of whether the worker joined in time; an
// in-flight scan is never interrupted.
func (m *Monitor) Stop(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		logging.Warn(ctx, "detection monitor not running")
		return nil
	}
	cancel()

	select {
	case <-done:
		logging.Info(ctx, "detection monitor stopped")
	case <-time.After(m.cfg.StopTimeout):
		logging.Warn(ctx, "detection monitor stop timed out", slog.Duration("timeout", m.cfg.StopTimeout))
	}
	return nil
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done != nil
}
