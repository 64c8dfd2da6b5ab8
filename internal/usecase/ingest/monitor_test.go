package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"yardwatch/internal/ports"
)

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestMonitorProcessesDroppedFiles(t *testing.T) {
	pipeline, _, watchDir := setupPipeline(t)
	monitor := NewMonitor(pipeline, MonitorConfig{
		PollInterval: 10 * time.Millisecond,
		ErrorBackoff: 10 * time.Millisecond,
		StopTimeout:  time.Second,
	})
	ctx := context.Background()

	if err := monitor.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		_ = monitor.Stop(ctx)
	})

	writeDetectionFile(t, watchDir, "drop.json",
		`{"truck_detections":[{"truck_id":"T7","event_type":"gate_in"}]}`)

	archived := filepath.Join(watchDir, "processed", "processed_drop.json")
	waitFor(t, 2*time.Second, func() bool {
		_, err := os.Stat(archived)
		return err == nil
	})
}

func TestMonitorStartIsIdempotent(t *testing.T) {
	pipeline, _, _ := setupPipeline(t)
	monitor := NewMonitor(pipeline, MonitorConfig{
		PollInterval: 10 * time.Millisecond,
		StopTimeout:  time.Second,
	})
	ctx := context.Background()

	if err := monitor.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := monitor.Start(ctx); err != nil {
		t.Fatalf("second Start() must be a no-op, error = %v", err)
	}
	if !monitor.Running() {
		t.Fatalf("monitor should be running")
	}

	if err := monitor.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if monitor.Running() {
		t.Fatalf("monitor should be stopped")
	}
}

func TestMonitorStopWhenNotRunning(t *testing.T) {
	pipeline, _, _ := setupPipeline(t)
	monitor := NewMonitor(pipeline, MonitorConfig{})

	if err := monitor.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() on stopped monitor error = %v", err)
	}
}

// gateNotifier blocks the first truck-event publish until released, holding a
// scan in flight at a known point.
type gateNotifier struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (n *gateNotifier) PublishAlert(context.Context, ports.AlertNotification) error {
	return nil
}

func (n *gateNotifier) PublishTruckEvent(context.Context, ports.TruckEventNotification) error {
	n.once.Do(func() { close(n.entered) })
	<-n.release
	return nil
}

func TestMonitorStopDoesNotInterruptInFlightScan(t *testing.T) {
	gate := &gateNotifier{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, repo := setupServiceWithNotifier(t, gate)
	watchDir := filepath.Join(t.TempDir(), "detections")
	pipeline := NewPipeline(svc, watchDir)
	monitor := NewMonitor(pipeline, MonitorConfig{
		PollInterval: 10 * time.Millisecond,
		StopTimeout:  5 * time.Second,
	})
	ctx := context.Background()

	writeDetectionFile(t, watchDir, "inflight.json", `{
		"truck_detections": [
			{"truck_id": "T1", "event_type": "gate_in"},
			{"truck_id": "T2", "event_type": "docked"}
		]
	}`)

	if err := monitor.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The scan is now mid-file, blocked after the first record.
	<-gate.entered

	stopped := make(chan error, 1)
	go func() {
		stopped <- monitor.Stop(ctx)
	}()
	close(gate.release)
	if err := <-stopped; err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Stopping must not have failed the second record or misfiled the file.
	events, err := repo.ListRecentTruckEvents(ctx, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want both records applied", len(events))
	}
	archived := filepath.Join(watchDir, "processed", "processed_inflight.json")
	if _, err := os.Stat(archived); err != nil {
		t.Fatalf("archived file missing: %v", err)
	}
}

func TestMonitorRestartsAfterStop(t *testing.T) {
	pipeline, _, watchDir := setupPipeline(t)
	monitor := NewMonitor(pipeline, MonitorConfig{
		PollInterval: 10 * time.Millisecond,
		StopTimeout:  time.Second,
	})
	ctx := context.Background()

	if err := monitor.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := monitor.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := monitor.Start(ctx); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	t.Cleanup(func() {
		_ = monitor.Stop(ctx)
	})

	writeDetectionFile(t, watchDir, "after_restart.json", `{}`)
	archived := filepath.Join(watchDir, "processed", "processed_after_restart.json")
	waitFor(t, 2*time.Second, func() bool {
		_, err := os.Stat(archived)
		return err == nil
	})
}
