package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"yardwatch/internal/domain/yard"
	"yardwatch/internal/ports"
)

func setupPipeline(t *testing.T) (*Pipeline, *Service, string) {
	t.Helper()
	svc, _, _ := setupService(t)
	watchDir := filepath.Join(t.TempDir(), "detections")
	return NewPipeline(svc, watchDir), svc, watchDir
}

func writeDetectionFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir watch dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write detection file: %v", err)
	}
}

func TestScanAndProcessArchivesValidFile(t *testing.T) {
	pipeline, svc, watchDir := setupPipeline(t)
	ctx := context.Background()

	writeDetectionFile(t, watchDir, "batch_001.json",
		`{"truck_detections":[{"truck_id":"T1","event_type":"docked","location":"Bay1"}]}`)

	summary, err := pipeline.ScanAndProcess(ctx)
	if err != nil {
		t.Fatalf("ScanAndProcess() error = %v", err)
	}
	if summary.FilesArchived != 1 || summary.FilesQuarantined != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Trucks.Applied != 1 {
		t.Fatalf("trucks = %+v", summary.Trucks)
	}

	if _, err := os.Stat(filepath.Join(watchDir, "processed", "processed_batch_001.json")); err != nil {
		t.Fatalf("archived file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(watchDir, "batch_001.json")); !os.IsNotExist(err) {
		t.Fatalf("source file should be gone, stat err = %v", err)
	}

	truck, created, err := svc.repo.GetOrCreateTruck(ctx, "T1", ports.TruckDefaults{})
	if err != nil || created {
		t.Fatalf("truck lookup: created=%v err=%v", created, err)
	}
	if truck.CurrentStatus != yard.TruckStatusDocked {
		t.Fatalf("status = %q, want docked", truck.CurrentStatus)
	}
}

func TestScanAndProcessQuarantinesMalformedFile(t *testing.T) {
	pipeline, svc, watchDir := setupPipeline(t)
	ctx := context.Background()

	writeDetectionFile(t, watchDir, "broken.json", `{"truck_detections": [`)

	summary, err := pipeline.ScanAndProcess(ctx)
	if err != nil {
		t.Fatalf("ScanAndProcess() error = %v", err)
	}
	if summary.FilesQuarantined != 1 || summary.FilesArchived != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	if _, err := os.Stat(filepath.Join(watchDir, "error", "error_broken.json")); err != nil {
		t.Fatalf("quarantined file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(watchDir, "broken.json")); !os.IsNotExist(err) {
		t.Fatalf("source file should be gone, stat err = %v", err)
	}

	events, err := svc.repo.ListRecentTruckEvents(ctx, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("no entities may be created from a malformed file, got %d events", len(events))
	}
}

func TestScanAndProcessSkipsProcessedPrefixAndNonJSON(t *testing.T) {
	pipeline, _, watchDir := setupPipeline(t)
	ctx := context.Background()

	writeDetectionFile(t, watchDir, "processed_old.json", `{}`)
	writeDetectionFile(t, watchDir, "notes.txt", `not a detection`)

	summary, err := pipeline.ScanAndProcess(ctx)
	if err != nil {
		t.Fatalf("ScanAndProcess() error = %v", err)
	}
	if summary.FilesArchived != 0 || summary.FilesQuarantined != 0 {
		t.Fatalf("summary = %+v, want untouched files", summary)
	}

	if _, err := os.Stat(filepath.Join(watchDir, "processed_old.json")); err != nil {
		t.Fatalf("processed-prefixed file must be left in place: %v", err)
	}
	if _, err := os.Stat(filepath.Join(watchDir, "notes.txt")); err != nil {
		t.Fatalf("non-json file must be left in place: %v", err)
	}
}

func TestScanAndProcessBadRecordDoesNotAbortFile(t *testing.T) {
	pipeline, svc, watchDir := setupPipeline(t)
	ctx := context.Background()

	writeDetectionFile(t, watchDir, "mixed.json", `{
		"truck_detections": [
			{"event_type": "docked"},
			{"truck_id": "T9", "event_type": "departed"}
		],
		"safety_violations": [
			{"violation_type": "overspeed", "severity": "critical", "location": "Zone A"}
		]
	}`)

	summary, err := pipeline.ScanAndProcess(ctx)
	if err != nil {
		t.Fatalf("ScanAndProcess() error = %v", err)
	}
	if summary.FilesArchived != 1 {
		t.Fatalf("file with one bad record must still archive, summary = %+v", summary)
	}
	if summary.Trucks.Applied != 1 || summary.Trucks.Skipped != 1 {
		t.Fatalf("trucks = %+v", summary.Trucks)
	}
	if summary.Safety.Applied != 1 {
		t.Fatalf("safety = %+v", summary.Safety)
	}

	alerts, err := svc.repo.ListUnacknowledgedAlerts(ctx, 0)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Priority != yard.SeverityCritical {
		t.Fatalf("alerts = %+v", alerts)
	}
}

func TestScanAndProcessUnknownTopLevelKeysIgnored(t *testing.T) {
	pipeline, _, watchDir := setupPipeline(t)
	ctx := context.Background()

	writeDetectionFile(t, watchDir, "extra.json",
		`{"camera_diagnostics": {"fps": 12}, "truck_detections": [{"truck_id": "T5"}]}`)

	summary, err := pipeline.ScanAndProcess(ctx)
	if err != nil {
		t.Fatalf("ScanAndProcess() error = %v", err)
	}
	if summary.FilesArchived != 1 || summary.Trucks.Applied != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestScanAndProcessCreatesDirectories(t *testing.T) {
	pipeline, _, watchDir := setupPipeline(t)

	if _, err := pipeline.ScanAndProcess(context.Background()); err != nil {
		t.Fatalf("ScanAndProcess() error = %v", err)
	}
	for _, dir := range []string{watchDir, filepath.Join(watchDir, "processed"), filepath.Join(watchDir, "error")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing: %v", dir, err)
		}
	}
}

func TestScanAndProcessCancelledContextLeavesFilesUntouched(t *testing.T) {
	pipeline, svc, watchDir := setupPipeline(t)

	writeDetectionFile(t, watchDir, "pending.json",
		`{"truck_detections":[{"truck_id":"T1","event_type":"gate_in"}]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := pipeline.ScanAndProcess(ctx)
	if err == nil {
		t.Fatalf("cancelled context must abort the scan")
	}
	if summary.FilesArchived != 0 || summary.FilesQuarantined != 0 {
		t.Fatalf("summary = %+v, want no files consumed", summary)
	}

	// The file must survive for the next scan to pick up.
	if _, err := os.Stat(filepath.Join(watchDir, "pending.json")); err != nil {
		t.Fatalf("pending file must be left in place: %v", err)
	}

	events, err := svc.repo.ListRecentTruckEvents(context.Background(), 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("no records may be applied under a cancelled context, got %d", len(events))
	}

	// A fresh scan ingests the file normally.
	summary, err = pipeline.ScanAndProcess(context.Background())
	if err != nil {
		t.Fatalf("retry scan: %v", err)
	}
	if summary.FilesArchived != 1 || summary.Trucks.Applied != 1 {
		t.Fatalf("retry summary = %+v", summary)
	}
}

func TestScanAndProcessIsRepeatable(t *testing.T) {
	pipeline, _, watchDir := setupPipeline(t)
	ctx := context.Background()

	writeDetectionFile(t, watchDir, "once.json",
		`{"safety_violations":[{"violation_type":"no_ppe","severity":"low"}]}`)

	if _, err := pipeline.ScanAndProcess(ctx); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	summary, err := pipeline.ScanAndProcess(ctx)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if summary.FilesArchived != 0 || summary.Safety.Applied != 0 {
		t.Fatalf("archived file was re-discovered: %+v", summary)
	}
}
