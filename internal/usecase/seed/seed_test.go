package seed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"yardwatch/internal/domain/yard"
)

func TestWriteSampleDetections(t *testing.T) {
	watchDir := filepath.Join(t.TempDir(), "detections")

	path, err := WriteSampleDetections(context.Background(), watchDir)
	if err != nil {
		t.Fatalf("WriteSampleDetections() error = %v", err)
	}
	if filepath.Base(path) != "sample_detection.json" {
		t.Fatalf("path = %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample file: %v", err)
	}
	var doc yard.DetectionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("sample file is not valid JSON: %v", err)
	}
	if len(doc.TruckDetections) != 2 || len(doc.SafetyViolations) != 1 || len(doc.EquipmentStatus) != 1 {
		t.Fatalf("unexpected sample shape: %+v", doc)
	}
	if doc.TruckDetections[0].TruckID != "TRUCK_001" {
		t.Fatalf("truck id = %q", doc.TruckDetections[0].TruckID)
	}
}

func TestWriteSampleDetectionsRequiresWatchDir(t *testing.T) {
	if _, err := WriteSampleDetections(context.Background(), ""); err == nil {
		t.Fatalf("empty watch dir must fail")
	}
}
