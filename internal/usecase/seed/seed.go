// Package seed drops a sample detection file into the watch directory so a
// fresh install has something for the monitor to pick up.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/domain/yard"
	"yardwatch/internal/errs"
)

const sampleFileName = "sample_detection.json"

func sampleDocument() yard.DetectionDocument {
	return yard.DetectionDocument{
		TruckDetections: []yard.TruckDetection{
			{
				TruckID:      "TRUCK_001",
				EventType:    "gate_in",
				Location:     "Gate 1",
				LicensePlate: "ABC123",
				DriverName:   "John Smith",
				Company:      "Logistics Inc",
				Notes:        "Automatic gate entry detection",
			},
			{
				TruckID:      "TRUCK_002",
				EventType:    "docked",
				Location:     "Bay 3",
				LicensePlate: "XYZ789",
				DriverName:   "Mike Johnson",
				Company:      "Transport Co",
				Notes:        "Docked at bay 3",
			},
		},
		SafetyViolations: []yard.SafetyViolation{
			{
				ViolationType: yard.ViolationNoPPE,
				Severity:      yard.SeverityMedium,
				Location:      "Loading Zone A",
				Description:   "Worker without helmet detected",
			},
		},
		EquipmentStatus: []yard.EquipmentReport{
			{
				EquipmentID:   "FORKLIFT_01",
				EquipmentType: yard.EquipmentForklift,
				Status:        yard.EquipmentStatusActive,
				Location:      "Warehouse A",
			},
		},
	}
}

// WriteSampleDetections writes the sample file into watchDir and returns its
// path. The next scan ingests it like any externally produced drop.
func WriteSampleDetections(ctx context.Context, watchDir string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if watchDir == "" {
		return "", errors.New("watch directory is required")
	}

	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		return "", errs.Wrapf(err, "create watch directory %q", watchDir)
	}

	payload, err := json.MarshalIndent(sampleDocument(), "", "  ")
	if err != nil {
		return "", errs.Wrap(err, "encode sample detections")
	}

	path := filepath.Join(watchDir, sampleFileName)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", errs.Wrapf(err, "write %q", path)
	}

	logging.Info(ctx, "sample detection file written", slog.String("path", path))
	return path, nil
}
