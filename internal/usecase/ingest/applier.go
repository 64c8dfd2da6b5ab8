package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/domain/yard"
	"yardwatch/internal/errs"
	"yardwatch/internal/ports"
)

// ApplyTruckDetections records each truck observation: the truck is created
// on first sight with boundary defaults, its status follows the event-type
// mapping table, and a TruckEvent row is always appended with the raw event
// type, mapped or not.
func (s *Service) ApplyTruckDetections(ctx context.Context, records []yard.TruckDetection) (ApplyCounts, error) {
	if ctx == nil {
		return ApplyCounts{}, errors.New("context is required")
	}
	if s.repo == nil {
		return ApplyCounts{}, errors.New("yard repository is required")
	}

	var counts ApplyCounts
	for _, record := range records {
		truckID := strings.TrimSpace(record.TruckID)
		if truckID == "" {
			logging.Warn(ctx, "skipping truck detection", slog.Any("err", errs.Loggable(yard.ErrTruckIDRequired)))
			counts.Skipped++
			continue
		}
		logCtx := logging.WithAttrs(ctx, slog.String("truck_id", truckID))

		truck, created, err := s.repo.GetOrCreateTruck(logCtx, truckID, ports.TruckDefaults{
			LicensePlate:  yard.OrDefault(record.LicensePlate, yard.DefaultLicensePlate),
			DriverName:    yard.OrDefault(record.DriverName, yard.DefaultDriverName),
			Company:       yard.OrDefault(record.Company, yard.DefaultCompany),
			CurrentStatus: yard.TruckStatusGateIn,
		})
		if err != nil {
			logging.Error(logCtx, "truck lookup failed", slog.Any("err", errs.Loggable(err)))
			counts.Skipped++
			continue
		}
		if created {
			logging.Info(logCtx, "truck registered from detection")
		}

		if status, ok := yard.TruckStatusForEvent(record.EventType); ok {
			if err := s.repo.UpdateTruckStatus(logCtx, truck.ID, status); err != nil {
				logging.Error(logCtx, "truck status update failed", slog.Any("err", errs.Loggable(err)))
				counts.Skipped++
				continue
			}
		}

		event, err := s.repo.AppendTruckEvent(logCtx, ports.TruckEventCreate{
			TruckRef:  truck.ID,
			EventType: strings.TrimSpace(record.EventType),
			Timestamp: nowUTCString(),
			Location:  yard.OrDefault(record.Location, yard.DefaultLocation),
			Notes:     yard.OrDefault(record.Notes, yard.DefaultNotes),
		})
		if err != nil {
			logging.Error(logCtx, "truck event append failed", slog.Any("err", errs.Loggable(err)))
			counts.Skipped++
			continue
		}

		counts.Applied++
		logging.Info(logCtx, "truck detection applied", slog.String("event_type", event.EventType))
		s.notifyTruckEvent(logCtx, event, truckID)
	}
	return counts, nil
}

// ApplySafetyViolations records each violation and escalates high/critical
// ones to a safety alert. The event and its alert commit together so the
// safety dashboard never sees a half-escalated violation.
func (s *Service) ApplySafetyViolations(ctx context.Context, records []yard.SafetyViolation) (ApplyCounts, error) {
	if ctx == nil {
		return ApplyCounts{}, errors.New("context is required")
	}
	if s.repo == nil {
		return ApplyCounts{}, errors.New("yard repository is required")
	}
	if s.uow == nil {
		return ApplyCounts{}, errors.New("unit of work is required")
	}

	var counts ApplyCounts
	for _, record := range records {
		violationType := yard.OrDefault(record.ViolationType, yard.DefaultViolationType)
		severity := yard.OrDefault(record.Severity, yard.DefaultSeverity)
		location := yard.OrDefault(record.Location, yard.DefaultLocation)
		description := yard.OrDefault(record.Description, yard.DefaultDescription)
		logCtx := logging.WithAttrs(ctx,
			slog.String("violation_type", violationType),
			slog.String("severity", severity),
		)

		var alert *ports.Alert
		err := s.uow.WithTx(logCtx, func(txCtx context.Context) error {
			if _, err := s.repo.CreateSafetyEvent(txCtx, ports.SafetyEventCreate{
				ViolationType: violationType,
				Severity:      severity,
				Timestamp:     nowUTCString(),
				Location:      location,
				Description:   description,
			}); err != nil {
				return err
			}

			if !yard.SeverityEscalates(severity) {
				return nil
			}
			created, err := s.repo.CreateAlert(txCtx, ports.AlertCreate{
				AlertType: yard.AlertTypeSafety,
				Priority:  severity,
				Title:     "Safety Violation - " + violationType,
				Message:   description,
				Timestamp: nowUTCString(),
			})
			if err != nil {
				return err
			}
			alert = &created
			return nil
		})
		if err != nil {
			logging.Error(logCtx, "safety violation rejected", slog.Any("err", errs.Loggable(err)))
			counts.Skipped++
			continue
		}

		counts.Applied++
		logging.Info(logCtx, "safety violation recorded")
		if alert != nil {
			s.notifyAlert(logCtx, *alert)
		}
	}
	return counts, nil
}

// ApplyEquipmentStatus upserts equipment state. Empty incoming status or
// location keeps the prior values; equipment ending up in maintenance raises
// an equipment alert referencing the row.
func (s *Service) ApplyEquipmentStatus(ctx context.Context, records []yard.EquipmentReport) (ApplyCounts, error) {
	if ctx == nil {
		return ApplyCounts{}, errors.New("context is required")
	}
	if s.repo == nil {
		return ApplyCounts{}, errors.New("yard repository is required")
	}

	var counts ApplyCounts
	for _, record := range records {
		equipmentID := strings.TrimSpace(record.EquipmentID)
		if equipmentID == "" {
			logging.Warn(ctx, "skipping equipment record", slog.Any("err", errs.Loggable(yard.ErrEquipmentIDRequired)))
			counts.Skipped++
			continue
		}
		logCtx := logging.WithAttrs(ctx, slog.String("equipment_id", equipmentID))

		equipment, created, err := s.repo.GetOrCreateEquipment(logCtx, equipmentID, ports.EquipmentDefaults{
			EquipmentType:   yard.OrDefault(record.EquipmentType, yard.DefaultEquipmentType),
			Status:          yard.OrDefault(record.Status, yard.DefaultEquipmentStatus),
			CurrentLocation: yard.OrDefault(record.Location, yard.DefaultLocation),
		})
		if err != nil {
			logging.Error(logCtx, "equipment lookup failed", slog.Any("err", errs.Loggable(err)))
			counts.Skipped++
			continue
		}

		if !created {
			status := yard.OrDefault(record.Status, equipment.Status)
			location := yard.OrDefault(record.Location, equipment.CurrentLocation)
			if err := s.repo.UpdateEquipmentState(logCtx, equipment.ID, status, location); err != nil {
				logging.Error(logCtx, "equipment update failed", slog.Any("err", errs.Loggable(err)))
				counts.Skipped++
				continue
			}
			equipment.Status = status
			equipment.CurrentLocation = location
		}

		if equipment.Status == yard.EquipmentStatusMaintenance {
			equipmentRef := equipment.ID
			alert, err := s.repo.CreateAlert(logCtx, ports.AlertCreate{
				AlertType:           yard.AlertTypeEquipment,
				Priority:            yard.PriorityHigh,
				Title:               fmt.Sprintf("Equipment Maintenance - %s", equipment.EquipmentID),
				Message:             fmt.Sprintf("%s requires maintenance", equipment.EquipmentType),
				Timestamp:           nowUTCString(),
				RelatedEquipmentRef: &equipmentRef,
			})
			if err != nil {
				logging.Error(logCtx, "equipment alert failed", slog.Any("err", errs.Loggable(err)))
			} else {
				s.notifyAlert(logCtx, alert)
			}
		}

		counts.Applied++
		logging.Info(logCtx, "equipment status applied", slog.String("status", equipment.Status))
	}
	return counts, nil
}
