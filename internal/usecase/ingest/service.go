package ingest

import (
	"context"
	"log/slog"
	"time"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/domain/yard"
	"yardwatch/internal/errs"
	"yardwatch/internal/ports"
)

// Service applies parsed detection records to the yard store and escalates
// alerts. All entry points swallow per-record failures: the producer is
// untrusted and one bad record must never abort its siblings.
type Service struct {
	repo     ports.YardRepository
	uow      ports.UnitOfWork
	notifier ports.Notifier
}

func NewService(repo ports.YardRepository, uow ports.UnitOfWork, notifier ports.Notifier) *Service {
	return &Service{
		repo:     repo,
		uow:      uow,
		notifier: notifier,
	}
}

// ApplyCounts reports how many records of one detection kind were persisted
// and how many were skipped as malformed or failing.
type ApplyCounts struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

func (c *ApplyCounts) add(other ApplyCounts) {
	c.Applied += other.Applied
	c.Skipped += other.Skipped
}

func nowUTCString() string {
	return time.Now().UTC().Format(yard.TimestampLayout)
}

func (s *Service) notifyAlert(ctx context.Context, alert ports.Alert) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.PublishAlert(ctx, ports.AlertNotification{
		AlertID:   alert.AlertID,
		AlertType: alert.AlertType,
		Priority:  alert.Priority,
		Title:     alert.Title,
		Message:   alert.Message,
		Timestamp: alert.Timestamp,
	})
	if err != nil {
		logging.Warn(ctx, "alert notification dropped", slog.Any("err", errs.Loggable(err)))
	}
}

func (s *Service) notifyTruckEvent(ctx context.Context, event ports.TruckEvent, truckID string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.PublishTruckEvent(ctx, ports.TruckEventNotification{
		EventID:   event.EventID,
		TruckID:   truckID,
		EventType: event.EventType,
		Location:  event.Location,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		logging.Warn(ctx, "truck event notification dropped", slog.Any("err", errs.Loggable(err)))
	}
}
