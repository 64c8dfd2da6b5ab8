package dashboard

import (
	"context"
	"errors"
	"time"

	"yardwatch/internal/domain/yard"
	"yardwatch/internal/errs"
	"yardwatch/internal/ports"
)

const (
	defaultEventLimit = 20
	defaultAlertLimit = 10
)

// Service is the read side consumed by the role dashboards. It only queries
// and flips externally-owned flags (alert acknowledged, safety resolved);
// all ingestion writes happen elsewhere.
type Service struct {
	repo ports.YardRepository
}

func NewService(repo ports.YardRepository) *Service {
	return &Service{repo: repo}
}

type Stats struct {
	ActiveTrucks   int64  `json:"active_trucks"`
	OpenAlerts     int64  `json:"open_alerts"`
	CriticalAlerts int64  `json:"critical_alerts"`
	Timestamp      string `json:"timestamp"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if ctx == nil {
		return Stats{}, errors.New("context is required")
	}
	if s.repo == nil {
		return Stats{}, errors.New("yard repository is required")
	}

	activeTrucks, err := s.repo.CountTrucksByStatus(ctx, []string{
		yard.TruckStatusGateIn,
		yard.TruckStatusDocked,
		yard.TruckStatusLoading,
	})
	if err != nil {
		return Stats{}, errs.Wrap(err, "count active trucks")
	}

	counts, err := s.repo.CountUnacknowledgedAlerts(ctx)
	if err != nil {
		return Stats{}, errs.Wrap(err, "count alerts")
	}

	return Stats{
		ActiveTrucks:   activeTrucks,
		OpenAlerts:     counts.Total,
		CriticalAlerts: counts.Critical,
		Timestamp:      time.Now().UTC().Format(yard.TimestampLayout),
	}, nil
}

func (s *Service) LiveEvents(ctx context.Context, limit int) ([]ports.TruckEvent, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if limit <= 0 {
		limit = defaultEventLimit
	}
	return s.repo.ListRecentTruckEvents(ctx, limit)
}

func (s *Service) ActiveAlerts(ctx context.Context, limit int) ([]ports.Alert, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if limit <= 0 {
		limit = defaultAlertLimit
	}
	return s.repo.ListUnacknowledgedAlerts(ctx, limit)
}

func (s *Service) Trucks(ctx context.Context, limit int) ([]ports.Truck, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.repo.ListTrucks(ctx, limit)
}

func (s *Service) Equipment(ctx context.Context) ([]ports.Equipment, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.repo.ListEquipment(ctx)
}

type SafetySummary struct {
	Events          []ports.SafetyEvent `json:"events"`
	Unresolved      int                 `json:"unresolved"`
	Critical        int                 `json:"critical"`
	ViolationCounts map[string]int      `json:"violation_counts"`
}

// SafetySummary aggregates today's safety events for the safety dashboard.
// Critical counts high and critical severities together.
func (s *Service) SafetySummary(ctx context.Context) (SafetySummary, error) {
	if ctx == nil {
		return SafetySummary{}, errors.New("context is required")
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour).Format(yard.TimestampLayout)
	events, err := s.repo.ListSafetyEventsSince(ctx, startOfDay)
	if err != nil {
		return SafetySummary{}, errs.Wrap(err, "query safety events")
	}

	summary := SafetySummary{
		Events:          events,
		ViolationCounts: make(map[string]int, len(events)),
	}
	for _, event := range events {
		if !event.Resolved {
			summary.Unresolved++
		}
		if yard.SeverityEscalates(event.Severity) {
			summary.Critical++
		}
		summary.ViolationCounts[event.ViolationType]++
	}
	return summary, nil
}

func (s *Service) AcknowledgeAlert(ctx context.Context, alertID string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	return s.repo.AcknowledgeAlert(ctx, alertID)
}

func (s *Service) ResolveSafetyEvent(ctx context.Context, eventID string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	return s.repo.ResolveSafetyEvent(ctx, eventID)
}
