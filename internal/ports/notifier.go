package ports

import "context"

type AlertNotification struct {
	AlertID   string `json:"alert_id"`
	AlertType string `json:"alert_type"`
	Priority  string `json:"priority"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type TruckEventNotification struct {
	EventID   string `json:"event_id"`
	TruckID   string `json:"truck_id"`
	EventType string `json:"event_type"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
}

// Notifier pushes live updates toward connected dashboards and external
// consumers. Delivery is fire-and-forget: ingestion never depends on it for
// correctness, and publish errors are logged by the caller, not retried.
type Notifier interface {
	PublishAlert(ctx context.Context, notification AlertNotification) error
	PublishTruckEvent(ctx context.Context, notification TruckEventNotification) error
}
