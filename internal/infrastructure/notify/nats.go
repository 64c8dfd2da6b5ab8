package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/errs"
	"yardwatch/internal/ports"
)

// NATSPublisher pushes alert and truck-event notifications to NATS subjects
// for consumers outside the dashboard process. Delivery is fire-and-forget.
type NATSPublisher struct {
	conn         *nats.Conn
	alertSubject string
	eventSubject string
}

func NewNATSPublisher(ctx context.Context, url string, alertSubject string, eventSubject string) (*NATSPublisher, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if url == "" {
		return nil, errors.New("nats url is required")
	}

	conn, err := nats.Connect(url, nats.Name("yardwatch"))
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}

	logging.Info(ctx, "nats publisher connected",
		slog.String("url", url),
		slog.String("alert_subject", alertSubject),
		slog.String("event_subject", eventSubject),
	)

	return &NATSPublisher{
		conn:         conn,
		alertSubject: alertSubject,
		eventSubject: eventSubject,
	}, nil
}

func (p *NATSPublisher) PublishAlert(ctx context.Context, notification ports.AlertNotification) error {
	return p.publish(ctx, p.alertSubject, notification)
}

func (p *NATSPublisher) PublishTruckEvent(ctx context.Context, notification ports.TruckEventNotification) error {
	return p.publish(ctx, p.eventSubject, notification)
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, payload any) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "marshal notification")
	}
	if err := p.conn.Publish(subject, raw); err != nil {
		return errs.Wrapf(err, "publish to %s", subject)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
