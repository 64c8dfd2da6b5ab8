package notify

import (
	"context"
	"errors"

	"yardwatch/internal/ports"
)

// Fanout delivers each notification to every sink. Errors are joined so one
// failing sink never hides another, and the caller still treats the whole
// publish as best-effort.
type Fanout []ports.Notifier

func (f Fanout) PublishAlert(ctx context.Context, notification ports.AlertNotification) error {
	var errList []error
	for _, sink := range f {
		if err := sink.PublishAlert(ctx, notification); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func (f Fanout) PublishTruckEvent(ctx context.Context, notification ports.TruckEventNotification) error {
	var errList []error
	for _, sink := range f {
		if err := sink.PublishTruckEvent(ctx, notification); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
