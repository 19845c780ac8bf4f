// Package notifier consumes notification events and delivers them by email.
package notifier

import (
	"context"
	"fmt"

	"skillex/internal/notifier/email"
	"skillex/pkg/kafka"
	"skillex/pkg/logger"
	"skillex/pkg/notify"
)

// Worker turns notification events from the topic into email deliveries.
// Handler failures are logged by the consumer and the offset is committed
// anyway; notifications are best-effort.
type Worker struct {
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(sender email.Sender, log *logger.Logger) *Worker {
	return &Worker{sender: sender, log: log}
}

func (w *Worker) Handle(ctx context.Context, msg kafka.Message) error {
	var event notify.Event
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode notification event: %w", err)
	}

	if event.RecipientEmail == "" {
		w.log.Warn("Notification event has no recipient, dropping",
			"event_id", msg.GetEventID(),
			"event_type", event.Type,
		)
		return nil
	}

	w.log.Info("Delivering notification",
		"event_id", msg.GetEventID(),
		"event_type", event.Type,
		"recipient", event.RecipientEmail,
	)

	return w.sender.Send(ctx, event.RecipientEmail, event.RecipientName, event.Subject, event.Body)
}
