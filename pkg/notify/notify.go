package notify

import (
	"context"
	"time"

	"skillex/pkg/kafka"
	"skillex/pkg/logger"
)

// Event types published to the notifications topic.
const (
	EventBookingRequested = "booking.requested"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventReviewReceived   = "review.received"
	EventMessageReceived  = "message.received"
)

// Event is the payload delivered to recipients by the notifier worker.
type Event struct {
	Type           string `json:"type"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// Notifier queues an event for delivery. Implementations must not block the
// caller beyond a short timeout; delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, event Event)
	Close() error
}

// KafkaNotifier publishes events to the notifications topic. Publish errors
// are logged and dropped so the triggering operation never fails on them.
type KafkaNotifier struct {
	producer *kafka.Producer
	source   string
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, source string, timeout time.Duration, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, source: source, timeout: timeout, log: log}
}

func (n *KafkaNotifier) Notify(ctx context.Context, event Event) {
	msg := kafka.NewMessage().
		WithKey(event.RecipientEmail).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(n.source).
		Build()

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.producer.Publish(publishCtx, msg); err != nil {
		n.log.Error("Failed to queue notification",
			"event_type", event.Type,
			"recipient", event.RecipientEmail,
			"error", err,
		)
	}
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

// NoopNotifier discards events. Used when no broker is configured and in
// tests.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, event Event) {}

func (NoopNotifier) Close() error { return nil }
