package kafka

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"skillex/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
}

func noopHandler(ctx context.Context, msg Message) error { return nil }

func TestNewConsumerValidation(t *testing.T) {
	tests := []struct {
		name    string
		brokers []string
		topic   string
		groupID string
		handler MessageHandler
	}{
		{"no brokers", nil, "events", "group", noopHandler},
		{"empty topic", []string{"localhost:9092"}, "", "group", noopHandler},
		{"empty group", []string{"localhost:9092"}, "events", "", noopHandler},
		{"nil handler", []string{"localhost:9092"}, "events", "group", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConsumer(tt.brokers, tt.topic, tt.groupID, tt.handler, testLogger()); err == nil {
				t.Error("NewConsumer() expected an error")
			}
		})
	}
}

func TestStartAfterClose(t *testing.T) {
	c, err := NewConsumer([]string{"localhost:9092"}, "events", "group", noopHandler, testLogger())
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrConsumerClosed) {
		t.Errorf("Start() after Close = %v, want ErrConsumerClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

// Close must not deadlock when Start is blocked fetching with a context that
// is never cancelled.
func TestCloseUnblocksStart(t *testing.T) {
	c, err := NewConsumer([]string{"localhost:1"}, "events", "group", noopHandler, testLogger())
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}

	started := make(chan error, 1)
	go func() { started <- c.Start(context.Background()) }()
	time.Sleep(100 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()

	select {
	case err := <-started:
		if !errors.Is(err, ErrConsumerClosed) {
			t.Errorf("Start() = %v, want ErrConsumerClosed", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Start did not return after Close")
	}

	select {
	case <-closed:
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not return")
	}
}
