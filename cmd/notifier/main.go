package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"skillex/internal/notifier"
	"skillex/internal/notifier/email"
	"skillex/pkg/config"
	"skillex/pkg/kafka"
)

const ServiceName = "notifier"

const consumerGroup = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting notifier worker")

	worker := notifier.NewWorker(initSender(cfg), cfg.Log)

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.NotificationsTopic, consumerGroup, worker.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "error", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}
	cfg.Log.Info("Notifier worker shut down")
}

func initSender(cfg *config.Config) email.Sender {
	sender, err := email.NewAPISender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailSender, cfg.EmailSenderName, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Email API not configured, deliveries will be logged only", "error", err)
		return &email.LogSender{Log: cfg.Log}
	}
	return sender
}
