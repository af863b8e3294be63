package app

import (
	"context"
	"fmt"

	"go-hrdata/internal/config"
	"go-hrdata/internal/messaging/kafka"
	"go-hrdata/internal/messaging/kafka/producer"
	"go-hrdata/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays outbox events to Kafka until ctx is cancelled.
func RunWorker(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	logger = logger.Named("app.worker")

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter := connection.NewKafkaWriter(cfg.Kafka)
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(gormDB)

	producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		cfg.Kafka.PollInterval,
		cfg.Kafka.BatchSize,
	)

	logger.Info("worker shutting down")
	return nil
}
