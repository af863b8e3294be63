package app

import (
	"context"
	"fmt"

	"go-hrdata/internal/config"
	"go-hrdata/internal/department"
	"go-hrdata/internal/events"
	"go-hrdata/internal/job"
	"go-hrdata/internal/messaging/kafka/consumer"
	"go-hrdata/internal/report"
	"go-hrdata/internal/shared/connection"
	"go-hrdata/internal/user"

	"go.uber.org/zap"
)

// RunConsumer drops cached hire reports whenever department, job or user
// rows change, until ctx is cancelled.
func RunConsumer(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	logger = logger.Named("app.consumer")

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if cfg.Kafka.ConsumerGroup == "" {
		return fmt.Errorf("kafka.consumer_group is required")
	}

	rdb, err := connection.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	if rdb == nil {
		return fmt.Errorf("redis.addr is required")
	}
	defer rdb.Close()

	gormDB, err := connection.ConnectGORMWithRetry(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	reportService := report.NewService(report.NewRepository(gormDB), rdb, cfg.Report.CacheTTL, logger)

	reader := connection.NewKafkaReader(cfg.Kafka, reportTopics()...)
	defer reader.Close()

	consumer.ConsumeRecordLifecycle(ctx, reader, reportService, logger)

	logger.Info("consumer shutting down")
	return nil
}

// reportTopics are the lifecycle topics of every table the hire reports read.
func reportTopics() []string {
	return []string{
		events.LifecycleTopic(department.Table),
		events.LifecycleTopic(job.Table),
		events.LifecycleTopic(user.Table),
	}
}
