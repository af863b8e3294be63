package connection

import (
	"context"
	"fmt"
	"time"

	"go-hrdata/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectGORMWithRetry waits for the database to accept connections,
// trying cfg.ConnectAttempts times cfg.ConnectInterval apart.
func ConnectGORMWithRetry(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var lastErr error

	for i := 1; i <= cfg.ConnectAttempts; i++ {
		db, err := open(ctx, cfg)
		if err == nil {
			logger.Info("database connected",
				zap.String("host", cfg.Host),
				zap.String("name", cfg.Name),
				zap.Int("attempt", i),
			)
			return db, nil
		}
		lastErr = err
		logger.Warn("database not ready",
			zap.Int("attempt", i),
			zap.Int("max_attempts", cfg.ConnectAttempts),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.ConnectInterval):
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", cfg.ConnectAttempts, lastErr)
}

func open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// ConnectRedis returns nil without error when no address is configured.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		logger.Info("redis disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))
	return rdb, nil
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaReader joins cfg.ConsumerGroup on all of topics.
func NewKafkaReader(cfg config.KafkaConfig, topics ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

func NewMinio(cfg config.BlobConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client %s: %w", cfg.Endpoint, err)
	}
	return client, nil
}
