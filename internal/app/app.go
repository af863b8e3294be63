package app

import (
	"context"
	"fmt"

	"go-hrdata/internal/bootstrap"
	"go-hrdata/internal/config"
	"go-hrdata/internal/database"
	"go-hrdata/internal/messaging/kafka"
	"go-hrdata/internal/shared/apperror"
	"go-hrdata/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunAPI waits for the database, applies migrations and serves the REST API
// until the process is signalled.
func RunAPI(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	logger = logger.Named("app.api")

	gormDB, err := connection.ConnectGORMWithRetry(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running migrations")
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations complete")
	}

	rdb, err := connection.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	deps := Deps{DB: gormDB, Redis: rdb}
	if cfg.Kafka.Outbox {
		deps.Outbox = kafka.NewOutboxRepository(gormDB)
	}

	apperror.Init()
	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(deps, cfg, logger)

	return bootstrap.StartHTTPServer(
		router,
		bootstrap.ServerConfig{
			Port:            cfg.Server.Port,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			IdleTimeout:     cfg.Server.IdleTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		bootstrap.NewStdoutAuditLogger(logger),
		logger,
	)
}
