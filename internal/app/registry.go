package app

import (
	"go-hrdata/internal/config"
	"go-hrdata/internal/department"
	"go-hrdata/internal/job"
	"go-hrdata/internal/messaging/kafka"
	"go-hrdata/internal/middleware"
	"go-hrdata/internal/report"
	"go-hrdata/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps are the infrastructure handles the HTTP modules are built from.
// Redis and Outbox may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Outbox kafka.OutboxRepository
}

// NewRouter builds the API router with every module registered under /v1.
func NewRouter(deps Deps, cfg config.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.ContextLogger(logger),
		middleware.ErrorHandler(logger),
	)
	registerModules(router, deps, cfg, logger)
	return router
}

func registerModules(router *gin.Engine, deps Deps, cfg config.Config, logger *zap.Logger) {
	db := deps.DB

	// --- Repositories ---
	departmentRepo := department.NewRepository(db)
	jobRepo := job.NewRepository(db)
	userRepo := user.NewRepository(db)
	reportRepo := report.NewRepository(db)

	// --- Services ---
	departmentService := department.NewService(db, departmentRepo, deps.Outbox, logger)
	jobService := job.NewService(db, jobRepo, deps.Outbox, logger)
	userService := user.NewService(db, userRepo, deps.Outbox, logger)
	reportService := report.NewService(reportRepo, deps.Redis, cfg.Report.CacheTTL, logger)

	// --- Handlers ---
	departmentHandler := department.NewHandler(departmentService, logger)
	jobHandler := job.NewHandler(jobService, logger)
	userHandler := user.NewHandler(userService, logger)
	reportHandler := report.NewHandler(reportService, logger)

	idempotent := middleware.Idempotency(deps.Redis, cfg.Server.IdempotencyTTL, logger)

	// --- Routes Registration ---
	api := router.Group("/v1")
	if cfg.Server.RateLimitRPS > 0 {
		api.Use(middleware.RateLimitByIP(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst))
	}
	{
		department.RegisterRoutes(api, departmentHandler, idempotent)
		job.RegisterRoutes(api, jobHandler, idempotent)
		user.RegisterRoutes(api, userHandler, idempotent)
		report.RegisterRoutes(api, reportHandler)
	}
}
